// Command server runs a thin HTTP host wrapping the Workflow Engine API.
// The web/presentation layer is explicitly out of scope per the
// specification; this is a minimal adapter, not a UI.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/reviewloop/engine/internal/config"
	"github.com/reviewloop/engine/internal/infrastructure/logger"
	"github.com/reviewloop/engine/internal/infrastructure/storage"
	"github.com/reviewloop/engine/internal/llmclient"
	"github.com/reviewloop/engine/internal/ratelimit"
	"github.com/reviewloop/engine/pkg/engine"
	"github.com/reviewloop/engine/pkg/llm"
	"github.com/reviewloop/engine/pkg/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Logging)
	logger.SetDefault(log)

	db, err := storage.NewDB(&storage.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MinConnections,
		ConnMaxLifetime: cfg.Database.MaxConnLifetime,
		ConnMaxIdleTime: cfg.Database.MaxIdleTime,
		Debug:           cfg.Database.Debug,
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer storage.Close(db)

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Error("invalid redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	limiter := ratelimit.New(redisClient, "ratelimit:reviewloop:", 30, time.Minute, 5*time.Minute)

	catalogStore := storage.NewPostgresCatalogStore(db, nil)
	sessions := storage.NewSessionStore(db)

	roles := llm.Roles{
		Generative: llmclient.New(llm.RoleGenerative, cfg.LLM.APIKey, llmclient.RoleConfig{Model: cfg.LLM.GenerativeModel, Temperature: 0.7}),
		Review:     llmclient.New(llm.RoleReview, cfg.LLM.APIKey, llmclient.RoleConfig{Model: cfg.LLM.ReviewModel, Temperature: 0.3}),
		Summary:    llmclient.New(llm.RoleSummary, cfg.LLM.APIKey, llmclient.RoleConfig{Model: cfg.LLM.SummaryModel, Temperature: 0.3}),
	}

	eng, err := engine.New(catalogStore, roles)
	if err != nil {
		log.Error("failed to construct engine", "error", err)
		os.Exit(1)
	}

	h := &host{engine: eng, sessions: sessions, limiter: limiter, cfg: cfg}

	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/workflows", h.createWorkflow)
	router.POST("/workflows/:id/advance", h.advance)
	router.POST("/workflows/:id/reviews", h.submitReview)
	router.POST("/workflows/:id/cancel", h.cancel)
	router.GET("/workflows/:id/status", h.status)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

type host struct {
	engine   *engine.Engine
	sessions *storage.SessionStore
	limiter  *ratelimit.Limiter
	cfg      *config.Config
}

type createWorkflowRequest struct {
	Selection models.DefectSelection `json:"selection"`
	Locale    models.Locale          `json:"locale"`
	Phase     models.Phase           `json:"phase"`
}

func (h *host) createWorkflow(c *gin.Context) {
	var req createWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.engine.NewWorkflow(c.Request.Context(), req.Selection, models.DefaultLimits(), req.Locale, req.Phase)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sessions.Save(c.Request.Context(), state); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, h.engine.Status(state))
}

func (h *host) loadState(c *gin.Context) (*models.WorkflowState, bool) {
	state, err := h.sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow not found"})
		return nil, false
	}
	return state, true
}

func (h *host) advance(c *gin.Context) {
	state, ok := h.loadState(c)
	if !ok {
		return
	}
	next, err := h.engine.Advance(c.Request.Context(), state)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sessions.Save(c.Request.Context(), next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.engine.Status(next))
}

type submitReviewRequest struct {
	Review string `json:"review"`
}

func (h *host) submitReview(c *gin.Context) {
	allowed, retryAfter, err := h.limiter.Allow(c.Request.Context(), c.Param("id"))
	if err == nil && !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many submissions", "retry_after": retryAfter})
		return
	}

	state, ok := h.loadState(c)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next, err := h.engine.SubmitReview(c.Request.Context(), state, req.Review)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sessions.Save(c.Request.Context(), next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.engine.Status(next))
}

func (h *host) cancel(c *gin.Context) {
	state, ok := h.loadState(c)
	if !ok {
		return
	}
	next := h.engine.Cancel(state)
	if err := h.sessions.Save(c.Request.Context(), next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.engine.Status(next))
}

func (h *host) status(c *gin.Context) {
	state, ok := h.loadState(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.Status(state))
}
