package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewloop/engine/pkg/models"
)

func clearEnv() {
	for _, key := range []string{
		"REVIEWLOOP_PORT", "REVIEWLOOP_HOST", "REVIEWLOOP_READ_TIMEOUT", "REVIEWLOOP_WRITE_TIMEOUT",
		"REVIEWLOOP_SHUTDOWN_TIMEOUT", "REVIEWLOOP_API_KEYS",
		"REVIEWLOOP_DATABASE_URL", "REVIEWLOOP_DB_MAX_CONNECTIONS", "REVIEWLOOP_DB_MIN_CONNECTIONS",
		"REVIEWLOOP_DB_MAX_IDLE_TIME", "REVIEWLOOP_DB_MAX_CONN_LIFETIME", "REVIEWLOOP_DB_DEBUG",
		"REVIEWLOOP_REDIS_URL", "REVIEWLOOP_REDIS_PASSWORD", "REVIEWLOOP_REDIS_DB", "REVIEWLOOP_REDIS_POOL_SIZE",
		"REVIEWLOOP_LOG_LEVEL", "REVIEWLOOP_LOG_FORMAT",
		"REVIEWLOOP_LLM_API_KEY", "REVIEWLOOP_LLM_BASE_URL", "REVIEWLOOP_LLM_GENERATIVE_MODEL",
		"REVIEWLOOP_LLM_REVIEW_MODEL", "REVIEWLOOP_LLM_SUMMARY_MODEL", "REVIEWLOOP_LLM_REQUEST_TIMEOUT",
		"REVIEWLOOP_MAX_EVALUATION_ATTEMPTS", "REVIEWLOOP_MAX_ITERATIONS", "REVIEWLOOP_DEFAULT_LOCALE",
	} {
		os.Unsetenv(key)
	}
}

func TestConfig_Load_DefaultValues(t *testing.T) {
	clearEnv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, 8585, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Empty(t, cfg.Server.APIKeys)

	assert.Contains(t, cfg.Database.URL, "postgres://")
	assert.Equal(t, 20, cfg.Database.MaxConnections)
	assert.Equal(t, 5, cfg.Database.MinConnections)

	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, "gpt-4o", cfg.LLM.GenerativeModel)
	assert.Equal(t, "gpt-4o", cfg.LLM.ReviewModel)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.SummaryModel)

	assert.Equal(t, 3, cfg.Engine.DefaultMaxEvaluationAttempts)
	assert.Equal(t, 3, cfg.Engine.DefaultMaxIterations)
	assert.Equal(t, models.LocaleEN, cfg.Engine.DefaultLocale)
}

func TestConfig_Load_OverridesFromEnv(t *testing.T) {
	clearEnv()
	os.Setenv("REVIEWLOOP_PORT", "9090")
	os.Setenv("REVIEWLOOP_DEFAULT_LOCALE", "zh")
	defer clearEnv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, models.LocaleZH, cfg.Engine.DefaultLocale)
}

func TestConfig_Validate_RejectsInvalidPort(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 70000},
		Database: DatabaseConfig{URL: "postgres://x"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Engine:   EngineConfig{DefaultLocale: models.LocaleEN},
	}
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_RejectsUnknownLocale(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{URL: "postgres://x"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Engine:   EngineConfig{DefaultLocale: "fr"},
	}
	assert.Error(t, cfg.Validate())
}
