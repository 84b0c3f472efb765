// Package llmclient is the go-openai-backed implementation of pkg/llm.Client:
// request shape and zerolog-based call instrumentation are geared around a
// single Invoke(prompt) capability rather than a generic workflow node.
package llmclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/reviewloop/engine/pkg/llm"
)

// RoleConfig is the model id + temperature pair a single role is
// constructed with, injected at engine construction.
type RoleConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Client adapts an openai.Client to pkg/llm.Client for one role. Connection
// validation is lazy: construction never touches the network, only Invoke
// can fail.
type Client struct {
	role   llm.Role
	client *openai.Client
	cfg    RoleConfig
}

// New builds a role-tagged Client. apiKey may be empty; in that case the
// first Invoke fails with the vendor's own authorization error rather than
// here. Construction itself never fails.
func New(role llm.Role, apiKey string, cfg RoleConfig) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	return &Client{role: role, client: openai.NewClient(apiKey), cfg: cfg}
}

// Invoke implements llm.Client.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if c.cfg.MaxTokens > 0 {
		req.MaxCompletionTokens = c.cfg.MaxTokens
	}

	preview := prompt
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}
	log.Debug().
		Str("role", string(c.role)).
		Str("model", c.cfg.Model).
		Str("prompt_preview", preview).
		Msg("invoking model client")

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		log.Error().Str("role", string(c.role)).Dur("latency", latency).Err(err).Msg("model invocation failed")
		return "", fmt.Errorf("llmclient[%s]: %w", c.role, err)
	}
	if len(resp.Choices) == 0 {
		log.Warn().Str("role", string(c.role)).Msg("model returned no choices")
		return "", fmt.Errorf("llmclient[%s]: model returned no choices", c.role)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Debug().
		Str("role", string(c.role)).
		Dur("latency", latency).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("model invocation completed")

	return content, nil
}
