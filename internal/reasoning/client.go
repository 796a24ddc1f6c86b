// Package reasoning implements the LLM tie-break: a chain-of-thought call
// that picks one candidate from the ranked survivor list by citing shape
// facts, plus an independent validation call that may veto the pick. Any
// backend failure makes the layer a no-op; callers never see an error from a
// missing or misbehaving model.
package reasoning

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"vizsel/internal/config"
	"vizsel/internal/logging"
)

// Client defines the minimal interface the tie-breaker uses to call an LLM.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GenAIClient calls the Gemini API.
type GenAIClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenAIClient creates a reasoning client from config.
// Returns (nil, nil) when reasoning is disabled or no key is configured;
// a nil client downgrades the layer to a no-op rather than failing requests.
func NewGenAIClient(cfg config.ReasoningConfig, timeout time.Duration) (*GenAIClient, error) {
	if !cfg.Enabled {
		logging.Reasoning("Reasoning disabled by config kill-switch")
		return nil, nil
	}
	if cfg.APIKey == "" {
		logging.Reasoning("Reasoning enabled but no API key configured; layer will no-op")
		return nil, nil
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GenAIClient{client: client, model: model, timeout: timeout}, nil
}

// Complete runs a single completion.
func (c *GenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem runs a completion with a system prompt.
func (c *GenAIClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var cfg *genai.GenerateContentConfig
	if systemPrompt != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
	}

	result, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(userPrompt),
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("GenAI completion failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("GenAI returned empty completion")
	}
	return text, nil
}
