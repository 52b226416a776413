// Package oracle abstracts the external text-generation service. The rest
// of the pipeline only ever sees "send a prompt, receive text"; provider
// choice is configuration.
package oracle

import (
	"context"
	"fmt"
)

// Oracle turns a prompt into raw model output. Implementations must be
// safe for concurrent use.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close()
}

// RetryableError indicates a transient oracle failure (rate limit, server
// error) worth one more attempt.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable oracle error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Config selects and configures a provider.
type Config struct {
	Provider string // "gemini", "openai" or "" for none
	APIKey   string
	Model    string
	BaseURL  string // openai-compatible endpoint base, e.g. https://api.openai.com/v1
}

// New builds the configured provider. A blank provider yields (nil, nil):
// the pipeline then runs on the local fallback generator alone.
func New(ctx context.Context, cfg Config) (Oracle, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "gemini":
		return NewGemini(ctx, cfg.APIKey, cfg.Model)
	case "openai":
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider: %q", cfg.Provider)
	}
}
