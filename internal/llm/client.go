// Package llm provides the LLM collaborator clients the tier orchestrator
// delegates to. Two instances are typically configured: a fast structured
// model for summary questions and a deeper reasoning model for full-data
// questions.
package llm

import (
	"context"
	"time"
)

// Client is the collaborator contract: one blocking completion call. The
// caller bounds it with a context deadline; a timeout surfaces as an error
// and is treated identically to any other transport failure.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for one LLM client instance.
type Config struct {
	Provider    string // "ollama" or "openai"
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int // requests per minute; 0 disables limiting
}
