package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/budgetsage/budgetsage/internal/common"
	"github.com/budgetsage/budgetsage/internal/service"
)

// NewClient creates an LLM client for the configured provider, wrapped with
// rate limiting, transient-error retry, and TTL answer caching.
func NewClient(cfg Config) (Client, error) {
	var inner Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		inner, err = newOllamaClient(cfg)
	case "openai":
		inner, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 2
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = 500 * time.Millisecond
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), cfg.RateLimit)
	}

	return &wrappedClient{
		inner:     inner,
		limiter:   limiter,
		cache:     newAnswerCache(cfg.CacheTTL),
		retryOpts: retryOpts,
	}, nil
}

// wrappedClient layers rate limiting, retry, and caching over a provider
// client. The caller's context deadline bounds everything including waits.
type wrappedClient struct {
	inner     Client
	limiter   *rate.Limiter
	cache     *answerCache
	retryOpts service.RetryOptions
}

func (w *wrappedClient) Complete(ctx context.Context, prompt string) (string, error) {
	key := cacheKey(prompt)
	if text, ok := w.cache.get(key); ok {
		return text, nil
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter canceled: %w", err)
		}
	}

	// Providers mark transport-class failures with ErrLLMTransport; only
	// those are worth retrying. An API rejection repeats identically.
	var text string
	err := common.WithRetry(ctx, func() error {
		var callErr error
		text, callErr = w.inner.Complete(ctx, prompt)
		return callErr
	}, w.retryOpts)
	if err != nil {
		return "", err
	}

	w.cache.set(key, text)
	return text, nil
}

// Close releases the cache's background resources.
func (w *wrappedClient) Close() {
	w.cache.Close()
}
