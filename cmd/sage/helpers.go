package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/budgetsage/budgetsage/internal/common"
	"github.com/budgetsage/budgetsage/internal/config"
	"github.com/budgetsage/budgetsage/internal/engine"
	"github.com/budgetsage/budgetsage/internal/llm"
	"github.com/budgetsage/budgetsage/internal/model"
	"github.com/budgetsage/budgetsage/internal/storage"
)

func databasePath() (string, error) {
	if path := viper.GetString("database.path"); path != "" {
		return config.ExpandPath(path), nil
	}
	dir, err := config.AppDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "budget.db"), nil
}

func openStore() (*storage.SQLiteStore, error) {
	path, err := databasePath()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStore(path)
	if err != nil {
		return nil, common.NewUserError("could not open the budget database at "+path, err)
	}
	return store, nil
}

func llmConfig(key string) llm.Config {
	sub := func(field string) string { return "llm." + key + "." + field }
	return llm.Config{
		Provider:    viper.GetString(sub("provider")),
		Model:       viper.GetString(sub("model")),
		BaseURL:     viper.GetString(sub("base_url")),
		APIKey:      viper.GetString(sub("api_key")),
		Temperature: viper.GetFloat64(sub("temperature")),
		MaxTokens:   viper.GetInt(sub("max_tokens")),
		MaxRetries:  viper.GetInt(sub("max_retries")),
		RetryDelay:  viper.GetDuration(sub("retry_delay")),
		CacheTTL:    viper.GetDuration(sub("cache_ttl")),
		RateLimit:   viper.GetInt(sub("rate_limit")),
	}
}

// buildEngine wires storage and both LLM clients into an engine. The
// returned cleanup closes everything and must run before exit.
func buildEngine() (*engine.Engine, func(), error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	fast, err := llm.NewClient(llmConfig("fast"))
	if err != nil {
		_ = store.Close()
		return nil, nil, common.NewUserError("could not set up the fast answer model; check the llm.fast config", err)
	}
	deep, err := llm.NewClient(llmConfig("deep"))
	if err != nil {
		closeClient(fast)
		_ = store.Close()
		return nil, nil, common.NewUserError("could not set up the deep analysis model; check the llm.deep config", err)
	}

	eng, err := engine.New(engine.Deps{
		Store:  store,
		Fast:   fast,
		Deep:   deep,
		Logger: slog.Default(),
	}, engine.Config{
		FallbackLanguage: model.Language(viper.GetString("language.fallback")),
	})
	if err != nil {
		closeClient(fast)
		closeClient(deep)
		_ = store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		closeClient(fast)
		closeClient(deep)
		_ = store.Close()
	}
	return eng, cleanup, nil
}

func closeClient(c llm.Client) {
	if closer, ok := c.(interface{ Close() }); ok {
		closer.Close()
	}
}

func formatConfidence(answer *model.Answer) string {
	c := answer.Confidence
	return fmt.Sprintf("[tier %d | confidence %.2f %s]", answer.TierUsed, c.Overall, c.Band)
}
