package cli

import (
	"fmt"
	"os"

	"github.com/papersumm/papersumm/internal/compliance"
	"github.com/papersumm/papersumm/internal/db"
	"github.com/papersumm/papersumm/internal/engine"
	"github.com/papersumm/papersumm/internal/llm"
	"github.com/papersumm/papersumm/internal/templates"
)

// openDatabase opens the sqlite database under the data directory,
// creating the directory if needed.
func openDatabase() (*db.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return db.Open(cfg.DatabasePath())
}

// buildRegistry loads built-in template variants, the standard search
// paths, and any extra directories from the configuration.
func buildRegistry() (*templates.Registry, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	registry, err := templates.LoadRegistryFromSearchPaths(cwd)
	if err != nil {
		return nil, err
	}

	for _, dir := range cfg.TemplateDirs {
		variants, err := templates.LoadVariantsFromDir(dir)
		if err != nil {
			return nil, fmt.Errorf("load templates from %s: %w", dir, err)
		}
		for _, variant := range variants {
			if err := registry.Register(variant); err != nil {
				return nil, err
			}
		}
	}
	return registry, nil
}

func buildEngine(registry *templates.Registry) *engine.Engine {
	validator := compliance.NewValidator(compliance.WithCJKThreshold(cfg.Compliance.CJKThreshold))
	return engine.New(engine.Config{
		MaxComplianceRetries: cfg.Retry.MaxComplianceRetries,
		MaxTransientRetries:  cfg.Retry.MaxTransientRetries,
		BackoffBase:          cfg.Retry.BackoffBase,
	}, registry, validator)
}

// buildClients returns the model chain: the primary client first,
// then the fallback when one is configured. Each client is wrapped
// with the configured rate limit.
func buildClients() ([]llm.Client, error) {
	names := []string{cfg.LLM.Model}
	if cfg.LLM.FallbackModel != "" && cfg.LLM.FallbackModel != cfg.LLM.Model {
		names = append(names, cfg.LLM.FallbackModel)
	}

	clients := make([]llm.Client, 0, len(names))
	for _, name := range names {
		client, err := llm.NewOpenAIClient(llm.Settings{
			Model:   name,
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Timeout: cfg.LLM.Timeout,
		})
		if err != nil {
			return nil, err
		}
		clients = append(clients, llm.NewRateLimited(client, llm.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
		}))
	}
	return clients, nil
}
