// Package cmd wires the CLI commands: flag parsing, config load, and
// component assembly.
package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/repodoc/internal/ai"
	"github.com/repodoc/internal/ai/gemini"
	"github.com/repodoc/internal/cache"
	"github.com/repodoc/internal/config"
	"github.com/repodoc/internal/providers"
	"github.com/repodoc/internal/providers/github"
)

// loadRuntime loads config, opens the cache store, and fills credential gaps
// from the persisted settings key.
func loadRuntime(c *cli.Context) (*config.Config, cache.Store, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	store := cache.NewLayeredStore(cfg.General.CacheDir, 0)
	config.ApplyCredentials(cfg, config.LoadCredentials(store))
	return cfg, store, nil
}

// buildContentClient assembles the cached, throttled GitHub client.
func buildContentClient(cfg *config.Config, store cache.Store) *providers.CachedClient {
	var opts []github.Option
	if cfg.GitHub.Token != "" {
		opts = append(opts, github.WithToken(cfg.GitHub.Token))
	}
	return providers.NewCachedClient(github.New(opts...), store)
}

// createAIProvider builds the configured AI provider through the factory.
func createAIProvider(cfg *config.Config) (ai.Provider, error) {
	factory := ai.NewDefaultFactory()
	factory.Register("gemini", &gemini.Provider{})

	provider, err := factory.Create(cfg.General.DefaultAI, cfg.AIConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider %s: %w", cfg.General.DefaultAI, err)
	}
	return provider, nil
}
