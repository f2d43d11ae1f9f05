package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/litescript/ls-planets/internal/cache"
	"github.com/litescript/ls-planets/internal/config"
	"github.com/litescript/ls-planets/internal/engine"
	"github.com/litescript/ls-planets/internal/ephem"
	"github.com/litescript/ls-planets/internal/logging"
	"github.com/litescript/ls-planets/internal/observability"
	"github.com/litescript/ls-planets/internal/query"
)

// App holds the wired services a command runs against.
type App struct {
	Config   *config.Config
	Log      *logging.Logger
	Metrics  *observability.Metrics
	Provider ephem.Provider
	Engine   *engine.Engine
	Cache    *cache.Cache
	Service  *query.Service
}

// NewApp builds the provider chain, engine, cache and query service from
// cfg. Metrics are registered against reg.
func NewApp(cfg *config.Config, log *logging.Logger, reg prometheus.Registerer) (*App, error) {
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	provider := ephem.New(cfg.Mode(), cfg.ProviderOptions(log))
	eng := engine.New(provider,
		engine.WithLogger(log),
		engine.WithMetrics(metrics),
		engine.WithTransformOptions(cfg.TransformOptions()),
	)

	c, err := cache.New(cfg.CacheConfig(log, metrics))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	svc := query.NewService(eng, c, query.Config{
		Tolerance: cfg.Tolerance(),
		Logger:    log,
		Metrics:   metrics,
	})

	log.Debug("app ready",
		"provider", provider.Name(),
		"cache_ttl", cfg.CacheTTL,
		"cache_max_entries", cfg.CacheMaxEntries,
	)

	return &App{
		Config:   cfg,
		Log:      log,
		Metrics:  metrics,
		Provider: provider,
		Engine:   eng,
		Cache:    c,
		Service:  svc,
	}, nil
}
