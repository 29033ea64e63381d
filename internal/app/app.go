// Package app wires together all adapters and domain logic.
// It opens the configured store, instruments it, and binds the keyword
// automaton to it.
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/corey/ackeys/internal/adapters/bbolt"
	"github.com/corey/ackeys/internal/adapters/memory"
	"github.com/corey/ackeys/internal/adapters/redis"
	"github.com/corey/ackeys/internal/config"
	"github.com/corey/ackeys/internal/domain/automaton"
	"github.com/corey/ackeys/internal/logger"
	"github.com/corey/ackeys/internal/metrics"
	"github.com/corey/ackeys/internal/ports"
)

// App is the top-level container wiring all components together.
type App struct {
	ProjectRoot string
	Paths       *Paths
	Config      *config.Config

	Store    ports.Store
	Engine   *automaton.Engine
	Registry *prometheus.Registry
	Log      *log.Logger
}

// Options configures New.
type Options struct {
	ProjectRoot string
	Config      *config.Config // nil means config.DefaultConfig()
	Logger      *log.Logger    // nil discards
}

// New opens the configured backend and binds an engine to it.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.Discard()
	}

	a := &App{
		ProjectRoot: opts.ProjectRoot,
		Paths:       NewPaths(opts.ProjectRoot),
		Config:      cfg,
		Registry:    prometheus.NewRegistry(),
		Log:         lg,
	}

	raw, err := a.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	store, err := metrics.Instrument(raw, a.Registry)
	if err != nil {
		raw.Close()
		return nil, err
	}
	a.Store = store

	a.Engine, err = automaton.New(ctx, store,
		automaton.WithName(cfg.Engine.Name),
		automaton.WithScanBatch(cfg.Engine.ScanBatch),
		automaton.WithLogger(lg),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init automaton: %w", err)
	}
	if err := a.Registry.Register(metrics.NewAutomatonCollector(a.Engine, lg)); err != nil {
		store.Close()
		return nil, err
	}
	lg.Debug("app ready", "backend", cfg.Store.Backend, "name", cfg.Engine.Name)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (ports.Store, error) {
	cfg := a.Config
	switch cfg.Store.Backend {
	case config.BackendBbolt:
		path := cfg.Store.Path
		if path == "" {
			if err := a.Paths.EnsureDirs(); err != nil {
				return nil, err
			}
			path = a.Paths.DB
		}
		return bbolt.NewStore(path, cfg.Store.Timeout.Duration)
	case config.BackendRedis:
		return redis.NewStore(ctx, redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout.Duration,
		})
	case config.BackendMemory:
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
