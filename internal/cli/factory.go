// Package cli wires the lattice binary: config to stores, lockers and a Builder.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/adapters/file"
	"github.com/aretw0/lattice/internal/config"
	loamAdapter "github.com/aretw0/lattice/pkg/adapters/loam"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/aretw0/lattice/pkg/persistence/middleware"
	"github.com/aretw0/lattice/pkg/ports"
)

// App is a configured Builder plus the resources it owns.
type App struct {
	Builder   *lattice.Builder
	Metrics   *observability.Metrics
	Templates *loamAdapter.Source
	closers   []func() error
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewApp builds the store stack and the Builder described by cfg.
func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := &App{}

	store, locker, err := app.newStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	hooks := observability.LoggingHooks(logger)
	if cfg.Metrics {
		app.Metrics = observability.NewMetrics()
		hooks = hooks.Merge(app.Metrics.Hooks())
	}

	opts := []lattice.Option{
		lattice.WithStore(store),
		lattice.WithLogger(logger),
		lattice.WithLifecycleHooks(hooks),
		lattice.WithDefaultTheme(cfg.Theme),
	}
	if locker != nil {
		opts = append(opts, lattice.WithLocker(locker))
	}
	if cfg.CheckoutURL != "" {
		opts = append(opts, lattice.WithCheckoutURL(cfg.CheckoutURL))
	}
	if cfg.Cooldown > 0 {
		opts = append(opts, lattice.WithCheckoutCooldown(cfg.Cooldown))
	}
	if cfg.Templates != "" {
		src, err := loamAdapter.Open(cfg.Templates)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("failed to open templates: %w", err)
		}
		app.Templates = src
		opts = append(opts, lattice.WithTemplateSource(src))
	}

	b, err := lattice.New(opts...)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("error initializing builder: %w", err)
	}
	app.Builder = b
	return app, nil
}

func (a *App) newStore(cfg config.Config, logger *slog.Logger) (ports.PageStore, ports.DistributedLocker, error) {
	var (
		store  ports.PageStore
		locker ports.DistributedLocker
	)
	switch cfg.Store.Backend {
	case config.BackendFile:
		store = file.New(cfg.Store.Path)
	case config.BackendRedis:
		r := cfg.Store.Redis
		rs := redisAdapter.New(r.Addr, r.Password, r.DB,
			redisAdapter.WithPrefix(r.Prefix),
			redisAdapter.WithTTL(r.TTL),
		)
		a.closers = append(a.closers, rs.Close)
		store = rs
		if r.Lock {
			locker = redisAdapter.NewLocker(rs.Client(), r.Prefix)
		}
	default:
		store = memory.NewStore()
	}

	var mws []middleware.Middleware
	if cfg.Store.RetryAttempts > 1 {
		mws = append(mws, middleware.NewRetryMiddleware(middleware.RetryConfig{
			Attempts:   cfg.Store.RetryAttempts,
			Backoff:    50 * time.Millisecond,
			MaxBackoff: time.Second,
			Logger:     logger,
		}))
	}
	if cfg.Store.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.Store.EncryptionKey)
		if err != nil {
			_ = a.Close()
			return nil, nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return middleware.Chain(store, mws...), locker, nil
}
