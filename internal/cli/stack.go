package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/splash"
	"github.com/aretw0/splash/internal/config"
	"github.com/aretw0/splash/internal/logging"
	loamAdapter "github.com/aretw0/splash/pkg/adapters/loam"
	"github.com/aretw0/splash/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/splash/pkg/adapters/redis"
	"github.com/aretw0/splash/pkg/adapters/sqlite"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/observability"
	"github.com/aretw0/splash/pkg/persistence/middleware"
	"github.com/aretw0/splash/pkg/ports"
	"github.com/aretw0/splash/pkg/probe"
	"github.com/aretw0/splash/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Stack is the set of components shared by the long-running commands.
type Stack struct {
	Config   config.Config
	Logger   *slog.Logger
	Catalog  domain.Catalog
	Timing   domain.Timing
	Store    ports.SnapshotStore
	Locker   ports.DistributedLocker
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Manager  *session.Manager

	closers []func() error
}

// NewStack wires catalog, store, metrics and the session manager from cfg.
func NewStack(cfg config.Config, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	catalog, timing, err := LoadCatalog(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	s := &Stack{
		Config:   cfg,
		Logger:   logger,
		Catalog:  catalog,
		Timing:   timing,
		Registry: prometheus.NewRegistry(),
	}
	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.Metrics = observability.NewMetrics(s.Registry)

	if err := s.openStore(); err != nil {
		s.Close()
		return nil, err
	}
	s.Store = middleware.Chain(s.Store,
		middleware.Logging(logger),
		middleware.Metrics(middleware.NewStoreMetrics(s.Registry)),
	)

	factory := splash.Factory(
		splash.WithCatalog(catalog),
		splash.WithTiming(timing),
		splash.WithLogger(logger),
		splash.WithLifecycleHooks(domain.MergeHooks(
			s.Metrics.Hooks(),
			observability.LoggingHooks(logger),
		)),
	)

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithObserver(s.Metrics),
	}
	if s.Locker != nil {
		opts = append(opts, session.WithLocker(s.Locker))
	}
	s.Manager = session.NewManager(factory, s.Store, opts...)
	return s, nil
}

func (s *Stack) openStore() error {
	cfg := s.Config.Store
	switch cfg.Driver {
	case config.StoreMemory:
		s.Store = memory.NewStore()
	case config.StoreRedis:
		store := redisAdapter.New(cfg.RedisAddr,
			redisAdapter.WithPrefix(cfg.RedisPrefix),
			redisAdapter.WithTTL(cfg.TTL),
		)
		if err := store.Client().Ping(context.Background()).Err(); err != nil {
			store.Client().Close()
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		s.Store = store
		if cfg.Lock {
			s.Locker = redisAdapter.NewLocker(store.Client(), cfg.RedisPrefix)
		}
		s.closers = append(s.closers, store.Client().Close)
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		s.Store = store
		s.closers = append(s.closers, store.Close)
	default:
		return fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
	s.Logger.Debug("snapshot store ready", "driver", cfg.Driver)
	return nil
}

// Close stops every live session and releases the store.
func (s *Stack) Close() error {
	if s.Manager != nil {
		s.Manager.Close()
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// LoadCatalog returns the configured catalog and timing, reading the catalog
// directory when one is set.
func LoadCatalog(ctx context.Context, cfg config.Config) (domain.Catalog, domain.Timing, error) {
	if cfg.CatalogDir == "" {
		return domain.DefaultCatalog(), cfg.Timing, nil
	}

	loader, err := loamAdapter.Open(cfg.CatalogDir)
	if err != nil {
		return domain.Catalog{}, cfg.Timing, err
	}
	catalog, err := loader.Catalog(ctx)
	if err != nil {
		return domain.Catalog{}, cfg.Timing, fmt.Errorf("failed to load catalog from %s: %w", cfg.CatalogDir, err)
	}
	timing, err := loader.Timing(ctx, cfg.Timing)
	if err != nil {
		return domain.Catalog{}, cfg.Timing, fmt.Errorf("failed to load timing from %s: %w", cfg.CatalogDir, err)
	}
	if err := timing.Validate(catalog.Len()); err != nil {
		return domain.Catalog{}, cfg.Timing, err
	}
	return catalog, timing, nil
}

// Probes builds the backend probes, or nil when probing is disabled or unconfigured.
func Probes(cfg config.Config) []ports.Probe {
	if !cfg.Backend.Probe || !cfg.Backend.Configured() {
		return nil
	}
	return []ports.Probe{
		probe.NewService(cfg.Backend.URL, cfg.Backend.Key),
		probe.NewPolicy(cfg.Backend.URL, cfg.Backend.Key, cfg.Backend.PolicyTable),
	}
}
