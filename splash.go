package splash

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/splash/internal/logging"
	"github.com/aretw0/splash/internal/runtime"
	loamAdapter "github.com/aretw0/splash/pkg/adapters/loam"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/ports"
)

// Splash is the high-level entry point for the library.
// It wraps the internal controller and provides a simplified API for consumers.
type Splash struct {
	controller *runtime.Controller
	catalog    domain.Catalog
	timing     domain.Timing
	catalogDir string
	id         string
	clock      ports.Clock
	rnd        ports.RandomSource
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	publish    func(domain.Snapshot)
}

// Option defines a functional option for configuring the Splash.
type Option func(*Splash)

// WithCatalog replaces the default six-step catalog.
func WithCatalog(c domain.Catalog) Option {
	return func(s *Splash) {
		s.catalog = c
	}
}

// WithCatalogDir loads the catalog (and an optional timing document) from a
// directory of Markdown files. It takes precedence over WithCatalog.
func WithCatalogDir(dir string) Option {
	return func(s *Splash) {
		s.catalogDir = dir
	}
}

// WithTiming replaces the default timing profile.
func WithTiming(t domain.Timing) Option {
	return func(s *Splash) {
		s.timing = t
	}
}

// WithID sets the identifier carried by snapshots and events.
func WithID(id string) Option {
	return func(s *Splash) {
		s.id = id
	}
}

// WithClock injects the time source.
func WithClock(c ports.Clock) Option {
	return func(s *Splash) {
		s.clock = c
	}
}

// WithRandom injects the random source used for delays and fault injection.
func WithRandom(r ports.RandomSource) Option {
	return func(s *Splash) {
		s.rnd = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Splash) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Splash) {
		s.logger = logger
	}
}

// WithPublisher receives every committed snapshot in order, under the controller lock.
func WithPublisher(fn func(domain.Snapshot)) Option {
	return func(s *Splash) {
		s.publish = fn
	}
}

// New builds an idle splash controller. Call Start to begin the sequence.
func New(opts ...Option) (*Splash, error) {
	s := &Splash{
		catalog: domain.DefaultCatalog(),
		timing:  domain.DefaultTiming(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.catalogDir != "" {
		loader, err := loamAdapter.Open(s.catalogDir)
		if err != nil {
			return nil, err
		}
		ctx := context.Background()
		if s.catalog, err = loader.Catalog(ctx); err != nil {
			return nil, fmt.Errorf("failed to load catalog from %s: %w", s.catalogDir, err)
		}
		if s.timing, err = loader.Timing(ctx, s.timing); err != nil {
			return nil, fmt.Errorf("failed to load timing from %s: %w", s.catalogDir, err)
		}
	}

	// Ensure logger is initialized so the controller never logs to a nil handler
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	runtimeOpts := []runtime.Option{
		runtime.WithID(s.id),
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithLogger(s.logger),
	}
	if s.clock != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithClock(s.clock))
	}
	if s.rnd != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithRandom(s.rnd))
	}
	if s.publish != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithPublisher(s.publish))
	}

	ctrl, err := runtime.NewController(s.catalog, s.timing, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	s.controller = ctrl
	return s, nil
}

// Factory returns a ports.ControllerFactory building one Splash per session,
// each configured with opts and the session ID.
func Factory(opts ...Option) ports.ControllerFactory {
	return func(sessionID string) (ports.Controller, error) {
		s, err := New(append(opts[:len(opts):len(opts)], WithID(sessionID))...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// ID returns the identifier carried by snapshots.
func (s *Splash) ID() string {
	return s.controller.ID()
}

// Catalog returns the step catalog in use.
func (s *Splash) Catalog() domain.Catalog {
	return s.catalog
}

// Timing returns the timing profile in use.
func (s *Splash) Timing() domain.Timing {
	return s.timing
}

// Start schedules the loading sequence. Canceling ctx disposes the splash.
func (s *Splash) Start(ctx context.Context) error {
	return s.controller.Start(ctx)
}

// Snapshot returns a copy of the current state.
func (s *Splash) Snapshot() domain.Snapshot {
	return s.controller.Snapshot()
}

// Progress returns the presentation view of the current state.
func (s *Splash) Progress() domain.Progress {
	return s.controller.Progress()
}

// Dismiss hides the splash before its timeout.
func (s *Splash) Dismiss() {
	s.controller.Dismiss()
}

// Dispose cancels every pending callback, leaving the snapshot as it was.
func (s *Splash) Dispose() {
	s.controller.Dispose()
}

// Subscribe streams snapshots after each mutation; see ports.Controller.
func (s *Splash) Subscribe() (<-chan domain.Snapshot, func()) {
	return s.controller.Subscribe()
}

// Done is closed once the splash is torn down.
func (s *Splash) Done() <-chan struct{} {
	return s.controller.Done()
}

// Wait blocks until teardown or until ctx is done.
func (s *Splash) Wait(ctx context.Context) error {
	return s.controller.Wait(ctx)
}
