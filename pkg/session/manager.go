package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/splash/internal/logging"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/splash/pkg/session"

var (
	// ErrSessionExists is returned when starting a session that is already live.
	ErrSessionExists = errors.New("session already running")

	// ErrManagerClosed is returned by Start after Close.
	ErrManagerClosed = errors.New("session manager closed")
)

// Observer is notified when live sessions come and go.
type Observer interface {
	SessionStarted(sessionID string)
	SessionEnded(sessionID string)
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// live is a running controller and its persistence loop.
type live struct {
	ctrl      ports.Controller
	persisted chan struct{} // closed when the persistence loop exits
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	factory ports.ControllerFactory
	store   ports.SnapshotStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	liveMu sync.RWMutex
	live   map[string]*live
	closed bool

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	locker   ports.DistributedLocker // Optional distributed locker
	lockTTL  time.Duration
	logger   *slog.Logger
	tracer   trace.Tracer
	observer Observer
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long a distributed lock may be held (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTracerProvider sets the OpenTelemetry provider used for session spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) {
		m.tracer = tp.Tracer(tracerName)
	}
}

// WithObserver registers a live-session observer (e.g. an active sessions gauge).
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// NewManager creates a Session Manager building controllers with factory and
// persisting their snapshots to store.
func NewManager(factory ports.ControllerFactory, store ports.SnapshotStore, opts ...Option) *Manager {
	base, cancel := context.WithCancel(context.Background())
	m := &Manager{
		factory: factory,
		store:   store,
		locks:   make(map[string]*lockEntry),
		live:    make(map[string]*live),
		base:    base,
		cancel:  cancel,
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(), // Default to no-op
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Start builds and starts a controller for sessionID and returns its first snapshot.
// The controller outlives ctx; it ends at its display timeout, on Dismiss,
// Dispose or Delete, or when the manager is closed.
func (m *Manager) Start(ctx context.Context, sessionID string) (snap domain.Snapshot, err error) {
	ctx, span := m.startSpan(ctx, "session.Start", sessionID)
	defer func() { endSpan(span, err) }()

	if sessionID, err = NormalizeID(sessionID); err != nil {
		return domain.Snapshot{}, err
	}

	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.liveMu.Lock()
		defer m.liveMu.Unlock()

		if m.closed {
			return ErrManagerClosed
		}
		if _, ok := m.live[sessionID]; ok {
			return ErrSessionExists
		}

		ctrl, err := m.factory(sessionID)
		if err != nil {
			return fmt.Errorf("failed to build controller: %w", err)
		}
		updates, unsubscribe := ctrl.Subscribe()
		if err := ctrl.Start(m.base); err != nil {
			unsubscribe()
			return fmt.Errorf("failed to start controller: %w", err)
		}

		l := &live{ctrl: ctrl, persisted: make(chan struct{})}
		m.live[sessionID] = l
		if m.observer != nil {
			m.observer.SessionStarted(sessionID)
		}
		m.wg.Add(1)
		go m.persist(sessionID, l, updates)

		snap = ctrl.Snapshot()
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, err
	}

	m.logger.Info("session started", "session_id", sessionID)
	return snap, nil
}

// persist writes every snapshot the controller publishes until it is torn down.
func (m *Manager) persist(sessionID string, l *live, updates <-chan domain.Snapshot) {
	defer m.wg.Done()
	defer close(l.persisted)

	for snap := range updates {
		if err := m.store.Save(context.Background(), sessionID, snap); err != nil {
			m.logger.Error("failed to persist snapshot",
				"session_id", sessionID,
				"revision", snap.Revision,
				"err", err,
			)
		}
	}

	m.liveMu.Lock()
	if m.live[sessionID] == l {
		delete(m.live, sessionID)
	}
	m.liveMu.Unlock()

	if m.observer != nil {
		m.observer.SessionEnded(sessionID)
	}
	m.logger.Debug("session ended", "session_id", sessionID)
}

func (m *Manager) lookup(sessionID string) (*live, bool) {
	m.liveMu.RLock()
	defer m.liveMu.RUnlock()
	l, ok := m.live[sessionID]
	return l, ok
}

// Snapshot returns the live snapshot, or the last persisted one for ended sessions.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	if l, ok := m.lookup(sessionID); ok {
		return l.ctrl.Snapshot(), nil
	}
	return m.store.Load(ctx, sessionID)
}

// Dismiss hides a live splash. Dismissing an ended session is a no-op.
func (m *Manager) Dismiss(ctx context.Context, sessionID string) (err error) {
	ctx, span := m.startSpan(ctx, "session.Dismiss", sessionID)
	defer func() { endSpan(span, err) }()

	if l, ok := m.lookup(sessionID); ok {
		l.ctrl.Dismiss()
		<-l.persisted
		return nil
	}
	_, err = m.store.Load(ctx, sessionID)
	return err
}

// Dispose cancels a live controller, keeping its last snapshot in the store.
// Disposing an ended session is a no-op.
func (m *Manager) Dispose(ctx context.Context, sessionID string) (err error) {
	ctx, span := m.startSpan(ctx, "session.Dispose", sessionID)
	defer func() { endSpan(span, err) }()

	if l, ok := m.lookup(sessionID); ok {
		l.ctrl.Dispose()
		<-l.persisted
		return nil
	}
	_, err = m.store.Load(ctx, sessionID)
	return err
}

// Delete disposes the session if live and removes its snapshot from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) (err error) {
	ctx, span := m.startSpan(ctx, "session.Delete", sessionID)
	defer func() { endSpan(span, err) }()

	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if l, ok := m.lookup(sessionID); ok {
			l.ctrl.Dispose()
			<-l.persisted
		}
		return m.store.Delete(ctx, sessionID)
	})
}

// Subscribe streams snapshots of a live session.
func (m *Manager) Subscribe(sessionID string) (<-chan domain.Snapshot, func(), error) {
	l, ok := m.lookup(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, unsubscribe := l.ctrl.Subscribe()
	return ch, unsubscribe, nil
}

// IsLive reports whether the session has a running controller.
func (m *Manager) IsLive(sessionID string) bool {
	_, ok := m.lookup(sessionID)
	return ok
}

// List returns live and stored session IDs, sorted and deduplicated.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	stored, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored sessions: %w", err)
	}

	seen := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		seen[id] = struct{}{}
	}
	m.liveMu.RLock()
	for id := range m.live {
		seen[id] = struct{}{}
	}
	m.liveMu.RUnlock()

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// Close disposes every live controller and waits for their final snapshots to be persisted.
func (m *Manager) Close() {
	m.liveMu.Lock()
	m.closed = true
	m.liveMu.Unlock()

	m.cancel()
	m.wg.Wait()
}

func (m *Manager) startSpan(ctx context.Context, name, sessionID string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("splash.session_id", sessionID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
