package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/splash/internal/logging"
	"github.com/aretw0/splash/pkg/clock"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/ports"
	"github.com/aretw0/splash/pkg/random"
)

// Controller drives the staged-loading sequence of one splash screen.
//
// All mutations happen inside timer callbacks serialized by mu, so callbacks never
// run concurrently with each other or with reads. Each mutation replaces the
// current snapshot with a new value derived from the previous one.
type Controller struct {
	id      string
	catalog domain.Catalog
	timing  domain.Timing
	clock   ports.Clock
	rnd     ports.RandomSource
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	publish func(domain.Snapshot)

	mu          sync.Mutex
	state       domain.Snapshot
	tasks       *TaskSet
	faults      *faultInjector
	visibility  *visibility
	subscribers map[chan domain.Snapshot]struct{}
	hookCtx     context.Context
	stopAfter   func() bool
	started     bool
	torn        bool
	done        chan struct{}
}

// Option configures the Controller.
type Option func(*Controller)

// WithID sets the controller ID carried by snapshots and events.
func WithID(id string) Option {
	return func(c *Controller) {
		c.id = id
	}
}

// WithClock injects the time source.
func WithClock(clk ports.Clock) Option {
	return func(c *Controller) {
		c.clock = clk
	}
}

// WithRandom injects the random source used for delay ramping and fault injection.
func WithRandom(rnd ports.RandomSource) Option {
	return func(c *Controller) {
		c.rnd = rnd
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithPublisher registers a callback receiving every committed snapshot, in order.
// It runs under the controller lock and must not call back into the controller.
func WithPublisher(fn func(domain.Snapshot)) Option {
	return func(c *Controller) {
		c.publish = fn
	}
}

// NewController validates the timing profile against the catalog and builds an
// idle controller. Nothing is scheduled until Start.
func NewController(catalog domain.Catalog, timing domain.Timing, opts ...Option) (*Controller, error) {
	if catalog.Len() == 0 {
		return nil, fmt.Errorf("%w: no steps", domain.ErrInvalidCatalog)
	}
	if err := timing.Validate(catalog.Len()); err != nil {
		return nil, err
	}

	c := &Controller{
		catalog:     catalog,
		timing:      timing,
		subscribers: make(map[chan domain.Snapshot]struct{}),
		hookCtx:     context.Background(),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.clock == nil {
		c.clock = clock.System()
	}
	if c.rnd == nil {
		c.rnd = random.New(uint64(c.clock.Now().UnixNano()))
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.id != "" {
		c.logger = c.logger.With("splash", c.id)
	}

	c.state = domain.NewSnapshot(c.id, catalog)
	c.tasks = NewTaskSet(c.clock)
	c.faults = newFaultInjector(timing, c.rnd)
	c.visibility = newVisibility()
	return c, nil
}

// ID returns the controller ID.
func (c *Controller) ID() string {
	return c.id
}

// Start schedules the display timeout and one tick per step.
// Canceling ctx disposes the controller.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.torn {
		return domain.ErrControllerDisposed
	}
	if c.started {
		return domain.ErrAlreadyStarted
	}
	c.started = true
	c.hookCtx = context.WithoutCancel(ctx)

	c.tasks.Schedule(TaskKey{Kind: TaskHide, Step: -1}, c.timing.DisplayTimeout, c.onTimeout)

	delays := Plan(c.timing, c.catalog.Len(), c.rnd)
	for i, d := range delays {
		c.tasks.Schedule(TaskKey{Kind: TaskTick, Step: i}, d, func() { c.tick(i) })
	}
	c.stopAfter = context.AfterFunc(ctx, c.Dispose)

	c.logger.Debug("splash started",
		"steps", len(delays),
		"last_tick", delays[len(delays)-1],
		"timeout", c.timing.DisplayTimeout,
	)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Progress derives the presentation view of the current state.
func (c *Controller) Progress() domain.Progress {
	return domain.ProgressOf(c.Snapshot())
}

// Pending returns how many delayed tasks are still scheduled.
func (c *Controller) Pending() int {
	return c.tasks.Len()
}

// Done is closed once the controller is torn down.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until teardown or until ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe streams snapshots published after each mutation, starting with the
// current one. Slow readers only see the latest snapshot. The channel is closed
// at teardown.
func (c *Controller) Subscribe() (<-chan domain.Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan domain.Snapshot, 1)
	ch <- c.state.Clone()
	if c.torn {
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
	}
}

// Dismiss hides the splash before its timeout. It is a no-op after teardown.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.torn {
		return
	}
	c.hide(domain.HideDismiss)
}

// Dispose cancels every pending callback, including in-flight fault recoveries.
// The snapshot is left exactly as it was. Dispose is idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.torn {
		return
	}
	c.teardown("disposed")
	if c.hooks.OnDisposed != nil {
		base := c.event(domain.EventDisposed)
		c.hooks.OnDisposed(c.hookCtx, &base)
	}
}

func (c *Controller) tick(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.torn || c.state.Steps[index].Resolved() {
		return
	}

	next := c.state.Clone()
	advance(&next, index)

	if c.faults.claims(index) {
		next.Steps[index].Errored = true
		next.ErrorMessage = c.timing.Message()
		c.commit(next)

		fault := &domain.TransientStepFault{
			StepID:  next.Steps[index].ID,
			Label:   next.Steps[index].Label,
			Message: next.ErrorMessage,
		}
		c.logger.Info("transient step fault", "step", index, "err", fault)
		if c.hooks.OnStepFault != nil {
			c.hooks.OnStepFault(c.hookCtx, c.stepEvent(domain.EventStepFault, index, fault))
		}

		c.tasks.Schedule(TaskKey{Kind: TaskRecover, Step: index}, c.timing.RecoveryDelay, func() { c.recover(index) })
		return
	}

	next.Steps[index].Completed = true
	c.commit(next)
	c.logger.Debug("step completed", "step", index, "label", next.Steps[index].Label)
	if c.hooks.OnStepCompleted != nil {
		c.hooks.OnStepCompleted(c.hookCtx, c.stepEvent(domain.EventStepCompleted, index, nil))
	}
}

// recover resolves the transient fault; it never fails.
func (c *Controller) recover(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.torn || !c.state.Steps[index].Errored {
		return
	}

	next := c.state.Clone()
	next.Steps[index].Errored = false
	next.Steps[index].Completed = true
	next.ErrorMessage = ""
	c.commit(next)

	c.logger.Info("transient step fault recovered", "step", index)
	if c.hooks.OnStepRecovered != nil {
		c.hooks.OnStepRecovered(c.hookCtx, c.stepEvent(domain.EventStepRecovered, index, nil))
	}
	if c.hooks.OnStepCompleted != nil {
		c.hooks.OnStepCompleted(c.hookCtx, c.stepEvent(domain.EventStepCompleted, index, nil))
	}
}

func (c *Controller) onTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.torn {
		return
	}
	c.hide(domain.HideTimeout)
}

// hide flips visibility and tears the controller down. Caller holds mu.
func (c *Controller) hide(reason domain.HideReason) {
	if !c.visibility.hide(c.hookCtx, reason) {
		return
	}

	next := c.state.Clone()
	next.Visible = false
	c.commit(next)

	c.logger.Info("splash hidden", "reason", reason, "current_index", next.CurrentIndex)
	if c.hooks.OnVisibilityChanged != nil {
		c.hooks.OnVisibilityChanged(c.hookCtx, &domain.VisibilityEvent{
			EventBase: c.event(domain.EventVisibilityChanged),
			Visible:   false,
			Reason:    reason,
		})
	}
	c.teardown(string(reason))
}

// teardown cancels all tasks and releases subscribers. Caller holds mu.
func (c *Controller) teardown(cause string) {
	c.torn = true
	cancelled := c.tasks.CancelAll()
	if c.stopAfter != nil {
		c.stopAfter()
	}
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
	close(c.done)
	c.logger.Debug("splash torn down", "cause", cause, "cancelled_tasks", cancelled)
}

// commit installs next as the current state and publishes it. Caller holds mu.
func (c *Controller) commit(next domain.Snapshot) {
	next.Revision = c.state.Revision + 1
	c.state = next

	if c.publish != nil {
		c.publish(next.Clone())
	}
	for ch := range c.subscribers {
		offerLatest(ch, next.Clone())
	}
}

func (c *Controller) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp:    c.clock.Now(),
		Type:         t,
		ControllerID: c.id,
		Revision:     c.state.Revision,
	}
}

func (c *Controller) stepEvent(t domain.EventType, index int, fault *domain.TransientStepFault) *domain.StepEvent {
	return &domain.StepEvent{
		EventBase: c.event(t),
		Index:     index,
		Step:      c.state.Steps[index],
		Fault:     fault,
	}
}

// advance moves CurrentIndex past index, never backwards.
func advance(s *domain.Snapshot, index int) {
	if index+1 > s.CurrentIndex {
		s.CurrentIndex = index + 1
	}
	if s.CurrentIndex > len(s.Steps) {
		s.CurrentIndex = len(s.Steps)
	}
}

// offerLatest replaces any unread value so the reader always gets the newest snapshot.
func offerLatest(ch chan domain.Snapshot, snap domain.Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
