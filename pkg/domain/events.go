package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepCompleted     EventType = "step_completed"
	EventStepFault         EventType = "step_fault"
	EventStepRecovered     EventType = "step_recovered"
	EventVisibilityChanged EventType = "visibility_changed"
	EventDisposed          EventType = "disposed"
)

// HideReason explains why the splash stopped being visible.
type HideReason string

const (
	HideTimeout HideReason = "timeout"
	HideDismiss HideReason = "dismiss"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	ControllerID string    `json:"controller_id"`
	Revision     uint64    `json:"revision"`
}

// StepEvent reports a step transition.
type StepEvent struct {
	EventBase
	Index int                 `json:"index"`
	Step  Step                `json:"step"`
	Fault *TransientStepFault `json:"-"`
}

// VisibilityEvent reports the one-way visible -> hidden flip.
type VisibilityEvent struct {
	EventBase
	Visible bool       `json:"visible"`
	Reason  HideReason `json:"reason"`
}

// LifecycleHooks defines callbacks for controller observability.
// Hooks run on the controller's callback path and must not call back into it.
type LifecycleHooks struct {
	OnStepCompleted     func(context.Context, *StepEvent)
	OnStepFault         func(context.Context, *StepEvent)
	OnStepRecovered     func(context.Context, *StepEvent)
	OnVisibilityChanged func(context.Context, *VisibilityEvent)
	OnDisposed          func(context.Context, *EventBase)
}

// MergeHooks combines several hook sets; callbacks run in argument order.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range sets {
		out.OnStepCompleted = chain(out.OnStepCompleted, h.OnStepCompleted)
		out.OnStepFault = chain(out.OnStepFault, h.OnStepFault)
		out.OnStepRecovered = chain(out.OnStepRecovered, h.OnStepRecovered)
		out.OnVisibilityChanged = chain(out.OnVisibilityChanged, h.OnVisibilityChanged)
		out.OnDisposed = chain(out.OnDisposed, h.OnDisposed)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
