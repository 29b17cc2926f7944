package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/splash/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that emit one structured line per event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepCompleted: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_completed",
				"splash", e.ControllerID,
				"step", e.Index,
				"label", e.Step.Label,
			)
		},
		OnStepFault: func(ctx context.Context, e *domain.StepEvent) {
			logger.WarnContext(ctx, "step_fault",
				"splash", e.ControllerID,
				"step", e.Index,
				"err", e.Fault,
			)
		},
		OnStepRecovered: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_recovered",
				"splash", e.ControllerID,
				"step", e.Index,
			)
		},
		OnVisibilityChanged: func(ctx context.Context, e *domain.VisibilityEvent) {
			logger.InfoContext(ctx, "visibility_changed",
				"splash", e.ControllerID,
				"visible", e.Visible,
				"reason", e.Reason,
			)
		},
		OnDisposed: func(ctx context.Context, e *domain.EventBase) {
			logger.InfoContext(ctx, "disposed", "splash", e.ControllerID)
		},
	}
}
