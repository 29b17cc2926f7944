package ports

import (
	"context"

	"github.com/aretw0/splash/pkg/domain"
)

// Controller is the surface a host needs from a running splash controller.
type Controller interface {
	// Start schedules the loading sequence. Canceling ctx disposes the controller.
	Start(ctx context.Context) error

	// Snapshot returns a copy of the current state.
	Snapshot() domain.Snapshot

	// Dismiss hides the splash before its timeout.
	Dismiss()

	// Dispose cancels every pending callback without changing the snapshot.
	Dispose()

	// Subscribe streams snapshots published after each mutation.
	// The channel is closed at teardown; call the returned func to unsubscribe early.
	Subscribe() (<-chan domain.Snapshot, func())

	// Done is closed once the controller is torn down.
	Done() <-chan struct{}
}

// ControllerFactory builds a controller for a session ID.
type ControllerFactory func(sessionID string) (Controller, error)
