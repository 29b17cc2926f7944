package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidCatalog is returned when step descriptors are empty, unordered or unlabeled.
var ErrInvalidCatalog = errors.New("invalid step catalog")

// ErrInvalidTiming is returned when a timing profile cannot drive a controller.
var ErrInvalidTiming = errors.New("invalid timing profile")

// ErrControllerDisposed is returned when starting a controller that was already torn down.
var ErrControllerDisposed = errors.New("controller disposed")

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("controller already started")

// TransientStepFault is the simulated, always-recoverable failure of a single step.
// It never escapes the controller except through hooks and the snapshot's ErrorMessage.
type TransientStepFault struct {
	StepID  int
	Label   string
	Message string
}

func (f *TransientStepFault) Error() string {
	return fmt.Sprintf("transient fault on step %d (%s): %s", f.StepID, f.Label, f.Message)
}
