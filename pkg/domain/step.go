package domain

// StepStatus is the derived state of a single loading step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepErrored   StepStatus = "errored"   // Transient, always followed by completed
	StepCompleted StepStatus = "completed" // Terminal for every step
)

// String returns the string representation of the status.
func (s StepStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition can leave this status.
func (s StepStatus) IsTerminal() bool {
	return s == StepCompleted
}

// CanTransition reports whether moving from s to next is a legal step transition.
// Legal paths are pending -> completed and pending -> errored -> completed.
func (s StepStatus) CanTransition(next StepStatus) bool {
	switch s {
	case StepPending:
		return next == StepCompleted || next == StepErrored
	case StepErrored:
		return next == StepCompleted
	}
	return false
}

// Step is one loading stage as seen by the presentation layer.
type Step struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	Icon      string `json:"icon,omitempty"`
	Completed bool   `json:"completed"`
	Errored   bool   `json:"errored"`
}

// Status derives the step status from its flags.
func (s Step) Status() StepStatus {
	switch {
	case s.Completed:
		return StepCompleted
	case s.Errored:
		return StepErrored
	default:
		return StepPending
	}
}

// Resolved reports whether a tick already visited this step.
func (s Step) Resolved() bool {
	return s.Completed || s.Errored
}
