package domain

// Snapshot is the immutable, read-only view of a controller.
// Every mutation produces a new Snapshot from the previous one; values handed out
// to callers never share step storage with the controller.
type Snapshot struct {
	// ID identifies the controller (session ID when hosted by a session manager).
	ID string `json:"id"`

	// Steps holds the ordered steps with their current flags.
	Steps []Step `json:"steps"`

	// CurrentIndex is the number of steps visited so far, within [0, len(Steps)].
	CurrentIndex int `json:"current_index"`

	// Visible is true until the display timeout elapses or the splash is dismissed.
	Visible bool `json:"visible"`

	// ErrorMessage is non-empty only while a step is in its transient fault.
	ErrorMessage string `json:"error_message,omitempty"`

	// Revision increments by one on every mutation.
	Revision uint64 `json:"revision"`
}

// NewSnapshot creates the initial snapshot for a catalog.
func NewSnapshot(id string, catalog Catalog) Snapshot {
	return Snapshot{
		ID:      id,
		Steps:   catalog.Steps(),
		Visible: true,
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Steps != nil {
		out.Steps = make([]Step, len(s.Steps))
		copy(out.Steps, s.Steps)
	}
	return out
}

// Errored returns the index of the step in transient fault, or -1.
func (s Snapshot) Errored() int {
	for i, st := range s.Steps {
		if st.Errored {
			return i
		}
	}
	return -1
}

// AllCompleted reports whether every step reached its terminal state.
func (s Snapshot) AllCompleted() bool {
	for _, st := range s.Steps {
		if !st.Completed {
			return false
		}
	}
	return true
}
