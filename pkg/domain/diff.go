package domain

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// ID is always present to identify the target.
	ID string `json:"id"`

	Revision uint64 `json:"revision"`

	CurrentIndex *int    `json:"current_index,omitempty"`
	Visible      *bool   `json:"visible,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`

	// Steps contains only the steps whose flags changed, keyed by index.
	Steps map[int]Step `json:"steps,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing observable changed.
func Diff(oldSnap *Snapshot, newSnap Snapshot) *SnapshotDiff {
	diff := &SnapshotDiff{
		ID:       newSnap.ID,
		Revision: newSnap.Revision,
	}

	if oldSnap == nil || oldSnap.CurrentIndex != newSnap.CurrentIndex {
		v := newSnap.CurrentIndex
		diff.CurrentIndex = &v
	}
	if oldSnap == nil || oldSnap.Visible != newSnap.Visible {
		v := newSnap.Visible
		diff.Visible = &v
	}
	if oldSnap == nil || oldSnap.ErrorMessage != newSnap.ErrorMessage {
		v := newSnap.ErrorMessage
		diff.ErrorMessage = &v
	}

	for i, st := range newSnap.Steps {
		if oldSnap != nil && i < len(oldSnap.Steps) && oldSnap.Steps[i] == st {
			continue
		}
		if diff.Steps == nil {
			diff.Steps = make(map[int]Step)
		}
		diff.Steps[i] = st
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.CurrentIndex == nil &&
		d.Visible == nil &&
		d.ErrorMessage == nil &&
		len(d.Steps) == 0
}
