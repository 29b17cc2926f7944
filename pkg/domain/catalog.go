package domain

import "fmt"

// StepDescriptor is the immutable definition of a loading stage.
type StepDescriptor struct {
	ID    int    `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Catalog is the ordered registry of loading stages.
// It is populated once and never mutated; controllers derive fresh Steps from it.
type Catalog struct {
	descriptors []StepDescriptor
}

// DefaultCatalog returns the six stages shown by the POS startup screen.
func DefaultCatalog() Catalog {
	return Catalog{descriptors: []StepDescriptor{
		{ID: 1, Label: "Initializing system", Icon: "settings"},
		{ID: 2, Label: "Loading assets", Icon: "user"},
		{ID: 3, Label: "Connecting to database", Icon: "database"},
		{ID: 4, Label: "Verifying permissions", Icon: "lock"},
		{ID: 5, Label: "Checking network", Icon: "wifi"},
		{ID: 6, Label: "Preparing dashboard", Icon: "cart"},
	}}
}

// NewCatalog validates the descriptors and returns a Catalog holding a private copy.
// IDs must be strictly increasing and labels non-empty.
func NewCatalog(descriptors ...StepDescriptor) (Catalog, error) {
	if len(descriptors) == 0 {
		return Catalog{}, fmt.Errorf("%w: no steps", ErrInvalidCatalog)
	}
	for i, d := range descriptors {
		if d.Label == "" {
			return Catalog{}, fmt.Errorf("%w: step %d has an empty label", ErrInvalidCatalog, d.ID)
		}
		if i > 0 && d.ID <= descriptors[i-1].ID {
			return Catalog{}, fmt.Errorf("%w: step id %d must be greater than %d", ErrInvalidCatalog, d.ID, descriptors[i-1].ID)
		}
	}
	out := make([]StepDescriptor, len(descriptors))
	copy(out, descriptors)
	return Catalog{descriptors: out}, nil
}

// Len returns the number of steps.
func (c Catalog) Len() int {
	return len(c.descriptors)
}

// At returns the descriptor at index i.
func (c Catalog) At(i int) StepDescriptor {
	return c.descriptors[i]
}

// Descriptors returns a copy of the ordered descriptors.
func (c Catalog) Descriptors() []StepDescriptor {
	out := make([]StepDescriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Steps builds a fresh, all-pending step list.
func (c Catalog) Steps() []Step {
	steps := make([]Step, len(c.descriptors))
	for i, d := range c.descriptors {
		steps[i] = Step{ID: d.ID, Label: d.Label, Icon: d.Icon}
	}
	return steps
}
