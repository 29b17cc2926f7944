package loam

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Document kinds understood by the catalog loader.
const (
	KindStep   = "step"
	KindTiming = "timing"
)

// StepMetadata is the frontmatter of a catalog document.
// Numeric fields are typed as any because strict repositories return json.Number.
type StepMetadata struct {
	// Kind is "step" (default) or "timing".
	Kind string `json:"kind,omitempty" mapstructure:"kind"`

	// Step fields
	ID    any    `json:"id,omitempty" mapstructure:"id"`
	Label string `json:"label,omitempty" mapstructure:"label"`
	Icon  string `json:"icon,omitempty" mapstructure:"icon"`

	// Timing holds the timing overrides of a "timing" document, e.g. start_delay: 300ms.
	Timing map[string]any `json:"timing,omitempty" mapstructure:"timing"`
}

func (m StepMetadata) empty() bool {
	return m.Kind == "" && m.ID == nil && m.Label == "" && len(m.Timing) == 0
}

func (m StepMetadata) kind() string {
	if m.Kind == "" {
		return KindStep
	}
	return m.Kind
}

// toInt converts the numeric shapes a frontmatter decoder may produce.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", n)
		}
		return int(i), nil
	case string:
		return strconv.Atoi(n)
	case nil:
		return 0, fmt.Errorf("missing id")
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
