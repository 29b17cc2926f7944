package domain

// Progress is the pure derivation consumed by presentation layers.
type Progress struct {
	Ratio        float64 `json:"ratio"`
	Percent      float64 `json:"percent"`
	Visible      bool    `json:"visible"`
	Active       int     `json:"active"`
	Completed    int     `json:"completed"`
	Total        int     `json:"total"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Steps        []Step  `json:"steps"`
}

// ProgressOf derives the progress view of a snapshot.
// Ratio is CurrentIndex/len(Steps) clamped to [0,1]; Active is the index of the
// step about to run, or -1 once every step was visited.
func ProgressOf(s Snapshot) Progress {
	total := len(s.Steps)
	p := Progress{
		Visible:      s.Visible,
		Active:       -1,
		Total:        total,
		ErrorMessage: s.ErrorMessage,
		Steps:        s.Clone().Steps,
	}
	if total > 0 {
		p.Ratio = clamp(float64(s.CurrentIndex) / float64(total))
	}
	p.Percent = p.Ratio * 100
	if s.CurrentIndex >= 0 && s.CurrentIndex < total {
		p.Active = s.CurrentIndex
	}
	for _, st := range s.Steps {
		if st.Completed {
			p.Completed++
		}
	}
	return p
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
