package probe

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/splash/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// Hinter is implemented by probes that can tell the operator how to fix a failure.
type Hinter interface {
	Hint() string
}

// Result is the outcome of one probe.
type Result struct {
	Name     string        `json:"name"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Hint     string        `json:"hint,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report collects the startup probe results in probe order.
type Report struct {
	At      time.Time `json:"at"`
	Results []Result  `json:"results"`
}

// OK reports whether every probe passed.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return true
}

// RunStartup runs every probe concurrently and logs each outcome.
// Failures never abort the others and are not returned as errors.
func RunStartup(ctx context.Context, logger *slog.Logger, probes ...ports.Probe) Report {
	report := Report{
		At:      time.Now(),
		Results: make([]Result, len(probes)),
	}

	var g errgroup.Group
	var mu sync.Mutex
	for i, p := range probes {
		g.Go(func() error {
			res := run(ctx, p)

			mu.Lock()
			report.Results[i] = res
			mu.Unlock()

			if res.OK {
				logger.Info("startup probe passed", "probe", res.Name, "duration", res.Duration)
				return nil
			}
			attrs := []any{"probe", res.Name, "hint", res.Hint}
			if res.Error != "" {
				attrs = append(attrs, "err", res.Error)
			}
			logger.Warn("startup probe failed", attrs...)
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func run(ctx context.Context, p ports.Probe) Result {
	start := time.Now()
	ok, err := p.Check(ctx)

	res := Result{
		Name:     p.Name(),
		OK:       ok && err == nil,
		Duration: time.Since(start),
	}
	if err != nil {
		res.Error = err.Error()
	}
	if !res.OK {
		if h, isHinter := p.(Hinter); isHinter {
			res.Hint = h.Hint()
		}
	}
	return res
}
