package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/splash/internal/config"
	"github.com/aretw0/splash/pkg/probe"
)

// ErrProbesFailed is returned by CheckBackend when at least one probe failed.
var ErrProbesFailed = errors.New("backend checks failed")

// CheckBackend runs the backend probes once and prints one line per result.
func CheckBackend(ctx context.Context, cfg config.Config, logger *slog.Logger, out io.Writer) (probe.Report, error) {
	if !cfg.Backend.Configured() {
		return probe.Report{}, fmt.Errorf("%w: set SPLASH_BACKEND_URL and SPLASH_BACKEND_KEY", probe.ErrNotConfigured)
	}
	cfg.Backend.Probe = true

	report := probe.RunStartup(ctx, logger, Probes(cfg)...)
	for _, r := range report.Results {
		if r.OK {
			printSystemMessage(out, "%s: ok (%s)", r.Name, r.Duration)
			continue
		}
		printSystemMessage(out, "%s: failed. %s", r.Name, r.Hint)
	}
	if !report.OK() {
		return report, ErrProbesFailed
	}
	return report, nil
}
