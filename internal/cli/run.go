package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/splash"
	"github.com/aretw0/splash/internal/config"
	"github.com/aretw0/splash/internal/presentation/tui"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/observability"
	"github.com/aretw0/splash/pkg/probe"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Config config.Config
	Logger *slog.Logger
	Out    io.Writer

	// Plain forces one text line per update even on a terminal.
	Plain bool
	// Report prints a Markdown summary once the splash ends.
	Report bool
}

// Run shows one splash sequence until it hides, the user quits, or ctx ends.
// Backend probes run alongside it and only log their outcome.
func Run(ctx context.Context, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		var err error
		if logger, err = NewLogger(opts.Config); err != nil {
			return err
		}
	}

	catalog, timing, err := LoadCatalog(ctx, opts.Config)
	if err != nil {
		return err
	}

	s, err := splash.New(
		splash.WithID("terminal"),
		splash.WithCatalog(catalog),
		splash.WithTiming(timing),
		splash.WithLogger(logger),
		splash.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
	if err != nil {
		return err
	}

	interactive := !opts.Plain && isTerminal(opts.Out)
	if interactive {
		tui.PrintBanner(opts.Out)
	}

	probes := make(chan probe.Report, 1)
	go func() {
		probes <- probe.RunStartup(ctx, logger, Probes(opts.Config)...)
	}()

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	started := time.Now()
	if err := s.Start(ctx); err != nil {
		return err
	}

	if interactive {
		_, err = tui.Run(ctx, opts.Out, updates, s.Dispose)
	} else {
		err = printPlain(ctx, opts.Out, updates, s.Dispose)
	}
	s.Dispose()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	if errors.Is(err, context.Canceled) {
		printSystemMessage(opts.Out, "Interrupted at %.0f%%.", s.Progress().Percent)
		return nil
	}
	if err != nil {
		return err
	}

	if opts.Report {
		var report *probe.Report
		select {
		case r := <-probes:
			report = &r
		case <-ctx.Done():
		}
		return writeReport(opts.Out, s.Snapshot(), time.Since(started), report)
	}
	return nil
}

// printPlain writes a line whenever the rendered progress changes.
func printPlain(ctx context.Context, out io.Writer, updates <-chan domain.Snapshot, dispose func()) error {
	last := ""
	for {
		select {
		case <-ctx.Done():
			dispose()
			return ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			line := tui.PlainLine(domain.ProgressOf(snap))
			if line == last {
				continue
			}
			last = line
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
	}
}

func writeReport(out io.Writer, snap domain.Snapshot, elapsed time.Duration, probes *probe.Report) error {
	md := tui.ReportMarkdown(snap, elapsed, probes)
	rendered, err := tui.NewRenderer()(md)
	if err != nil {
		rendered = md
	}
	_, err = io.WriteString(out, rendered)
	return err
}
