package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/probe"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}

// ReportMarkdown summarizes a finished splash run (and the startup probes, if any).
func ReportMarkdown(snap domain.Snapshot, elapsed time.Duration, probes *probe.Report) string {
	var b strings.Builder
	p := domain.ProgressOf(snap)

	b.WriteString("# Startup report\n\n")
	fmt.Fprintf(&b, "Completed **%d of %d** steps (%.0f%%) in %s.\n\n", p.Completed, p.Total, p.Percent, elapsed.Round(time.Millisecond))
	if !snap.Visible {
		b.WriteString("The splash screen was hidden.\n\n")
	}

	b.WriteString("| # | Step | Status |\n|---|---|---|\n")
	for i, st := range snap.Steps {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, st.Label, st.Status())
	}

	if snap.ErrorMessage != "" {
		fmt.Fprintf(&b, "\n> %s\n", snap.ErrorMessage)
	}

	if probes != nil && len(probes.Results) > 0 {
		b.WriteString("\n## Backend checks\n\n")
		for _, r := range probes.Results {
			mark := "ok"
			if !r.OK {
				mark = "failed"
			}
			fmt.Fprintf(&b, "- **%s**: %s", r.Name, mark)
			if r.Hint != "" {
				fmt.Fprintf(&b, ". %s", r.Hint)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
