package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/splash/pkg/domain"
)

// Step icons by state.
const (
	IconCompleted = "✓"
	IconErrored   = "!"
	IconActive    = "◌"
	IconPending   = "○"
)

const (
	minBarWidth = 10
	maxBarWidth = 48
)

// Render draws the splash screen for p at the given terminal width.
// A hidden splash renders as an empty string.
func Render(p domain.Progress, width int) string {
	if !p.Visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Business POS"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Starting up, please wait"))
	b.WriteString("\n\n")

	b.WriteString(bar(p.Ratio, width))
	fmt.Fprintf(&b, " %3.0f%%\n\n", p.Percent)

	for i, st := range p.Steps {
		b.WriteString(stepLine(st, i == p.Active))
		b.WriteString("\n")
	}

	if p.ErrorMessage != "" {
		b.WriteString("\n")
		b.WriteString(bannerStyle.Render(p.ErrorMessage))
		b.WriteString("\n")
	}
	return b.String()
}

// Icon returns the glyph for a step.
func Icon(st domain.Step, active bool) string {
	switch {
	case st.Completed:
		return IconCompleted
	case st.Errored:
		return IconErrored
	case active:
		return IconActive
	default:
		return IconPending
	}
}

func stepLine(st domain.Step, active bool) string {
	icon := Icon(st, active)
	switch icon {
	case IconCompleted:
		return doneStyle.Render(icon) + " " + st.Label
	case IconErrored:
		return faultStyle.Render(icon) + " " + faultStyle.Render(st.Label)
	case IconActive:
		return activeStyle.Render(icon) + " " + activeStyle.Render(st.Label)
	default:
		return pendingStyle.Render(icon + " " + st.Label)
	}
}

func bar(ratio float64, width int) string {
	w := width - 6
	if w > maxBarWidth {
		w = maxBarWidth
	}
	if w < minBarWidth {
		w = minBarWidth
	}
	filled := int(ratio*float64(w) + 0.5)
	if filled > w {
		filled = w
	}
	return barStyle.Render(strings.Repeat("█", filled)) + trackStyle.Render(strings.Repeat("░", w-filled))
}

// PlainLine is the single-line rendering used when output is not a terminal.
func PlainLine(p domain.Progress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%3.0f%%] %d/%d", p.Percent, p.Completed, p.Total)
	if p.Active >= 0 && p.Active < len(p.Steps) {
		fmt.Fprintf(&b, " %s", p.Steps[p.Active].Label)
	}
	if p.ErrorMessage != "" {
		fmt.Fprintf(&b, " (%s)", p.ErrorMessage)
	}
	if !p.Visible {
		b.WriteString(" hidden")
	}
	return b.String()
}
