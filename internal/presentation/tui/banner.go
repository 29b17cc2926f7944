package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ____            _                       ____   ___  ____  ", "#38bdf8"},
		{" | __ ) _   _ ___(_)_ __   ___  ___ ___  |  _ \\ / _ \\/ ___| ", "#60a5fa"},
		{" |  _ \\| | | / __| | '_ \\ / _ \\/ __/ __| | |_) | | | \\___ \\ ", "#818cf8"},
		{" | |_) | |_| \\__ \\ | | | |  __/\\__ \\__ \\ |  __/| |_| |___) |", "#a78bfa"},
		{" |____/ \\__,_|___/_|_| |_|\\___||___/___/ |_|    \\___/|____/ ", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
