package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/splash/pkg/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type snapshotMsg domain.Snapshot

type closedMsg struct{}

// Model is the live bubbletea view of one splash, fed by its snapshot stream.
type Model struct {
	spinner   spinner.Model
	updates   <-chan domain.Snapshot
	dispose   func()
	progress  domain.Progress
	width     int
	done      bool
	cancelled bool
}

// NewModel creates a model reading updates until the channel closes.
// dispose is called when the user interrupts the splash.
func NewModel(updates <-chan domain.Snapshot, dispose func()) *Model {
	return &Model{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(blue)),
		),
		updates: updates,
		dispose: dispose,
		width:   60,
	}
}

// Progress returns the last rendered progress.
func (m *Model) Progress() domain.Progress {
	return m.progress
}

// Cancelled reports whether the user interrupted the splash.
func (m *Model) Cancelled() bool {
	return m.cancelled
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next)
}

// next blocks for the following snapshot.
func (m *Model) next() tea.Msg {
	snap, ok := <-m.updates
	if !ok {
		return closedMsg{}
	}
	return snapshotMsg(snap)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			if m.dispose != nil {
				m.dispose()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case snapshotMsg:
		m.progress = domain.ProgressOf(domain.Snapshot(msg))
		return m, m.next
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	if m.done || m.cancelled {
		return ""
	}
	view := Render(m.progress, m.width)
	if view == "" {
		return ""
	}
	return m.spinner.View() + " " + view
}

// Run shows the live splash on out until the snapshot stream closes or the
// user interrupts it. It returns the last progress seen.
func Run(ctx context.Context, out io.Writer, updates <-chan domain.Snapshot, dispose func()) (domain.Progress, error) {
	m := NewModel(updates, dispose)
	p := tea.NewProgram(m,
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return m.progress, fmt.Errorf("splash view: %w", err)
	}
	if m.cancelled {
		return m.progress, context.Canceled
	}
	return m.progress, nil
}
