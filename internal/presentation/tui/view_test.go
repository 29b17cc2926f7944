package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/probe"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func faultedSnapshot() domain.Snapshot {
	snap := domain.NewSnapshot("t", domain.DefaultCatalog())
	snap.Steps[0].Completed = true
	snap.Steps[1].Completed = true
	snap.Steps[2].Errored = true
	snap.CurrentIndex = 3
	snap.ErrorMessage = domain.DefaultFaultMessage
	return snap
}

func TestRender(t *testing.T) {
	out := Render(domain.ProgressOf(faultedSnapshot()), 60)

	assert.Contains(t, out, "Business POS")
	assert.Contains(t, out, " 50%")
	assert.Contains(t, out, IconCompleted+" Initializing system")
	assert.Contains(t, out, IconErrored+" Connecting to database")
	assert.Contains(t, out, IconActive+" Verifying permissions")
	assert.Contains(t, out, IconPending+" Checking network")
	assert.Contains(t, out, domain.DefaultFaultMessage)
}

func TestRender_Hidden(t *testing.T) {
	snap := faultedSnapshot()
	snap.Visible = false
	assert.Empty(t, Render(domain.ProgressOf(snap), 60))
}

func TestBar_ClampsWidth(t *testing.T) {
	assert.Equal(t, minBarWidth, len([]rune(bar(0.5, 0))))
	assert.Equal(t, maxBarWidth, len([]rune(bar(1, 500))))
	assert.Equal(t, strings.Repeat("█", minBarWidth), bar(1, 0))
}

func TestPlainLine(t *testing.T) {
	assert.Equal(t,
		"[ 50%] 2/6 Verifying permissions (Database connection delayed. Retrying...)",
		PlainLine(domain.ProgressOf(faultedSnapshot())),
	)

	done := domain.NewSnapshot("t", domain.DefaultCatalog())
	for i := range done.Steps {
		done.Steps[i].Completed = true
	}
	done.CurrentIndex = 6
	done.Visible = false
	assert.Equal(t, "[100%] 6/6 hidden", PlainLine(domain.ProgressOf(done)))
}

func TestModel_Update(t *testing.T) {
	updates := make(chan domain.Snapshot, 1)
	disposed := false
	m := NewModel(updates, func() { disposed = true })

	_, cmd := m.Update(snapshotMsg(faultedSnapshot()))
	require.NotNil(t, cmd)
	assert.Equal(t, 3, m.Progress().Active)
	assert.Contains(t, m.View(), "Connecting to database")

	close(updates)
	msg := cmd()
	assert.Equal(t, closedMsg{}, msg)

	_, cmd = m.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
	assert.False(t, disposed)
}

func TestModel_InterruptDisposes(t *testing.T) {
	disposed := false
	m := NewModel(make(chan domain.Snapshot), func() { disposed = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, disposed)
	assert.True(t, m.Cancelled())
}

func TestReportMarkdown(t *testing.T) {
	report := &probe.Report{Results: []probe.Result{
		{Name: "service", OK: true},
		{Name: "policies", Hint: "Run the policy script."},
	}}
	md := ReportMarkdown(faultedSnapshot(), 1500*time.Millisecond, report)

	assert.Contains(t, md, "Completed **2 of 6** steps (50%) in 1.5s.")
	assert.Contains(t, md, "| 3 | Connecting to database | errored |")
	assert.Contains(t, md, "> "+domain.DefaultFaultMessage)
	assert.Contains(t, md, "- **policies**: failed. Run the policy script.")

	rendered, err := NewRenderer()(md)
	require.NoError(t, err)
	assert.Contains(t, rendered, "Startup report")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "____")
}
