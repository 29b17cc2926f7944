package splash_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/splash"
	loamAdapter "github.com/aretw0/splash/pkg/adapters/loam"
	"github.com/aretw0/splash/pkg/clock"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	s, err := splash.New()
	require.NoError(t, err)

	assert.Equal(t, 6, s.Catalog().Len())
	assert.Equal(t, domain.DefaultTiming(), s.Timing())

	snap := s.Snapshot()
	assert.True(t, snap.Visible)
	assert.Zero(t, snap.CurrentIndex)
	s.Dispose()
}

func TestNew_InvalidTiming(t *testing.T) {
	tm := domain.DefaultTiming()
	tm.FaultStep = 10
	_, err := splash.New(splash.WithTiming(tm))
	assert.ErrorIs(t, err, domain.ErrInvalidTiming)
}

func TestNew_CatalogDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"01-boot.md": "---\nid: 1\nlabel: Booting\n---\n",
		"02-sync.md": "---\nid: 2\nlabel: Syncing catalog\nicon: cart\n---\n",
		"timing.md":  "---\nkind: timing\ntiming:\n  display_timeout: 2s\n  fault_step: -1\n---\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	s, err := splash.New(splash.WithCatalogDir(dir))
	require.NoError(t, err)

	require.Equal(t, 2, s.Catalog().Len())
	assert.Equal(t, "Syncing catalog", s.Catalog().At(1).Label)
	assert.Equal(t, 2*time.Second, s.Timing().DisplayTimeout)
	assert.Equal(t, domain.NoFaultStep, s.Timing().FaultStep)
}

func TestNew_GeneratedCatalogDir(t *testing.T) {
	dir := t.TempDir()
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	require.NoError(t, err)

	tm := domain.DefaultTiming()
	tm.DisplayTimeout = 3 * time.Second
	tm.FaultMessage = "Still connecting"
	require.NoError(t, loamAdapter.WriteCatalog(context.Background(), repo, domain.DefaultCatalog(), &tm))

	s, err := splash.New(splash.WithCatalogDir(dir))
	require.NoError(t, err)
	defer s.Dispose()

	assert.Equal(t, domain.DefaultCatalog().Descriptors(), s.Catalog().Descriptors())
	assert.Equal(t, tm, s.Timing())
}

func TestFactory(t *testing.T) {
	clk := clock.NewManual(time.Now())
	factory := splash.Factory(splash.WithClock(clk), splash.WithRandom(random.Fixed(0.5)))

	a, err := factory("a")
	require.NoError(t, err)
	b, err := factory("b")
	require.NoError(t, err)

	assert.Equal(t, "a", a.Snapshot().ID)
	assert.Equal(t, "b", b.Snapshot().ID)

	require.NoError(t, a.Start(context.Background()))
	clk.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, a.Snapshot().CurrentIndex)
	assert.Zero(t, b.Snapshot().CurrentIndex, "sessions do not share state")
}

func TestSplash_Wait(t *testing.T) {
	clk := clock.NewManual(time.Now())
	s, err := splash.New(splash.WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)

	s.Dismiss()
	assert.NoError(t, s.Wait(context.Background()))
	assert.False(t, s.Snapshot().Visible)
}

func TestNew_NilLoggerRunsSequence(t *testing.T) {
	clk := clock.NewManual(time.Now())
	s, err := splash.New(splash.WithClock(clk), splash.WithLogger(nil))
	require.NoError(t, err)
	defer s.Dispose()

	require.NoError(t, s.Start(context.Background()))
	clk.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, s.Snapshot().CurrentIndex)

	s.Dismiss()
	assert.NoError(t, s.Wait(context.Background()))
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, splash.Version)
}
