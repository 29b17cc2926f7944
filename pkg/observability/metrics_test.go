package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/splash/internal/runtime"
	"github.com/aretw0/splash/pkg/clock"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/observability"
	"github.com/aretw0/splash/pkg/random"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runForcedFault(t *testing.T, hooks domain.LifecycleHooks) {
	t.Helper()
	tm := domain.DefaultTiming()
	tm.FaultProbability = 1

	clk := clock.NewManual(time.Now())
	c, err := runtime.NewController(domain.DefaultCatalog(), tm,
		runtime.WithID("metrics"),
		runtime.WithClock(clk),
		runtime.WithRandom(random.Fixed(0.5)),
		runtime.WithLifecycleHooks(hooks),
	)
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	clk.Advance(7 * time.Second)
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	runForcedFault(t, m.Hooks())

	assert.Equal(t, 6, testutil.CollectAndCount(m.StepsCompleted), "one series per step")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsCompleted.WithLabelValues("Preparing dashboard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepFaults.WithLabelValues("Connecting to database")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepRecoveries.WithLabelValues("Connecting to database")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VisibilityChanges.WithLabelValues("timeout")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ControllersDisposed))
}

func TestMetrics_ActiveSessions(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())

	m.SessionStarted("a")
	m.SessionStarted("b")
	m.SessionEnded("a")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	runForcedFault(t, observability.LoggingHooks(logger))

	out := buf.String()
	assert.Contains(t, out, "msg=step_fault")
	assert.Contains(t, out, "msg=step_recovered")
	assert.Contains(t, out, "reason=timeout")
}
