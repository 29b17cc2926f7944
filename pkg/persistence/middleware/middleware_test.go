package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/splash/pkg/adapters/memory"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/persistence/middleware"
	"github.com/aretw0/splash/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_SatisfiesContract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, middleware.Chain(memory.NewStore(),
		middleware.Logging(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		middleware.Metrics(middleware.NewStoreMetrics(prometheus.NewRegistry())),
	))
}

func TestChain_Order(t *testing.T) {
	var calls []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.SnapshotStore) ports.SnapshotStore {
			calls = append(calls, name)
			return next
		}
	}
	middleware.Chain(NewMockStore(), tag("outer"), tag("inner"))
	// Wrapping happens inside out.
	assert.Equal(t, []string{"inner", "outer"}, calls)
}

func TestMetrics(t *testing.T) {
	m := middleware.NewStoreMetrics(prometheus.NewRegistry())
	base := NewMockStore()
	store := middleware.Metrics(m)(base)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", domain.Snapshot{ID: "a"}))
	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	base.fail = true
	assert.Error(t, store.Save(ctx, "b", domain.Snapshot{ID: "b"}))

	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Errors.WithLabelValues("load")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("save")))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	base := NewMockStore()
	store := middleware.Logging(logger)(base)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", domain.Snapshot{ID: "a", Revision: 3}))
	_, _ = store.Load(ctx, "missing")
	base.fail = true
	_ = store.Save(ctx, "a", domain.Snapshot{ID: "a", Revision: 4})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "store operation")
	assert.Contains(t, lines[0], "revision=3")
	assert.Contains(t, lines[1], "store miss")
	assert.Contains(t, lines[2], "level=WARN")
	assert.Contains(t, lines[2], "err=\"disk on fire\"")
}
