package loam

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/splash/internal/testutils"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T, docs map[string]string) *Loader {
	t.Helper()
	_, repo := testutils.SetupTestRepo(t, loam.WithStrict(true))
	testutils.SaveDocs(t, repo, docs)
	return New(loam.NewTypedRepository[StepMetadata](repo))
}

func TestLoader_Catalog_OrdersByID(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"network.md": "---\nid: 2\nlabel: Checking network\nicon: wifi\n---\nPing the gateway",
		"boot.md":    "---\nid: 1\nlabel: Initializing system\nicon: settings\n---\n",
		"timing.md":  "---\nkind: timing\ntiming:\n  start_delay: 100ms\n---\n",
	})

	catalog, err := loader.Catalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())
	assert.Equal(t, domain.StepDescriptor{ID: 1, Label: "Initializing system", Icon: "settings"}, catalog.At(0))
	assert.Equal(t, "Checking network", catalog.At(1).Label)
}

func TestLoader_Catalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		docs map[string]string
	}{
		{
			name: "duplicate id",
			docs: map[string]string{
				"a.md": "---\nid: 1\nlabel: A\n---\n",
				"b.md": "---\nid: 1\nlabel: B\n---\n",
			},
		},
		{
			name: "missing id",
			docs: map[string]string{"a.md": "---\nlabel: A\n---\n"},
		},
		{
			name: "empty label",
			docs: map[string]string{"a.md": "---\nid: 1\n---\n"},
		},
		{
			name: "no steps",
			docs: map[string]string{"timing.md": "---\nkind: timing\n---\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newLoader(t, tt.docs).Catalog(context.Background())
			assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
		})
	}
}

func TestLoader_Timing(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"a.md":      "---\nid: 1\nlabel: A\n---\n",
		"timing.md": "---\nkind: timing\ntiming:\n  start_delay: 100ms\n  fault_probability: 0\n  fault_message: Still warming up\n---\n",
	})

	tm, err := loader.Timing(context.Background(), domain.DefaultTiming())
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, tm.StartDelay)
	assert.Zero(t, tm.FaultProbability)
	assert.Equal(t, "Still warming up", tm.FaultMessage)
	assert.Equal(t, 6*time.Second, tm.DisplayTimeout, "unset fields keep the base value")
}

func TestLoader_Timing_Absent(t *testing.T) {
	loader := newLoader(t, map[string]string{"a.md": "---\nid: 1\nlabel: A\n---\n"})

	tm, err := loader.Timing(context.Background(), domain.DefaultTiming())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTiming(), tm)
}

func TestDecodeTiming_RejectsUnknownKeys(t *testing.T) {
	tm := domain.DefaultTiming()
	err := DecodeTiming(map[string]any{"start_dealy": "1s"}, &tm)
	assert.ErrorIs(t, err, domain.ErrInvalidTiming)
}

func TestToInt(t *testing.T) {
	for _, in := range []any{3, int64(3), uint64(3), 3.0, json.Number("3"), "3"} {
		got, err := toInt(in)
		require.NoError(t, err, "%T", in)
		assert.Equal(t, 3, got)
	}

	for _, in := range []any{nil, 3.5, json.Number("3.5"), "three", true} {
		_, err := toInt(in)
		assert.Error(t, err, "%v", in)
	}
}
