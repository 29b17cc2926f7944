package loam

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/splash/internal/testutils"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCatalog_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, repo := testutils.SetupTestRepo(t, loam.WithStrict(true))

	want := domain.DefaultTiming()
	want.FaultMessage = "Retrying: \"db\" busy"
	require.NoError(t, WriteCatalog(ctx, repo, domain.DefaultCatalog(), &want))

	loader := New(loam.NewTypedRepository[StepMetadata](repo))

	catalog, err := loader.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCatalog().Descriptors(), catalog.Descriptors())

	got, err := loader.Timing(ctx, domain.Timing{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteCatalog_WithoutTiming(t *testing.T) {
	ctx := context.Background()
	_, repo := testutils.SetupTestRepo(t, loam.WithStrict(true))

	catalog, err := domain.NewCatalog(domain.StepDescriptor{ID: 7, Label: "Warm caches"})
	require.NoError(t, err)
	require.NoError(t, WriteCatalog(ctx, repo, catalog, nil))

	loader := New(loam.NewTypedRepository[StepMetadata](repo))
	got, err := loader.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.Descriptors(), got.Descriptors())

	base := domain.DefaultTiming()
	tm, err := loader.Timing(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, base, tm)
}

func TestWriteCatalog_ReopenedDirectory(t *testing.T) {
	ctx := context.Background()
	dir, repo := testutils.SetupTestRepo(t, loam.WithVersioning(false))

	want := domain.DefaultTiming()
	want.StartDelay = 150 * time.Millisecond
	want.FaultStep = domain.NoFaultStep
	require.NoError(t, WriteCatalog(ctx, repo, domain.DefaultCatalog(), &want))

	loader, err := Open(dir)
	require.NoError(t, err)

	catalog, err := loader.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCatalog().Descriptors(), catalog.Descriptors())

	got, err := loader.Timing(ctx, domain.DefaultTiming())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "connecting-to-database", slug("Connecting to database"))
	assert.Equal(t, "a-b", slug("  A -- b!! "))
	assert.Equal(t, "", slug("***"))
}
