package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/aretw0/loam"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Loader reads a step catalog (and optional timing profile) from a Loam repository.
// Each step is one Markdown document whose frontmatter carries id, label and icon.
type Loader struct {
	Repo *loam.TypedRepository[StepMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[StepMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict repository at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[StepMetadata](repo)), nil
}

// Catalog builds the catalog from every step document, ordered by id.
func (l *Loader) Catalog(ctx context.Context) (domain.Catalog, error) {
	docs, err := l.documents(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}

	seen := make(map[int]string)
	descriptors := make([]domain.StepDescriptor, 0, len(docs))
	for _, doc := range docs {
		if doc.Data.kind() != KindStep {
			continue
		}

		id, err := toInt(doc.Data.ID)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidCatalog, doc.ID, err)
		}
		if existing, ok := seen[id]; ok {
			return domain.Catalog{}, fmt.Errorf("%w: step id %d is defined in both '%s' and '%s'", domain.ErrInvalidCatalog, id, existing, doc.ID)
		}
		seen[id] = doc.ID

		descriptors = append(descriptors, domain.StepDescriptor{
			ID:    id,
			Label: doc.Data.Label,
			Icon:  doc.Data.Icon,
		})
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].ID < descriptors[j].ID
	})
	return domain.NewCatalog(descriptors...)
}

// Timing applies the overrides of the first timing document on top of base.
// Without a timing document base is returned unchanged.
func (l *Loader) Timing(ctx context.Context, base domain.Timing) (domain.Timing, error) {
	docs, err := l.documents(ctx)
	if err != nil {
		return base, err
	}

	for _, doc := range docs {
		if doc.Data.kind() != KindTiming {
			continue
		}
		out := base
		if err := DecodeTiming(doc.Data.Timing, &out); err != nil {
			return base, fmt.Errorf("%s: %w", doc.ID, err)
		}
		return out, nil
	}
	return base, nil
}

// documents lists the repository. The index only holds the metadata it was
// saved with, so entries listed without any are re-read from their file.
func (l *Loader) documents(ctx context.Context) ([]*loam.DocumentModel[StepMetadata], error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	for i, doc := range docs {
		if !doc.Data.empty() {
			continue
		}
		full, err := l.Repo.Get(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get %s failed: %w", doc.ID, err)
		}
		docs[i] = full
	}
	return docs, nil
}

// DecodeTiming decodes a loosely typed map (durations as "300ms" strings) into t,
// keeping the fields the map does not mention.
func DecodeTiming(raw map[string]any, t *domain.Timing) error {
	if len(raw) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           t,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidTiming, err)
	}
	return nil
}
