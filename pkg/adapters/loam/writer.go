package loam

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/splash/pkg/domain"
)

// WriteCatalog saves one Markdown document per step, plus a timing document
// when timing is not nil, in the layout Loader reads back.
func WriteCatalog(ctx context.Context, repo core.Repository, catalog domain.Catalog, timing *domain.Timing) error {
	typedRepo := loam.NewTypedRepository[StepMetadata](repo)

	for _, d := range catalog.Descriptors() {
		err := typedRepo.Save(ctx, &loam.DocumentModel[StepMetadata]{
			ID:      fmt.Sprintf("%02d-%s.md", d.ID, slug(d.Label)),
			Content: d.Label + "\n",
			Data: StepMetadata{
				ID:    d.ID,
				Label: d.Label,
				Icon:  d.Icon,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to save step %d: %w", d.ID, err)
		}
	}

	if timing == nil {
		return nil
	}
	err := typedRepo.Save(ctx, &loam.DocumentModel[StepMetadata]{
		ID:      "timing.md",
		Content: "Timing profile of the startup screen.\n",
		Data: StepMetadata{
			Kind:   KindTiming,
			Timing: timingFields(*timing),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to save timing: %w", err)
	}
	return nil
}

// timingFields is the inverse of DecodeTiming: durations become "300ms" strings.
func timingFields(t domain.Timing) map[string]any {
	return map[string]any{
		"start_delay":       t.StartDelay.String(),
		"short_increment":   t.ShortIncrement.String(),
		"long_increment":    t.LongIncrement.String(),
		"long_probability":  t.LongProbability,
		"fault_step":        t.FaultStep,
		"fault_probability": t.FaultProbability,
		"fault_message":     t.Message(),
		"recovery_delay":    t.RecoveryDelay.String(),
		"display_timeout":   t.DisplayTimeout.String(),
	}
}

// slug lowercases label and joins its words with dashes.
func slug(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
