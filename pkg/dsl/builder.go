package dsl

import (
	"fmt"
	"time"

	"github.com/aretw0/splash"
	"github.com/aretw0/splash/pkg/domain"
)

// Builder manages the catalog construction.
type Builder struct {
	steps  []*StepBuilder
	timing domain.Timing
}

// New creates a new catalog builder using the default timing profile with fault
// injection disabled.
func New() *Builder {
	timing := domain.DefaultTiming()
	timing.FaultStep = domain.NoFaultStep
	return &Builder{timing: timing}
}

// Step appends a stage to the sequence. Its ID defaults to the previous ID plus one.
func (b *Builder) Step(label string) *StepBuilder {
	id := 1
	if n := len(b.steps); n > 0 {
		id = b.steps[n-1].desc.ID + 1
	}
	sb := &StepBuilder{
		desc:    domain.StepDescriptor{ID: id, Label: label},
		builder: b,
	}
	b.steps = append(b.steps, sb)
	return sb
}

// Pace overrides the delay before the first tick and the two gap increments.
func (b *Builder) Pace(start, short, long time.Duration) *Builder {
	b.timing.StartDelay = start
	b.timing.ShortIncrement = short
	b.timing.LongIncrement = long
	return b
}

// Timeout overrides the display timeout.
func (b *Builder) Timeout(d time.Duration) *Builder {
	b.timing.DisplayTimeout = d
	return b
}

// Build validates and returns the catalog and its timing profile.
func (b *Builder) Build() (domain.Catalog, domain.Timing, error) {
	descriptors := make([]domain.StepDescriptor, len(b.steps))
	for i, sb := range b.steps {
		descriptors[i] = sb.desc
	}

	catalog, err := domain.NewCatalog(descriptors...)
	if err != nil {
		return domain.Catalog{}, domain.Timing{}, fmt.Errorf("failed to build catalog: %w", err)
	}
	if err := b.timing.Validate(catalog.Len()); err != nil {
		return domain.Catalog{}, domain.Timing{}, fmt.Errorf("failed to build catalog: %w", err)
	}
	return catalog, b.timing, nil
}

// Options builds the catalog and returns the splash options installing it.
func (b *Builder) Options() ([]splash.Option, error) {
	catalog, timing, err := b.Build()
	if err != nil {
		return nil, err
	}
	return []splash.Option{splash.WithCatalog(catalog), splash.WithTiming(timing)}, nil
}

// StepBuilder provides a fluent API for configuring a stage.
type StepBuilder struct {
	desc    domain.StepDescriptor
	builder *Builder
}

// ID overrides the step ID. IDs must stay strictly increasing.
func (s *StepBuilder) ID(id int) *StepBuilder {
	s.desc.ID = id
	return s
}

// Icon sets the icon name rendered next to the label.
func (s *StepBuilder) Icon(name string) *StepBuilder {
	s.desc.Icon = name
	return s
}

// Faulty marks this step as the one that may hit a transient fault.
// Only one step can be faulty; the last call wins. An empty message keeps the default.
func (s *StepBuilder) Faulty(probability float64, message string) *StepBuilder {
	b := s.builder
	for i, sb := range b.steps {
		if sb == s {
			b.timing.FaultStep = i
		}
	}
	b.timing.FaultProbability = probability
	if message != "" {
		b.timing.FaultMessage = message
	}
	return s
}

// Step appends the next stage.
func (s *StepBuilder) Step(label string) *StepBuilder {
	return s.builder.Step(label)
}
