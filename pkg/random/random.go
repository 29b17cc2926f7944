// Package random provides ports.RandomSource implementations.
package random

import (
	"math/rand/v2"
	"sync"

	"github.com/aretw0/splash/pkg/ports"
)

type seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a goroutine-safe source seeded with seed.
func New(seed uint64) ports.RandomSource {
	return &seeded{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Fixed returns a source that replays values in order, cycling when exhausted.
// It is meant for tests that need to force a branch.
func Fixed(values ...float64) ports.RandomSource {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &fixed{values: values}
}

type fixed struct {
	mu     sync.Mutex
	values []float64
	next   int
}

func (f *fixed) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.values[f.next%len(f.values)]
	f.next++
	return v
}

// Func adapts a plain function to a RandomSource.
type Func func() float64

func (fn Func) Float64() float64 {
	return fn()
}
