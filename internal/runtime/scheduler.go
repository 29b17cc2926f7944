package runtime

import (
	"time"

	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/ports"
)

// Plan computes the tick delay of each of n steps.
// The first tick fires at StartDelay; each following gap draws one sample and
// adds LongIncrement when it falls under LongProbability, ShortIncrement otherwise.
// Increments are positive, so the plan is strictly increasing.
func Plan(t domain.Timing, n int, rnd ports.RandomSource) []time.Duration {
	delays := make([]time.Duration, n)
	delay := t.StartDelay
	for i := range delays {
		delays[i] = delay
		if rnd.Float64() < t.LongProbability {
			delay += t.LongIncrement
		} else {
			delay += t.ShortIncrement
		}
	}
	return delays
}

// faultInjector decides whether a tick on the designated step becomes a transient fault.
type faultInjector struct {
	step        int
	probability float64
	rnd         ports.RandomSource
}

func newFaultInjector(t domain.Timing, rnd ports.RandomSource) *faultInjector {
	return &faultInjector{
		step:        t.FaultStep,
		probability: t.FaultProbability,
		rnd:         rnd,
	}
}

// claims draws exactly one sample, and only for the designated step.
func (f *faultInjector) claims(index int) bool {
	if f.step == domain.NoFaultStep || index != f.step {
		return false
	}
	return f.rnd.Float64() < f.probability
}
