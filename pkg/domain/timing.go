package domain

import (
	"fmt"
	"time"
)

// DefaultFaultMessage is shown while the designated step is in its transient fault.
const DefaultFaultMessage = "Database connection delayed. Retrying..."

// NoFaultStep disables the fault injector.
const NoFaultStep = -1

// Timing is the profile that drives the scheduler, the fault injector and the
// visibility timeout.
type Timing struct {
	// StartDelay is the delay before the first tick.
	StartDelay time.Duration `json:"start_delay" yaml:"start_delay" mapstructure:"start_delay"`
	// ShortIncrement and LongIncrement are added between consecutive ticks.
	ShortIncrement time.Duration `json:"short_increment" yaml:"short_increment" mapstructure:"short_increment"`
	LongIncrement  time.Duration `json:"long_increment" yaml:"long_increment" mapstructure:"long_increment"`
	// LongProbability is the chance of picking LongIncrement for a gap.
	LongProbability float64 `json:"long_probability" yaml:"long_probability" mapstructure:"long_probability"`

	// FaultStep is the zero-based index of the step that may fault (NoFaultStep disables it).
	FaultStep        int           `json:"fault_step" yaml:"fault_step" mapstructure:"fault_step"`
	FaultProbability float64       `json:"fault_probability" yaml:"fault_probability" mapstructure:"fault_probability"`
	FaultMessage     string        `json:"fault_message" yaml:"fault_message" mapstructure:"fault_message"`
	RecoveryDelay    time.Duration `json:"recovery_delay" yaml:"recovery_delay" mapstructure:"recovery_delay"`

	// DisplayTimeout hides the splash regardless of step progress.
	DisplayTimeout time.Duration `json:"display_timeout" yaml:"display_timeout" mapstructure:"display_timeout"`
}

// DefaultTiming returns the reference profile of the POS startup screen.
func DefaultTiming() Timing {
	return Timing{
		StartDelay:       300 * time.Millisecond,
		ShortIncrement:   500 * time.Millisecond,
		LongIncrement:    900 * time.Millisecond,
		LongProbability:  0.3,
		FaultStep:        2,
		FaultProbability: 0.2,
		FaultMessage:     DefaultFaultMessage,
		RecoveryDelay:    1000 * time.Millisecond,
		DisplayTimeout:   6000 * time.Millisecond,
	}
}

// Validate checks the profile against a catalog of the given size.
func (t Timing) Validate(steps int) error {
	switch {
	case t.StartDelay < 0:
		return fmt.Errorf("%w: start delay must not be negative", ErrInvalidTiming)
	case t.ShortIncrement <= 0 || t.LongIncrement <= 0:
		return fmt.Errorf("%w: increments must be positive", ErrInvalidTiming)
	case !isProbability(t.LongProbability) || !isProbability(t.FaultProbability):
		return fmt.Errorf("%w: probabilities must be within [0,1]", ErrInvalidTiming)
	case t.FaultStep < NoFaultStep || t.FaultStep >= steps:
		return fmt.Errorf("%w: fault step %d out of range for %d steps", ErrInvalidTiming, t.FaultStep, steps)
	case t.RecoveryDelay < 0:
		return fmt.Errorf("%w: recovery delay must not be negative", ErrInvalidTiming)
	case t.DisplayTimeout <= 0:
		return fmt.Errorf("%w: display timeout must be positive", ErrInvalidTiming)
	}
	return nil
}

// Message returns the fault banner text, falling back to the default.
func (t Timing) Message() string {
	if t.FaultMessage == "" {
		return DefaultFaultMessage
	}
	return t.FaultMessage
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}
