package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTiming_IsValid(t *testing.T) {
	tm := DefaultTiming()
	assert.NoError(t, tm.Validate(6))
	assert.Equal(t, 2, tm.FaultStep)
	assert.Equal(t, 6*time.Second, tm.DisplayTimeout)
}

func TestTiming_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Timing)
	}{
		{"negative start", func(tm *Timing) { tm.StartDelay = -1 }},
		{"zero increment", func(tm *Timing) { tm.ShortIncrement = 0 }},
		{"probability above one", func(tm *Timing) { tm.FaultProbability = 1.5 }},
		{"fault step out of range", func(tm *Timing) { tm.FaultStep = 6 }},
		{"zero timeout", func(tm *Timing) { tm.DisplayTimeout = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tm := DefaultTiming()
			tc.mutate(&tm)
			assert.ErrorIs(t, tm.Validate(6), ErrInvalidTiming)
		})
	}

	disabled := DefaultTiming()
	disabled.FaultStep = NoFaultStep
	assert.NoError(t, disabled.Validate(6))
}

func TestTiming_Message(t *testing.T) {
	tm := DefaultTiming()
	tm.FaultMessage = ""
	assert.Equal(t, DefaultFaultMessage, tm.Message())
}
