package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := LifecycleHooks{
		OnStepCompleted: func(ctx context.Context, e *StepEvent) { calls = append(calls, "a") },
	}
	b := LifecycleHooks{
		OnStepCompleted: func(ctx context.Context, e *StepEvent) { calls = append(calls, "b") },
		OnDisposed:      func(ctx context.Context, e *EventBase) { calls = append(calls, "disposed") },
	}

	merged := MergeHooks(a, LifecycleHooks{}, b)
	merged.OnStepCompleted(context.Background(), &StepEvent{})
	merged.OnDisposed(context.Background(), &EventBase{})

	assert.Equal(t, []string{"a", "b", "disposed"}, calls)
	assert.Nil(t, merged.OnStepFault)
}
