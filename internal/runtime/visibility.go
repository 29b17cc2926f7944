package runtime

import (
	"context"

	"github.com/aretw0/splash/pkg/domain"
	"github.com/qmuntal/stateless"
)

const (
	stateVisible = "visible"
	stateHidden  = "hidden"
)

// visibility is the one-way visible -> hidden machine, independent of step progress.
type visibility struct {
	sm *stateless.StateMachine
}

func newVisibility() *visibility {
	sm := stateless.NewStateMachine(stateVisible)
	sm.Configure(stateVisible).
		Permit(domain.HideTimeout, stateHidden).
		Permit(domain.HideDismiss, stateHidden)
	sm.Configure(stateHidden).
		Ignore(domain.HideTimeout).
		Ignore(domain.HideDismiss)
	return &visibility{sm: sm}
}

// hide fires the trigger and reports whether this call flipped the machine.
func (v *visibility) hide(ctx context.Context, reason domain.HideReason) bool {
	if !v.visible() {
		return false
	}
	if err := v.sm.FireCtx(ctx, reason); err != nil {
		return false
	}
	return !v.visible()
}

func (v *visibility) visible() bool {
	return v.sm.MustState() == stateVisible
}
