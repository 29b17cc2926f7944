package clock

import (
	"time"

	"github.com/aretw0/splash/pkg/ports"
)

type systemClock struct{}

// System returns a Clock backed by the time package.
func System() ports.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}
