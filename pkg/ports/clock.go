package ports

import "time"

// Timer is a pending callback created by a Clock.
type Timer interface {
	// Stop prevents the callback from firing.
	// It returns false if the callback already fired or was stopped.
	Stop() bool
}

// Clock abstracts time so the scheduler can be driven by tests.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own callback after d elapses.
	AfterFunc(d time.Duration, f func()) Timer
}
