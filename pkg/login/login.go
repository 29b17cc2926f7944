// Package login simulates the sign-in form shown after the splash screen.
//
// Credentials are checked for presence only; nothing is verified.
package login

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/splash/pkg/clock"
	"github.com/aretw0/splash/pkg/ports"
)

// DefaultDelay is how long a simulated sign-in takes.
const DefaultDelay = 1000 * time.Millisecond

// ErrMissingCredentials is returned when the username or password is empty.
var ErrMissingCredentials = errors.New("please fill in all fields")

// Credentials is what the form submits.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Result is handed to the host after a successful sign-in.
type Result struct {
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

// Authenticator runs the simulated sign-in.
type Authenticator struct {
	clock ports.Clock
	delay time.Duration
}

// Option configures the Authenticator.
type Option func(*Authenticator)

// WithClock injects the time source.
func WithClock(clk ports.Clock) Option {
	return func(a *Authenticator) {
		a.clock = clk
	}
}

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(a *Authenticator) {
		a.delay = d
	}
}

// New creates an Authenticator.
func New(opts ...Option) *Authenticator {
	a := &Authenticator{
		clock: clock.System(),
		delay: DefaultDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login validates the credentials and completes after the delay.
// Canceling ctx aborts the wait.
func (a *Authenticator) Login(ctx context.Context, creds Credentials) (Result, error) {
	if creds.Username == "" || creds.Password == "" {
		return Result{}, ErrMissingCredentials
	}

	done := make(chan struct{})
	timer := a.clock.AfterFunc(a.delay, func() { close(done) })

	select {
	case <-done:
		return Result{Username: creds.Username, At: a.clock.Now()}, nil
	case <-ctx.Done():
		timer.Stop()
		return Result{}, ctx.Err()
	}
}
