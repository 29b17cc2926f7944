package login_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/splash/pkg/clock"
	"github.com/aretw0/splash/pkg/login"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func TestLogin_MissingCredentials(t *testing.T) {
	auth := login.New(login.WithClock(clock.NewManual(start)))

	for _, creds := range []login.Credentials{
		{},
		{Username: "admin"},
		{Password: "secret"},
		{Username: "admin", Password: ""},
	} {
		_, err := auth.Login(context.Background(), creds)
		assert.ErrorIs(t, err, login.ErrMissingCredentials, "%+v", creds)
	}
}

func TestLogin_WaitsForDelay(t *testing.T) {
	clk := clock.NewManual(start)
	auth := login.New(login.WithClock(clk))

	type outcome struct {
		res login.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := auth.Login(context.Background(), login.Credentials{Username: "admin", Password: "secret"})
		done <- outcome{res, err}
	}()

	require.Eventually(t, func() bool { return clk.Pending() == 1 }, time.Second, time.Millisecond)
	clk.Advance(999 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("login finished before the delay")
	default:
	}

	clk.Advance(time.Millisecond)
	got := <-done
	require.NoError(t, got.err)
	assert.Equal(t, "admin", got.res.Username)
	assert.Equal(t, start.Add(login.DefaultDelay), got.res.At)
}

func TestLogin_BlankUsernameAccepted(t *testing.T) {
	clk := clock.NewManual(start)
	auth := login.New(login.WithClock(clk), login.WithDelay(time.Second))

	done := make(chan login.Result, 1)
	go func() {
		res, err := auth.Login(context.Background(), login.Credentials{Username: "   ", Password: "secret"})
		assert.NoError(t, err)
		done <- res
	}()

	require.Eventually(t, func() bool { return clk.Pending() == 1 }, time.Second, time.Millisecond)
	clk.Advance(time.Second)
	assert.Equal(t, "   ", (<-done).Username)
}

func TestLogin_Canceled(t *testing.T) {
	clk := clock.NewManual(start)
	auth := login.New(login.WithClock(clk), login.WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := auth.Login(ctx, login.Credentials{Username: "admin", Password: "secret"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, clk.Pending(), "the pending timer is released")
}
