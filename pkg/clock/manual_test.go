package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual_FiresInDeadlineOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManual(start)

	var fired []string
	c.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "b") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })
	c.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "c") })

	c.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"a"}, fired)
	assert.Equal(t, start.Add(200*time.Millisecond), c.Now())

	c.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, fired, "ties break by registration order")
	assert.Zero(t, c.Pending())
}

func TestManual_NestedTimersFireWithinAdvance(t *testing.T) {
	c := NewManual(time.Unix(0, 0))

	var at []time.Duration
	c.AfterFunc(time.Second, func() {
		at = append(at, time.Duration(c.Now().UnixNano()))
		c.AfterFunc(time.Second, func() {
			at = append(at, time.Duration(c.Now().UnixNano()))
		})
	})

	c.Advance(5 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, at)
	assert.Equal(t, time.Unix(5, 0), c.Now())
}

func TestManual_Stop(t *testing.T) {
	c := NewManual(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.Equal(t, 1, c.Pending())
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second Stop reports already stopped")

	c.Advance(2 * time.Second)
	assert.False(t, fired)

	fires := c.AfterFunc(0, func() {})
	c.Advance(0)
	assert.False(t, fires.Stop(), "Stop after firing reports false")
}
