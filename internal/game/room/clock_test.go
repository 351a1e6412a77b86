package room

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_TicksUntilStopped(t *testing.T) {
	t.Parallel()

	var ticks atomic.Int32
	c := NewClock(5*time.Millisecond, func() { ticks.Add(1) })
	c.Start()
	c.Start()

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	c.Stop()
	assert.NotPanics(t, c.Stop)

	time.Sleep(20 * time.Millisecond)
	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, ticks.Load())
}

func TestClock_StopFromInsideTick(t *testing.T) {
	t.Parallel()

	var ticks atomic.Int32
	var c Ticker
	done := make(chan struct{})
	c = NewClock(2*time.Millisecond, func() {
		if ticks.Add(1) == 1 {
			c.Stop()
			close(done)
		}
	})
	c.Start()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clock never ticked")
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), ticks.Load())
}

func TestManualClock(t *testing.T) {
	t.Parallel()

	n := 0
	clocks := &ManualClocks{}
	c := clocks.Factory()(time.Second, func() { n++ })
	mc := clocks.Last()

	mc.Tick()
	assert.Zero(t, n, "ticks before Start are ignored")

	c.Start()
	mc.TickN(3)
	assert.Equal(t, 3, n)

	c.Stop()
	mc.Tick()
	assert.Equal(t, 3, n)
	assert.True(t, mc.Stopped())
}
