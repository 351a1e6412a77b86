//go:build !production

package room

import (
	"sync"
	"time"
)

// ManualClock 手动驱动的计时器，Tick 同步执行回调
type ManualClock struct {
	mu      sync.Mutex
	onTick  func()
	started bool
	stopped bool
	stops   int
}

// Tick 触发一次回调，停止后无效
func (c *ManualClock) Tick() {
	c.mu.Lock()
	if !c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	fn := c.onTick
	c.mu.Unlock()
	fn()
}

// TickN 连续触发 n 次
func (c *ManualClock) TickN(n int) {
	for range n {
		c.Tick()
	}
}

func (c *ManualClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
}

func (c *ManualClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.stops++
}

// Stopped 是否已停止
func (c *ManualClock) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// ManualClocks 记录所有创建出来的手动计时器
type ManualClocks struct {
	mu     sync.Mutex
	clocks []*ManualClock
}

// Factory 返回 ClockFactory
func (m *ManualClocks) Factory() ClockFactory {
	return func(_ time.Duration, onTick func()) Ticker {
		c := &ManualClock{onTick: onTick}
		m.mu.Lock()
		m.clocks = append(m.clocks, c)
		m.mu.Unlock()
		return c
	}
}

// Last 最近创建的计时器
func (m *ManualClocks) Last() *ManualClock {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.clocks) == 0 {
		return nil
	}
	return m.clocks[len(m.clocks)-1]
}
