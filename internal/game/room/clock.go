package room

import (
	"sync"
	"time"
)

// Ticker 房间计时器
type Ticker interface {
	Start()
	Stop()
}

// ClockFactory 创建计时器，测试中可替换为手动计时器
type ClockFactory func(interval time.Duration, onTick func()) Ticker

// Clock 基于 time.Ticker 的计时器，Stop 可重复调用，也可在 onTick 内部调用
type Clock struct {
	interval time.Duration
	onTick   func()

	stop      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewClock 创建计时器
func NewClock(interval time.Duration, onTick func()) Ticker {
	return &Clock{
		interval: interval,
		onTick:   onTick,
		stop:     make(chan struct{}),
	}
}

// Start 启动计时协程，只生效一次
func (c *Clock) Start() {
	c.startOnce.Do(func() {
		go c.run()
	})
}

// Stop 停止计时，不等待协程退出
func (c *Clock) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Clock) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			select {
			case <-c.stop:
				return
			default:
			}
			c.onTick()
		}
	}
}
