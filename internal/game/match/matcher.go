package match

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/apperrors"
	"github.com/palemoky/apple-clash/internal/config"
	"github.com/palemoky/apple-clash/internal/game/room"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/types"
)

const storeTimeout = 3 * time.Second

// Timer 可取消的一次性定时器
type Timer interface {
	Stop() bool
}

// AfterFunc 创建一次性定时器，测试中可替换
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// entry 队列中的玩家
type entry struct {
	client     types.ClientInterface
	name       string
	enqueuedAt time.Time
}

// MatcherDeps 匹配器依赖
type MatcherDeps struct {
	Server    types.ServerInterface // 可为 nil，此时只通知队列中的玩家
	Rooms     *room.RoomManager
	Store     types.QueueStore // 可为 nil
	Config    config.MatchConfig
	AfterFunc AfterFunc
	Now       func() time.Time
}

// Matcher 匹配系统：人数达到上限立即开房，否则凑够两人后延迟开房
type Matcher struct {
	server    types.ServerInterface
	rooms     *room.RoomManager
	store     types.QueueStore
	cfg       config.MatchConfig
	afterFunc AfterFunc
	now       func() time.Time

	mu    sync.Mutex
	queue []entry
	timer Timer
	gen   uint64 // 每次取消或开房递增，旧定时器回调据此失效
}

// NewMatcher 创建匹配器
func NewMatcher(deps MatcherDeps) *Matcher {
	m := &Matcher{
		server:    deps.Server,
		rooms:     deps.Rooms,
		store:     deps.Store,
		cfg:       deps.Config,
		afterFunc: deps.AfterFunc,
		now:       deps.Now,
		queue:     make([]entry, 0),
	}
	if m.afterFunc == nil {
		m.afterFunc = realAfterFunc
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.cfg.MaxSize < 2 {
		m.cfg.MaxSize = 2
	}
	return m
}

// AddToQueue 加入匹配队列
func (m *Matcher) AddToQueue(client types.ClientInterface, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(client.GetID()) >= 0 {
		return apperrors.ErrQueueAlreadyJoined
	}

	m.queue = append(m.queue, entry{client: client, name: name, enqueuedAt: m.now()})
	m.mirror(func(ctx context.Context, s types.QueueStore) error {
		return s.AddToMatchQueue(ctx, client.GetID())
	})
	log.Info().Str("player", name).Int("queue", len(m.queue)).Msg("🔍 玩家加入匹配队列")

	m.broadcastQueueLocked()

	switch {
	case len(m.queue) >= m.cfg.MaxSize:
		m.flushLocked()
	case len(m.queue) >= 2 && m.timer == nil:
		m.armLocked()
	}
	return nil
}

// RemoveFromQueue 从匹配队列移除，不在队列中时无操作
func (m *Matcher) RemoveFromQueue(client types.ClientInterface) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(client.GetID())
	if i < 0 {
		return
	}
	removed := m.queue[i]
	m.queue = slices.Delete(m.queue, i, i+1)
	m.mirror(func(ctx context.Context, s types.QueueStore) error {
		return s.RemoveFromMatchQueue(ctx, client.GetID())
	})
	log.Info().Str("player", removed.name).Int("queue", len(m.queue)).Msg("🔍 玩家离开匹配队列")

	if len(m.queue) < 2 {
		m.cancelTimerLocked()
	}
	m.broadcastQueueLocked()
}

// InQueue 玩家是否在队列中
func (m *Matcher) InQueue(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(playerID) >= 0
}

// GetQueueLength 获取队列长度
func (m *Matcher) GetQueueLength() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Matcher) indexOf(id string) int {
	return slices.IndexFunc(m.queue, func(e entry) bool { return e.client.GetID() == id })
}

// armLocked 启动延迟开房定时器
func (m *Matcher) armLocked() {
	gen := m.gen
	m.timer = m.afterFunc(m.cfg.FlushDelayDuration(), func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.gen {
			return
		}
		m.timer = nil
		if len(m.queue) >= 2 {
			m.flushLocked()
		}
	})
}

func (m *Matcher) cancelTimerLocked() {
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// flushLocked 把队列中所有玩家放进一个新的淘汰赛房间，最早入队者为房主
func (m *Matcher) flushLocked() {
	m.cancelTimerLocked()
	if len(m.queue) == 0 || m.rooms == nil {
		return
	}

	batch := m.queue
	m.queue = make([]entry, 0)

	members := make([]room.MatchMember, 0, len(batch))
	for _, e := range batch {
		members = append(members, room.MatchMember{Client: e.client, Name: e.name})
	}

	r, err := m.rooms.CreateMatchRoom(members, room.RoomConfig{
		TimeLimit:    m.cfg.TimeLimit,
		SpecialCount: m.cfg.SpecialCount,
		BonusCount:   m.cfg.BonusCount,
	})
	if err != nil {
		log.Error().Err(err).Int("players", len(batch)).Msg("匹配创建房间失败")
		m.queue = append(batch, m.queue...)
		if len(m.queue) >= 2 {
			m.armLocked()
		}
		return
	}

	m.mirror(func(ctx context.Context, s types.QueueStore) error {
		return s.ClearMatchQueue(ctx)
	})

	joined := codec.MustNewMessage(protocol.MsgRoomJoined, r.Info())
	for _, e := range batch {
		e.client.SendMessage(joined)
	}
	r.BroadcastMembers()

	log.Info().Str("room", r.Code).Int("players", len(batch)).Str("host", batch[0].name).
		Dur("waited", m.now().Sub(batch[0].enqueuedAt)).Msg("🎮 匹配成功")
	m.broadcastQueueLocked()
}

// broadcastQueueLocked 通知大厅玩家当前队列状态
func (m *Matcher) broadcastQueueLocked() {
	names := make([]string, 0, len(m.queue))
	for _, e := range m.queue {
		names = append(names, e.name)
	}
	msg := codec.MustNewMessage(protocol.MsgQueueUpdate, protocol.QueueUpdatePayload{
		Count:   len(m.queue),
		Players: names,
	})

	if m.server != nil {
		m.server.BroadcastToLobby(msg)
		return
	}
	for _, e := range m.queue {
		e.client.SendMessage(msg)
	}
}

// mirror 异步同步队列到 Redis，仅用于监控
func (m *Matcher) mirror(op func(ctx context.Context, s types.QueueStore) error) {
	if m.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := op(ctx, m.store); err != nil {
			log.Warn().Err(err).Msg("同步匹配队列失败")
		}
	}()
}
