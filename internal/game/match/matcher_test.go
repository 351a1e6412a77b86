package match

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/apple-clash/internal/apperrors"
	"github.com/palemoky/apple-clash/internal/config"
	"github.com/palemoky/apple-clash/internal/game/room"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/testutil"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (f *fakeTimers) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{d: d, f: fn}
	f.timers = append(f.timers, t)
	return t
}

func (f *fakeTimers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

func (f *fakeTimers) get(i int) *fakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timers[i]
}

type matchEnv struct {
	matcher *Matcher
	rooms   *room.RoomManager
	server  *testutil.SimpleServer
	store   *testutil.MemoryQueueStore
	timers  *fakeTimers
}

func newMatchEnv(t *testing.T, maxSize int) *matchEnv {
	t.Helper()
	env := &matchEnv{
		server: testutil.NewSimpleServer(),
		store:  &testutil.MemoryQueueStore{},
		timers: &fakeTimers{},
	}
	env.rooms = room.NewRoomManager(room.Options{
		Config: config.GameConfig{
			BoardCols:        17,
			BoardRows:        10,
			MaxRoomPlayers:   8,
			DefaultTimeLimit: 180,
			MinTimeLimit:     30,
			MaxTimeLimit:     900,
			MaxSpecialCount:  20,
			SweepInterval:    60,
		},
		NewClock: (&room.ManualClocks{}).Factory(),
	})
	env.matcher = NewMatcher(MatcherDeps{
		Server: env.server,
		Rooms:  env.rooms,
		Store:  env.store,
		Config: config.MatchConfig{
			MaxSize:      maxSize,
			FlushDelay:   10,
			TimeLimit:    300,
			SpecialCount: 6,
			BonusCount:   4,
		},
		AfterFunc: env.timers.AfterFunc,
	})
	return env
}

func (e *matchEnv) client(id, name string) *testutil.SimpleClient {
	c := testutil.NewSimpleClient(id, name)
	e.server.Register(c)
	return c
}

func TestMatcher_QueueOps(t *testing.T) {
	t.Parallel()

	env := newMatchEnv(t, 8)
	c1 := env.client("p1", "Player1")
	c2 := env.client("p2", "Player2")

	require.NoError(t, env.matcher.AddToQueue(c1, "Player1"))
	assert.Equal(t, 1, env.matcher.GetQueueLength())

	assert.ErrorIs(t, env.matcher.AddToQueue(c1, "Player1"), apperrors.ErrQueueAlreadyJoined)
	assert.Equal(t, 1, env.matcher.GetQueueLength())

	require.NoError(t, env.matcher.AddToQueue(c2, "Player2"))
	assert.Equal(t, 2, env.matcher.GetQueueLength())
	assert.True(t, env.matcher.InQueue("p2"))

	env.matcher.RemoveFromQueue(c1)
	assert.Equal(t, 1, env.matcher.GetQueueLength())

	// Removing twice is a no-op
	env.matcher.RemoveFromQueue(c1)
	assert.Equal(t, 1, env.matcher.GetQueueLength())

	env.matcher.RemoveFromQueue(c2)
	assert.Equal(t, 0, env.matcher.GetQueueLength())
	assert.False(t, env.matcher.InQueue("p2"))
}

func TestMatcher_BroadcastsQueueUpdate(t *testing.T) {
	t.Parallel()

	env := newMatchEnv(t, 8)
	idle := env.client("idle", "Idle")
	c1 := env.client("p1", "Alice")

	require.NoError(t, env.matcher.AddToQueue(c1, "Alice"))

	for _, c := range []*testutil.SimpleClient{idle, c1} {
		msg := c.LastOfType(protocol.MsgQueueUpdate)
		require.NotNil(t, msg)
		p, err := codec.ParsePayload[protocol.QueueUpdatePayload](msg)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Count)
		assert.Equal(t, []string{"Alice"}, p.Players)
	}
}

func TestMatcher_FlushesImmediatelyAtMaxSize(t *testing.T) {
	t.Parallel()

	env := newMatchEnv(t, 3)
	clients := []*testutil.SimpleClient{
		env.client("p1", "A"),
		env.client("p2", "B"),
		env.client("p3", "C"),
	}
	for _, c := range clients {
		require.NoError(t, env.matcher.AddToQueue(c, c.GetName()))
	}

	assert.Equal(t, 0, env.matcher.GetQueueLength())
	require.Equal(t, 1, env.timers.count(), "timer armed at two players")
	assert.True(t, env.timers.get(0).stopped)

	code := clients[0].GetRoom()
	require.NotEmpty(t, code)
	r := env.rooms.GetRoom(code)
	require.NotNil(t, r)
	assert.Equal(t, 3, r.PlayerCount())
	assert.Equal(t, "p1", r.HostID())
	assert.Equal(t, room.ModeElimination, r.Config.Mode)
	assert.Equal(t, 3, r.Config.MaxPlayers)
	assert.Equal(t, 6, r.Config.SpecialCount)
	assert.Equal(t, room.RoomStateLobby, r.State())

	for _, c := range clients {
		assert.Equal(t, code, c.GetRoom())
		msgs := c.Messages()
		joined := -1
		members := -1
		for i, m := range msgs {
			switch m.Type {
			case protocol.MsgRoomJoined:
				joined = i
			case protocol.MsgMembersUpdate:
				members = i
			}
		}
		require.GreaterOrEqual(t, joined, 0)
		assert.Greater(t, members, joined, "membersUpdate follows roomJoined")
	}
}

func TestMatcher_FlushesAfterDelay(t *testing.T) {
	t.Parallel()

	env := newMatchEnv(t, 8)
	a := env.client("p1", "A")
	b := env.client("p2", "B")

	require.NoError(t, env.matcher.AddToQueue(a, "A"))
	assert.Zero(t, env.timers.count(), "one player does not arm the timer")

	require.NoError(t, env.matcher.AddToQueue(b, "B"))
	require.Equal(t, 1, env.timers.count())
	assert.Equal(t, 10*time.Second, env.timers.get(0).d)

	// A third player does not re-arm
	c := env.client("p3", "C")
	require.NoError(t, env.matcher.AddToQueue(c, "C"))
	assert.Equal(t, 1, env.timers.count())

	env.timers.get(0).f()

	assert.Equal(t, 0, env.matcher.GetQueueLength())
	require.NotEmpty(t, a.GetRoom())
	assert.Equal(t, a.GetRoom(), c.GetRoom())
	assert.Equal(t, 3, env.rooms.GetRoom(a.GetRoom()).PlayerCount())
}

func TestMatcher_StaleTimerIsIgnored(t *testing.T) {
	t.Parallel()

	env := newMatchEnv(t, 8)
	a := env.client("p1", "A")
	b := env.client("p2", "B")

	require.NoError(t, env.matcher.AddToQueue(a, "A"))
	require.NoError(t, env.matcher.AddToQueue(b, "B"))
	stale := env.timers.get(0)

	env.matcher.RemoveFromQueue(b)
	assert.True(t, stale.stopped)

	require.NoError(t, env.matcher.AddToQueue(b, "B"))
	require.Equal(t, 2, env.timers.count())

	stale.f()
	assert.Equal(t, 2, env.matcher.GetQueueLength(), "cancelled timer must not flush")

	env.timers.get(1).f()
	assert.Equal(t, 0, env.matcher.GetQueueLength())
	assert.NotEmpty(t, a.GetRoom())
}

func TestMatcher_TimerWithOnePlayerDoesNotFlush(t *testing.T) {
	t.Parallel()

	env := newMatchEnv(t, 8)
	a := env.client("p1", "A")
	b := env.client("p2", "B")
	require.NoError(t, env.matcher.AddToQueue(a, "A"))
	require.NoError(t, env.matcher.AddToQueue(b, "B"))
	timer := env.timers.get(0)

	// Bypass cancellation to simulate a timer racing with a removal
	env.matcher.mu.Lock()
	env.matcher.queue = env.matcher.queue[:1]
	env.matcher.mu.Unlock()

	timer.f()
	assert.Equal(t, 1, env.matcher.GetQueueLength())
	assert.Empty(t, a.GetRoom())
}

func TestMatcher_MirrorsQueueToStore(t *testing.T) {
	t.Parallel()

	env := newMatchEnv(t, 8)
	a := env.client("p1", "A")
	require.NoError(t, env.matcher.AddToQueue(a, "A"))

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"p1"}, env.store.IDs())
	}, time.Second, 5*time.Millisecond)

	env.matcher.RemoveFromQueue(a)
	assert.Eventually(t, func() bool { return len(env.store.IDs()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestMatcher_NilServerNotifiesQueuedOnly(t *testing.T) {
	t.Parallel()

	m := NewMatcher(MatcherDeps{Config: config.MatchConfig{MaxSize: 8, FlushDelay: 10}, AfterFunc: (&fakeTimers{}).AfterFunc})
	a := testutil.NewSimpleClient("p1", "A")
	require.NoError(t, m.AddToQueue(a, "A"))
	assert.NotNil(t, a.LastOfType(protocol.MsgQueueUpdate))
}

func TestMatcher_RequeuesAndRetriesWhenRoomCreationFails(t *testing.T) {
	t.Parallel()

	env := newMatchEnv(t, 8)
	// Every room code draw yields "0000", so a live room with that code exhausts allocation
	env.rooms = room.NewRoomManager(room.Options{
		Config:   config.GameConfig{BoardCols: 17, BoardRows: 10, MaxRoomPlayers: 8},
		NewClock: (&room.ManualClocks{}).Factory(),
		IntN:     func(int) int { return 0 },
	})
	env.matcher = NewMatcher(MatcherDeps{
		Server:    env.server,
		Rooms:     env.rooms,
		Config:    config.MatchConfig{MaxSize: 8, FlushDelay: 10},
		AfterFunc: env.timers.AfterFunc,
	})

	blocker := env.client("b", "Blocker")
	_, err := env.rooms.CreateRoom(blocker, room.RoomConfig{})
	require.NoError(t, err)
	require.Equal(t, "0000", blocker.GetRoom())

	c1 := env.client("p1", "A")
	c2 := env.client("p2", "B")
	require.NoError(t, env.matcher.AddToQueue(c1, "A"))
	require.NoError(t, env.matcher.AddToQueue(c2, "B"))
	require.Equal(t, 1, env.timers.count())

	env.timers.get(0).f()
	assert.Equal(t, 2, env.matcher.GetQueueLength(), "players go back to the queue")
	assert.Empty(t, c1.GetRoom())
	require.Equal(t, 2, env.timers.count(), "a new flush timer is armed")

	env.rooms.LeaveRoom(blocker)
	require.Nil(t, env.rooms.GetRoom("0000"))

	env.timers.get(1).f()
	assert.Equal(t, 0, env.matcher.GetQueueLength())
	assert.Equal(t, "0000", c1.GetRoom())
	assert.Equal(t, "0000", c2.GetRoom())
	assert.Equal(t, "p1", env.rooms.GetRoom("0000").HostID())
}
