package room

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/palemoky/apple-clash/internal/config"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/testutil"
)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

type testEnv struct {
	rm       *RoomManager
	clocks   *ManualClocks
	now      *fakeNow
	store    *testutil.MemoryRoomStore
	recorder *testutil.MemoryRecorder
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		BoardCols:           17,
		BoardRows:           10,
		MaxRoomPlayers:      8,
		DefaultTimeLimit:    180,
		MinTimeLimit:        30,
		MaxTimeLimit:        900,
		MaxSpecialCount:     20,
		FixedBoardTimeLimit: 120,
		SweepInterval:       60,
		RoomTimeout:         10,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		clocks:   &ManualClocks{},
		now:      &fakeNow{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		store:    testutil.NewMemoryRoomStore(),
		recorder: &testutil.MemoryRecorder{},
	}
	env.rm = NewRoomManager(Options{
		Config:   testGameConfig(),
		Store:    env.store,
		Recorder: env.recorder,
		NewClock: env.clocks.Factory(),
		Now:      env.now.Now,
	})
	return env
}

// createRoom creates a room hosted by a fresh client.
func (e *testEnv) createRoom(t *testing.T, cfg RoomConfig, hostID, hostName string) (*Room, *testutil.SimpleClient) {
	t.Helper()
	host := testutil.NewSimpleClient(hostID, hostName)
	room, err := e.rm.CreateRoom(host, cfg)
	require.NoError(t, err)
	return room, host
}

// join adds a fresh client to the room.
func (e *testEnv) join(t *testing.T, room *Room, id, name string, spectate bool) *testutil.SimpleClient {
	t.Helper()
	c := testutil.NewSimpleClient(id, name)
	_, err := e.rm.JoinRoom(c, room.Code, spectate)
	require.NoError(t, err)
	return c
}

// setScore reports a score for the client and advances the fake clock.
func (e *testEnv) setScore(t *testing.T, c *testutil.SimpleClient, score int) {
	t.Helper()
	e.now.Advance(time.Second)
	require.NoError(t, e.rm.UpdatePlayerState(c, protocol.MyStateUpdatePayload{Score: score}))
}

func payloadOf[T any](t *testing.T, msg *protocol.Message) T {
	t.Helper()
	require.NotNil(t, msg)
	p, err := codec.ParsePayload[T](msg)
	require.NoError(t, err)
	return *p
}
