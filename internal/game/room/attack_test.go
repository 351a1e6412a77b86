package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/apple-clash/internal/apperrors"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/testutil"
)

func attackPlayers() []*Player {
	return []*Player{
		{ID: "a", Alive: true},
		{ID: "b", Alive: true},
		{ID: "c", Alive: false},
		{ID: "w", Spectator: true},
		{ID: "d", Alive: true},
	}
}

func TestResolveTarget(t *testing.T) {
	t.Parallel()

	first := func(int) int { return 0 }
	last := func(n int) int { return n - 1 }

	tests := []struct {
		name     string
		explicit string
		intN     func(int) int
		want     string
	}{
		{name: "explicit alive target", explicit: "d", intN: first, want: "d"},
		{name: "no target picks random", explicit: "", intN: first, want: "b"},
		{name: "random picks from others", explicit: "", intN: last, want: "d"},
		{name: "self falls back to random", explicit: "a", intN: first, want: "b"},
		{name: "eliminated falls back to random", explicit: "c", intN: last, want: "d"},
		{name: "spectator falls back to random", explicit: "w", intN: first, want: "b"},
		{name: "unknown falls back to random", explicit: "zzz", intN: first, want: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			target := ResolveTarget(attackPlayers(), "a", tt.explicit, tt.intN)
			require.NotNil(t, target)
			assert.Equal(t, tt.want, target.ID)
		})
	}
}

func TestResolveTarget_NeverSelf(t *testing.T) {
	t.Parallel()

	players := attackPlayers()
	for i := range 2 {
		target := ResolveTarget(players, "b", "", func(int) int { return i })
		require.NotNil(t, target)
		assert.NotEqual(t, "b", target.ID)
		assert.True(t, target.Alive)
		assert.False(t, target.Spectator)
	}
}

func TestResolveTarget_NoOpponents(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{ID: "a", Alive: true},
		{ID: "c", Alive: false},
		{ID: "w", Spectator: true},
	}
	called := false
	target := ResolveTarget(players, "a", "c", func(int) int { called = true; return 0 })
	assert.Nil(t, target)
	assert.False(t, called)
}

func TestAttack_DeliversPrivateAndBroadcast(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	room, a := env.createRoom(t, RoomConfig{}, "a", "A")
	b := env.join(t, room, "b", "B", false)
	c := env.join(t, room, "c", "C", false)
	watcher := env.join(t, room, "w", "W", true)
	require.NoError(t, env.rm.StartGame(a))

	require.NoError(t, env.rm.Attack(a, AttackFreeze, "c"))

	hit := payloadOf[protocol.AttackedPayload](t, c.LastOfType(protocol.MsgAttacked))
	assert.Equal(t, "freeze", hit.Type)
	assert.Equal(t, "a", hit.AttackerID)
	assert.Equal(t, "A", hit.AttackerName)
	assert.Nil(t, b.LastOfType(protocol.MsgAttacked))

	for _, cl := range []*testutil.SimpleClient{a, b, c, watcher} {
		bc := payloadOf[protocol.AttackBroadcastPayload](t, cl.LastOfType(protocol.MsgAttackBroadcast))
		assert.Equal(t, protocol.AttackBroadcastPayload{From: "a", To: "c", Type: "freeze"}, bc)
	}
}

func TestAttack_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	room, a := env.createRoom(t, RoomConfig{}, "a", "A")
	watcher := env.join(t, room, "w", "W", true)

	assert.ErrorIs(t, env.rm.Attack(a, AttackType("explode"), ""), apperrors.ErrInvalidAttack)
	assert.ErrorIs(t, env.rm.Attack(a, AttackShuffle, ""), apperrors.ErrNotActive)
	assert.ErrorIs(t, env.rm.Attack(testutil.NewSimpleClient("x", "X"), AttackShuffle, ""), apperrors.ErrNotInRoom)

	require.NoError(t, env.rm.StartGame(a))
	assert.ErrorIs(t, env.rm.Attack(watcher, AttackBlind, "a"), apperrors.ErrNotActive)

	// Alone in the room: nothing to hit, dropped silently
	require.NoError(t, env.rm.Attack(a, AttackBlind, ""))
	assert.Nil(t, a.LastOfType(protocol.MsgAttackBroadcast))
	assert.Nil(t, watcher.LastOfType(protocol.MsgAttacked))
}
