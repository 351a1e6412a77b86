package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(id string, scores map[string]int, winner string) *SessionResult {
	r := &SessionResult{
		SessionID: id,
		RoomCode:  "1234",
		Mode:      "time_attack",
		StartedAt: time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2026, 1, 2, 3, 3, 0, 0, time.UTC),
	}
	rank := 1
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		score, ok := scores[name]
		if !ok {
			continue
		}
		r.Rankings = append(r.Rankings, ResultEntry{Rank: rank, PlayerID: "id-" + name, Name: name, Score: score})
		rank++
	}
	r.WinnerID = "id-" + winner
	r.Winner = winner
	return r
}

func TestLeaderboard_KeepsBestScore(t *testing.T) {
	t.Parallel()

	client, _ := newTestRedis(t)
	lb := NewLeaderboard(client)
	lb.now = func() time.Time { return time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	require.NoError(t, lb.RecordSession(ctx, sampleResult("s1", map[string]int{"Alice": 50, "Bob": 30}, "Alice")))
	require.NoError(t, lb.RecordSession(ctx, sampleResult("s2", map[string]int{"Alice": 20, "Bob": 70}, "Bob")))
	require.NoError(t, lb.RecordSession(ctx, sampleResult("s3", map[string]int{"Carol": 10}, "Carol")))

	entries, err := lb.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, LeaderboardEntry{Rank: 1, Name: "Bob", BestScore: 70, Games: 2, Wins: 1}, entries[0])
	assert.Equal(t, LeaderboardEntry{Rank: 2, Name: "Alice", BestScore: 50, Games: 2, Wins: 1}, entries[1])
	assert.Equal(t, LeaderboardEntry{Rank: 3, Name: "Carol", BestScore: 10, Games: 1, Wins: 1}, entries[2])

	daily, err := lb.GetDailyLeaderboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "Bob", daily[0].Name)
}

func TestLeaderboard_EmptyAndDisabled(t *testing.T) {
	t.Parallel()

	client, _ := newTestRedis(t)
	lb := NewLeaderboard(client)

	entries, err := lb.GetLeaderboard(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)

	disabled := NewLeaderboard(nil)
	assert.NoError(t, disabled.RecordSession(context.Background(), sampleResult("s", map[string]int{"Alice": 1}, "Alice")))
	entries, err = disabled.GetLeaderboard(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
