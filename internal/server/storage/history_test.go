package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_RecentNewestFirst(t *testing.T) {
	t.Parallel()

	client, _ := newTestRedis(t)
	h := NewHistory(client)
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, h.RecordSession(ctx, sampleResult(fmt.Sprintf("s%d", i), map[string]int{"Alice": i}, "Alice")))
	}

	recent, err := h.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "s4", recent[0].SessionID)
	assert.Equal(t, "s3", recent[1].SessionID)
	assert.Equal(t, "s2", recent[2].SessionID)
	assert.Equal(t, "Alice", recent[0].Winner)
}

func TestHistory_TrimsToMax(t *testing.T) {
	t.Parallel()

	client, mr := newTestRedis(t)
	h := NewHistory(client)
	ctx := context.Background()

	for i := range maxHistory + 5 {
		require.NoError(t, h.RecordSession(ctx, &SessionResult{SessionID: fmt.Sprintf("s%d", i)}))
	}

	list, err := mr.List(historyKey)
	require.NoError(t, err)
	assert.Len(t, list, maxHistory)

	recent, err := h.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, fmt.Sprintf("s%d", maxHistory+4), recent[0].SessionID)
}
