package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorderFunc func(ctx context.Context, r *SessionResult) error

func (f recorderFunc) RecordSession(ctx context.Context, r *SessionResult) error { return f(ctx, r) }

func TestMultiRecorder_CallsAllAndJoinsErrors(t *testing.T) {
	t.Parallel()

	var calls int
	ok := recorderFunc(func(context.Context, *SessionResult) error { calls++; return nil })
	bad := recorderFunc(func(context.Context, *SessionResult) error { calls++; return errors.New("redis down") })

	m := MultiRecorder{ok, bad, nil, ok}
	err := m.RecordSession(context.Background(), &SessionResult{SessionID: "s"})

	assert.Equal(t, 3, calls)
	assert.ErrorContains(t, err, "redis down")
}

func TestNewSessionID_Monotonic(t *testing.T) {
	t.Parallel()

	a := NewSessionID()
	b := NewSessionID()
	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}
