package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/apple-clash/internal/protocol"
)

func TestGameError_MessagesComeFromProtocolTable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, protocol.ErrCodeBanned, ErrBanned.Code)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeBanned], ErrBanned.Error())
	assert.NotEmpty(t, ErrQueueAlreadyJoined.Error())
}

func TestGameError_UnwrapsThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("join 1234: %w", ErrRoomFull)

	var gameErr *GameError
	require.True(t, errors.As(wrapped, &gameErr))
	assert.Equal(t, protocol.ErrCodeRoomFull, gameErr.Code)
	assert.ErrorIs(t, wrapped, ErrRoomFull)
}
