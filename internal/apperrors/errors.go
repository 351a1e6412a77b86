package apperrors

import (
	"github.com/palemoky/apple-clash/internal/protocol"
)

// GameError 游戏错误（房间、对局和匹配队列共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newGameError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrRoomNotFound       = newGameError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull           = newGameError(protocol.ErrCodeRoomFull)
	ErrNotInRoom          = newGameError(protocol.ErrCodeNotInRoom)
	ErrAlreadyStarted     = newGameError(protocol.ErrCodeAlreadyStarted)
	ErrBanned             = newGameError(protocol.ErrCodeBanned)
	ErrNotHost            = newGameError(protocol.ErrCodeNotHost)
	ErrTargetNotFound     = newGameError(protocol.ErrCodeTargetNotFound)
	ErrCodeSpaceExhausted = newGameError(protocol.ErrCodeCodeExhausted)
	ErrNotActive          = newGameError(protocol.ErrCodeNotActive)
	ErrNotEnoughPlayers   = newGameError(protocol.ErrCodeNotEnoughPlayers)
	ErrInvalidAttack      = newGameError(protocol.ErrCodeInvalidAttack)
	ErrInvalidName        = newGameError(protocol.ErrCodeInvalidName)
	ErrQueueAlreadyJoined = newGameError(protocol.ErrCodeQueueJoined)
)
