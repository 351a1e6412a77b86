package handler

import (
	"github.com/palemoky/apple-clash/internal/game/room"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/types"
)

// handleMyStateUpdate 处理客户端棋盘同步
func (h *Handler) handleMyStateUpdate(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.MyStateUpdatePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if err := h.roomManager.UpdatePlayerState(client, *payload); err != nil {
		sendError(client, err)
	}
}

// handleAttack 处理干扰
func (h *Handler) handleAttack(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.AttackPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if err := h.roomManager.Attack(client, room.AttackType(payload.Type), payload.TargetID); err != nil {
		sendError(client, err)
	}
}

// handleRequestBoardRegen 处理无解时重新生成棋盘
func (h *Handler) handleRequestBoardRegen(client types.ClientInterface) {
	if err := h.roomManager.RegenerateBoard(client); err != nil {
		sendError(client, err)
	}
}
