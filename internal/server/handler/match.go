package handler

import (
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/types"
)

// handleJoinMatchQueue 处理加入匹配队列，先离开当前房间
func (h *Handler) handleJoinMatchQueue(client types.ClientInterface, msg *protocol.Message) {
	if h.rejectInMaintenance(client, "服务器维护中，暂停匹配") {
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinMatchQueuePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if err := applyName(client, payload.Name); err != nil {
		sendError(client, err)
		return
	}

	if client.GetRoom() != "" {
		h.roomManager.LeaveRoom(client)
	}
	if err := h.matcher.AddToQueue(client, client.GetName()); err != nil {
		sendError(client, err)
	}
}

// handleLeaveMatchQueue 处理离开匹配队列
func (h *Handler) handleLeaveMatchQueue(client types.ClientInterface) {
	h.matcher.RemoveFromQueue(client)
}
