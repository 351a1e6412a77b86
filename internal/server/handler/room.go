package handler

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/game/room"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.rejectInMaintenance(client, "服务器维护中，暂停创建房间") {
		return
	}

	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if err := applyName(client, payload.Name); err != nil {
		sendError(client, err)
		return
	}

	h.detach(client)

	if _, err := h.roomManager.CreateRoom(client, room.RoomConfig{
		MaxPlayers:   payload.MaxPlayers,
		Mode:         room.ParseMode(payload.Mode),
		TimeLimit:    payload.TimeLimit,
		SpecialCount: payload.SpecialCount,
		BonusCount:   payload.BonusCount,
		Private:      payload.Private,
	}); err != nil {
		sendError(client, err)
	}
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.rejectInMaintenance(client, "服务器维护中，暂停加入房间") {
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil || payload.RoomCode == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	name, err := requestedName(client, payload.Name)
	if err != nil {
		sendError(client, err)
		return
	}

	// 已在该房间中：保持原样
	if client.GetRoom() == payload.RoomCode {
		return
	}

	// 先校验再离开当前房间和队列，被拒绝时状态不变
	if err := h.roomManager.CanJoin(client.GetID(), payload.RoomCode, name); err != nil {
		sendError(client, err)
		return
	}

	previous := client.GetName()
	h.detach(client)
	client.SetName(name)
	if _, err := h.roomManager.JoinRoom(client, payload.RoomCode, payload.Spectate); err != nil {
		// 校验之后房间状态变了（满员或开局），恢复显示名
		client.SetName(previous)
		sendError(client, err)
	}
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	h.roomManager.LeaveRoom(client)
}

// handleKickPlayer 处理房主踢人
func (h *Handler) handleKickPlayer(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.KickPlayerPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if err := h.roomManager.Kick(client, payload.TargetID); err != nil {
		sendError(client, err)
	}
}

// handleStartGame 处理房主开始游戏
func (h *Handler) handleStartGame(client types.ClientInterface) {
	if err := h.roomManager.StartGame(client); err != nil {
		sendError(client, err)
	}
}

// handleGetRoomList 获取可加入的公开房间
func (h *Handler) handleGetRoomList(client types.ClientInterface) {
	rooms := h.roomManager.GetRoomList()
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomList, protocol.RoomListPayload{Rooms: rooms}))
	log.Debug().Str("player", client.GetName()).Int("rooms", len(rooms)).Msg("📋 房间列表")
}
