package handler

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/apperrors"
	"github.com/palemoky/apple-clash/internal/game/match"
	"github.com/palemoky/apple-clash/internal/game/room"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerInterface
	RoomManager *room.RoomManager
	Matcher     *match.Matcher
}

// Handler 消息处理器，把客户端消息分发到房间、对局和匹配队列
type Handler struct {
	server      types.ServerInterface
	roomManager *room.RoomManager
	matcher     *match.Matcher
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
		matcher:     deps.Matcher,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom:  h.handleCreateRoom,
		protocol.MsgJoinRoom:    h.handleJoinRoom,
		protocol.MsgLeaveRoom:   func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },
		protocol.MsgKickPlayer:  h.handleKickPlayer,
		protocol.MsgStartGame:   func(c types.ClientInterface, _ *protocol.Message) { h.handleStartGame(c) },
		protocol.MsgGetRoomList: func(c types.ClientInterface, _ *protocol.Message) { h.handleGetRoomList(c) },

		// 匹配队列
		protocol.MsgJoinMatchQueue:  h.handleJoinMatchQueue,
		protocol.MsgLeaveMatchQueue: func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveMatchQueue(c) },

		// 游戏操作
		protocol.MsgMyStateUpdate:     h.handleMyStateUpdate,
		protocol.MsgAttack:            h.handleAttack,
		protocol.MsgRequestBoardRegen: func(c types.ClientInterface, _ *protocol.Message) { h.handleRequestBoardRegen(c) },
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Warn().Str("type", string(msg.Type)).Str("player", client.GetName()).Str("id", client.GetID()).
		Int("payload", len(msg.Payload)).Msg("⚠️ 未知消息类型")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 把错误转换为 error 消息发给客户端
func sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessage(gameErr.Code))
		return
	}
	log.Error().Err(err).Str("id", client.GetID()).Msg("处理请求失败")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}

// rejectInMaintenance 维护模式下拒绝新的房间和匹配
func (h *Handler) rejectInMaintenance(client types.ClientInterface, text string) bool {
	if h.server == nil || !h.server.IsMaintenanceMode() {
		return false
	}
	client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance, text))
	return true
}

// detach 离开当前房间和匹配队列，保证一个连接同时只在一个地方
func (h *Handler) detach(client types.ClientInterface) {
	if h.matcher != nil {
		h.matcher.RemoveFromQueue(client)
	}
	if client.GetRoom() != "" {
		h.roomManager.LeaveRoom(client)
	}
}
