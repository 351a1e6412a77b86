package server

import (
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
)

// GetOnlineCount 在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// lobbyClients 不在任何房间里的连接（包括匹配队列中的玩家）
func (s *Server) lobbyClients() []*Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	lobby := make([]*Client, 0, len(s.clients))
	for _, client := range s.clients {
		if client.GetRoom() == "" {
			lobby = append(lobby, client)
		}
	}
	return lobby
}

// BroadcastToLobby 发给大厅里的所有连接，发送在锁外进行
func (s *Server) BroadcastToLobby(msg *protocol.Message) {
	for _, client := range s.lobbyClients() {
		client.SendMessage(msg)
	}
}

// broadcastErrorToLobby 向大厅推送带自定义文案的错误消息（维护通知等）
func (s *Server) broadcastErrorToLobby(code int, text string) {
	s.BroadcastToLobby(codec.NewErrorMessageWithText(code, text))
}
