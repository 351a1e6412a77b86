package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/types"
)

// handleWebSocket 处理 WebSocket 连接，连接存续期间占用一个连接名额
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		log.Info().Str("ip", clientIP).Msg("🔧 维护模式，拒绝新连接")
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	default:
		log.Warn().Str("ip", clientIP).Int("max", s.maxConnections).Msg("🚫 达到最大连接数限制")
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	if !s.originChecker.Check(r) {
		log.Warn().Str("origin", r.Header.Get("Origin")).Str("ip", clientIP).Msg("🚫 来源验证失败")
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	if !s.rateLimiter.Allow(clientIP) {
		log.Warn().Str("ip", clientIP).Msg("🚫 连接过于频繁")
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("ip", clientIP).Msg("WebSocket 升级失败")
		return
	}

	client := NewClient(s, conn)
	client.IP = clientIP
	s.registerClient(client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:   client.ID,
		PlayerName: client.GetName(),
	}))
	log.Info().Str("player", client.GetName()).Str("id", client.ID).Str("ip", clientIP).Msg("✅ 玩家已连接")

	go client.WritePump()
	client.ReadPump()
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		log.Info().Str("player", client.GetName()).Str("id", client.ID).Msg("❌ 玩家已断开")
	}
}

// GetClientByID 按 ID 查找在线客户端
func (s *Server) GetClientByID(id string) types.ClientInterface {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	if c, ok := s.clients[id]; ok {
		return c
	}
	return nil
}
