package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/protocol"
)

const monitorInterval = 30 * time.Second

// monitorStats 定期输出服务器状态，直到 ctx 结束
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		log.Info().
			Int("online", s.GetOnlineCount()).
			Int("goroutines", runtime.NumGoroutine()).
			Int("connections", len(s.semaphore)).
			Int("rooms", s.roomManager.RoomCount()).
			Int("active", s.roomManager.GetActiveGamesCount()).
			Int("queue", s.matcher.GetQueueLength()).
			Float64("mem_mb", float64(m.Alloc)/1024/1024).
			Msg("📊 [监控]")
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接、新房间和匹配
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.broadcastErrorToLobby(protocol.ErrCodeServerMaintenance, "👷🏻‍♂️ 维护模式：停止新的房间创建")
	log.Info().Msg("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的对局结束（最多 timeout），然后断开所有连接
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	interval := s.config.Game.ShutdownCheckIntervalDuration()
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		activeGames := s.roomManager.GetActiveGamesCount()
		if activeGames == 0 {
			log.Info().Int("delay", s.config.Game.RoomCleanupDelay).Msg("✅ 所有对局已结束，即将关闭服务器")
			s.broadcastErrorToLobby(protocol.ErrCodeServerMaintenance,
				fmt.Sprintf("🚧 服务器将在 %d 秒后停机维护！", s.config.Game.RoomCleanupDelay))
			break
		}
		log.Info().Int("active", activeGames).Msg("⏳ 等待对局结束...")
		<-ticker.C
	}

	if activeGames := s.roomManager.GetActiveGamesCount(); activeGames > 0 {
		log.Warn().Int("active", activeGames).Msg("⚠️ 超时，仍有对局进行中，强制关闭")
	}

	s.Shutdown()
}

// Shutdown 等待清理延迟后关闭所有客户端连接
func (s *Server) Shutdown() {
	time.Sleep(s.config.Game.RoomCleanupDelayDuration())

	s.clientsMu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	s.clientsMu.RUnlock()

	for _, client := range clients {
		client.Close()
	}
	s.rateLimiter.Stop()

	log.Info().Int("clients", len(clients)).Msg("服务器已关闭")
}
