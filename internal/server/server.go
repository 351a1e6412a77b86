package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/apple-clash/internal/config"
	"github.com/palemoky/apple-clash/internal/game/match"
	"github.com/palemoky/apple-clash/internal/game/room"
	"github.com/palemoky/apple-clash/internal/server/handler"
	"github.com/palemoky/apple-clash/internal/server/storage"
	"github.com/palemoky/apple-clash/internal/types"
)

// Options 服务器依赖，存储均可为 nil
type Options struct {
	RoomManager *room.RoomManager
	QueueStore  types.QueueStore
	Leaderboard *storage.Leaderboard
	History     *storage.History
}

// Server WebSocket + HTTP 服务器
type Server struct {
	config      *config.Config
	roomManager *room.RoomManager
	matcher     *match.Matcher
	handler     *handler.Handler
	leaderboard *storage.Leaderboard
	history     *storage.History
	upgrader    websocket.Upgrader

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter

	// 连接控制
	maxConnections int
	semaphore      chan struct{}

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	httpServer *http.Server
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, opts Options) *Server {
	s := &Server{
		config:      cfg,
		roomManager: opts.RoomManager,
		leaderboard: opts.Leaderboard,
		history:     opts.History,
		clients:     make(map[string]*Client),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, max(cfg.Server.MaxConnections, 1)),
	}
	if s.roomManager == nil {
		s.roomManager = room.NewRoomManager(room.Options{Config: cfg.Game})
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// 来源在升级前已经由 OriginChecker 校验
		CheckOrigin: func(*http.Request) bool { return true },
	}

	s.matcher = match.NewMatcher(match.MatcherDeps{
		Server: s,
		Rooms:  s.roomManager,
		Store:  opts.QueueStore,
		Config: cfg.Match,
	})

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		RoomManager: s.roomManager,
		Matcher:     s.matcher,
	})

	log.Info().
		Int("conn_per_sec", cfg.Security.RateLimit.MaxPerSecond).
		Int("msg_per_sec", cfg.Security.MessageLimit.MaxPerSecond).
		Int("max_connections", cfg.Server.MaxConnections).
		Msg("🔒 安全配置已加载")
	return s
}

// Router 构建 HTTP 路由
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())
		r.Get("/rooms", s.handleRooms)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/history", s.handleHistory)
	})
	return r
}

// Run 启动服务器，ctx 结束后进入优雅关闭
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Int("cpus", runtime.NumCPU()).Msgf("🚀 服务器启动在 ws://%s/ws", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http 服务异常: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.monitorStats(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.GracefulShutdown(s.config.Game.ShutdownTimeoutDuration())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("关闭 http 服务失败: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// RoomManager 房间管理器
func (s *Server) RoomManager() *room.RoomManager {
	return s.roomManager
}

// Matcher 匹配器
func (s *Server) Matcher() *match.Matcher {
	return s.matcher
}
