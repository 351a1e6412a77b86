package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/apple-clash/internal/config"
	"github.com/palemoky/apple-clash/internal/game/room"
	"github.com/palemoky/apple-clash/internal/logger"
	"github.com/palemoky/apple-clash/internal/server"
	"github.com/palemoky/apple-clash/internal/server/storage"
)

const roomCleanupInterval = time.Minute

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Error().Err(err).Msg("❌ 服务器异常退出")
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}

func run(configPath string) error {
	cfg, loadErr := config.Load(configPath)
	if loadErr != nil {
		cfg = config.Default()
	}
	if err := logger.Init(cfg.Log); err != nil {
		return err
	}
	if loadErr != nil {
		log.Warn().Err(loadErr).Str("path", configPath).Msg("⚠️ 加载配置文件失败，使用默认配置")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if !cfg.Redis.Disabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return fmt.Errorf("连接 Redis 失败: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("✅ Redis 已连接")
	} else {
		log.Warn().Msg("⚠️ Redis 已禁用，排行榜和历史记录不会保存")
	}

	store := storage.NewRedisStore(rdb)
	leaderboard := storage.NewLeaderboard(rdb)
	history := storage.NewHistory(rdb)
	recorders := storage.MultiRecorder{leaderboard, history}

	if cfg.Postgres.DSN != "" {
		archive, err := storage.OpenArchive(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer archive.Close()
		recorders = append(recorders, archive)
		log.Info().Msg("✅ 对局归档已启用")
	}

	rm := room.NewRoomManager(room.Options{
		Config:   cfg.Game,
		Store:    store,
		Recorder: recorders,
	})
	srv := server.NewServer(cfg, server.Options{
		RoomManager: rm,
		QueueStore:  store,
		Leaderboard: leaderboard,
		History:     history,
	})

	log.Info().Msg("🍎 苹果消消乐服务器启动中...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		rm.RunCleanup(gctx, roomCleanupInterval)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("👋 服务器已退出")
	return nil
}
