package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKey   = "leaderboard:best"
	dailyLeaderboard = "leaderboard:daily:"
	playerStatsKey   = "player:stats:"

	dailyExpiration = 48 * time.Hour
)

// LeaderboardEntry 排行榜条目，按显示名统计
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	BestScore int    `json:"best_score"`
	Games     int    `json:"games"`
	Wins      int    `json:"wins"`
}

// Leaderboard 排行榜：最高分 ZSET 加每个显示名的场次统计
type Leaderboard struct {
	client *redis.Client
	now    func() time.Time
}

// NewLeaderboard 创建排行榜
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client, now: time.Now}
}

// RecordSession 记录一局的结果，只保留每个显示名的最高分
func (lb *Leaderboard) RecordSession(ctx context.Context, result *SessionResult) error {
	if lb == nil || lb.client == nil || result == nil {
		return nil
	}

	dailyKey := dailyLeaderboard + lb.now().Format("2006-01-02")

	pipe := lb.client.TxPipeline()
	for _, entry := range result.Rankings {
		z := redis.Z{Score: float64(entry.Score), Member: entry.Name}
		pipe.ZAddGT(ctx, leaderboardKey, z)
		pipe.ZAddGT(ctx, dailyKey, z)

		statsKey := playerStatsKey + entry.Name
		pipe.HIncrBy(ctx, statsKey, "games", 1)
		if entry.PlayerID == result.WinnerID {
			pipe.HIncrBy(ctx, statsKey, "wins", 1)
		}
	}
	pipe.Expire(ctx, dailyKey, dailyExpiration)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("更新排行榜失败: %w", err)
	}
	return nil
}

// GetLeaderboard 获取总榜前 limit 名
func (lb *Leaderboard) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return lb.getRange(ctx, leaderboardKey, limit)
}

// GetDailyLeaderboard 获取今日榜前 limit 名
func (lb *Leaderboard) GetDailyLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return lb.getRange(ctx, dailyLeaderboard+lb.now().Format("2006-01-02"), limit)
}

func (lb *Leaderboard) getRange(ctx context.Context, key string, limit int) ([]LeaderboardEntry, error) {
	if lb == nil || lb.client == nil || limit <= 0 {
		return []LeaderboardEntry{}, nil
	}

	results, err := lb.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, z := range results {
		name, _ := z.Member.(string)
		games, wins, err := lb.getStats(ctx, name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{
			Rank:      i + 1,
			Name:      name,
			BestScore: int(z.Score),
			Games:     games,
			Wins:      wins,
		})
	}
	return entries, nil
}

func (lb *Leaderboard) getStats(ctx context.Context, name string) (games, wins int, err error) {
	data, err := lb.client.HGetAll(ctx, playerStatsKey+name).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, err
	}
	games, _ = strconv.Atoi(data["games"])
	wins, _ = strconv.Atoi(data["wins"])
	return games, wins, nil
}
