package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"
	matchQueueKey = "match:queue"

	// 房间快照过期时间
	roomExpiration = 2 * time.Hour
)

// RoomData 房间快照（只写镜像，供运维查看，服务重启后不会恢复）
type RoomData struct {
	Code       string       `json:"code"`
	State      string       `json:"state"`
	Mode       string       `json:"mode"`
	MaxPlayers int          `json:"max_players"`
	Private    bool         `json:"private"`
	TimeLimit  int          `json:"time_limit"`
	Players    []PlayerData `json:"players"`
	SessionID  string       `json:"session_id,omitempty"`
	CreatedAt  int64        `json:"created_at"`
	StartedAt  int64        `json:"started_at,omitempty"`
}

// PlayerData 玩家快照
type PlayerData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsHost    bool   `json:"is_host"`
	Score     int    `json:"score"`
	Alive     bool   `json:"alive"`
	Spectator bool   `json:"spectator"`
}

// RedisStore Redis 存储，client 为 nil 时所有写操作直接忽略
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (rs *RedisStore) disabled() bool {
	return rs == nil || rs.client == nil
}

// --- 房间快照 ---

// SaveRoom 保存房间快照
func (rs *RedisStore) SaveRoom(ctx context.Context, roomCode string, data *RoomData) error {
	if rs.disabled() || data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+roomCode, jsonData, roomExpiration).Err()
}

// LoadRoom 读取房间快照，不存在时返回 nil
func (rs *RedisStore) LoadRoom(ctx context.Context, roomCode string) (*RoomData, error) {
	if rs.disabled() {
		return nil, nil
	}
	data, err := rs.client.Get(ctx, roomKeyPrefix+roomCode).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}
	return &roomData, nil
}

// DeleteRoom 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, roomCode string) error {
	if rs.disabled() {
		return nil
	}
	return rs.client.Del(ctx, roomKeyPrefix+roomCode).Err()
}

// --- 匹配队列镜像 ---

// AddToMatchQueue 添加玩家到匹配队列镜像
func (rs *RedisStore) AddToMatchQueue(ctx context.Context, playerID string) error {
	if rs.disabled() {
		return nil
	}
	return rs.client.RPush(ctx, matchQueueKey, playerID).Err()
}

// RemoveFromMatchQueue 从匹配队列镜像移除玩家
func (rs *RedisStore) RemoveFromMatchQueue(ctx context.Context, playerID string) error {
	if rs.disabled() {
		return nil
	}
	return rs.client.LRem(ctx, matchQueueKey, 0, playerID).Err()
}

// ClearMatchQueue 清空匹配队列镜像（开房或启动时调用）
func (rs *RedisStore) ClearMatchQueue(ctx context.Context) error {
	if rs.disabled() {
		return nil
	}
	return rs.client.Del(ctx, matchQueueKey).Err()
}

// GetMatchQueue 读取匹配队列镜像
func (rs *RedisStore) GetMatchQueue(ctx context.Context) ([]string, error) {
	if rs.disabled() {
		return nil, nil
	}
	return rs.client.LRange(ctx, matchQueueKey, 0, -1).Result()
}
