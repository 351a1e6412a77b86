package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

const (
	historyKey = "session:history"

	// 最多保留的历史对局数
	maxHistory = 200
)

// History 最近对局记录（Redis list，新记录追加在尾部）
type History struct {
	client *redis.Client
}

// NewHistory 创建历史记录
func NewHistory(client *redis.Client) *History {
	return &History{client: client}
}

// RecordSession 追加一条对局记录
func (h *History) RecordSession(ctx context.Context, result *SessionResult) error {
	if h == nil || h.client == nil || result == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化对局记录失败: %w", err)
	}

	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, historyKey, data)
	pipe.LTrim(ctx, historyKey, -maxHistory, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入对局记录失败: %w", err)
	}
	return nil
}

// Recent 返回最近 limit 局，最新的在前
func (h *History) Recent(ctx context.Context, limit int) ([]SessionResult, error) {
	if h == nil || h.client == nil || limit <= 0 {
		return []SessionResult{}, nil
	}

	raw, err := h.client.LRange(ctx, historyKey, int64(-limit), -1).Result()
	if err != nil {
		return nil, err
	}

	results := make([]SessionResult, 0, len(raw))
	for _, item := range raw {
		var r SessionResult
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			continue
		}
		results = append(results, r)
	}
	slices.Reverse(results)
	return results, nil
}
