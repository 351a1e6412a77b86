package storage

import (
	"context"
	"errors"
	"time"
)

// SessionResult 一局结束后的结果
type SessionResult struct {
	SessionID string        `json:"session_id"`
	RoomCode  string        `json:"room_code"`
	Mode      string        `json:"mode"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	WinnerID  string        `json:"winner_id"`
	Winner    string        `json:"winner"`
	Rankings  []ResultEntry `json:"rankings"`
}

// ResultEntry 结果中的单个玩家
type ResultEntry struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Eliminated bool   `json:"eliminated"`
}

// Recorder 结果记录器
type Recorder interface {
	RecordSession(ctx context.Context, result *SessionResult) error
}

// MultiRecorder 依次写入多个记录器，单个失败不影响其他记录器
type MultiRecorder []Recorder

// RecordSession 写入全部记录器，返回合并后的错误
func (m MultiRecorder) RecordSession(ctx context.Context, result *SessionResult) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.RecordSession(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
