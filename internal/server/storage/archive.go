package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS clash_sessions (
	id         TEXT PRIMARY KEY,
	room_code  TEXT NOT NULL,
	mode       TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	ended_at   TIMESTAMPTZ NOT NULL,
	winner_id  TEXT NOT NULL,
	winner     TEXT NOT NULL,
	rankings   JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS clash_session_players (
	session_id TEXT NOT NULL REFERENCES clash_sessions(id) ON DELETE CASCADE,
	rank       INT NOT NULL,
	player_id  TEXT NOT NULL,
	name       TEXT NOT NULL,
	score      INT NOT NULL,
	eliminated BOOLEAN NOT NULL,
	PRIMARY KEY (session_id, player_id)
);`

const insertSessionSQL = `INSERT INTO clash_sessions
	(id, room_code, mode, started_at, ended_at, winner_id, winner, rankings)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING`

const insertSessionPlayerSQL = `INSERT INTO clash_session_players
	(session_id, rank, player_id, name, score, eliminated)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (session_id, player_id) DO NOTHING`

// DBTX 归档所需的最小数据库接口，pgxpool.Pool 和 pgx.Tx 都满足
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Archive Postgres 对局归档
type Archive struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewArchive 基于已有连接创建归档
func NewArchive(db DBTX) *Archive {
	return &Archive{db: db}
}

// OpenArchive 连接 Postgres 并建表
func OpenArchive(ctx context.Context, dsn string) (*Archive, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("连接 Postgres 失败: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("Postgres 不可用: %w", err)
	}

	a := &Archive{db: pool, pool: pool}
	if err := a.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

// EnsureSchema 建表（幂等）
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Exec(ctx, archiveSchema); err != nil {
		return fmt.Errorf("创建归档表失败: %w", err)
	}
	return nil
}

// RecordSession 归档一局结果
func (a *Archive) RecordSession(ctx context.Context, result *SessionResult) error {
	if a == nil || a.db == nil || result == nil {
		return nil
	}

	rankings, err := json.Marshal(result.Rankings)
	if err != nil {
		return fmt.Errorf("序列化排名失败: %w", err)
	}

	if _, err := a.db.Exec(ctx, insertSessionSQL,
		result.SessionID, result.RoomCode, result.Mode,
		result.StartedAt, result.EndedAt,
		result.WinnerID, result.Winner, rankings,
	); err != nil {
		return fmt.Errorf("归档对局失败: %w", err)
	}

	for _, entry := range result.Rankings {
		if _, err := a.db.Exec(ctx, insertSessionPlayerSQL,
			result.SessionID, entry.Rank, entry.PlayerID, entry.Name, entry.Score, entry.Eliminated,
		); err != nil {
			return fmt.Errorf("归档玩家成绩失败: %w", err)
		}
	}
	return nil
}

// Close 关闭连接池
func (a *Archive) Close() {
	if a != nil && a.pool != nil {
		a.pool.Close()
	}
}
