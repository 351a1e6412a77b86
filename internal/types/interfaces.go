package types

import (
	"context"

	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/server/storage"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
	BroadcastToLobby(msg *protocol.Message)
	GetClientByID(id string) ClientInterface
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string
	GetName() string
	SetName(name string)
	GetRoom() string
	SetRoom(code string)
	SendMessage(msg *protocol.Message)
	Close()
}

// RoomStore 房间快照存储（只写镜像，不用于恢复）
type RoomStore interface {
	SaveRoom(ctx context.Context, roomCode string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, roomCode string) error
}

// QueueStore 匹配队列镜像存储
type QueueStore interface {
	AddToMatchQueue(ctx context.Context, playerID string) error
	RemoveFromMatchQueue(ctx context.Context, playerID string) error
	ClearMatchQueue(ctx context.Context) error
}

// ResultRecorder 对局结果记录器
type ResultRecorder interface {
	RecordSession(ctx context.Context, result *storage.SessionResult) error
}
