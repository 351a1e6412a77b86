package room

import (
	"github.com/palemoky/apple-clash/internal/server/storage"
)

// snapshot 生成房间快照，调用方持有 r.mu
func (r *Room) snapshot() *storage.RoomData {
	data := &storage.RoomData{
		Code:       r.Code,
		State:      r.state.String(),
		Mode:       string(r.Config.Mode),
		MaxPlayers: r.Config.MaxPlayers,
		Private:    r.Config.Private,
		TimeLimit:  r.Config.TimeLimit,
		Players:    make([]storage.PlayerData, 0, len(r.players)),
		SessionID:  r.sessionID,
		CreatedAt:  r.CreatedAt.Unix(),
	}
	if !r.startedAt.IsZero() {
		data.StartedAt = r.startedAt.Unix()
	}

	for _, p := range r.players {
		data.Players = append(data.Players, storage.PlayerData{
			ID:        p.ID,
			Name:      p.Name,
			IsHost:    p.IsHost,
			Score:     p.Score,
			Alive:     p.Alive,
			Spectator: p.Spectator,
		})
	}
	return data
}

// ToRoomData 将 Room 转换为可序列化的 RoomData
func (r *Room) ToRoomData() *storage.RoomData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}
