//go:build !production

package testutil

import (
	"context"
	"sync"

	"github.com/palemoky/apple-clash/internal/server/storage"
)

// MemoryRoomStore 内存版房间快照存储
type MemoryRoomStore struct {
	mu      sync.Mutex
	rooms   map[string]*storage.RoomData
	deleted []string
}

// NewMemoryRoomStore 创建内存版房间快照存储
func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{rooms: make(map[string]*storage.RoomData)}
}

func (s *MemoryRoomStore) SaveRoom(_ context.Context, code string, data *storage.RoomData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[code] = data
	return nil
}

func (s *MemoryRoomStore) DeleteRoom(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	s.deleted = append(s.deleted, code)
	return nil
}

// Get 读取快照
func (s *MemoryRoomStore) Get(code string) *storage.RoomData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[code]
}

// Deleted 返回被删除过的房间号
func (s *MemoryRoomStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// MemoryQueueStore 内存版匹配队列镜像
type MemoryQueueStore struct {
	mu  sync.Mutex
	ids []string
}

func (s *MemoryQueueStore) AddToMatchQueue(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return nil
}

func (s *MemoryQueueStore) RemoveFromMatchQueue(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryQueueStore) ClearMatchQueue(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	return nil
}

// IDs 返回镜像中的玩家 ID
func (s *MemoryQueueStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

// MemoryRecorder 记录对局结果
type MemoryRecorder struct {
	mu      sync.Mutex
	results []*storage.SessionResult
}

func (r *MemoryRecorder) RecordSession(_ context.Context, result *storage.SessionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

// Results 返回已记录的结果
func (r *MemoryRecorder) Results() []*storage.SessionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*storage.SessionResult(nil), r.results...)
}
