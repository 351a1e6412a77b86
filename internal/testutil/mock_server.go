//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/types"
)

// MockServer 实现 types.ServerInterface 的 mock
type MockServer struct {
	mock.Mock
}

func (m *MockServer) IsMaintenanceMode() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockServer) GetOnlineCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockServer) BroadcastToLobby(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockServer) GetClientByID(id string) types.ClientInterface {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(types.ClientInterface)
}

// SimpleServer 内存版服务器，大厅广播发给所有不在房间内的已登记客户端
type SimpleServer struct {
	mu          sync.Mutex
	clients     map[string]types.ClientInterface
	maintenance bool
	lobby       []*protocol.Message
}

// NewSimpleServer 创建内存版服务器
func NewSimpleServer() *SimpleServer {
	return &SimpleServer{clients: make(map[string]types.ClientInterface)}
}

// Register 登记客户端
func (s *SimpleServer) Register(c types.ClientInterface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.GetID()] = c
}

// SetMaintenance 设置维护模式
func (s *SimpleServer) SetMaintenance(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maintenance = on
}

// LobbyMessages 返回大厅广播记录
func (s *SimpleServer) LobbyMessages() []*protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*protocol.Message, len(s.lobby))
	copy(out, s.lobby)
	return out
}

func (s *SimpleServer) IsMaintenanceMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maintenance
}

func (s *SimpleServer) GetOnlineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *SimpleServer) BroadcastToLobby(msg *protocol.Message) {
	s.mu.Lock()
	s.lobby = append(s.lobby, msg)
	targets := make([]types.ClientInterface, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if c.GetRoom() == "" {
			c.SendMessage(msg)
		}
	}
}

func (s *SimpleServer) GetClientByID(id string) types.ClientInterface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients[id]
}
