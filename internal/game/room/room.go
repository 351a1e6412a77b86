package room

import (
	"strings"
	"sync"
	"time"

	"github.com/palemoky/apple-clash/internal/apperrors"
	"github.com/palemoky/apple-clash/internal/game/board"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/types"
)

const (
	roomCodeLength  = 4            // 房间号长度
	roomCodeChars   = "0123456789" // 房间号字符集
	maxCodeAttempts = 200          // 房间号最多尝试次数
)

// RoomConfig 房间参数
type RoomConfig struct {
	MaxPlayers   int
	Mode         Mode
	TimeLimit    int // 秒，淘汰赛不倒计时
	SpecialCount int
	BonusCount   int
	Private      bool
}

// Player 房间中的玩家
type Player struct {
	Client      types.ClientInterface
	ID          string
	Name        string
	IsHost      bool
	Score       int
	LastScoreAt time.Time // 最近一次得分时间，用于同分排序
	Alive       bool
	Spectator   bool
	JoinSeq     uint64      // 加入顺序
	Board       board.Board // 客户端最近一次上报的棋盘
}

// Room 游戏房间，成员、分数和状态都由 mu 保护
type Room struct {
	Code      string
	Config    RoomConfig
	CreatedAt time.Time

	mu                   sync.RWMutex
	state                RoomState
	players              []*Player // 按加入顺序
	nextSeq              uint64
	banned               map[string]struct{}
	clock                Ticker
	elapsed              int
	remaining            int
	sessionID            string
	startedAt            time.Time
	originalParticipants int
	dissolved            bool
}

func newRoom(code string, cfg RoomConfig, now time.Time) *Room {
	return &Room{
		Code:      code,
		Config:    cfg,
		CreatedAt: now,
		state:     RoomStateLobby,
		players:   make([]*Player, 0, cfg.MaxPlayers),
		banned:    make(map[string]struct{}),
	}
}

// --- 成员管理（调用方持有 r.mu） ---

func (r *Room) addPlayer(client types.ClientInterface, name string, spectator bool) *Player {
	r.nextSeq++
	p := &Player{
		Client:    client,
		ID:        client.GetID(),
		Name:      name,
		IsHost:    len(r.players) == 0,
		Alive:     !spectator,
		Spectator: spectator,
		JoinSeq:   r.nextSeq,
	}
	r.players = append(r.players, p)
	return p
}

func (r *Room) findPlayer(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// removePlayer 移除玩家，房主离开时移交给最早加入的成员
func (r *Room) removePlayer(id string) *Player {
	for i, p := range r.players {
		if p.ID != id {
			continue
		}
		r.players = append(r.players[:i], r.players[i+1:]...)
		if p.IsHost && len(r.players) > 0 {
			r.players[0].IsHost = true
		}
		return p
	}
	return nil
}

// checkJoinLocked 加入前的校验，member 为 true 表示已在房间中
func (r *Room) checkJoinLocked(id, name string) (member bool, err error) {
	if r.dissolved {
		return false, apperrors.ErrRoomNotFound
	}
	if r.findPlayer(id) != nil {
		return true, nil
	}
	if len(r.players) >= r.Config.MaxPlayers {
		return false, apperrors.ErrRoomFull
	}
	if r.state != RoomStateLobby {
		return false, apperrors.ErrAlreadyStarted
	}
	if r.isBanned(name) {
		return false, apperrors.ErrBanned
	}
	return false, nil
}

func (r *Room) isBanned(name string) bool {
	_, ok := r.banned[strings.TrimSpace(name)]
	return ok
}

func (r *Room) ban(name string) {
	r.banned[strings.TrimSpace(name)] = struct{}{}
}

func (r *Room) participants() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if !p.Spectator {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) aliveParticipants() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if !p.Spectator && p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// --- 广播（调用方持有 r.mu） ---

func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.players {
		p.Client.SendMessage(msg)
	}
}

func (r *Room) broadcastExcept(excludeID string, msg *protocol.Message) {
	for _, p := range r.players {
		if p.ID != excludeID {
			p.Client.SendMessage(msg)
		}
	}
}

func (r *Room) playersInfo() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		infos = append(infos, protocol.PlayerInfo{
			ID:        p.ID,
			Name:      p.Name,
			IsHost:    p.IsHost,
			Score:     p.Score,
			Alive:     p.Alive,
			Spectator: p.Spectator,
		})
	}
	return infos
}

func (r *Room) broadcastMembers() {
	r.broadcast(codec.MustNewMessage(protocol.MsgMembersUpdate, r.playersInfo()))
}

func (r *Room) info() protocol.RoomInfoPayload {
	return protocol.RoomInfoPayload{
		RoomCode:   r.Code,
		MaxPlayers: r.Config.MaxPlayers,
		Mode:       string(r.Config.Mode),
		Private:    r.Config.Private,
		TimeLimit:  r.Config.TimeLimit,
	}
}

// --- 只读访问 ---

// State 当前状态
func (r *Room) State() RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Info 房间信息（roomCreated / roomJoined）
func (r *Room) Info() protocol.RoomInfoPayload {
	return r.info()
}

// PlayersInfo 成员列表
func (r *Room) PlayersInfo() []protocol.PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playersInfo()
}

// PlayerCount 成员数（含观战）
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// HasPlayer 是否包含该玩家
func (r *Room) HasPlayer(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findPlayer(id) != nil
}

// HostID 当前房主
func (r *Room) HostID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		if p.IsHost {
			return p.ID
		}
	}
	return ""
}

// Remaining 剩余秒数（淘汰赛无意义）
func (r *Room) Remaining() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.remaining
}

// Elapsed 已进行秒数
func (r *Room) Elapsed() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.elapsed
}

// SessionID 本局 ID，开局前为空
func (r *Room) SessionID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessionID
}

// BroadcastMembers 广播成员列表
func (r *Room) BroadcastMembers() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.broadcastMembers()
}

// Player 返回玩家副本，不存在时 ok 为 false
func (r *Room) Player(id string) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.findPlayer(id)
	if p == nil {
		return Player{}, false
	}
	return *p, true
}
