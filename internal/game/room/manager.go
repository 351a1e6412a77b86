package room

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/apperrors"
	"github.com/palemoky/apple-clash/internal/config"
	"github.com/palemoky/apple-clash/internal/game/board"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/server/storage"
	"github.com/palemoky/apple-clash/internal/types"
)

const storeTimeout = 3 * time.Second

// Options RoomManager 依赖
type Options struct {
	Config    config.GameConfig
	Store     types.RoomStore      // 可为 nil
	Recorder  types.ResultRecorder // 可为 nil
	Generator *board.Generator     // 为 nil 时按配置列数创建
	NewClock  ClockFactory         // 为 nil 时使用 NewClock
	Now       func() time.Time
	IntN      func(n int) int // 随机数，用于房间号和随机攻击目标
}

// RoomManager 房间管理器：房间号分配、加入离开、对局生命周期
type RoomManager struct {
	cfg       config.GameConfig
	store     types.RoomStore
	recorder  types.ResultRecorder
	generator *board.Generator
	newClock  ClockFactory
	now       func() time.Time
	intN      func(n int) int

	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(opts Options) *RoomManager {
	rm := &RoomManager{
		cfg:       opts.Config,
		store:     opts.Store,
		recorder:  opts.Recorder,
		generator: opts.Generator,
		newClock:  opts.NewClock,
		now:       opts.Now,
		intN:      opts.IntN,
		rooms:     make(map[string]*Room),
	}
	if rm.generator == nil {
		rm.generator = board.NewGenerator(rm.cfg.BoardCols, nil)
	}
	if rm.newClock == nil {
		rm.newClock = NewClock
	}
	if rm.now == nil {
		rm.now = time.Now
	}
	if rm.intN == nil {
		rm.intN = rand.IntN
	}
	return rm
}

// normalizeConfig 把客户端参数收敛到合法范围
func (rm *RoomManager) normalizeConfig(cfg RoomConfig) RoomConfig {
	g := rm.cfg
	out := cfg
	out.Mode = ParseMode(string(cfg.Mode))

	if out.MaxPlayers <= 0 || out.MaxPlayers > g.MaxRoomPlayers {
		out.MaxPlayers = g.MaxRoomPlayers
	}
	out.MaxPlayers = max(out.MaxPlayers, 2)

	if out.TimeLimit <= 0 {
		out.TimeLimit = g.DefaultTimeLimit
	}
	out.TimeLimit = min(max(out.TimeLimit, g.MinTimeLimit), g.MaxTimeLimit)

	out.SpecialCount = min(max(out.SpecialCount, 0), g.MaxSpecialCount)
	out.BonusCount = min(max(out.BonusCount, 0), g.MaxSpecialCount)

	if out.Mode == ModeFixedBoard {
		out.SpecialCount = 0
		out.BonusCount = 0
		out.TimeLimit = g.FixedBoardTimeLimit
	}
	return out
}

// generateRoomCode 生成房间号，调用方持有 rm.mu
func (rm *RoomManager) generateRoomCode() (string, error) {
	code := make([]byte, roomCodeLength)
	for range maxCodeAttempts {
		for i := range code {
			code[i] = roomCodeChars[rm.intN(len(roomCodeChars))]
		}
		if _, exists := rm.rooms[string(code)]; !exists {
			return string(code), nil
		}
	}
	return "", apperrors.ErrCodeSpaceExhausted
}

// CreateRoom 创建房间，创建者成为房主并收到 roomCreated
func (rm *RoomManager) CreateRoom(client types.ClientInterface, cfg RoomConfig) (*Room, error) {
	cfg = rm.normalizeConfig(cfg)

	rm.mu.Lock()
	code, err := rm.generateRoomCode()
	if err != nil {
		rm.mu.Unlock()
		log.Error().Int("rooms", len(rm.rooms)).Msg("🚫 房间号已耗尽")
		return nil, err
	}
	room := newRoom(code, cfg, rm.now())
	room.addPlayer(client, client.GetName(), false)
	rm.rooms[code] = room
	rm.mu.Unlock()

	client.SetRoom(code)

	room.mu.RLock()
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, room.info()))
	room.broadcastMembers()
	rm.saveAsync(room.snapshot())
	room.mu.RUnlock()

	log.Info().Str("room", code).Str("player", client.GetName()).Str("mode", string(cfg.Mode)).Msg("🏠 房间已创建")
	return room, nil
}

// JoinRoom 加入房间，加入者先收到 roomJoined，随后全员收到 membersUpdate
func (rm *RoomManager) JoinRoom(client types.ClientInterface, code string, spectate bool) (*Room, error) {
	room := rm.GetRoom(code)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	name := client.GetName()
	member, err := room.checkJoinLocked(client.GetID(), name)
	if err != nil {
		return nil, err
	}
	if member {
		return room, nil
	}

	room.addPlayer(client, name, spectate)
	client.SetRoom(code)

	log.Info().Str("room", code).Str("player", name).Bool("spectator", spectate).Msg("👤 玩家加入房间")

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, room.info()))
	room.broadcastMembers()
	rm.saveAsync(room.snapshot())
	return room, nil
}

// CanJoin 只做检查不改变任何状态：id 以 name 加入 code 房间是否会被接受
func (rm *RoomManager) CanJoin(id, code, name string) error {
	room := rm.GetRoom(code)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}

	room.mu.RLock()
	defer room.mu.RUnlock()
	_, err := room.checkJoinLocked(id, name)
	return err
}

// LeaveRoom 离开房间（断线同样走这里）
func (rm *RoomManager) LeaveRoom(client types.ClientInterface) {
	code := client.GetRoom()
	if code == "" {
		return
	}

	room := rm.GetRoom(code)
	if room == nil {
		client.SetRoom("")
		return
	}

	room.mu.Lock()
	player := room.removePlayer(client.GetID())
	if player == nil {
		room.mu.Unlock()
		client.SetRoom("")
		return
	}
	client.SetRoom("")

	log.Info().Str("room", code).Str("player", player.Name).Int("remaining", len(room.players)).Msg("👋 玩家离开房间")

	if len(room.players) == 0 {
		room.dissolveLocked()
		room.mu.Unlock()
		rm.removeRoom(code)
		log.Info().Str("room", code).Msg("🏠 房间已解散")
		return
	}

	if room.state == RoomStateActive && room.shouldEndAfterLeave() {
		result := rm.endSessionLocked(room)
		room.mu.Unlock()
		rm.finishSession(room, result)
		return
	}

	room.broadcastMembers()
	rm.saveAsync(room.snapshot())
	room.mu.Unlock()
}

// Kick 房主踢人，被踢玩家的名字加入黑名单
func (rm *RoomManager) Kick(host types.ClientInterface, targetID string) error {
	room, err := rm.roomOf(host)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	requester := room.findPlayer(host.GetID())
	if requester == nil {
		return apperrors.ErrNotInRoom
	}
	if !requester.IsHost {
		return apperrors.ErrNotHost
	}
	if room.state != RoomStateLobby {
		return apperrors.ErrAlreadyStarted
	}
	if targetID == requester.ID {
		return apperrors.ErrTargetNotFound
	}
	target := room.findPlayer(targetID)
	if target == nil {
		return apperrors.ErrTargetNotFound
	}

	room.ban(target.Name)
	room.removePlayer(target.ID)
	target.Client.SetRoom("")
	target.Client.SendMessage(codec.MustNewMessage(protocol.MsgKicked, protocol.KickedPayload{
		Reason: "你已被房主移出房间",
	}))

	log.Info().Str("room", room.Code).Str("player", target.Name).Msg("🦶 玩家被踢出房间")

	room.broadcastMembers()
	rm.saveAsync(room.snapshot())
	return nil
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// GetRoomByPlayerID 通过玩家 ID 获取房间
func (rm *RoomManager) GetRoomByPlayerID(playerID string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	for _, room := range rm.rooms {
		if room.HasPlayer(playerID) {
			return room
		}
	}
	return nil
}

// GetRoomList 获取可加入的公开房间
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	rooms := make([]protocol.RoomListItem, 0, len(rm.rooms))
	for code, room := range rm.rooms {
		if room.Config.Private {
			continue
		}
		room.mu.RLock()
		if room.state == RoomStateLobby && len(room.players) < room.Config.MaxPlayers {
			rooms = append(rooms, protocol.RoomListItem{
				RoomCode:    code,
				PlayerCount: len(room.players),
				MaxPlayers:  room.Config.MaxPlayers,
				Mode:        string(room.Config.Mode),
			})
		}
		room.mu.RUnlock()
	}
	slices.SortFunc(rooms, func(a, b protocol.RoomListItem) int {
		return strings.Compare(a.RoomCode, b.RoomCode)
	})
	return rooms
}

// GetActiveGamesCount 获取进行中的对局数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		if room.State() == RoomStateActive {
			count++
		}
	}
	return count
}

// RoomCount 房间总数
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// MatchMember 匹配成功后进入房间的玩家
type MatchMember struct {
	Client types.ClientInterface
	Name   string
}

// CreateMatchRoom 一次性创建房间并放入全部匹配玩家，第一个玩家为房主
func (rm *RoomManager) CreateMatchRoom(members []MatchMember, cfg RoomConfig) (*Room, error) {
	if len(members) == 0 {
		return nil, apperrors.ErrNotEnoughPlayers
	}
	cfg.Mode = ModeElimination
	cfg = rm.normalizeConfig(cfg)
	cfg.MaxPlayers = max(len(members), 2)

	rm.mu.Lock()
	code, err := rm.generateRoomCode()
	if err != nil {
		rm.mu.Unlock()
		return nil, err
	}
	room := newRoom(code, cfg, rm.now())
	room.mu.Lock()
	for _, m := range members {
		room.addPlayer(m.Client, m.Name, false)
		m.Client.SetRoom(code)
	}
	rm.rooms[code] = room
	rm.saveAsync(room.snapshot())
	room.mu.Unlock()
	rm.mu.Unlock()

	log.Info().Str("room", code).Int("players", len(members)).Msg("🎯 匹配房间已创建")
	return room, nil
}

// roomOf 返回客户端所在的房间
func (rm *RoomManager) roomOf(client types.ClientInterface) (*Room, error) {
	code := client.GetRoom()
	if code == "" {
		return nil, apperrors.ErrNotInRoom
	}
	room := rm.GetRoom(code)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

// removeRoom 从注册表删除房间，调用方不能持有房间锁
func (rm *RoomManager) removeRoom(code string) {
	rm.mu.Lock()
	delete(rm.rooms, code)
	rm.mu.Unlock()

	if rm.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := rm.store.DeleteRoom(ctx, code); err != nil {
			log.Warn().Err(err).Str("room", code).Msg("删除房间快照失败")
		}
	}()
}

// saveAsync 异步写入房间快照
func (rm *RoomManager) saveAsync(data *storage.RoomData) {
	if rm.store == nil || data == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := rm.store.SaveRoom(ctx, data.Code, data); err != nil {
			log.Warn().Err(err).Str("room", data.Code).Msg("保存房间快照失败")
		}
	}()
}
