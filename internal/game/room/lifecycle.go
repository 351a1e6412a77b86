package room

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/apperrors"
	"github.com/palemoky/apple-clash/internal/game/board"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/server/storage"
	"github.com/palemoky/apple-clash/internal/types"
)

const tickInterval = time.Second

// StartGame 房主开始对局：Lobby -> Active
func (rm *RoomManager) StartGame(client types.ClientInterface) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	p := room.findPlayer(client.GetID())
	if p == nil {
		return apperrors.ErrNotInRoom
	}
	if !p.IsHost {
		return apperrors.ErrNotHost
	}
	if room.state != RoomStateLobby || room.dissolved {
		return apperrors.ErrAlreadyStarted
	}
	participants := room.participants()
	if len(participants) == 0 || (room.Config.Mode == ModeElimination && len(participants) < 2) {
		return apperrors.ErrNotEnoughPlayers
	}

	rm.startLocked(room)
	return nil
}

// startLocked 进入 Active：重置分数、发牌、启动计时器
func (rm *RoomManager) startLocked(room *Room) {
	cfg := room.Config
	room.state = RoomStateActive
	room.sessionID = storage.NewSessionID()
	room.startedAt = rm.now()
	room.elapsed = 0
	room.remaining = cfg.TimeLimit
	if cfg.Mode == ModeFixedBoard {
		room.remaining = rm.cfg.FixedBoardTimeLimit
	}

	cells := rm.cfg.CellCount()
	var shared board.Board
	if cfg.Mode == ModeFixedBoard {
		shared = rm.generator.Generate(cells, 0, 0)
	}

	participants := 0
	for _, p := range room.players {
		p.Score = 0
		p.LastScoreAt = time.Time{}
		p.Alive = !p.Spectator

		if p.Spectator {
			p.Board = board.Board{}
			p.Client.SendMessage(codec.MustNewMessage(protocol.MsgSpectating, protocol.SpectatingPayload{
				Mode: string(cfg.Mode),
			}))
			continue
		}

		participants++
		if cfg.Mode == ModeFixedBoard {
			p.Board = shared.Clone()
		} else {
			p.Board = rm.generator.Generate(cells, cfg.SpecialCount, cfg.BonusCount)
		}
		p.Client.SendMessage(codec.MustNewMessage(protocol.MsgSessionStarted, protocol.SessionStartedPayload{
			Mode:      string(cfg.Mode),
			Grid:      p.Board.Grid,
			Specials:  p.Board.Specials,
			Bonuses:   p.Board.Bonuses,
			TimeLimit: room.remaining,
		}))
	}
	room.originalParticipants = participants

	room.broadcastMembers()

	room.clock = rm.newClock(tickInterval, func() { rm.tick(room) })
	room.clock.Start()

	rm.saveAsync(room.snapshot())

	log.Info().Str("room", room.Code).Str("session", room.sessionID).Str("mode", string(cfg.Mode)).
		Int("players", participants).Msg("🎮 对局开始")
}

// tick 每秒一次：倒计时或淘汰检查
func (rm *RoomManager) tick(room *Room) {
	room.mu.Lock()
	if room.state != RoomStateActive {
		room.mu.Unlock()
		return
	}

	room.elapsed++
	ended := false

	if room.Config.Mode == ModeElimination {
		if room.elapsed%rm.sweepInterval() == 0 {
			sweepLocked(room)
		}
		ended = len(room.aliveParticipants()) <= 1
	} else {
		room.remaining--
		room.broadcast(codec.MustNewMessage(protocol.MsgTimeUpdate, protocol.TimeUpdatePayload{
			SecondsRemaining: max(room.remaining, 0),
		}))
		ended = room.remaining <= 0
	}

	if !ended {
		room.mu.Unlock()
		return
	}

	result := rm.endSessionLocked(room)
	room.mu.Unlock()
	rm.finishSession(room, result)
}

func (rm *RoomManager) sweepInterval() int {
	if rm.cfg.SweepInterval <= 0 {
		return 60
	}
	return rm.cfg.SweepInterval
}

// shouldEndAfterLeave 对局中有人离开后是否应结束，调用方持有 room.mu
func (r *Room) shouldEndAfterLeave() bool {
	if r.Config.Mode == ModeElimination {
		return r.originalParticipants >= 2 && len(r.aliveParticipants()) <= 1
	}
	return len(r.participants()) == 0
}

// endSessionLocked Active -> Ended，只会生效一次。返回需要记录的结果
func (rm *RoomManager) endSessionLocked(room *Room) *storage.SessionResult {
	if room.state != RoomStateActive {
		return nil
	}

	ranked := rankPlayers(room.participants())
	winner := pickWinner(room, ranked)

	rankings := make([]protocol.RankingEntry, 0, len(ranked))
	entries := make([]storage.ResultEntry, 0, len(ranked))
	for i, p := range ranked {
		rankings = append(rankings, protocol.RankingEntry{
			Rank:       i + 1,
			ID:         p.ID,
			Name:       p.Name,
			Score:      p.Score,
			Eliminated: !p.Alive,
		})
		entries = append(entries, storage.ResultEntry{
			Rank:       i + 1,
			PlayerID:   p.ID,
			Name:       p.Name,
			Score:      p.Score,
			Eliminated: !p.Alive,
		})
	}

	ended := &protocol.SessionEndedPayload{Rankings: rankings}
	result := &storage.SessionResult{
		SessionID: room.sessionID,
		RoomCode:  room.Code,
		Mode:      string(room.Config.Mode),
		StartedAt: room.startedAt,
		EndedAt:   rm.now(),
		Rankings:  entries,
	}
	if winner != nil {
		ended.Winner = winner.Name
		ended.WinnerID = winner.ID
		result.Winner = winner.Name
		result.WinnerID = winner.ID
	}

	room.broadcast(codec.MustNewMessage(protocol.MsgSessionEnded, ended))
	room.dissolveLocked()

	log.Info().Str("room", room.Code).Str("session", room.sessionID).Str("winner", result.Winner).
		Int("elapsed", room.elapsed).Msg("🏁 对局结束")
	return result
}

// dissolveLocked 停止计时器并清空成员的房间归属
func (r *Room) dissolveLocked() {
	r.state = RoomStateEnded
	r.dissolved = true
	if r.clock != nil {
		r.clock.Stop()
	}
	for _, p := range r.players {
		p.Client.SetRoom("")
	}
}

// finishSession 删除房间并异步记录结果，调用方不能持有房间锁
func (rm *RoomManager) finishSession(room *Room, result *storage.SessionResult) {
	rm.removeRoom(room.Code)
	if result == nil || rm.recorder == nil || len(result.Rankings) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := rm.recorder.RecordSession(ctx, result); err != nil {
			log.Warn().Err(err).Str("session", result.SessionID).Msg("记录对局结果失败")
		}
	}()
}

// rankPlayers 分数降序，同分时先得分者在前，再按加入顺序
func rankPlayers(players []*Player) []*Player {
	ranked := slices.Clone(players)
	slices.SortStableFunc(ranked, func(a, b *Player) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := a.LastScoreAt.Compare(b.LastScoreAt); c != 0 {
			return c
		}
		return cmp.Compare(a.JoinSeq, b.JoinSeq)
	})
	return ranked
}

// pickWinner 淘汰赛取最后存活者，其他模式取第一名
func pickWinner(room *Room, ranked []*Player) *Player {
	if room.Config.Mode == ModeElimination {
		if alive := room.aliveParticipants(); len(alive) == 1 {
			return alive[0]
		}
	}
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0]
}

// UpdatePlayerState 记录玩家上报的棋盘和分数并转发给其他成员
func (rm *RoomManager) UpdatePlayerState(client types.ClientInterface, state protocol.MyStateUpdatePayload) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state != RoomStateActive {
		return apperrors.ErrNotActive
	}
	p := room.findPlayer(client.GetID())
	if p == nil {
		return apperrors.ErrNotInRoom
	}
	if p.Spectator || !p.Alive {
		return nil
	}

	snapshot := board.Board{
		Grid:     state.Grid,
		Specials: state.Specials,
		Bonuses:  state.Bonuses,
		Frozen:   state.Frozen,
	}.Sanitize(rm.cfg.CellCount())
	p.Board = snapshot

	if state.Score != p.Score {
		p.Score = state.Score
		p.LastScoreAt = rm.now()
	}

	room.broadcastExcept(p.ID, codec.MustNewMessage(protocol.MsgPeerStateUpdate, protocol.PeerStatePayload{
		PlayerID: p.ID,
		Grid:     snapshot.Grid,
		Specials: snapshot.Specials,
		Bonuses:  snapshot.Bonuses,
		Frozen:   snapshot.Frozen,
		Score:    p.Score,
	}))
	return nil
}

// RegenerateBoard 玩家无解时重新生成棋盘，密度与本局相同
func (rm *RoomManager) RegenerateBoard(client types.ClientInterface) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state != RoomStateActive {
		return apperrors.ErrNotActive
	}
	p := room.findPlayer(client.GetID())
	if p == nil {
		return apperrors.ErrNotInRoom
	}
	if p.Spectator || !p.Alive {
		return apperrors.ErrNotActive
	}

	p.Board = rm.generator.Generate(rm.cfg.CellCount(), room.Config.SpecialCount, room.Config.BonusCount)
	p.Client.SendMessage(codec.MustNewMessage(protocol.MsgBoardRegenerated, protocol.BoardPayload{
		Grid:     p.Board.Grid,
		Specials: p.Board.Specials,
		Bonuses:  p.Board.Bonuses,
	}))
	return nil
}

// RunCleanup 定期清理长时间未开局的房间，直到 ctx 结束
func (rm *RoomManager) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.cleanup()
		}
	}
}

// cleanup 清理超时的等待房间
func (rm *RoomManager) cleanup() {
	timeout := rm.cfg.RoomTimeoutDuration()
	if timeout <= 0 {
		return
	}
	now := rm.now()

	var expired []string
	rm.mu.Lock()
	for code, room := range rm.rooms {
		room.mu.Lock()
		if room.state == RoomStateLobby && now.Sub(room.CreatedAt) > timeout {
			room.broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "房间超时已关闭"))
			room.dissolveLocked()
			delete(rm.rooms, code)
			expired = append(expired, code)
		}
		room.mu.Unlock()
	}
	rm.mu.Unlock()

	for _, code := range expired {
		log.Info().Str("room", code).Msg("🧹 房间超时已清理")
		if rm.store == nil {
			continue
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			_ = rm.store.DeleteRoom(ctx, code)
		}()
	}
}
