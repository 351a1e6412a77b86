package room

import (
	"cmp"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
)

// SweepOrder 返回淘汰顺序：分数升序；同分时最近得分者在前；再同则后加入者在前
func SweepOrder(alive []*Player) []*Player {
	order := slices.Clone(alive)
	slices.SortFunc(order, func(a, b *Player) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		if c := b.LastScoreAt.Compare(a.LastScoreAt); c != 0 {
			return c
		}
		return cmp.Compare(b.JoinSeq, a.JoinSeq)
	})
	return order
}

// EliminateCount 每轮淘汰人数：存活人数的一半（向下取整）
func EliminateCount(alive int) int {
	if alive < 2 {
		return 0
	}
	return alive / 2
}

// sweepLocked 执行一轮淘汰，同一时刻只能调用一次。调用方持有 r.mu
func sweepLocked(r *Room) []*Player {
	alive := r.aliveParticipants()
	n := EliminateCount(len(alive))
	if n == 0 {
		return nil
	}

	victims := SweepOrder(alive)[:n]
	for _, p := range victims {
		p.Alive = false
		r.broadcast(codec.MustNewMessage(protocol.MsgPlayerEliminated, protocol.PlayerEliminatedPayload{
			PlayerID: p.ID,
			Name:     p.Name,
		}))
		log.Info().Str("room", r.Code).Str("player", p.Name).Int("score", p.Score).Msg("💀 玩家被淘汰")
	}
	r.broadcastMembers()
	return victims
}
