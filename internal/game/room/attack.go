package room

import (
	"github.com/palemoky/apple-clash/internal/apperrors"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
	"github.com/palemoky/apple-clash/internal/types"
)

// ResolveTarget 选择攻击目标：指定目标存活且不是自己时使用指定目标，
// 否则在其他存活玩家中随机选择；没有可选目标时返回 nil
func ResolveTarget(players []*Player, attackerID, explicitID string, intN func(n int) int) *Player {
	candidates := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.Spectator || !p.Alive || p.ID == attackerID {
			continue
		}
		if p.ID == explicitID {
			return p
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[intN(len(candidates))]
}

// Attack 转发干扰效果。目标不存在时静默丢弃，服务端不修改任何棋盘
func (rm *RoomManager) Attack(client types.ClientInterface, attackType AttackType, targetID string) error {
	if !attackType.Valid() {
		return apperrors.ErrInvalidAttack
	}

	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state != RoomStateActive {
		return apperrors.ErrNotActive
	}
	attacker := room.findPlayer(client.GetID())
	if attacker == nil {
		return apperrors.ErrNotInRoom
	}
	if attacker.Spectator || !attacker.Alive {
		return apperrors.ErrNotActive
	}

	target := ResolveTarget(room.players, attacker.ID, targetID, rm.intN)
	if target == nil {
		return nil
	}

	target.Client.SendMessage(codec.MustNewMessage(protocol.MsgAttacked, protocol.AttackedPayload{
		Type:         string(attackType),
		AttackerName: attacker.Name,
		AttackerID:   attacker.ID,
	}))
	room.broadcast(codec.MustNewMessage(protocol.MsgAttackBroadcast, protocol.AttackBroadcastPayload{
		From: attacker.ID,
		To:   target.ID,
		Type: string(attackType),
	}))
	return nil
}
