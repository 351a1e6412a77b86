package protocol

import "encoding/json"

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Name         string `json:"name"`
	MaxPlayers   int    `json:"maxPlayers"`
	Mode         string `json:"mode"`
	TimeLimit    int    `json:"timeLimit"` // 秒
	SpecialCount int    `json:"specialCount"`
	BonusCount   int    `json:"bonusCount"`
	Private      bool   `json:"private"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	Name     string `json:"name"`
	RoomCode string `json:"roomCode"`
	Spectate bool   `json:"spectate,omitempty"`
}

// RoomCodePayload 只携带房间号的请求（startGame / requestBoardRegen / leaveRoom）
type RoomCodePayload struct {
	RoomCode string `json:"roomCode"`
}

// KickPlayerPayload 踢人请求
type KickPlayerPayload struct {
	TargetID string `json:"targetId"`
}

// MyStateUpdatePayload 客户端同步自己的棋盘
type MyStateUpdatePayload struct {
	RoomCode string `json:"roomCode"`
	Grid     []int  `json:"grid"`
	Specials []int  `json:"specials"`
	Bonuses  []int  `json:"bonuses"`
	Frozen   []int  `json:"frozen"`
	Score    int    `json:"score"`
}

// AttackPayload 干扰请求
type AttackPayload struct {
	RoomCode string `json:"roomCode"`
	Type     string `json:"type"`
	TargetID string `json:"targetId,omitempty"`
}

// JoinMatchQueuePayload 加入匹配队列请求
type JoinMatchQueuePayload struct {
	Name string `json:"name"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"serverTimestamp"` // 服务器时间戳（毫秒）
}

// RoomInfoPayload roomCreated / roomJoined 响应
type RoomInfoPayload struct {
	RoomCode   string `json:"roomCode"`
	MaxPlayers int    `json:"maxPlayers"`
	Mode       string `json:"mode"`
	Private    bool   `json:"private"`
	TimeLimit  int    `json:"timeLimit"`
}

// PlayerInfo 玩家信息（membersUpdate 快照元素）
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	Score     int    `json:"score"`
	Alive     bool   `json:"alive"`
	Spectator bool   `json:"spectator"`
}

// KickedPayload 被踢出通知
type KickedPayload struct {
	Reason string `json:"reason"`
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomCode    string `json:"roomCode"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Mode        string `json:"mode"`
}

// RoomListPayload 房间列表结果
type RoomListPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// QueueUpdatePayload 匹配队列状态
type QueueUpdatePayload struct {
	Count   int      `json:"count"`
	Players []string `json:"players"`
}

// SessionStartedPayload 对局开始，每个玩家收到自己的棋盘
type SessionStartedPayload struct {
	Mode      string `json:"mode"`
	Grid      []int  `json:"grid"`
	Specials  []int  `json:"specials"`
	Bonuses   []int  `json:"bonuses"`
	TimeLimit int    `json:"timeLimit"`
}

// SpectatingPayload 观战通知
type SpectatingPayload struct {
	Mode string `json:"mode"`
}

// BoardPayload 新棋盘
type BoardPayload struct {
	Grid     []int `json:"grid"`
	Specials []int `json:"specials"`
	Bonuses  []int `json:"bonuses"`
}

// PeerStatePayload 其他玩家棋盘同步
type PeerStatePayload struct {
	PlayerID string `json:"playerId"`
	Grid     []int  `json:"grid"`
	Specials []int  `json:"specials"`
	Bonuses  []int  `json:"bonuses"`
	Frozen   []int  `json:"frozen"`
	Score    int    `json:"score"`
}

// AttackedPayload 私发给被干扰的玩家
type AttackedPayload struct {
	Type         string `json:"type"`
	AttackerName string `json:"attackerName"`
	AttackerID   string `json:"attackerId"`
}

// AttackBroadcastPayload 干扰动画广播
type AttackBroadcastPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// PlayerEliminatedPayload 淘汰通知
type PlayerEliminatedPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// TimeUpdatePayload 倒计时
type TimeUpdatePayload struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

// RankingEntry 最终排名
type RankingEntry struct {
	Rank       int    `json:"rank"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Eliminated bool   `json:"eliminated"`
}

// SessionEndedPayload 对局结束
type SessionEndedPayload struct {
	Winner   string         `json:"winner"`
	WinnerID string         `json:"winnerId"`
	Rankings []RankingEntry `json:"rankings"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// UnmarshalJSON 兼容直接发送房间号字符串的旧客户端（"payload": "1234"）
func (p *RoomCodePayload) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err == nil {
		p.RoomCode = code
		return nil
	}
	type alias RoomCodePayload
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = RoomCodePayload(v)
	return nil
}
