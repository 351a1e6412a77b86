package room

// RoomState 房间状态
type RoomState int

const (
	RoomStateLobby  RoomState = iota // 等待开始
	RoomStateActive                  // 对局中
	RoomStateEnded                   // 已结束（终态）
)

func (s RoomState) String() string {
	switch s {
	case RoomStateLobby:
		return "lobby"
	case RoomStateActive:
		return "active"
	case RoomStateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Mode 游戏模式
type Mode string

const (
	ModeTimeAttack  Mode = "time_attack" // 限时赛
	ModeElimination Mode = "elimination" // 淘汰赛
	ModeFixedBoard  Mode = "fixed_board" // 同图赛：所有人同一张棋盘，无特殊格
)

// ParseMode 解析模式，未知模式按限时赛处理
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeElimination:
		return ModeElimination
	case ModeFixedBoard:
		return ModeFixedBoard
	default:
		return ModeTimeAttack
	}
}

// AttackType 干扰类型，效果由被攻击方客户端自行执行
type AttackType string

const (
	AttackShuffle AttackType = "shuffle" // 打乱棋盘
	AttackFreeze  AttackType = "freeze"  // 冻结格子
	AttackBlind   AttackType = "blind"   // 隐藏光标
)

// Valid 是否为已知的干扰类型
func (t AttackType) Valid() bool {
	switch t {
	case AttackShuffle, AttackFreeze, AttackBlind:
		return true
	default:
		return false
	}
}
