package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeInvalidName       = 1003
	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeNotInRoom         = 2003
	ErrCodeAlreadyStarted    = 2004 // 游戏已开始
	ErrCodeBanned            = 2005
	ErrCodeNotHost           = 2006
	ErrCodeTargetNotFound    = 2007
	ErrCodeCodeExhausted     = 2008 // 房间号已耗尽
	ErrCodeNotActive         = 3001
	ErrCodeNotEnoughPlayers  = 3002
	ErrCodeInvalidAttack     = 3003
	ErrCodeQueueJoined       = 4001
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeInvalidName:       "昵称无效",
	ErrCodeRoomNotFound:      "房间不存在",
	ErrCodeRoomFull:          "房间已满",
	ErrCodeNotInRoom:         "您不在房间中",
	ErrCodeAlreadyStarted:    "游戏已开始",
	ErrCodeBanned:            "您已被移出该房间，无法再次加入",
	ErrCodeNotHost:           "只有房主可以执行此操作",
	ErrCodeTargetNotFound:    "目标玩家不存在",
	ErrCodeCodeExhausted:     "暂无可用房间号，请稍后再试",
	ErrCodeNotActive:         "游戏尚未开始",
	ErrCodeNotEnoughPlayers:  "玩家人数不足",
	ErrCodeInvalidAttack:     "无效的干扰类型",
	ErrCodeQueueJoined:       "您已在匹配队列中",
	ErrCodeServerMaintenance: "服务器维护中",
}
