package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom  MessageType = "createRoom"  // 创建房间
	MsgJoinRoom    MessageType = "joinRoom"    // 加入房间
	MsgLeaveRoom   MessageType = "leaveRoom"   // 离开房间
	MsgKickPlayer  MessageType = "kickPlayer"  // 房主踢人
	MsgStartGame   MessageType = "startGame"   // 房主开始游戏
	MsgGetRoomList MessageType = "getRoomList" // 获取公开房间列表

	// 匹配队列
	MsgJoinMatchQueue  MessageType = "joinMatchQueue"  // 加入匹配队列
	MsgLeaveMatchQueue MessageType = "leaveMatchQueue" // 离开匹配队列

	// 游戏操作
	MsgMyStateUpdate     MessageType = "myStateUpdate"     // 客户端同步自己的棋盘
	MsgAttack            MessageType = "attack"            // 发动干扰
	MsgRequestBoardRegen MessageType = "requestBoardRegen" // 无解时请求新棋盘
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgRoomCreated   MessageType = "roomCreated"   // 房间创建成功
	MsgRoomJoined    MessageType = "roomJoined"    // 加入房间成功
	MsgMembersUpdate MessageType = "membersUpdate" // 成员列表快照
	MsgKicked        MessageType = "kicked"        // 被房主踢出
	MsgRoomList      MessageType = "roomList"      // 房间列表结果
	MsgQueueUpdate   MessageType = "queueUpdate"   // 匹配队列人数更新

	// 游戏流程
	MsgSessionStarted   MessageType = "sessionStarted"   // 对局开始（附带棋盘）
	MsgSpectating       MessageType = "spectating"       // 观战者通知
	MsgBoardRegenerated MessageType = "boardRegenerated" // 新棋盘
	MsgPeerStateUpdate  MessageType = "peerStateUpdate"  // 其他玩家棋盘同步
	MsgAttacked         MessageType = "attacked"         // 受到干扰（仅目标）
	MsgAttackBroadcast  MessageType = "attackBroadcast"  // 干扰动画广播
	MsgPlayerEliminated MessageType = "playerEliminated" // 玩家被淘汰
	MsgTimeUpdate       MessageType = "timeUpdate"       // 倒计时
	MsgSessionEnded     MessageType = "sessionEnded"     // 对局结束

	// 错误
	MsgError MessageType = "error" // 错误消息
)
