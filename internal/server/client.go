package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/logger"
	"github.com/palemoky/apple-clash/internal/protocol"
	"github.com/palemoky/apple-clash/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小，170 格棋盘的完整同步约 1KB
	maxMessageSize = 8192

	// 发送缓冲区大小
	sendBufferSize = 256

	// 超速次数达到后断开连接
	maxRateWarnings = 5
)

// frame 待写出的一帧
type frame struct {
	binary bool
	data   []byte
}

// Client 代表一个 WebSocket 连接
type Client struct {
	ID string // 连接 ID，同时作为玩家 ID
	IP string

	server *Server
	conn   *websocket.Conn
	send   chan frame

	mu       sync.RWMutex
	name     string
	roomCode string
	binary   bool // 最近一次收到的是二进制帧，回复使用相同格式
	closed   bool
}

// NewClient 创建新客户端，默认使用随机昵称
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		name:   GenerateNickname(),
		server: s,
		conn:   conn,
		send:   make(chan frame, sendBufferSize),
	}
}

// ReadPump 从 WebSocket 读取消息并交给处理器，返回即表示连接结束
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("client", c.ID).Msg("读取错误")
			}
			return
		}

		if !c.checkRate() {
			return
		}

		binary := messageType == websocket.BinaryMessage
		c.mu.Lock()
		c.binary = binary
		c.mu.Unlock()

		var msg *protocol.Message
		if binary {
			msg, err = codec.DecodeBinary(data)
		} else {
			msg, err = codec.Decode(data)
		}
		if err != nil {
			log.Debug().Err(err).Str("client", c.ID).Msg("消息解析错误")
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// checkRate 消息限速，返回 false 表示应断开连接
func (c *Client) checkRate() bool {
	limiter := c.server.messageLimiter
	allowed, warning := limiter.AllowMessage(c.ID)
	if allowed {
		if warning {
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "请求过于频繁，请放慢速度"))
		}
		return true
	}

	log.Warn().Str("client", c.ID).Str("ip", c.IP).Msg("⚠️ 客户端消息过于频繁")
	c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
	if limiter.GetWarningCount(c.ID) > maxRateWarnings {
		log.Warn().Str("client", c.ID).Msg("🚫 客户端因多次超速被断开连接")
		return false
	}
	// 被拒绝的消息直接丢弃
	return true
}

// WritePump 向 WebSocket 写入消息和心跳
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			messageType := websocket.TextMessage
			if f.binary {
				messageType = websocket.BinaryMessage
			}
			if err := c.conn.WriteMessage(messageType, f.data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 非阻塞发送，缓冲区满时关闭慢客户端
func (c *Client) SendMessage(msg *protocol.Message) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	binary := c.binary
	c.mu.RUnlock()

	var (
		data []byte
		err  error
	)
	if binary {
		data, err = codec.EncodeBinary(msg)
	} else {
		data, err = codec.Encode(msg)
	}
	if err != nil {
		log.Error().Err(err).Str("type", string(msg.Type)).Msg("消息编码错误")
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame{binary: binary, data: data}:
	default:
		log.Warn().Str("client", c.ID).Msg("发送缓冲区已满，断开连接")
		go c.Close()
	}
}

// handleDisconnect 断线等同于主动离开：退出匹配队列和房间
func (c *Client) handleDisconnect() {
	c.server.messageLimiter.RemoveClient(c.ID)
	c.server.matcher.RemoveFromQueue(c)
	c.server.roomManager.LeaveRoom(c)
	c.server.unregisterClient(c)
	c.Close()
}

// Close 关闭发送通道，WritePump 随后发送关闭帧
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// GetID 获取客户端 ID
func (c *Client) GetID() string {
	return c.ID
}

// GetName 获取显示名
func (c *Client) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName 设置显示名
func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// SetRoom 设置客户端所在房间
func (c *Client) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

// GetRoom 获取客户端所在房间
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}
