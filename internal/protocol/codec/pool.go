package codec

import (
	"bytes"
	"sync"

	"github.com/palemoky/apple-clash/internal/protocol"
)

// maxPooledBuffer 超过该容量的缓冲区不放回池中，避免一次大消息长期占住内存
const maxPooledBuffer = 64 << 10

// 每条入站消息都会经过解码，复用消息对象和编码缓冲区减少 GC 压力
var (
	messagePool = sync.Pool{
		New: func() any { return new(protocol.Message) },
	}

	bufferPool = sync.Pool{
		New: func() any { return new(bytes.Buffer) },
	}
)

// GetMessage 从池中取出一个空消息
func GetMessage() *protocol.Message {
	return messagePool.Get().(*protocol.Message)
}

// PutMessage 清空后归还消息，调用后不能再使用 msg
func PutMessage(msg *protocol.Message) {
	if msg == nil {
		return
	}
	*msg = protocol.Message{}
	messagePool.Put(msg)
}

// GetBuffer 从池中取出一个空缓冲区
func GetBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// PutBuffer 重置后归还缓冲区，过大的直接丢弃
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBuffer {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
