package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/apple-clash/internal/protocol"
)

// 二进制信封字段号，与客户端的 Envelope{string type = 1; bytes payload = 2;} 保持一致
const (
	fieldType    protowire.Number = 1
	fieldPayload protowire.Number = 2
)

// ErrEmptyType 消息缺少类型
var ErrEmptyType = errors.New("codec: message type is empty")

// NewMessage 创建一个新消息，payload 使用 JSON 编码
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := &protocol.Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("编码 %s payload 失败: %w", msgType, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 将消息编码为 JSON 文本帧
func Encode(m *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	// Encoder 会追加换行符
	out := buf.Bytes()
	out = out[:len(out)-1]
	return append([]byte(nil), out...), nil
}

// Decode 从 JSON 文本帧解码消息
// 注意: 使用完毕后应调用 PutMessage 归还对象到池
func Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrEmptyType
	}
	return msg, nil
}

// EncodeBinary 将消息编码为 protobuf wire 格式的二进制帧
func EncodeBinary(m *protocol.Message) ([]byte, error) {
	if m.Type == "" {
		return nil, ErrEmptyType
	}
	b := make([]byte, 0, len(m.Type)+len(m.Payload)+8)
	b = protowire.AppendTag(b, fieldType, protowire.BytesType)
	b = protowire.AppendString(b, string(m.Type))
	if len(m.Payload) > 0 {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payload)
	}
	return b, nil
}

// DecodeBinary 从 protobuf wire 格式的二进制帧解码消息，未知字段会被跳过
// 注意: 使用完毕后应调用 PutMessage 归还对象到池
func DecodeBinary(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			PutMessage(msg)
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldType && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(data)
			if m < 0 {
				PutMessage(msg)
				return nil, protowire.ParseError(m)
			}
			msg.Type = protocol.MessageType(v)
			n = m
		case num == fieldPayload && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				PutMessage(msg)
				return nil, protowire.ParseError(m)
			}
			msg.Payload = append(json.RawMessage(nil), v...)
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				PutMessage(msg)
				return nil, protowire.ParseError(n)
			}
		}
		data = data[n:]
	}

	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrEmptyType
	}
	return msg, nil
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return NewErrorMessageWithText(code, protocol.ErrorMessages[code])
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	msg, _ := NewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: text,
	})
	return msg
}
