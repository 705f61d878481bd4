package message

import (
	"github.com/dep2p/go-reload/pkg/lib/codec"
	"github.com/dep2p/go-reload/pkg/lib/header"
)

// Headed 带转发头、可以写到链路上的消息
//
// Message 与 ForwardMessage 都实现该接口，路由层只依赖头部。
type Headed interface {
	MessageHeader() *header.Header
	EncodePayload(w *codec.Writer) error
}

// ============================================================================
//                              Message
// ============================================================================

// Message 完整解码的消息
type Message struct {
	Header        *header.Header
	Content       Content
	Extensions    []Extension
	SecurityBlock *SecurityBlock

	// RawContent 解码时保留的 content 原始字节，供签名校验使用
	RawContent []byte
}

// New 创建消息，安全块默认为匿名
func New(h *header.Header, c Content) *Message {
	return &Message{Header: h, Content: c, SecurityBlock: AnonymousSecurityBlock()}
}

// MessageHeader 实现 Headed
func (m *Message) MessageHeader() *header.Header {
	return m.Header
}

// ContentType 返回内容类型
func (m *Message) ContentType() ContentType {
	if m.Content == nil {
		return 0
	}
	return m.Content.ContentType()
}

// IsAnswer 是否为应答（含错误）
func (m *Message) IsAnswer() bool {
	return m.Content != nil && m.Content.ContentType().IsAnswer()
}

// EncodePayload 实现 Headed：content 与安全块
func (m *Message) EncodePayload(w *codec.Writer) error {
	if m.Content == nil {
		return ErrNilContent
	}
	if err := EncodeContent(w, m.Content, m.Extensions); err != nil {
		return err
	}
	sb := m.SecurityBlock
	if sb == nil {
		sb = AnonymousSecurityBlock()
	}
	return sb.Encode(w)
}

// EncodeContent 写入 message_code | body <u32> | extensions <u32>
func EncodeContent(w *codec.Writer, c Content, exts []Extension) error {
	w.PutUint16(uint16(c.ContentType()))
	body := w.AllocateField(codec.U32)
	if err := c.MarshalBody(w); err != nil {
		return err
	}
	if err := body.UpdateDataLength(); err != nil {
		return err
	}
	extFld := w.AllocateField(codec.U32)
	for _, e := range exts {
		if err := encodeExtension(w, e); err != nil {
			return err
		}
	}
	return extFld.UpdateDataLength()
}

// ============================================================================
//                              ForwardMessage
// ============================================================================

// ForwardMessage 只解码了头部的消息，负载保持原样用于转发
type ForwardMessage struct {
	Header  *header.Header
	Payload []byte
}

// MessageHeader 实现 Headed
func (m *ForwardMessage) MessageHeader() *header.Header {
	return m.Header
}

// EncodePayload 实现 Headed：原样写回负载
func (m *ForwardMessage) EncodePayload(w *codec.Writer) error {
	w.PutBytes(m.Payload)
	return nil
}
