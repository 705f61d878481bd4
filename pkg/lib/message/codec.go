package message

import (
	"fmt"

	"github.com/dep2p/go-reload/pkg/lib/codec"
	"github.com/dep2p/go-reload/pkg/lib/header"
)

// Codec 完整消息编解码器
type Codec struct {
	registry *Registry
}

// NewCodec 创建编解码器，registry 为 nil 时使用 DefaultRegistry
func NewCodec(registry *Registry) *Codec {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Codec{registry: registry}
}

// Registry 返回内容注册表
func (c *Codec) Registry() *Registry {
	return c.registry
}

// Encode 编码消息并回填总长度
func (c *Codec) Encode(m Headed) ([]byte, error) {
	w := codec.NewWriter(256)
	total, err := header.Encode(w, m.MessageHeader())
	if err != nil {
		return nil, err
	}
	if err := m.EncodePayload(w); err != nil {
		return nil, err
	}
	if err := total.Set(uint64(w.Len())); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// SplitHeader 解码头部并返回负载视图
//
// 负载与 raw 共享底层存储。声明的负载之后的多余字节被忽略。
func SplitHeader(raw []byte) (*header.Header, []byte, error) {
	r := codec.NewReader(raw)
	h, err := header.Decode(r)
	if err != nil {
		return nil, nil, err
	}
	payload, err := r.ReadBytes(int(h.PayloadLength))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, err)
	}
	return h, payload, nil
}

// DecodeForward 只解码头部，得到用于转发的消息
func DecodeForward(raw []byte) (*ForwardMessage, error) {
	h, payload, err := SplitHeader(raw)
	if err != nil {
		return nil, err
	}
	return &ForwardMessage{Header: h, Payload: payload}, nil
}

// PeekContentType 读取负载中的 message_code，不解码内容
func PeekContentType(payload []byte) (ContentType, error) {
	v, err := codec.NewReader(payload).PeekUint(0, codec.U16)
	if err != nil {
		return 0, err
	}
	return ContentType(v), nil
}

// DecodeContent 解码 content 部分
//
// 未知内容类型、内容格式错误、未知关键扩展都以 *ProtocolError 返回。
func (c *Codec) DecodeContent(r *codec.Reader) (Content, []Extension, error) {
	code, err := r.ReadUint16()
	if err != nil {
		return nil, nil, NewProtocolError(ErrorInvalidMessage, "content: %v", err)
	}
	t := ContentType(code)

	bodyView, err := r.ReadField(codec.U32)
	if err != nil {
		return nil, nil, NewProtocolError(ErrorInvalidMessage, "%s body: %v", t, err)
	}
	extView, err := r.ReadField(codec.U32)
	if err != nil {
		return nil, nil, NewProtocolError(ErrorInvalidMessage, "%s extensions: %v", t, err)
	}

	fn, ok := c.registry.Lookup(t)
	if !ok {
		return nil, nil, NewProtocolError(ErrorInvalidMessage, "unsupported content type %s", t)
	}
	content, err := fn(bodyView)
	if err != nil {
		if pe, ok := AsProtocolError(err); ok {
			return nil, nil, pe
		}
		return nil, nil, NewProtocolError(ErrorInvalidMessage, "%s: %v", t, err)
	}
	if bodyView.Len() != 0 {
		return nil, nil, NewProtocolError(ErrorInvalidMessage, "%s: %d trailing body bytes", t, bodyView.Len())
	}

	exts, err := decodeExtensions(extView)
	if err != nil {
		if pe, ok := AsProtocolError(err); ok {
			return nil, nil, pe
		}
		return nil, nil, NewProtocolError(ErrorInvalidMessage, "%s extensions: %v", t, err)
	}
	return content, exts, nil
}

// DecodePayload 解码 content 与安全块
func (c *Codec) DecodePayload(h *header.Header, payload []byte) (*Message, error) {
	r := codec.NewReader(payload)
	content, exts, err := c.DecodeContent(r)
	if err != nil {
		return nil, err
	}
	raw := append([]byte(nil), payload[:r.Offset()]...)

	sb, err := DecodeSecurityBlock(r)
	if err != nil {
		return nil, fmt.Errorf("message: security block: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Len())
	}
	return &Message{
		Header:        h,
		Content:       content,
		Extensions:    exts,
		SecurityBlock: sb,
		RawContent:    raw,
	}, nil
}

// Decode 解码完整消息
func (c *Codec) Decode(raw []byte) (*Message, error) {
	h, payload, err := SplitHeader(raw)
	if err != nil {
		return nil, err
	}
	return c.DecodePayload(h, payload)
}
