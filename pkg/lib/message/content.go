package message

import (
	"fmt"

	"github.com/dep2p/go-reload/pkg/lib/codec"
)

// ContentType 消息内容类型（message_code）
type ContentType uint16

// 内容类型取值，奇数为请求，偶数为对应应答
const (
	ProbeRequest        ContentType = 1
	ProbeAnswer         ContentType = 2
	AttachRequest       ContentType = 3
	AttachAnswer        ContentType = 4
	StoreRequest        ContentType = 7
	StoreAnswer         ContentType = 8
	FetchRequest        ContentType = 9
	FetchAnswer         ContentType = 10
	FindRequest         ContentType = 13
	FindAnswer          ContentType = 14
	JoinRequest         ContentType = 15
	JoinAnswer          ContentType = 16
	LeaveRequest        ContentType = 17
	LeaveAnswer         ContentType = 18
	UpdateRequest       ContentType = 19
	UpdateAnswer        ContentType = 20
	RouteQueryRequest   ContentType = 21
	RouteQueryAnswer    ContentType = 22
	PingRequestType     ContentType = 23
	PingAnswerType      ContentType = 24
	StatRequest         ContentType = 25
	StatAnswer          ContentType = 26
	AppAttachRequest    ContentType = 29
	AppAttachAnswer     ContentType = 30
	ConfigUpdateReqType ContentType = 33
	ConfigUpdateAnsType ContentType = 34
	ErrorType           ContentType = 0xffff
)

var contentTypeNames = map[ContentType]string{
	ProbeRequest: "probe_req", ProbeAnswer: "probe_ans",
	AttachRequest: "attach_req", AttachAnswer: "attach_ans",
	StoreRequest: "store_req", StoreAnswer: "store_ans",
	FetchRequest: "fetch_req", FetchAnswer: "fetch_ans",
	FindRequest: "find_req", FindAnswer: "find_ans",
	JoinRequest: "join_req", JoinAnswer: "join_ans",
	LeaveRequest: "leave_req", LeaveAnswer: "leave_ans",
	UpdateRequest: "update_req", UpdateAnswer: "update_ans",
	RouteQueryRequest: "route_query_req", RouteQueryAnswer: "route_query_ans",
	PingRequestType: "ping_req", PingAnswerType: "ping_ans",
	StatRequest: "stat_req", StatAnswer: "stat_ans",
	AppAttachRequest: "app_attach_req", AppAttachAnswer: "app_attach_ans",
	ConfigUpdateReqType: "config_update_req", ConfigUpdateAnsType: "config_update_ans",
	ErrorType: "error",
}

// String 返回类型名称
func (t ContentType) String() string {
	if n, ok := contentTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("content(%d)", uint16(t))
}

// IsError 是否为错误内容
func (t ContentType) IsError() bool {
	return t == ErrorType
}

// IsRequest 是否为请求
func (t ContentType) IsRequest() bool {
	return !t.IsError() && t%2 == 1
}

// IsAnswer 是否为应答，错误内容也算应答
func (t ContentType) IsAnswer() bool {
	return t.IsError() || t%2 == 0
}

// AnswerType 返回请求对应的应答类型
func (t ContentType) AnswerType() ContentType {
	if t.IsRequest() {
		return t + 1
	}
	return t
}

// Content 消息内容
//
// MarshalBody 只写入 message_body 的内容，长度前缀由编码器负责。
type Content interface {
	ContentType() ContentType
	MarshalBody(w *codec.Writer) error
}

// DecodeFunc 从 message_body 的有界视图解码内容
type DecodeFunc func(r *codec.Reader) (Content, error)

// ============================================================================
//                              内置内容
// ============================================================================

// ErrorContent 错误应答
//
//	error_code u16 | error_info <u16>
type ErrorContent struct {
	Code ErrorCode
	Info []byte
}

// ContentType 实现 Content
func (*ErrorContent) ContentType() ContentType { return ErrorType }

// MarshalBody 实现 Content
func (c *ErrorContent) MarshalBody(w *codec.Writer) error {
	w.PutUint16(uint16(c.Code))
	return w.PutField(codec.U16, c.Info)
}

// ProtocolError 以 *ProtocolError 表示
func (c *ErrorContent) ProtocolError() *ProtocolError {
	return &ProtocolError{Code: c.Code, Info: string(c.Info)}
}

func decodeError(r *codec.Reader) (Content, error) {
	code, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	info, err := r.ReadFieldBytes(codec.U16)
	if err != nil {
		return nil, err
	}
	return &ErrorContent{Code: ErrorCode(code), Info: info}, nil
}

// PingRequest 探测请求
//
//	padding <u16>
type PingRequest struct {
	Padding []byte
}

// ContentType 实现 Content
func (*PingRequest) ContentType() ContentType { return PingRequestType }

// MarshalBody 实现 Content
func (c *PingRequest) MarshalBody(w *codec.Writer) error {
	return w.PutField(codec.U16, c.Padding)
}

func decodePingRequest(r *codec.Reader) (Content, error) {
	padding, err := r.ReadFieldBytes(codec.U16)
	if err != nil {
		return nil, err
	}
	return &PingRequest{Padding: padding}, nil
}

// PingAnswer 探测应答
//
//	response_id u64 | time u64（毫秒时间戳）
type PingAnswer struct {
	ResponseID uint64
	Time       uint64
}

// ContentType 实现 Content
func (*PingAnswer) ContentType() ContentType { return PingAnswerType }

// MarshalBody 实现 Content
func (c *PingAnswer) MarshalBody(w *codec.Writer) error {
	w.PutUint64(c.ResponseID)
	w.PutUint64(c.Time)
	return nil
}

func decodePingAnswer(r *codec.Reader) (Content, error) {
	id, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	ts, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	return &PingAnswer{ResponseID: id, Time: ts}, nil
}

// ConfigUpdateKind 配置更新类型
type ConfigUpdateKind uint8

// 配置更新类型取值
const (
	ConfigUpdateConfig   ConfigUpdateKind = 1
	ConfigUpdateKindDefs ConfigUpdateKind = 2
)

// ConfigUpdateRequest 配置分发请求
//
//	type u8 | length u32（兼容字段）| config_data <u24>
type ConfigUpdateRequest struct {
	Kind ConfigUpdateKind
	Data []byte
}

// ContentType 实现 Content
func (*ConfigUpdateRequest) ContentType() ContentType { return ConfigUpdateReqType }

// MarshalBody 实现 Content
func (c *ConfigUpdateRequest) MarshalBody(w *codec.Writer) error {
	w.PutUint8(uint8(c.Kind))
	w.PutUint32(uint32(codec.U24) + uint32(len(c.Data)))
	return w.PutField(codec.U24, c.Data)
}

func decodeConfigUpdateRequest(r *codec.Reader) (Content, error) {
	kind, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	switch ConfigUpdateKind(kind) {
	case ConfigUpdateConfig, ConfigUpdateKindDefs:
	default:
		return nil, NewProtocolError(ErrorInvalidMessage, "unknown config update type %d", kind)
	}
	if _, err := r.ReadUint32(); err != nil {
		return nil, err
	}
	data, err := r.ReadFieldBytes(codec.U24)
	if err != nil {
		return nil, err
	}
	return &ConfigUpdateRequest{Kind: ConfigUpdateKind(kind), Data: data}, nil
}

// ConfigUpdateAnswer 配置分发应答，无内容
type ConfigUpdateAnswer struct{}

// ContentType 实现 Content
func (*ConfigUpdateAnswer) ContentType() ContentType { return ConfigUpdateAnsType }

// MarshalBody 实现 Content
func (*ConfigUpdateAnswer) MarshalBody(*codec.Writer) error { return nil }

func decodeConfigUpdateAnswer(*codec.Reader) (Content, error) {
	return &ConfigUpdateAnswer{}, nil
}

// RawContent 未解释的内容，供外部注册的内容类型使用
type RawContent struct {
	Type ContentType
	Body []byte
}

// ContentType 实现 Content
func (c *RawContent) ContentType() ContentType { return c.Type }

// MarshalBody 实现 Content
func (c *RawContent) MarshalBody(w *codec.Writer) error {
	w.PutBytes(c.Body)
	return nil
}

// RawDecoder 返回把 body 原样保留为 RawContent 的解码函数
func RawDecoder(t ContentType) DecodeFunc {
	return func(r *codec.Reader) (Content, error) {
		b, _ := r.ReadBytes(r.Len())
		return &RawContent{Type: t, Body: append([]byte(nil), b...)}, nil
	}
}
