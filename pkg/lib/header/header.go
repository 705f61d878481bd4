package header

import (
	"github.com/dep2p/go-reload/pkg/types"
)

// ============================================================================
//                              常量
// ============================================================================

const (
	// Token 协议魔数
	Token uint32 = 0xd2454c4f

	// LeadingLength 总长度字段之前的字节数
	LeadingLength = 16

	// FixedLength 头部固定部分长度（不含三个列表内容）
	FixedLength = 38

	// TotalLengthOffset 总长度字段的偏移
	TotalLengthOffset = LeadingLength

	// fragmentMarker 分片字段恒置位的格式标记
	fragmentMarker uint16 = 0x8000

	// lastFragmentMask 最后分片标记
	lastFragmentMask uint16 = 0x4000

	// DefaultVersion 协议版本 1.0
	DefaultVersion uint8 = 10

	// DefaultTTL 默认初始跳数
	DefaultTTL uint8 = 100

	// DefaultMaxResponseLength 0 表示不限制
	DefaultMaxResponseLength uint32 = 0
)

// ============================================================================
//                              Header
// ============================================================================

// Header 每条消息的转发头
//
// TotalMessageLength 只在线格式中存在，解码时用于推导 PayloadLength。
type Header struct {
	// TokenValid 魔数是否正确；错误时不致命，由上层决定处理方式
	TokenValid bool

	OverlayHash           uint32
	ConfigurationSequence uint16
	Version               uint8
	TTL                   uint8

	// LastFragment 是否为最后一个分片；未分片消息也置位
	LastFragment   bool
	FragmentOffset uint16

	// TransactionID 请求与应答的关联标识
	TransactionID uint64

	// MaxResponseLength 应答长度上限（建议值）
	MaxResponseLength uint32

	// ViaList 已经过的路由（按经过顺序）
	ViaList []types.RoutableID

	// DestinationList 待经过的路由，首项为当前目的地
	DestinationList []types.RoutableID

	ForwardingOptions []ForwardingOption

	// HeaderLength 头部编码长度（解码时得出）
	HeaderLength uint32

	// PayloadLength 负载长度 = totalMessageLength - HeaderLength（解码时得出）
	PayloadLength uint32
}

// New 创建带默认字段的头部
func New(overlayHash uint32, dest ...types.RoutableID) *Header {
	return &Header{
		TokenValid:        true,
		OverlayHash:       overlayHash,
		Version:           DefaultVersion,
		TTL:               DefaultTTL,
		LastFragment:      true,
		MaxResponseLength: DefaultMaxResponseLength,
		DestinationList:   append([]types.RoutableID(nil), dest...),
	}
}

// DestinationID 返回当前目的地（目的地列表首项）
func (h *Header) DestinationID() (types.RoutableID, bool) {
	if len(h.DestinationList) == 0 {
		return types.RoutableID{}, false
	}
	return h.DestinationList[0], true
}

// PopDestination 移除并返回当前目的地
func (h *Header) PopDestination() (types.RoutableID, bool) {
	if len(h.DestinationList) == 0 {
		return types.RoutableID{}, false
	}
	d := h.DestinationList[0]
	h.DestinationList = h.DestinationList[1:]
	return d, true
}

// AppendVia 在途经列表末尾追加一跳
func (h *Header) AppendVia(id types.RoutableID) {
	h.ViaList = append(h.ViaList, id)
}

// ReversedVia 返回逆序的途经列表，用作应答的目的地列表
func (h *Header) ReversedVia() []types.RoutableID {
	out := make([]types.RoutableID, len(h.ViaList))
	for i, v := range h.ViaList {
		out[len(h.ViaList)-1-i] = v
	}
	return out
}

// IsFragmented 是否为分片消息中的一片
func (h *Header) IsFragmented() bool {
	return !h.LastFragment || h.FragmentOffset != 0
}

// UnknownCriticalOption 返回第一个标记为 FORWARD_CRITICAL 的未知选项
func (h *Header) UnknownCriticalOption() (ForwardingOption, bool) {
	for _, o := range h.ForwardingOptions {
		if !o.Type.Known() && o.Flags&FlagForwardCritical != 0 {
			return o, true
		}
	}
	return ForwardingOption{}, false
}

// Clone 深拷贝头部，列表与选项内容不与原头部共享
func (h *Header) Clone() *Header {
	c := *h
	c.ViaList = append([]types.RoutableID(nil), h.ViaList...)
	c.DestinationList = append([]types.RoutableID(nil), h.DestinationList...)
	if h.ForwardingOptions != nil {
		c.ForwardingOptions = make([]ForwardingOption, len(h.ForwardingOptions))
		for i, o := range h.ForwardingOptions {
			o.Body = append([]byte(nil), o.Body...)
			c.ForwardingOptions[i] = o
		}
	}
	return &c
}

// fragmentValue 编码分片字段
func (h *Header) fragmentValue() uint16 {
	v := fragmentMarker
	if h.LastFragment {
		v |= lastFragmentMask
	}
	return v
}
