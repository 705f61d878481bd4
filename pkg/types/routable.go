package types

import "fmt"

// DestinationType 目的地条目的类型标签
type DestinationType uint8

// 目的地类型（线格式取值）
const (
	DestinationNode     DestinationType = 1
	DestinationResource DestinationType = 2
	DestinationOpaque   DestinationType = 3

	// DestinationCompressed 压缩形式的 16 位不透明标识，线格式中无类型字节，
	// 以首字节最高位为 1 区分
	DestinationCompressed DestinationType = 0x80
)

// String 返回类型名称
func (t DestinationType) String() string {
	switch t {
	case DestinationNode:
		return "node"
	case DestinationResource:
		return "resource"
	case DestinationOpaque:
		return "opaque"
	case DestinationCompressed:
		return "compressed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// RoutableID 可路由标识：带类型标签的标识字节串
//
// 用于途经列表与目的地列表，按内容比较，可直接作为 map 键。
type RoutableID struct {
	Type DestinationType
	ID   string
}

// CompressedID 创建 16 位压缩不透明标识，最高位必须为 1
func CompressedID(v uint16) (RoutableID, error) {
	if v&0x8000 == 0 {
		return RoutableID{}, ErrInvalidCompressedID
	}
	return RoutableID{Type: DestinationCompressed, ID: string([]byte{byte(v >> 8), byte(v)})}, nil
}

// Bytes 返回标识字节
func (r RoutableID) Bytes() []byte {
	return []byte(r.ID)
}

// NodeID 以 NodeID 视图返回，非节点类型返回 false
func (r RoutableID) NodeID() (NodeID, bool) {
	if r.Type != DestinationNode {
		return EmptyNodeID, false
	}
	return NodeID(r.ID), true
}

// IsZero 检查是否为零值
func (r RoutableID) IsZero() bool {
	return r.Type == 0 && r.ID == ""
}

// String 返回 "类型:Base58" 形式
func (r RoutableID) String() string {
	return r.Type.String() + ":" + Base58Encode([]byte(r.ID))
}
