package types

import (
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/minio/sha256-simd"
)

// MaxIDLength 标识的最大字节长度（单字节长度前缀）
const MaxIDLength = 255

// NodeIDLength 本实现生成的节点标识长度（128 位）
const NodeIDLength = 16

// ============================================================================
//                              NodeID - 节点标识
// ============================================================================

// NodeID 覆盖网络节点标识
//
// 以 string 承载原始字节，保证不可变且可比较；长度由覆盖网络配置决定。
//
// 外部表示格式：
//   - String(): Base58 编码
//   - ShortString(): Base58 前 8 个字符（日志）
type NodeID string

// EmptyNodeID 空节点标识
const EmptyNodeID NodeID = ""

// NodeIDFromBytes 从原始字节创建 NodeID
func NodeIDFromBytes(b []byte) (NodeID, error) {
	if len(b) == 0 {
		return EmptyNodeID, ErrEmptyID
	}
	if len(b) > MaxIDLength {
		return EmptyNodeID, ErrIDTooLong
	}
	return NodeID(b), nil
}

// ParseNodeID 从 Base58 文本解析 NodeID
func ParseNodeID(s string) (NodeID, error) {
	b, err := Base58Decode(s)
	if err != nil {
		return EmptyNodeID, err
	}
	return NodeIDFromBytes(b)
}

// RandomNodeID 生成随机的 128 位节点标识
//
// 使用 UUIDv4 的随机源，版本位被覆盖为随机值以获得完整熵。
func RandomNodeID() NodeID {
	u := uuid.New()
	b := u[:]
	var tail [1]byte
	if _, err := rand.Read(tail[:]); err == nil {
		b[6] = tail[0]
	}
	return NodeID(b)
}

// Bytes 返回原始字节的副本
func (id NodeID) Bytes() []byte {
	return []byte(id)
}

// String 返回 Base58 表示
func (id NodeID) String() string {
	return Base58Encode([]byte(id))
}

// ShortString 返回日志用的短表示
func (id NodeID) ShortString() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// IsEmpty 检查是否为空
func (id NodeID) IsEmpty() bool {
	return id == EmptyNodeID
}

// Routable 转换为目的地条目
func (id NodeID) Routable() RoutableID {
	return RoutableID{Type: DestinationNode, ID: string(id)}
}

// ============================================================================
//                              ResourceID - 资源标识
// ============================================================================

// ResourceID 资源标识（存储键在覆盖网络空间中的位置）
type ResourceID string

// ResourceIDFromBytes 从原始字节创建 ResourceID
func ResourceIDFromBytes(b []byte) (ResourceID, error) {
	if len(b) > MaxIDLength {
		return "", ErrIDTooLong
	}
	return ResourceID(b), nil
}

// ResourceIDFromName 将资源名按 SHA-256 映射到 NodeIDLength 字节的标识空间
func ResourceIDFromName(name string) ResourceID {
	sum := sha256.Sum256([]byte(name))
	return ResourceID(sum[:NodeIDLength])
}

// Bytes 返回原始字节的副本
func (id ResourceID) Bytes() []byte {
	return []byte(id)
}

// String 返回 Base58 表示
func (id ResourceID) String() string {
	return Base58Encode([]byte(id))
}

// Routable 转换为目的地条目
func (id ResourceID) Routable() RoutableID {
	return RoutableID{Type: DestinationResource, ID: string(id)}
}

// ============================================================================
//                              OpaqueID - 不透明标识
// ============================================================================

// OpaqueID 不透明标识，由本地节点分配，通常是对长路由的压缩别名
type OpaqueID string

// Bytes 返回原始字节的副本
func (id OpaqueID) Bytes() []byte {
	return []byte(id)
}

// String 返回 Base58 表示
func (id OpaqueID) String() string {
	return Base58Encode([]byte(id))
}

// Routable 转换为目的地条目
func (id OpaqueID) Routable() RoutableID {
	return RoutableID{Type: DestinationOpaque, ID: string(id)}
}
