package types

import (
	"crypto/sha1" //nolint:gosec // 覆盖网络哈希按协议使用 SHA-1 低 32 位
	"encoding/binary"
)

// OverlayHash 计算覆盖网络名称的哈希：SHA-1 摘要的低 32 位
func OverlayHash(overlayName string) uint32 {
	sum := sha1.Sum([]byte(overlayName)) //nolint:gosec
	return binary.BigEndian.Uint32(sum[len(sum)-4:])
}
