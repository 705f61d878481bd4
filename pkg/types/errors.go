package types

import "errors"

// ============================================================================
//                              ID 相关错误
// ============================================================================

var (
	// ErrEmptyID 空标识
	ErrEmptyID = errors.New("types: empty id")

	// ErrIDTooLong 标识超出单字节长度前缀
	ErrIDTooLong = errors.New("types: id longer than 255 bytes")

	// ErrInvalidBase58 无效的 Base58 文本
	ErrInvalidBase58 = errors.New("types: invalid base58")

	// ErrInvalidCompressedID 压缩不透明标识必须为 2 字节且最高位为 1
	ErrInvalidCompressedID = errors.New("types: invalid compressed opaque id")
)
