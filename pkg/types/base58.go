package types

import (
	"github.com/mr-tron/base58"
)

// Base58Encode 将字节切片编码为 Base58 字符串（Bitcoin 字母表）
func Base58Encode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return base58.Encode(b)
}

// Base58Decode 解码 Base58 字符串
func Base58Decode(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrEmptyID
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, ErrInvalidBase58
	}
	return b, nil
}
