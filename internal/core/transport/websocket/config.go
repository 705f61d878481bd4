package websocket

import (
	"fmt"
	"strings"
	"time"
)

// Config WebSocket 传输配置
type Config struct {
	// Path 升级请求的路径
	// 默认值: /reload
	Path string

	// HandshakeTimeout HTTP 升级超时
	// 默认值: 5 秒
	HandshakeTimeout time.Duration

	// ReadBufferSize / WriteBufferSize 连接缓冲区大小
	// 默认值: 32 KiB
	ReadBufferSize  int
	WriteBufferSize int

	// WriteTimeout 单条消息写超时，0 表示不限制
	// 默认值: 10 秒
	WriteTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Path:             "/reload",
		HandshakeTimeout: 5 * time.Second,
		ReadBufferSize:   32 * 1024,
		WriteBufferSize:  32 * 1024,
		WriteTimeout:     10 * time.Second,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("%w: path must start with /", ErrInvalidConfig)
	}
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("%w: handshake timeout must be positive", ErrInvalidConfig)
	}
	if c.ReadBufferSize <= 0 || c.WriteBufferSize <= 0 {
		return fmt.Errorf("%w: buffer sizes must be positive", ErrInvalidConfig)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("%w: write timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
