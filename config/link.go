package config

import (
	"fmt"
	"time"
)

// maxFramePayload DATA 帧负载上限（24 位长度）
const maxFramePayload = 1<<24 - 1

// LinkConfig 链路配置
type LinkConfig struct {
	// HandshakeTimeout 节点标识交换超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	// WriteQueueSize 写队列长度
	WriteQueueSize int `json:"write_queue_size"`

	// MaxPayload 单帧最大负载
	MaxPayload int `json:"max_payload"`

	// ReadBufferSize 读缓冲区大小
	ReadBufferSize int `json:"read_buffer_size,omitempty"`
}

// DefaultLinkConfig 返回默认链路配置
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		HandshakeTimeout: Duration(5 * time.Second),
		WriteQueueSize:   256,
		MaxPayload:       maxFramePayload,
		ReadBufferSize:   32 * 1024,
	}
}

// Validate 验证链路配置
func (c LinkConfig) Validate() error {
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("%w: handshake timeout must be positive", ErrInvalidConfig)
	}
	if c.WriteQueueSize <= 0 {
		return fmt.Errorf("%w: write queue size must be positive", ErrInvalidConfig)
	}
	if c.MaxPayload <= 0 || c.MaxPayload > maxFramePayload {
		return fmt.Errorf("%w: max payload must be in (0, %d]", ErrInvalidConfig, maxFramePayload)
	}
	return nil
}
