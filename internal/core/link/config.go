package link

import (
	"fmt"
	"time"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/pkg/lib/frame"
)

// Config 链路配置
type Config struct {
	// HandshakeTimeout 节点标识交换超时
	// 默认值: 5 秒
	HandshakeTimeout time.Duration

	// WriteQueueSize 写队列长度，队列满时 Write 立即失败
	// 默认值: 256
	WriteQueueSize int

	// MaxPayload 单帧最大负载
	// 默认值: frame.MaxPayload
	MaxPayload int

	// ReadBufferSize 每次从字节流读取的缓冲区大小
	// 默认值: 32 KiB
	ReadBufferSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 5 * time.Second,
		WriteQueueSize:   256,
		MaxPayload:       frame.MaxPayload,
		ReadBufferSize:   32 * 1024,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("%w: handshake timeout must be positive", ErrInvalidConfig)
	}
	if c.WriteQueueSize <= 0 {
		return fmt.Errorf("%w: write queue size must be positive", ErrInvalidConfig)
	}
	if c.MaxPayload <= 0 || c.MaxPayload > frame.MaxPayload {
		return fmt.Errorf("%w: max payload out of range", ErrInvalidConfig)
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("%w: read buffer size must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithHandshakeTimeout 设置握手超时
func (c Config) WithHandshakeTimeout(d time.Duration) Config {
	c.HandshakeTimeout = d
	return c
}

// WithWriteQueueSize 设置写队列长度
func (c Config) WithWriteQueueSize(n int) Config {
	c.WriteQueueSize = n
	return c
}

// WithMaxPayload 设置单帧最大负载
func (c Config) WithMaxPayload(n int) Config {
	c.MaxPayload = n
	return c
}

// ConfigFromUnified 从统一配置创建链路配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.HandshakeTimeout = cfg.Link.HandshakeTimeout.Duration()
	c.WriteQueueSize = cfg.Link.WriteQueueSize
	c.MaxPayload = cfg.Link.MaxPayload
	if cfg.Link.ReadBufferSize > 0 {
		c.ReadBufferSize = cfg.Link.ReadBufferSize
	}
	return c
}
