package quic

import (
	"fmt"
	"time"

	"github.com/quic-go/quic-go"
)

// Config QUIC 传输配置
type Config struct {
	// MaxIdleTimeout 连接空闲超时
	// 默认值: 6 秒，与 KeepAlivePeriod 配合约 9 秒内发现非优雅断开
	MaxIdleTimeout time.Duration

	// KeepAlivePeriod 保活间隔
	// 默认值: 3 秒
	KeepAlivePeriod time.Duration

	// HandshakeIdleTimeout QUIC 握手超时
	// 默认值: 5 秒
	HandshakeIdleTimeout time.Duration

	// MaxIncomingStreams 每个连接允许的入站双向流数
	// 默认值: 16
	MaxIncomingStreams int64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxIdleTimeout:       6 * time.Second,
		KeepAlivePeriod:      3 * time.Second,
		HandshakeIdleTimeout: 5 * time.Second,
		MaxIncomingStreams:   16,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.MaxIdleTimeout <= 0 {
		return fmt.Errorf("%w: max idle timeout must be positive", ErrInvalidConfig)
	}
	if c.KeepAlivePeriod < 0 || c.KeepAlivePeriod >= c.MaxIdleTimeout {
		return fmt.Errorf("%w: keep alive period must be below max idle timeout", ErrInvalidConfig)
	}
	if c.HandshakeIdleTimeout <= 0 {
		return fmt.Errorf("%w: handshake timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxIncomingStreams <= 0 {
		return fmt.Errorf("%w: max incoming streams must be positive", ErrInvalidConfig)
	}
	return nil
}

// quicConfig 转换为 quic-go 配置
func (c Config) quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:       c.MaxIdleTimeout,
		KeepAlivePeriod:      c.KeepAlivePeriod,
		HandshakeIdleTimeout: c.HandshakeIdleTimeout,
		MaxIncomingStreams:   c.MaxIncomingStreams,
		// 链路只使用双向流
		MaxIncomingUniStreams: -1,
	}
}
