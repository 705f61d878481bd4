package config

import (
	"fmt"
	"strings"
	"time"
)

// TransportConfig 传输层配置
//
//   - QUIC: 基于 UDP，每条链路一个双向流（默认）
//   - TCP: 明文 TCP，用于测试与受信网络
//   - WebSocket: 二进制消息承载链路字节流
type TransportConfig struct {
	// QUIC 配置
	EnableQUIC bool       `json:"enable_quic"`
	QUIC       QUICConfig `json:"quic"`

	// TCP 配置
	EnableTCP bool      `json:"enable_tcp"`
	TCP       TCPConfig `json:"tcp"`

	// WebSocket 配置
	EnableWebSocket bool            `json:"enable_websocket"`
	WebSocket       WebSocketConfig `json:"websocket"`

	// DialTimeout 拨号超时
	DialTimeout Duration `json:"dial_timeout"`
}

// QUICConfig QUIC 传输配置
type QUICConfig struct {
	MaxIdleTimeout       Duration `json:"max_idle_timeout"`
	KeepAlivePeriod      Duration `json:"keep_alive_period"`
	HandshakeIdleTimeout Duration `json:"handshake_idle_timeout"`
	MaxIncomingStreams   int64    `json:"max_incoming_streams"`
}

// TCPConfig TCP 传输配置
type TCPConfig struct {
	// KeepAlivePeriod TCP 保活间隔
	KeepAlivePeriod Duration `json:"keep_alive_period"`
}

// WebSocketConfig WebSocket 传输配置
type WebSocketConfig struct {
	Path             string   `json:"path"`
	HandshakeTimeout Duration `json:"handshake_timeout"`
	ReadBufferSize   int      `json:"read_buffer_size"`
	WriteBufferSize  int      `json:"write_buffer_size"`
	WriteTimeout     Duration `json:"write_timeout"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		EnableQUIC: true, // 默认传输
		QUIC: QUICConfig{
			MaxIdleTimeout:       Duration(6 * time.Second), // 与保活配合约 9 秒发现断开
			KeepAlivePeriod:      Duration(3 * time.Second),
			HandshakeIdleTimeout: Duration(5 * time.Second),
			MaxIncomingStreams:   16,
		},

		EnableTCP: false,
		TCP: TCPConfig{
			KeepAlivePeriod: Duration(15 * time.Second),
		},

		EnableWebSocket: false,
		WebSocket: WebSocketConfig{
			Path:             "/reload",
			HandshakeTimeout: Duration(5 * time.Second),
			ReadBufferSize:   32 * 1024,
			WriteBufferSize:  32 * 1024,
			WriteTimeout:     Duration(10 * time.Second),
		},

		DialTimeout: Duration(10 * time.Second),
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if !c.EnableQUIC && !c.EnableTCP && !c.EnableWebSocket {
		return fmt.Errorf("%w: at least one transport must be enabled", ErrInvalidConfig)
	}
	if c.EnableQUIC {
		if c.QUIC.MaxIdleTimeout <= 0 {
			return fmt.Errorf("%w: quic max idle timeout must be positive", ErrInvalidConfig)
		}
		if c.QUIC.KeepAlivePeriod >= c.QUIC.MaxIdleTimeout {
			return fmt.Errorf("%w: quic keep alive period must be below max idle timeout", ErrInvalidConfig)
		}
	}
	if c.EnableWebSocket && !strings.HasPrefix(c.WebSocket.Path, "/") {
		return fmt.Errorf("%w: websocket path must start with /", ErrInvalidConfig)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("%w: dial timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
