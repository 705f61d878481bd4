package interfaces

import (
	"context"
	"io"
	"net"
)

// AcceptFunc 接收监听器上建立的字节流
//
// 在监听器自己的协程中调用，实现应尽快返回。
type AcceptFunc func(rwc io.ReadWriteCloser, remote net.Addr)

// Listener 传输监听器
type Listener interface {
	// Addr 可拨号的监听地址，带传输前缀（如 quic://127.0.0.1:4433）
	Addr() string

	// Close 停止接受新连接；已交付的字节流不受影响
	Close() error
}

// Transport 为链路提供可靠、有序的字节流
type Transport interface {
	// Scheme 地址前缀（quic、tcp、ws）
	Scheme() string

	// Listen 在 addr 上监听，每个入站字节流交给 accept
	Listen(ctx context.Context, addr string, accept AcceptFunc) (Listener, error)

	// Dial 建立到 addr 的字节流
	Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error)

	// Close 关闭所有监听器
	Close() error
}
