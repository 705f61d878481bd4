package quic

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("quic: transport closed")

	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = errors.New("quic: invalid address")

	// ErrNoCertificate 对端没有提供证书
	ErrNoCertificate = errors.New("quic: no peer certificate")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("quic: invalid config")
)
