package websocket

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("websocket: transport closed")

	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = errors.New("websocket: invalid address")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("websocket: invalid config")
)
