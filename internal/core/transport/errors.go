package transport

import "errors"

var (
	// ErrUnsupportedScheme 没有处理该地址前缀的传输
	ErrUnsupportedScheme = errors.New("transport: unsupported scheme")

	// ErrNoTransport 没有启用任何传输
	ErrNoTransport = errors.New("transport: no transport enabled")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("transport: invalid config")
)
