package host

import "errors"

var (
	// ErrHostClosed Host 已关闭
	ErrHostClosed = errors.New("host: closed")

	// ErrAlreadyStarted Host 已启动
	ErrAlreadyStarted = errors.New("host: already started")

	// ErrUnexpectedPeer 对端标识与期望不符
	ErrUnexpectedPeer = errors.New("host: unexpected peer node id")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("host: invalid config")
)
