package link

import "errors"

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrLinkClosed 链路已关闭
	ErrLinkClosed = errors.New("link: closed")

	// ErrHandshake 节点标识交换失败
	ErrHandshake = errors.New("link: handshake failed")

	// ErrSelfLink 对端标识与本节点相同
	ErrSelfLink = errors.New("link: peer has local node id")

	// ErrQueueFull 写队列已满
	ErrQueueFull = errors.New("link: write queue full")

	// ErrPayloadTooLarge 编码后的消息超过最大帧负载
	ErrPayloadTooLarge = errors.New("link: payload too large")

	// ErrAlreadyRunning Run 被重复调用
	ErrAlreadyRunning = errors.New("link: already running")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("link: invalid config")
)
