package reload

import "errors"

// 公共错误定义
var (
	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("reload: node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("reload: node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("reload: node closed")

	// ErrUnexpectedAnswer 应答内容类型与请求不符
	ErrUnexpectedAnswer = errors.New("reload: unexpected answer")
)
