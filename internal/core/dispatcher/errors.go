package dispatcher

import "errors"

var (
	// ErrHandlerExists 内容类型已注册处理器
	ErrHandlerExists = errors.New("dispatcher: handler already registered")

	// ErrNotRequestType 只能为请求类型注册处理器
	ErrNotRequestType = errors.New("dispatcher: content type is not a request")

	// ErrNilHandler 处理器为空
	ErrNilHandler = errors.New("dispatcher: nil handler")

	// ErrDispatcherClosed 分发器已关闭
	ErrDispatcherClosed = errors.New("dispatcher: closed")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("dispatcher: invalid config")
)
