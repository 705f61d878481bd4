package header

import "errors"

// 头部编解码错误
var (
	// ErrMalformedList 列表声明长度与实际解码字节数不一致
	ErrMalformedList = errors.New("header: malformed list")

	// ErrMalformedDestination 目的地条目格式错误
	ErrMalformedDestination = errors.New("header: malformed destination")

	// ErrMalformedOption 转发选项格式错误
	ErrMalformedOption = errors.New("header: malformed forwarding option")

	// ErrTruncated 固定头部字段不完整
	ErrTruncated = errors.New("header: truncated")

	// ErrEmptyDestination 目的地列表为空
	ErrEmptyDestination = errors.New("header: empty destination list")
)
