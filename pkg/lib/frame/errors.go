package frame

import "errors"

// 帧编解码错误
var (
	// ErrUnknownFrameType 未知帧类型，链路应当关闭
	ErrUnknownFrameType = errors.New("frame: unknown frame type")

	// ErrFrameTooLarge DATA 负载超过上限
	ErrFrameTooLarge = errors.New("frame: payload too large")
)
