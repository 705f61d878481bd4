package codec

import "errors"

// 编解码错误
var (
	// ErrShortBuffer 缓冲区数据不足
	ErrShortBuffer = errors.New("codec: short buffer")

	// ErrFieldOverflow 字段内容超出长度前缀可表示的范围
	ErrFieldOverflow = errors.New("codec: field length overflow")

	// ErrValueOverflow 数值超出定长字段的表示范围
	ErrValueOverflow = errors.New("codec: value overflow")

	// ErrInvalidWidth 不支持的字段宽度
	ErrInvalidWidth = errors.New("codec: invalid field width")
)
