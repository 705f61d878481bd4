package header

import (
	"fmt"

	"github.com/dep2p/go-reload/pkg/lib/codec"
)

// OptionType 转发选项类型
type OptionType uint8

// Known 是否为本实现理解的选项类型
//
// 目前没有定义任何标准选项，所有选项都按原始字节保留并在转发时原样再编码。
func (t OptionType) Known() bool {
	return false
}

// 转发选项标志位
const (
	FlagForwardCritical     uint8 = 0x01
	FlagDestinationCritical uint8 = 0x02
	FlagResponseCopy        uint8 = 0x04
)

// ForwardingOption 自定界的转发选项块
type ForwardingOption struct {
	Type  OptionType
	Flags uint8
	Body  []byte
}

// encodeOption 写入 type u8 | flags u8 | length u16 | body
func encodeOption(w *codec.Writer, o ForwardingOption) error {
	w.PutUint8(uint8(o.Type))
	w.PutUint8(o.Flags)
	if err := w.PutField(codec.U16, o.Body); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOption, err)
	}
	return nil
}

func decodeOption(r *codec.Reader) (ForwardingOption, error) {
	t, err := r.ReadUint8()
	if err != nil {
		return ForwardingOption{}, fmt.Errorf("%w: %v", ErrMalformedOption, err)
	}
	flags, err := r.ReadUint8()
	if err != nil {
		return ForwardingOption{}, fmt.Errorf("%w: %v", ErrMalformedOption, err)
	}
	body, err := r.ReadFieldBytes(codec.U16)
	if err != nil {
		return ForwardingOption{}, fmt.Errorf("%w: %v", ErrMalformedOption, err)
	}
	return ForwardingOption{Type: OptionType(t), Flags: flags, Body: body}, nil
}

// decodeOptions 消费选项块直到视图耗尽
func decodeOptions(r *codec.Reader) ([]ForwardingOption, error) {
	var out []ForwardingOption
	for r.Len() > 0 {
		o, err := decodeOption(r)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
