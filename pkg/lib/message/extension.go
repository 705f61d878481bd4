package message

import (
	"github.com/dep2p/go-reload/pkg/lib/codec"
)

// ExtensionType 消息扩展类型
type ExtensionType uint16

// Extension 内容中携带的消息扩展
//
//	type u16 | critical u8 | extension_contents <u32>
//
// 目前不理解任何扩展类型，非关键扩展原样保留，关键扩展导致 UnknownExtension 错误。
type Extension struct {
	Type     ExtensionType
	Critical bool
	Body     []byte
}

func encodeExtension(w *codec.Writer, e Extension) error {
	w.PutUint16(uint16(e.Type))
	if e.Critical {
		w.PutUint8(1)
	} else {
		w.PutUint8(0)
	}
	return w.PutField(codec.U32, e.Body)
}

func decodeExtension(r *codec.Reader) (Extension, error) {
	t, err := r.ReadUint16()
	if err != nil {
		return Extension{}, err
	}
	critical, err := r.ReadUint8()
	if err != nil {
		return Extension{}, err
	}
	body, err := r.ReadFieldBytes(codec.U32)
	if err != nil {
		return Extension{}, err
	}
	if critical > 0 {
		return Extension{}, NewProtocolError(ErrorUnknownExtension, "unsupported critical extension %d", t)
	}
	return Extension{Type: ExtensionType(t), Critical: false, Body: body}, nil
}

func decodeExtensions(r *codec.Reader) ([]Extension, error) {
	var out []Extension
	for r.Len() > 0 {
		e, err := decodeExtension(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
