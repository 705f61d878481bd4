package header

import (
	"fmt"

	"github.com/dep2p/go-reload/pkg/lib/codec"
	"github.com/dep2p/go-reload/pkg/types"
)

// compressedMask 首字节最高位为 1 表示压缩的不透明标识
const compressedMask = 0x80

// EncodeDestination 写入一个目的地条目
//
//	node:       type u8 | length u8 | node_id
//	resource:   type u8 | length u8 | (u8 length | resource_id)
//	opaque:     type u8 | length u8 | (u8 length | opaque_id)
//	compressed: u16（最高位为 1）
func EncodeDestination(w *codec.Writer, d types.RoutableID) error {
	switch d.Type {
	case types.DestinationCompressed:
		if len(d.ID) != 2 || d.ID[0]&compressedMask == 0 {
			return fmt.Errorf("%w: %v", ErrMalformedDestination, types.ErrInvalidCompressedID)
		}
		w.PutBytes([]byte(d.ID))
		return nil
	case types.DestinationNode:
		if len(d.ID) == 0 {
			return fmt.Errorf("%w: empty node id", ErrMalformedDestination)
		}
		w.PutUint8(uint8(d.Type))
		return putField(w, []byte(d.ID))
	case types.DestinationResource, types.DestinationOpaque:
		w.PutUint8(uint8(d.Type))
		body := w.AllocateField(codec.U8)
		if err := putField(w, []byte(d.ID)); err != nil {
			return err
		}
		if err := body.UpdateDataLength(); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedDestination, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown type %s", ErrMalformedDestination, d.Type)
	}
}

func putField(w *codec.Writer, b []byte) error {
	if err := w.PutField(codec.U8, b); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDestination, err)
	}
	return nil
}

// DecodeDestination 读取一个目的地条目
func DecodeDestination(r *codec.Reader) (types.RoutableID, error) {
	first, err := r.PeekUint(0, codec.U8)
	if err != nil {
		return types.RoutableID{}, fmt.Errorf("%w: %v", ErrMalformedDestination, err)
	}
	if first&compressedMask != 0 {
		b, err := r.ReadBytes(2)
		if err != nil {
			return types.RoutableID{}, fmt.Errorf("%w: %v", ErrMalformedDestination, err)
		}
		return types.RoutableID{Type: types.DestinationCompressed, ID: string(b)}, nil
	}

	if _, err := r.ReadUint8(); err != nil {
		return types.RoutableID{}, err
	}
	t := types.DestinationType(first)
	body, err := r.ReadField(codec.U8)
	if err != nil {
		return types.RoutableID{}, fmt.Errorf("%w: %v", ErrMalformedDestination, err)
	}

	switch t {
	case types.DestinationNode:
		if body.Len() == 0 {
			return types.RoutableID{}, fmt.Errorf("%w: empty node id", ErrMalformedDestination)
		}
		b, _ := body.ReadBytes(body.Len())
		return types.RoutableID{Type: t, ID: string(b)}, nil
	case types.DestinationResource, types.DestinationOpaque:
		id, err := body.ReadFieldBytes(codec.U8)
		if err != nil {
			return types.RoutableID{}, fmt.Errorf("%w: %v", ErrMalformedDestination, err)
		}
		if body.Len() != 0 {
			return types.RoutableID{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformedDestination, body.Len())
		}
		return types.RoutableID{Type: t, ID: string(id)}, nil
	default:
		return types.RoutableID{}, fmt.Errorf("%w: unknown type %s", ErrMalformedDestination, t)
	}
}

// EncodeDestinationList 依次写入目的地条目（不含长度前缀）
func EncodeDestinationList(w *codec.Writer, list []types.RoutableID) error {
	for _, d := range list {
		if err := EncodeDestination(w, d); err != nil {
			return err
		}
	}
	return nil
}

// DecodeDestinationList 在有界视图内解码直到耗尽
func DecodeDestinationList(r *codec.Reader) ([]types.RoutableID, error) {
	var out []types.RoutableID
	for r.Len() > 0 {
		d, err := DecodeDestination(r)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
