package frame

import (
	"fmt"

	"github.com/dep2p/go-reload/pkg/lib/codec"
)

// Type 帧类型
type Type uint8

// 帧类型取值
const (
	TypeData Type = 128
	TypeAck  Type = 129
)

// String 返回类型名称
func (t Type) String() string {
	switch t {
	case TypeData:
		return "DATA"
	case TypeAck:
		return "ACK"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

const (
	// MaxPayload DATA 负载最大长度
	MaxPayload = codec.MaxU24

	// prefixLength type + sequence
	prefixLength = 5

	// DataOverhead DATA 帧除负载外的字节数
	DataOverhead = prefixLength + 3

	// AckLength ACK 帧总长度
	AckLength = prefixLength + 4
)

// Frame 链路传输帧
type Frame struct {
	Type     Type
	Sequence uint32

	// Payload DATA 帧负载
	Payload []byte

	// ReceivedMask ACK 帧接收位图
	ReceivedMask uint32
}

// NewData 创建 DATA 帧
func NewData(seq uint32, payload []byte) *Frame {
	return &Frame{Type: TypeData, Sequence: seq, Payload: payload}
}

// NewAck 创建 ACK 帧
func NewAck(seq uint32, mask uint32) *Frame {
	return &Frame{Type: TypeAck, Sequence: seq, ReceivedMask: mask}
}

// EncodedLength 返回帧编码后的长度
func (f *Frame) EncodedLength() int {
	if f.Type == TypeAck {
		return AckLength
	}
	return DataOverhead + len(f.Payload)
}

// Encode 编码帧
func Encode(f *Frame) ([]byte, error) {
	return Append(make([]byte, 0, f.EncodedLength()), f)
}

// Append 将帧追加到 dst
func Append(dst []byte, f *Frame) ([]byte, error) {
	w := codec.NewWriter(f.EncodedLength())
	switch f.Type {
	case TypeData:
		if len(f.Payload) > MaxPayload {
			return dst, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(f.Payload))
		}
		w.PutUint8(uint8(f.Type))
		w.PutUint32(f.Sequence)
		w.PutUint24(uint32(len(f.Payload)))
		w.PutBytes(f.Payload)
	case TypeAck:
		w.PutUint8(uint8(f.Type))
		w.PutUint32(f.Sequence)
		w.PutUint32(f.ReceivedMask)
	default:
		return dst, fmt.Errorf("%w: %d", ErrUnknownFrameType, uint8(f.Type))
	}
	return append(dst, w.Bytes()...), nil
}

// Decode 从 buf 头部解码一个完整帧
//
// 返回帧与消费的字节数。数据不足以构成完整帧时返回 (nil, 0, nil)。
// DATA 负载与 buf 共享底层存储。
func Decode(buf []byte) (*Frame, int, error) {
	return decode(buf, MaxPayload)
}

func decode(buf []byte, maxPayload int) (*Frame, int, error) {
	if len(buf) < 1 {
		return nil, 0, nil
	}
	r := codec.NewReader(buf)
	t := Type(buf[0])

	switch t {
	case TypeData:
		n, err := r.PeekUint(prefixLength, codec.U24)
		if err != nil {
			return nil, 0, nil
		}
		if int(n) > maxPayload {
			return nil, 0, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
		}
		total := DataOverhead + int(n)
		if len(buf) < total {
			return nil, 0, nil
		}
		_ = r.Skip(1)
		seq, _ := r.ReadUint32()
		payload, err := r.ReadField(codec.U24)
		if err != nil {
			return nil, 0, err
		}
		return NewData(seq, payload.Remaining()), total, nil
	case TypeAck:
		if len(buf) < AckLength {
			return nil, 0, nil
		}
		_ = r.Skip(1)
		seq, _ := r.ReadUint32()
		mask, _ := r.ReadUint32()
		return NewAck(seq, mask), AckLength, nil
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownFrameType, uint8(t))
	}
}
