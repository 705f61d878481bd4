package header

import (
	"fmt"

	"github.com/dep2p/go-reload/pkg/lib/codec"
)

// Encode 将头部写入 w
//
// 返回总长度字段的占位，调用方在写完负载后回填整条消息的长度。
// 三个列表长度字段在各自内容写完后立即回填。
func Encode(w *codec.Writer, h *Header) (*codec.Field, error) {
	w.PutUint32(Token)
	w.PutUint32(h.OverlayHash)
	w.PutUint16(h.ConfigurationSequence)
	w.PutUint8(h.Version)
	w.PutUint8(h.TTL)
	w.PutUint16(h.fragmentValue())
	w.PutUint16(h.FragmentOffset)

	total := w.AllocateField(codec.U32)

	w.PutUint64(h.TransactionID)
	w.PutUint32(h.MaxResponseLength)

	viaLen := w.AllocateField(codec.U16)
	destLen := w.AllocateField(codec.U16)
	optLen := w.AllocateField(codec.U16)

	start := w.Len()
	if err := EncodeDestinationList(w, h.ViaList); err != nil {
		return nil, fmt.Errorf("via list: %w", err)
	}
	if err := setSectionLength(viaLen, w.Len()-start); err != nil {
		return nil, fmt.Errorf("via list: %w", err)
	}

	start = w.Len()
	if err := EncodeDestinationList(w, h.DestinationList); err != nil {
		return nil, fmt.Errorf("destination list: %w", err)
	}
	if err := setSectionLength(destLen, w.Len()-start); err != nil {
		return nil, fmt.Errorf("destination list: %w", err)
	}

	start = w.Len()
	for _, o := range h.ForwardingOptions {
		if err := encodeOption(w, o); err != nil {
			return nil, err
		}
	}
	if err := setSectionLength(optLen, w.Len()-start); err != nil {
		return nil, fmt.Errorf("forwarding options: %w", err)
	}

	return total, nil
}

// setSectionLength 回填列表长度
//
// 列表长度字段不紧邻列表内容，不能使用 UpdateDataLength。
func setSectionLength(f *codec.Field, n int) error {
	if err := f.Set(uint64(n)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedList, err)
	}
	return nil
}

// EncodedLength 返回头部编码后的字节数
func (h *Header) EncodedLength() (int, error) {
	w := codec.NewWriter(FixedLength + 64)
	if _, err := Encode(w, h); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// Decode 从 r 读取头部
//
// 读取完成后 r 位于负载起始处。HeaderLength 与 PayloadLength 由
// 三个列表的声明长度和总长度字段推导。
func Decode(r *codec.Reader) (*Header, error) {
	if r.Len() < FixedLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, r.Len())
	}

	h := &Header{}
	token, _ := r.ReadUint32()
	h.TokenValid = token == Token
	h.OverlayHash, _ = r.ReadUint32()
	h.ConfigurationSequence, _ = r.ReadUint16()
	h.Version, _ = r.ReadUint8()
	h.TTL, _ = r.ReadUint8()
	frag, _ := r.ReadUint16()
	h.LastFragment = frag&lastFragmentMask != 0
	h.FragmentOffset, _ = r.ReadUint16()
	total, _ := r.ReadUint32()
	h.TransactionID, _ = r.ReadUint64()
	h.MaxResponseLength, _ = r.ReadUint32()

	viaLen, _ := r.ReadUint16()
	destLen, _ := r.ReadUint16()
	optLen, _ := r.ReadUint16()

	via, err := decodeSection(r, int(viaLen), "via list")
	if err != nil {
		return nil, err
	}
	if h.ViaList, err = DecodeDestinationList(via); err != nil {
		return nil, fmt.Errorf("%w: via list: %v", ErrMalformedList, err)
	}

	dest, err := decodeSection(r, int(destLen), "destination list")
	if err != nil {
		return nil, err
	}
	if h.DestinationList, err = DecodeDestinationList(dest); err != nil {
		return nil, fmt.Errorf("%w: destination list: %v", ErrMalformedList, err)
	}

	opts, err := decodeSection(r, int(optLen), "forwarding options")
	if err != nil {
		return nil, err
	}
	if h.ForwardingOptions, err = decodeOptions(opts); err != nil {
		return nil, fmt.Errorf("%w: forwarding options: %v", ErrMalformedList, err)
	}

	h.HeaderLength = uint32(FixedLength) + uint32(viaLen) + uint32(destLen) + uint32(optLen)
	if total < h.HeaderLength {
		return nil, fmt.Errorf("%w: total length %d < header length %d", ErrTruncated, total, h.HeaderLength)
	}
	h.PayloadLength = total - h.HeaderLength
	return h, nil
}

// decodeSection 切出声明长度的有界视图
func decodeSection(r *codec.Reader, n int, name string) (*codec.Reader, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedList, name, err)
	}
	return codec.NewReader(b), nil
}

// PeekTotalLength 读取缓冲区中头部的总长度字段，不消费数据
func PeekTotalLength(b []byte) (uint32, error) {
	v, err := codec.NewReader(b).PeekUint(TotalLengthOffset, codec.U32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return uint32(v), nil
}
