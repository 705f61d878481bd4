package codec

import (
	"fmt"
	"math/big"
)

// ============================================================================
//                              Writer
// ============================================================================

// Writer 只追加的大端编码缓冲区
//
// Writer 不是并发安全的，每次编码使用独立实例。
type Writer struct {
	buf []byte
}

// NewWriter 创建 Writer，sizeHint 为预分配容量
func NewWriter(sizeHint int) *Writer {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes 返回已写入的字节（共享底层存储）
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len 返回已写入字节数
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset 清空缓冲区并保留容量
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// PutUint8 写入 8 位整数
func (w *Writer) PutUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// PutUint16 写入 16 位大端整数
func (w *Writer) PutUint16(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

// PutUint24 写入 24 位大端整数，高 8 位被丢弃
func (w *Writer) PutUint24(v uint32) {
	w.buf = append(w.buf, byte(v>>16), byte(v>>8), byte(v))
}

// PutUint32 写入 32 位大端整数
func (w *Writer) PutUint32(v uint32) {
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// PutUint64 写入 64 位大端整数
func (w *Writer) PutUint64(v uint64) {
	w.buf = append(w.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// PutUint 按指定宽度写入整数
func (w *Writer) PutUint(width Width, v uint64) error {
	if !width.Valid() {
		return ErrInvalidWidth
	}
	if v > width.Max() {
		return fmt.Errorf("%w: %d does not fit in %d bytes", ErrValueOverflow, v, width)
	}
	pos := w.grow(int(width))
	putUint(w.buf[pos:], width, v)
	return nil
}

// PutBytes 原样追加字节
func (w *Writer) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutField 写入带长度前缀的字节串
func (w *Writer) PutField(width Width, b []byte) error {
	fld := w.AllocateField(width)
	w.PutBytes(b)
	return fld.UpdateDataLength()
}

// PutBigUint 以定长无符号大端形式写入大整数
//
// 不足 size 字节时左侧补零，保证字段位置稳定；超出时返回 ErrValueOverflow。
func (w *Writer) PutBigUint(v *big.Int, size int) error {
	if v == nil {
		v = new(big.Int)
	}
	if v.Sign() < 0 {
		return fmt.Errorf("%w: negative value", ErrValueOverflow)
	}
	if (v.BitLen()+7)/8 > size {
		return fmt.Errorf("%w: %d bits do not fit in %d bytes", ErrValueOverflow, v.BitLen(), size)
	}
	pos := w.grow(size)
	v.FillBytes(w.buf[pos : pos+size])
	return nil
}

// grow 扩展 n 个零字节并返回起始位置
func (w *Writer) grow(n int) int {
	pos := len(w.buf)
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
	return pos
}

// ============================================================================
//                              Field 占位回填
// ============================================================================

// Field 长度前缀占位符
//
// AllocateField 先写入 width 个零字节，内容写完后由 UpdateDataLength 回填。
type Field struct {
	w     *Writer
	pos   int
	width Width
}

// AllocateField 分配长度前缀占位
func (w *Writer) AllocateField(width Width) *Field {
	if !width.Valid() {
		width = U32
	}
	return &Field{w: w, pos: w.grow(int(width)), width: width}
}

// UpdateDataLength 回填占位之后写入的字节数
func (f *Field) UpdateDataLength() error {
	n := f.w.Len() - f.pos - int(f.width)
	if uint64(n) > f.width.Max() {
		return fmt.Errorf("%w: %d bytes in %d-byte length field", ErrFieldOverflow, n, f.width)
	}
	putUint(f.w.buf[f.pos:], f.width, uint64(n))
	return nil
}

// Set 向占位写入指定值
func (f *Field) Set(v uint64) error {
	if v > f.width.Max() {
		return fmt.Errorf("%w: %d does not fit in %d bytes", ErrValueOverflow, v, f.width)
	}
	putUint(f.w.buf[f.pos:], f.width, v)
	return nil
}

// Offset 返回占位在缓冲区中的起始位置
func (f *Field) Offset() int {
	return f.pos
}
