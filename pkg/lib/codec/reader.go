package codec

import (
	"fmt"
	"math/big"
)

// Reader 字节切片上的有界读取视图
//
// 所有读取均做边界检查，越界返回 ErrShortBuffer。
type Reader struct {
	buf []byte
	off int
}

// NewReader 创建读取视图
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len 返回剩余可读字节数
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

// Offset 返回已读取字节数
func (r *Reader) Offset() int {
	return r.off
}

// Remaining 返回剩余字节（共享底层存储）
func (r *Reader) Remaining() []byte {
	return r.buf[r.off:]
}

// need 检查剩余字节是否足够
func (r *Reader) need(n int) error {
	if n < 0 || r.Len() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, r.Len())
	}
	return nil
}

// ReadUint8 读取 8 位整数
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

// ReadUint16 读取 16 位大端整数
func (r *Reader) ReadUint16() (uint16, error) {
	v, err := r.ReadUint(U16)
	return uint16(v), err
}

// ReadUint24 读取 24 位大端整数
func (r *Reader) ReadUint24() (uint32, error) {
	v, err := r.ReadUint(U24)
	return uint32(v), err
}

// ReadUint32 读取 32 位大端整数
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.ReadUint(U32)
	return uint32(v), err
}

// ReadUint64 读取 64 位大端整数
func (r *Reader) ReadUint64() (uint64, error) {
	return r.ReadUint(U64)
}

// ReadUint 按宽度读取整数
func (r *Reader) ReadUint(width Width) (uint64, error) {
	if !width.Valid() {
		return 0, ErrInvalidWidth
	}
	if err := r.need(int(width)); err != nil {
		return 0, err
	}
	v := getUint(r.buf[r.off:], width)
	r.off += int(width)
	return v, nil
}

// PeekUint 读取当前位置之后 offset 处的整数，不移动读位置
func (r *Reader) PeekUint(offset int, width Width) (uint64, error) {
	if !width.Valid() {
		return 0, ErrInvalidWidth
	}
	if err := r.need(offset + int(width)); err != nil {
		return 0, err
	}
	return getUint(r.buf[r.off+offset:], width), nil
}

// ReadBytes 读取 n 字节（共享底层存储）
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return b, nil
}

// Skip 跳过 n 字节
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// ReadField 读取长度前缀并返回字段内容的有界视图
//
// 父视图前进到字段之后，子视图之外的数据对调用方不可见。
func (r *Reader) ReadField(width Width) (*Reader, error) {
	b, err := r.readFieldRaw(width)
	if err != nil {
		return nil, err
	}
	return NewReader(b), nil
}

// ReadFieldBytes 读取长度前缀字段并复制其内容
func (r *Reader) ReadFieldBytes(width Width) ([]byte, error) {
	b, err := r.readFieldRaw(width)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (r *Reader) readFieldRaw(width Width) ([]byte, error) {
	start := r.off
	n, err := r.ReadUint(width)
	if err != nil {
		return nil, err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		r.off = start
		return nil, err
	}
	return b, nil
}

// ReadBigUint 读取 size 字节的定长无符号大整数
func (r *Reader) ReadBigUint(size int) (*big.Int, error) {
	b, err := r.ReadBytes(size)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
