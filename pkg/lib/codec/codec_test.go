package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_FixedWidth(t *testing.T) {
	w := NewWriter(0)
	w.PutUint8(0x01)
	w.PutUint16(0x0203)
	w.PutUint24(0x040506)
	w.PutUint32(0x0708090a)
	w.PutUint64(0x0b0c0d0e0f101112)

	want := []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06,
		0x07, 0x08, 0x09, 0x0a,
		0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12,
	}
	assert.Equal(t, want, w.Bytes())

	r := NewReader(w.Bytes())
	v8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), v8)
	v16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0203), v16)
	v24, err := r.ReadUint24()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x040506), v24)
	v32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0708090a), v32)
	v64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0b0c0d0e0f101112), v64)
	assert.Equal(t, 0, r.Len())
}

func TestWriter_PutUint(t *testing.T) {
	t.Run("宽度范围内", func(t *testing.T) {
		w := NewWriter(4)
		require.NoError(t, w.PutUint(U24, MaxU24))
		assert.Equal(t, []byte{0xff, 0xff, 0xff}, w.Bytes())
	})

	t.Run("数值溢出", func(t *testing.T) {
		w := NewWriter(4)
		err := w.PutUint(U16, 0x10000)
		assert.ErrorIs(t, err, ErrValueOverflow)
		assert.Equal(t, 0, w.Len())
	})

	t.Run("非法宽度", func(t *testing.T) {
		w := NewWriter(4)
		assert.ErrorIs(t, w.PutUint(Width(5), 1), ErrInvalidWidth)
	})
}

func TestField_UpdateDataLength(t *testing.T) {
	w := NewWriter(16)
	w.PutUint8(0xaa)
	fld := w.AllocateField(U16)
	w.PutBytes([]byte("hello"))
	require.NoError(t, fld.UpdateDataLength())
	w.PutUint8(0xbb)

	assert.Equal(t, []byte{0xaa, 0x00, 0x05, 'h', 'e', 'l', 'l', 'o', 0xbb}, w.Bytes())
	assert.Equal(t, 1, fld.Offset())
}

func TestField_Nested(t *testing.T) {
	w := NewWriter(16)
	outer := w.AllocateField(U32)
	inner := w.AllocateField(U8)
	w.PutBytes([]byte{1, 2, 3})
	require.NoError(t, inner.UpdateDataLength())
	require.NoError(t, outer.UpdateDataLength())

	r := NewReader(w.Bytes())
	outerView, err := r.ReadField(U32)
	require.NoError(t, err)
	assert.Equal(t, 4, outerView.Len())

	innerBytes, err := outerView.ReadFieldBytes(U8)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, innerBytes)
	assert.Equal(t, 0, outerView.Len())
}

func TestField_Overflow(t *testing.T) {
	w := NewWriter(300)
	fld := w.AllocateField(U8)
	w.PutBytes(make([]byte, 256))
	assert.ErrorIs(t, fld.UpdateDataLength(), ErrFieldOverflow)

	assert.ErrorIs(t, fld.Set(256), ErrValueOverflow)
	require.NoError(t, fld.Set(255))
	assert.Equal(t, byte(0xff), w.Bytes()[0])
}

func TestWriter_PutBigUint(t *testing.T) {
	t.Run("左侧补零", func(t *testing.T) {
		w := NewWriter(8)
		require.NoError(t, w.PutBigUint(big.NewInt(0x0102), 8))
		assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x01, 0x02}, w.Bytes())

		r := NewReader(w.Bytes())
		v, err := r.ReadBigUint(8)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Cmp(big.NewInt(0x0102)))
	})

	t.Run("零值", func(t *testing.T) {
		w := NewWriter(4)
		require.NoError(t, w.PutBigUint(nil, 4))
		assert.Equal(t, []byte{0, 0, 0, 0}, w.Bytes())
	})

	t.Run("超出宽度", func(t *testing.T) {
		w := NewWriter(4)
		v := new(big.Int).Lsh(big.NewInt(1), 32)
		assert.ErrorIs(t, w.PutBigUint(v, 4), ErrValueOverflow)
	})

	t.Run("负数", func(t *testing.T) {
		w := NewWriter(4)
		assert.ErrorIs(t, w.PutBigUint(big.NewInt(-1), 4), ErrValueOverflow)
	})
}

func TestReader_ShortBuffer(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03})

	_, err := r.ReadUint32()
	assert.ErrorIs(t, err, ErrShortBuffer)
	assert.Equal(t, 0, r.Offset(), "failed read must not consume")

	_, err = r.ReadBytes(4)
	assert.ErrorIs(t, err, ErrShortBuffer)

	assert.ErrorIs(t, r.Skip(4), ErrShortBuffer)
	require.NoError(t, r.Skip(3))
	_, err = r.ReadUint8()
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestReader_ReadFieldBounded(t *testing.T) {
	// 声明长度 2，后面还有数据
	r := NewReader([]byte{0x00, 0x02, 0xaa, 0xbb, 0xcc})
	view, err := r.ReadField(U16)
	require.NoError(t, err)

	_, err = view.ReadUint8()
	require.NoError(t, err)
	_, err = view.ReadUint16()
	assert.ErrorIs(t, err, ErrShortBuffer, "bounded view must not see parent data")

	rest, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xcc), rest)
}

func TestReader_ReadFieldTruncated(t *testing.T) {
	r := NewReader([]byte{0x00, 0x05, 0xaa})
	_, err := r.ReadField(U16)
	assert.ErrorIs(t, err, ErrShortBuffer)
	assert.Equal(t, 0, r.Offset())
}

func TestReader_PeekUint(t *testing.T) {
	r := NewReader([]byte{0x80, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x03})

	v, err := r.PeekUint(5, U24)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
	assert.Equal(t, 0, r.Offset())

	_, err = r.PeekUint(6, U24)
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestWidth_Max(t *testing.T) {
	assert.Equal(t, uint64(0xff), U8.Max())
	assert.Equal(t, uint64(0xffff), U16.Max())
	assert.Equal(t, uint64(MaxU24), U24.Max())
	assert.Equal(t, uint64(0xffffffff), U32.Max())
	assert.Equal(t, ^uint64(0), U64.Max())
}
