package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
//                              编解码
// ============================================================================

func TestFrame_DataRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		seq     uint32
		payload []byte
	}{
		{"空负载", 0, []byte{}},
		{"小负载", 1, []byte("hello")},
		{"最大序列号", 0xffffffff, bytes.Repeat([]byte{0xab}, 1024)},
		{"最大负载", 42, make([]byte, MaxPayload)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := Encode(NewData(tc.seq, tc.payload))
			require.NoError(t, err)
			require.Len(t, raw, DataOverhead+len(tc.payload))

			f, n, err := Decode(raw)
			require.NoError(t, err)
			require.NotNil(t, f)
			assert.Equal(t, len(raw), n)
			assert.Equal(t, TypeData, f.Type)
			assert.Equal(t, tc.seq, f.Sequence)
			assert.True(t, bytes.Equal(tc.payload, f.Payload))
		})
	}
}

func TestFrame_ScenarioB(t *testing.T) {
	raw, err := Encode(NewAck(7, 0xFFFFFFFF))
	require.NoError(t, err)
	assert.Equal(t, []byte{129, 0, 0, 0, 7, 0xff, 0xff, 0xff, 0xff}, raw)

	f, n, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, AckLength, n)
	assert.Equal(t, NewAck(7, 0xFFFFFFFF), f)
}

func TestFrame_AckMasks(t *testing.T) {
	for _, mask := range []uint32{0, 1, 0x80000000, 0xdeadbeef, 0xffffffff} {
		raw, err := Encode(NewAck(3, mask))
		require.NoError(t, err)
		f, _, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, mask, f.ReceivedMask)
	}
}

func TestFrame_EncodeErrors(t *testing.T) {
	_, err := Encode(NewData(1, make([]byte, MaxPayload+1)))
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = Encode(&Frame{Type: 7})
	assert.ErrorIs(t, err, ErrUnknownFrameType)
}

func TestFrame_NeedMoreData(t *testing.T) {
	data, err := Encode(NewData(9, []byte("abcdef")))
	require.NoError(t, err)
	ack, err := Encode(NewAck(9, 1))
	require.NoError(t, err)

	for _, raw := range [][]byte{data, ack} {
		for i := 0; i < len(raw); i++ {
			f, n, err := Decode(raw[:i])
			assert.NoError(t, err)
			assert.Nil(t, f)
			assert.Equal(t, 0, n)
		}
	}
}

func TestFrame_UnknownType(t *testing.T) {
	_, _, err := Decode([]byte{0x05, 0, 0, 0, 1})
	assert.ErrorIs(t, err, ErrUnknownFrameType)
}

func TestFrame_AppendReusesBuffer(t *testing.T) {
	dst := []byte{0xaa}
	out, err := Append(dst, NewAck(1, 2))
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), out[0])
	assert.Len(t, out, 1+AckLength)
}

// ============================================================================
//                              增量解码
// ============================================================================

func TestStreamDecoder_SplitAtEveryByte(t *testing.T) {
	var stream []byte
	frames := []*Frame{
		NewData(1, []byte("first")),
		NewAck(1, 0x80000000),
		NewData(2, []byte{}),
		NewData(3, bytes.Repeat([]byte{7}, 300)),
	}
	for _, f := range frames {
		raw, err := Encode(f)
		require.NoError(t, err)
		stream = append(stream, raw...)
	}

	for split := 1; split < len(stream); split++ {
		d := NewStreamDecoder(0)
		var got []*Frame
		for off := 0; off < len(stream); off += split {
			end := off + split
			if end > len(stream) {
				end = len(stream)
			}
			_, err := d.Write(stream[off:end])
			require.NoError(t, err)
			for {
				f, err := d.Next()
				require.NoError(t, err)
				if f == nil {
					break
				}
				got = append(got, f)
			}
		}
		require.Len(t, got, len(frames), "split=%d", split)
		for i := range frames {
			assert.Equal(t, frames[i].Type, got[i].Type)
			assert.Equal(t, frames[i].Sequence, got[i].Sequence)
			assert.True(t, bytes.Equal(frames[i].Payload, got[i].Payload))
			assert.Equal(t, frames[i].ReceivedMask, got[i].ReceivedMask)
		}
		assert.Equal(t, 0, d.Buffered())
	}
}

func TestStreamDecoder_PartialNeverSurfaces(t *testing.T) {
	raw, err := Encode(NewData(5, []byte("payload")))
	require.NoError(t, err)

	d := NewStreamDecoder(0)
	_, _ = d.Write(raw[:len(raw)-1])
	f, err := d.Next()
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Equal(t, len(raw)-1, d.Buffered())

	_, _ = d.Write(raw[len(raw)-1:])
	f, err = d.Next()
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, []byte("payload"), f.Payload)
}

func TestStreamDecoder_Errors(t *testing.T) {
	t.Run("负载超过配置上限", func(t *testing.T) {
		raw, err := Encode(NewData(1, make([]byte, 100)))
		require.NoError(t, err)

		d := NewStreamDecoder(64)
		_, _ = d.Write(raw[:DataOverhead])
		_, err = d.Next()
		assert.ErrorIs(t, err, ErrFrameTooLarge)
	})

	t.Run("失败后保持失败", func(t *testing.T) {
		d := NewStreamDecoder(0)
		_, _ = d.Write([]byte{0x01})
		_, err := d.Next()
		assert.ErrorIs(t, err, ErrUnknownFrameType)

		_, err = d.Write([]byte{0x81})
		assert.ErrorIs(t, err, ErrUnknownFrameType)
		_, err = d.Next()
		assert.ErrorIs(t, err, ErrUnknownFrameType)
	})
}

// ============================================================================
//                              确认窗口
// ============================================================================

func TestAckWindow(t *testing.T) {
	t.Run("空窗口", func(t *testing.T) {
		var w AckWindow
		assert.Equal(t, uint32(0), w.Mask(10))
		_, ok := w.Highest()
		assert.False(t, ok)
	})

	t.Run("连续序列", func(t *testing.T) {
		var w AckWindow
		for s := uint32(1); s <= 4; s++ {
			w.Record(s)
		}
		assert.Equal(t, uint32(0xf0000000), w.Mask(4))
		assert.Equal(t, []uint32{1, 2, 3, 4}, Acked(4, w.Mask(4)))
	})

	t.Run("乱序与空洞", func(t *testing.T) {
		var w AckWindow
		w.Record(10)
		w.Record(8)
		w.Record(12)
		assert.Equal(t, []uint32{8, 10, 12}, Acked(12, w.Mask(12)))
		assert.Equal(t, []uint32{8, 10}, Acked(10, w.Mask(10)))
		assert.Equal(t, []uint32{8, 10, 12}, Acked(13, w.Mask(13)))
	})

	t.Run("超出窗口的旧序列被忽略", func(t *testing.T) {
		var w AckWindow
		w.Record(100)
		w.Record(50)
		assert.Equal(t, []uint32{100}, Acked(100, w.Mask(100)))

		w.Record(200)
		assert.Equal(t, []uint32{200}, Acked(200, w.Mask(200)))
	})

	t.Run("序列号回绕", func(t *testing.T) {
		var w AckWindow
		w.Record(0xffffffff)
		w.Record(0)
		assert.Equal(t, []uint32{0xffffffff, 0}, Acked(0, w.Mask(0)))
	})
}
