package header

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-reload/pkg/lib/codec"
	"github.com/dep2p/go-reload/pkg/types"
)

// encodeWithPayload 编码头部并回填总长度
func encodeWithPayload(t *testing.T, h *Header, payload []byte) []byte {
	t.Helper()
	w := codec.NewWriter(128)
	total, err := Encode(w, h)
	require.NoError(t, err)
	w.PutBytes(payload)
	require.NoError(t, total.Set(uint64(w.Len())))
	return w.Bytes()
}

func sampleHeader() *Header {
	res := types.ResourceIDFromName("alice")
	return &Header{
		TokenValid:            true,
		OverlayHash:           0xcafebabe,
		ConfigurationSequence: 7,
		Version:               DefaultVersion,
		TTL:                   99,
		LastFragment:          true,
		FragmentOffset:        0,
		TransactionID:         0x1122334455667788,
		MaxResponseLength:     4096,
		ViaList: []types.RoutableID{
			types.NodeID("node-a").Routable(),
			types.OpaqueID("op").Routable(),
		},
		DestinationList: []types.RoutableID{
			types.NodeID("node-b").Routable(),
			res.Routable(),
			{Type: types.DestinationCompressed, ID: "\x80\x05"},
		},
		ForwardingOptions: []ForwardingOption{
			{Type: 9, Flags: FlagDestinationCritical, Body: []byte{1, 2, 3}},
			{Type: 10, Flags: 0, Body: []byte{}},
		},
	}
}

// ============================================================================
//                              往返
// ============================================================================

func TestHeader_RoundTrip(t *testing.T) {
	h := sampleHeader()
	payload := []byte("payload-bytes")
	raw := encodeWithPayload(t, h, payload)

	r := codec.NewReader(raw)
	got, err := Decode(r)
	require.NoError(t, err)

	assert.True(t, got.TokenValid)
	assert.Equal(t, h.OverlayHash, got.OverlayHash)
	assert.Equal(t, h.ConfigurationSequence, got.ConfigurationSequence)
	assert.Equal(t, h.Version, got.Version)
	assert.Equal(t, h.TTL, got.TTL)
	assert.Equal(t, h.LastFragment, got.LastFragment)
	assert.Equal(t, h.FragmentOffset, got.FragmentOffset)
	assert.Equal(t, h.TransactionID, got.TransactionID)
	assert.Equal(t, h.MaxResponseLength, got.MaxResponseLength)
	assert.Equal(t, h.ViaList, got.ViaList)
	assert.Equal(t, h.DestinationList, got.DestinationList)
	assert.Equal(t, h.ForwardingOptions, got.ForwardingOptions)

	assert.Equal(t, uint32(len(raw)-len(payload)), got.HeaderLength)
	assert.Equal(t, uint32(len(payload)), got.PayloadLength)
	assert.Equal(t, payload, r.Remaining())
}

func TestHeader_ScenarioA(t *testing.T) {
	h := &Header{
		TokenValid:    true,
		OverlayHash:   0x11223344,
		TTL:           20,
		TransactionID: 0x0102030405060708,
		LastFragment:  true,
	}
	raw := encodeWithPayload(t, h, []byte{0xde, 0xad})
	require.Len(t, raw, FixedLength+2)

	total := binary.BigEndian.Uint32(raw[TotalLengthOffset:])

	got, err := Decode(codec.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x11223344), got.OverlayHash)
	assert.Equal(t, uint8(20), got.TTL)
	assert.Equal(t, uint64(0x0102030405060708), got.TransactionID)
	assert.Empty(t, got.ViaList)
	assert.Empty(t, got.DestinationList)
	assert.Empty(t, got.ForwardingOptions)
	assert.Equal(t, uint32(FixedLength), got.HeaderLength)
	assert.Equal(t, total-FixedLength, got.PayloadLength)
}

func TestHeader_WireLayout(t *testing.T) {
	h := &Header{OverlayHash: 0x11223344, ConfigurationSequence: 0x0506, Version: 10, TTL: 20,
		LastFragment: true, FragmentOffset: 0x0102}
	raw := encodeWithPayload(t, h, nil)

	assert.Equal(t, []byte{0xd2, 0x45, 0x4c, 0x4f}, raw[0:4])
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, raw[4:8])
	assert.Equal(t, []byte{0x05, 0x06}, raw[8:10])
	assert.Equal(t, byte(10), raw[10])
	assert.Equal(t, byte(20), raw[11])
	assert.Equal(t, []byte{0xc0, 0x00}, raw[12:14])
	assert.Equal(t, []byte{0x01, 0x02}, raw[14:16])

	t.Run("非最后分片只保留格式标记", func(t *testing.T) {
		h.LastFragment = false
		raw := encodeWithPayload(t, h, nil)
		assert.Equal(t, []byte{0x80, 0x00}, raw[12:14])

		got, err := Decode(codec.NewReader(raw))
		require.NoError(t, err)
		assert.False(t, got.LastFragment)
		assert.True(t, got.IsFragmented())
	})
}

// ============================================================================
//                              列表长度不变量
// ============================================================================

func TestHeader_ListLengthInvariant(t *testing.T) {
	h := sampleHeader()
	raw := encodeWithPayload(t, h, nil)

	viaLen := int(binary.BigEndian.Uint16(raw[32:]))
	destLen := int(binary.BigEndian.Uint16(raw[34:]))
	optLen := int(binary.BigEndian.Uint16(raw[36:]))

	measure := func(fn func(w *codec.Writer) error) int {
		w := codec.NewWriter(64)
		require.NoError(t, fn(w))
		return w.Len()
	}
	assert.Equal(t, measure(func(w *codec.Writer) error { return EncodeDestinationList(w, h.ViaList) }), viaLen)
	assert.Equal(t, measure(func(w *codec.Writer) error { return EncodeDestinationList(w, h.DestinationList) }), destLen)
	assert.Equal(t, measure(func(w *codec.Writer) error {
		for _, o := range h.ForwardingOptions {
			if err := encodeOption(w, o); err != nil {
				return err
			}
		}
		return nil
	}), optLen)
	assert.Equal(t, FixedLength+viaLen+destLen+optLen, len(raw))
}

func TestHeader_MalformedListLength(t *testing.T) {
	h := sampleHeader()

	t.Run("via 列表长度偏短", func(t *testing.T) {
		raw := encodeWithPayload(t, h, nil)
		viaLen := binary.BigEndian.Uint16(raw[32:])
		binary.BigEndian.PutUint16(raw[32:], viaLen-1)
		_, err := Decode(codec.NewReader(raw))
		assert.ErrorIs(t, err, ErrMalformedList)
	})

	t.Run("选项长度超出缓冲区", func(t *testing.T) {
		raw := encodeWithPayload(t, h, nil)
		binary.BigEndian.PutUint16(raw[36:], 0xffff)
		_, err := Decode(codec.NewReader(raw))
		assert.ErrorIs(t, err, ErrMalformedList)
	})

	t.Run("目的地条目内部长度错误", func(t *testing.T) {
		raw := encodeWithPayload(t, &Header{
			DestinationList: []types.RoutableID{types.NodeID("abc").Routable()},
		}, nil)
		// 目的地条目: type(1) length(1)=3 'a' 'b' 'c'
		raw[FixedLength+1] = 9
		_, err := Decode(codec.NewReader(raw))
		assert.ErrorIs(t, err, ErrMalformedList)
	})
}

func TestHeader_Truncated(t *testing.T) {
	raw := encodeWithPayload(t, sampleHeader(), nil)
	_, err := Decode(codec.NewReader(raw[:FixedLength-1]))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestHeader_WrongTokenNotFatal(t *testing.T) {
	raw := encodeWithPayload(t, sampleHeader(), nil)
	raw[0] = 0x00

	got, err := Decode(codec.NewReader(raw))
	require.NoError(t, err)
	assert.False(t, got.TokenValid)
}

// ============================================================================
//                              辅助方法
// ============================================================================

func TestHeader_Helpers(t *testing.T) {
	a := types.NodeID("a").Routable()
	b := types.NodeID("b").Routable()

	t.Run("目的地弹出", func(t *testing.T) {
		h := New(1, a, b)
		d, ok := h.DestinationID()
		require.True(t, ok)
		assert.Equal(t, a, d)

		popped, ok := h.PopDestination()
		require.True(t, ok)
		assert.Equal(t, a, popped)
		assert.Equal(t, []types.RoutableID{b}, h.DestinationList)

		h.PopDestination()
		_, ok = h.DestinationID()
		assert.False(t, ok)
		_, ok = h.PopDestination()
		assert.False(t, ok)
	})

	t.Run("途经列表逆序", func(t *testing.T) {
		h := New(1)
		h.AppendVia(a)
		h.AppendVia(b)
		assert.Equal(t, []types.RoutableID{b, a}, h.ReversedVia())
	})

	t.Run("深拷贝", func(t *testing.T) {
		h := sampleHeader()
		c := h.Clone()
		c.ViaList[0] = b
		c.ForwardingOptions[0].Body[0] = 0xff
		assert.NotEqual(t, b, h.ViaList[0])
		assert.Equal(t, byte(1), h.ForwardingOptions[0].Body[0])
	})

	t.Run("未知关键选项", func(t *testing.T) {
		h := New(1)
		_, ok := h.UnknownCriticalOption()
		assert.False(t, ok)

		h.ForwardingOptions = []ForwardingOption{{Type: 3, Flags: FlagResponseCopy}, {Type: 4, Flags: FlagForwardCritical}}
		o, ok := h.UnknownCriticalOption()
		require.True(t, ok)
		assert.Equal(t, OptionType(4), o.Type)
	})

	t.Run("编码长度", func(t *testing.T) {
		n, err := New(1, a).EncodedLength()
		require.NoError(t, err)
		assert.Equal(t, FixedLength+3, n)
	})
}

func TestDestination_Invalid(t *testing.T) {
	w := codec.NewWriter(8)
	assert.ErrorIs(t, EncodeDestination(w, types.RoutableID{Type: 9, ID: "x"}), ErrMalformedDestination)
	assert.ErrorIs(t, EncodeDestination(w, types.RoutableID{Type: types.DestinationNode}), ErrMalformedDestination)
	assert.ErrorIs(t, EncodeDestination(w, types.RoutableID{Type: types.DestinationCompressed, ID: "\x01\x02"}), ErrMalformedDestination)

	_, err := DecodeDestination(codec.NewReader([]byte{0x07, 0x01, 0x00}))
	assert.ErrorIs(t, err, ErrMalformedDestination)
}

func TestPeekTotalLength(t *testing.T) {
	raw := encodeWithPayload(t, New(1), []byte{1, 2, 3})
	n, err := PeekTotalLength(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(raw)), n)

	_, err = PeekTotalLength(raw[:10])
	assert.ErrorIs(t, err, ErrTruncated)
}
