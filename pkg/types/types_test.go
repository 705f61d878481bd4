package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
//                              NodeID 测试
// ============================================================================

func TestNodeID(t *testing.T) {
	t.Run("Base58 往返", func(t *testing.T) {
		id := RandomNodeID()
		require.Len(t, id.Bytes(), NodeIDLength)

		parsed, err := ParseNodeID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("随机标识不重复", func(t *testing.T) {
		seen := make(map[NodeID]struct{})
		for i := 0; i < 100; i++ {
			seen[RandomNodeID()] = struct{}{}
		}
		assert.Len(t, seen, 100)
	})

	t.Run("非法输入", func(t *testing.T) {
		_, err := ParseNodeID("")
		assert.ErrorIs(t, err, ErrEmptyID)

		_, err = ParseNodeID("0OIl")
		assert.ErrorIs(t, err, ErrInvalidBase58)

		_, err = NodeIDFromBytes(make([]byte, 256))
		assert.ErrorIs(t, err, ErrIDTooLong)
	})

	t.Run("ShortString", func(t *testing.T) {
		id := NodeID([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
		assert.Len(t, id.ShortString(), 8)
		assert.Equal(t, "", EmptyNodeID.ShortString())
	})
}

// ============================================================================
//                              RoutableID 测试
// ============================================================================

func TestRoutableID(t *testing.T) {
	t.Run("按内容比较", func(t *testing.T) {
		a := NodeID("abc").Routable()
		b := NodeID([]byte{'a', 'b', 'c'}).Routable()
		assert.Equal(t, a, b)

		m := map[RoutableID]int{a: 1}
		assert.Equal(t, 1, m[b])

		// 相同字节、不同类型不相等
		assert.NotEqual(t, a, ResourceID("abc").Routable())
	})

	t.Run("NodeID 视图", func(t *testing.T) {
		id, ok := NodeID("n1").Routable().NodeID()
		assert.True(t, ok)
		assert.Equal(t, NodeID("n1"), id)

		_, ok = OpaqueID("o1").Routable().NodeID()
		assert.False(t, ok)
	})

	t.Run("压缩标识", func(t *testing.T) {
		r, err := CompressedID(0x8001)
		require.NoError(t, err)
		assert.Equal(t, DestinationCompressed, r.Type)
		assert.Equal(t, []byte{0x80, 0x01}, r.Bytes())

		_, err = CompressedID(0x0001)
		assert.ErrorIs(t, err, ErrInvalidCompressedID)
	})

	t.Run("类型名称", func(t *testing.T) {
		assert.Equal(t, "node", DestinationNode.String())
		assert.Equal(t, "unknown(9)", DestinationType(9).String())
	})
}

func TestResourceIDFromName(t *testing.T) {
	a := ResourceIDFromName("alice@example.org")
	b := ResourceIDFromName("alice@example.org")
	c := ResourceIDFromName("bob@example.org")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a.Bytes(), NodeIDLength)
}

func TestOverlayHash(t *testing.T) {
	// SHA-1("") = da39a3ee 5e6b4b0d 3255bfef 95601890 afd80709
	assert.Equal(t, uint32(0xafd80709), OverlayHash(""))
	assert.Equal(t, OverlayHash("overlay.example.org"), OverlayHash("overlay.example.org"))
	assert.NotEqual(t, OverlayHash("a"), OverlayHash("b"))
}
