package routetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/types"
	"github.com/dep2p/go-reload/tests/mocks"
)

// 单字节标识便于推算 XOR 距离
var (
	local = types.NodeID([]byte{0x10})
	n1    = types.NodeID([]byte{0x11}) // 距离 0x01
	n2    = types.NodeID([]byte{0x30}) // 距离 0x20
	n3    = types.NodeID([]byte{0x90}) // 距离 0x80
	n4    = types.NodeID([]byte{0x00}) // 距离 0x10
)

func newTable(t *testing.T, k int, ids ...types.NodeID) *Table {
	t.Helper()
	tbl, err := New(DefaultConfig().WithK(k), local)
	require.NoError(t, err)
	for _, id := range ids {
		require.NoError(t, tbl.Add(mocks.NewMockConnection(id)))
	}
	return tbl
}

func hopIDs(conns []interfaces.Connection) []types.NodeID {
	ids := make([]types.NodeID, len(conns))
	for i, c := range conns {
		ids[i] = c.NodeID()
	}
	return ids
}

func TestDistance(t *testing.T) {
	assert.Equal(t, int64(0x01), Distance([]byte{0x10}, []byte{0x11}).Int64())
	assert.Equal(t, int64(0x0100), Distance([]byte{0x10, 0x00}, []byte{0x11}).Int64(), "短标识末尾补零")
	assert.Equal(t, 0, Distance([]byte{0xab, 0xcd}, []byte{0xab, 0xcd}).Sign())

	assert.Equal(t, 7, CommonPrefixLen([]byte{0x10}, []byte{0x11}))
	assert.Equal(t, 16, CommonPrefixLen([]byte{0xab, 0xcd}, []byte{0xab, 0xcd}))
	assert.Equal(t, 0, CommonPrefixLen([]byte{0x80}, []byte{0x00}))
}

func TestTable_AddRemove(t *testing.T) {
	tbl := newTable(t, 3)

	t.Run("拒绝空连接与本节点", func(t *testing.T) {
		assert.ErrorIs(t, tbl.Add(nil), ErrNilConnection)
		assert.ErrorIs(t, tbl.Add(mocks.NewMockConnection(local)), ErrSelfNeighbor)
	})

	t.Run("添加后可查询", func(t *testing.T) {
		c := mocks.NewMockConnection(n1)
		require.NoError(t, tbl.Add(c))
		got, ok := tbl.Connection(n1)
		require.True(t, ok)
		assert.Same(t, c, got)
		assert.Equal(t, 1, tbl.Len())
	})

	t.Run("同一邻居替换连接", func(t *testing.T) {
		old, _ := tbl.Connection(n1)
		fresh := mocks.NewMockConnection(n1)
		require.NoError(t, tbl.Add(fresh))
		assert.Equal(t, 1, tbl.Len())

		assert.False(t, tbl.RemoveConnection(old), "旧连接不会移除新连接")
		assert.True(t, tbl.RemoveConnection(fresh))
		assert.Equal(t, 0, tbl.Len())
	})

	t.Run("移除不存在的邻居", func(t *testing.T) {
		assert.False(t, tbl.Remove(n2))
		assert.False(t, tbl.RemoveConnection(nil))
	})
}

func TestTable_NextHops(t *testing.T) {
	tbl := newTable(t, 2, n3, n2, n1, n4)

	t.Run("目的地是邻居", func(t *testing.T) {
		hops := tbl.NextHops(n2.Routable())
		assert.Equal(t, []types.NodeID{n2}, hopIDs(hops))
	})

	t.Run("非邻居节点取最近的 K 个", func(t *testing.T) {
		// 目标 0x12：n1=0x03 n4=0x12 n2=0x22 n3=0x82
		dest := types.NodeID([]byte{0x12})
		assert.Equal(t, []types.NodeID{n1, n4}, hopIDs(tbl.NextHops(dest.Routable())))
	})

	t.Run("资源标识取最近的 K 个", func(t *testing.T) {
		// 目标 0x95：n3=0x05 n1=0x84 n4=0x95 n2=0xa5
		res := types.ResourceID([]byte{0x95})
		assert.Equal(t, []types.NodeID{n3, n1}, hopIDs(tbl.NextHops(res.Routable())))
	})

	t.Run("不透明标识按别名解析", func(t *testing.T) {
		alias := types.OpaqueID("route-1").Routable()
		assert.Empty(t, tbl.NextHops(alias), "没有别名时不可达")

		require.NoError(t, tbl.AddAlias(alias, n3))
		assert.Equal(t, []types.NodeID{n3}, hopIDs(tbl.NextHops(alias)))

		compressed, err := types.CompressedID(0x8001)
		require.NoError(t, err)
		require.NoError(t, tbl.AddAlias(compressed, n2))
		assert.Equal(t, []types.NodeID{n2}, hopIDs(tbl.NextHops(compressed)))

		tbl.RemoveAlias(compressed)
		assert.Empty(t, tbl.NextHops(compressed))
	})

	t.Run("移除邻居同时移除别名", func(t *testing.T) {
		alias := types.OpaqueID("route-2").Routable()
		require.NoError(t, tbl.AddAlias(alias, n4))
		require.True(t, tbl.Remove(n4))
		assert.Empty(t, tbl.NextHops(alias))
		require.NoError(t, tbl.Add(mocks.NewMockConnection(n4)))
		assert.Empty(t, tbl.NextHops(alias), "重新加入邻居不会恢复别名")
	})

	t.Run("未知类型不可达", func(t *testing.T) {
		assert.Empty(t, tbl.NextHops(types.RoutableID{Type: 9, ID: "x"}))
	})

	t.Run("空表不可达", func(t *testing.T) {
		empty := newTable(t, 3)
		assert.Empty(t, empty.NextHops(n1.Routable()))
	})
}

func TestTable_Neighbors(t *testing.T) {
	tbl := newTable(t, 3, n3, n1, n2)
	assert.Equal(t, []types.NodeID{n1, n2, n3}, tbl.Neighbors())
	assert.Equal(t, []types.NodeID{n1, n2}, tbl.NearestNeighbors(local.Bytes(), 2))
	assert.Empty(t, tbl.NearestNeighbors(local.Bytes(), 0))
}

func TestTable_Responsible(t *testing.T) {
	tbl := newTable(t, 3, n2, n3)

	tests := []struct {
		name string
		dest types.RoutableID
		want bool
	}{
		{"本节点标识", local.Routable(), true},
		{"其他节点标识", n2.Routable(), false},
		{"本节点最近的资源", types.ResourceID([]byte{0x18}).Routable(), true},
		{"邻居更近的资源", types.ResourceID([]byte{0x31}).Routable(), false},
		{"未知类型", types.RoutableID{Type: 9, ID: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.Responsible(tt.dest))
		})
	}

	t.Run("别名指向本节点", func(t *testing.T) {
		mine := types.OpaqueID("mine").Routable()
		other := types.OpaqueID("other").Routable()
		require.NoError(t, tbl.AddAlias(mine, local))
		require.NoError(t, tbl.AddAlias(other, n2))
		assert.True(t, tbl.Responsible(mine))
		assert.False(t, tbl.Responsible(other))
	})

	t.Run("没有邻居时负责所有资源", func(t *testing.T) {
		alone := newTable(t, 3)
		assert.True(t, alone.Responsible(types.ResourceID([]byte{0xff}).Routable()))
	})
}

func TestTable_AddAliasErrors(t *testing.T) {
	tbl := newTable(t, 3)
	assert.ErrorIs(t, tbl.AddAlias(n1.Routable(), n1), ErrInvalidConfig)
	assert.ErrorIs(t, tbl.AddAlias(types.OpaqueID("").Routable(), n1), ErrEmptyAlias)
	assert.ErrorIs(t, tbl.AddAlias(types.OpaqueID("a").Routable(), types.EmptyNodeID), ErrEmptyAlias)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(DefaultConfig().WithK(0), local)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(DefaultConfig(), types.EmptyNodeID)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestModule(t *testing.T) {
	var tbl *Table
	var rt interfaces.RoutingTable
	app := fxtest.New(t,
		fx.Provide(fx.Annotated{Name: "local_node_id", Target: func() types.NodeID { return local }}),
		Module(),
		fx.Populate(&tbl, &rt),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Same(t, tbl, rt)
	assert.Equal(t, local, tbl.Local())
}
