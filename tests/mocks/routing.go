package mocks

import (
	"sync"

	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/types"
)

// MockRoutingTable 模拟 RoutingTable 接口实现
//
// 默认对所有目的地返回 Hops；Routes 中有记录的目的地返回对应连接。
type MockRoutingTable struct {
	Hops   []interfaces.Connection
	Routes map[types.RoutableID][]interfaces.Connection

	// ResponsibleIDs 本节点负责的资源/不透明标识
	ResponsibleIDs map[types.RoutableID]bool

	// 可覆盖的方法
	NextHopsFunc    func(dest types.RoutableID) []interfaces.Connection
	ResponsibleFunc func(dest types.RoutableID) bool

	mu            sync.Mutex
	nextHopsCalls []types.RoutableID
}

// NewMockRoutingTable 创建对所有目的地返回 hops 的路由表
func NewMockRoutingTable(hops ...interfaces.Connection) *MockRoutingTable {
	return &MockRoutingTable{
		Hops:           hops,
		Routes:         make(map[types.RoutableID][]interfaces.Connection),
		ResponsibleIDs: make(map[types.RoutableID]bool),
	}
}

// NextHops 返回下一跳
func (m *MockRoutingTable) NextHops(dest types.RoutableID) []interfaces.Connection {
	m.mu.Lock()
	m.nextHopsCalls = append(m.nextHopsCalls, dest)
	m.mu.Unlock()

	if m.NextHopsFunc != nil {
		return m.NextHopsFunc(dest)
	}
	if hops, ok := m.Routes[dest]; ok {
		return hops
	}
	return m.Hops
}

// Neighbors 返回 Hops 中的邻居
func (m *MockRoutingTable) Neighbors() []types.NodeID {
	out := make([]types.NodeID, 0, len(m.Hops))
	for _, c := range m.Hops {
		out = append(out, c.NodeID())
	}
	return out
}

// Responsible 实现 ResponsibilityChecker
func (m *MockRoutingTable) Responsible(dest types.RoutableID) bool {
	if m.ResponsibleFunc != nil {
		return m.ResponsibleFunc(dest)
	}
	return m.ResponsibleIDs[dest]
}

// NextHopsCalls 返回 NextHops 调用记录
func (m *MockRoutingTable) NextHopsCalls() []types.RoutableID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.RoutableID(nil), m.nextHopsCalls...)
}
