package routetable

import (
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/types"
)

var log = logger.Logger("routetable")

// 确保实现了接口
var (
	_ interfaces.RoutingTable          = (*Table)(nil)
	_ interfaces.ResponsibilityChecker = (*Table)(nil)
)

// Table 邻居路由表
type Table struct {
	cfg   Config
	local types.NodeID

	mu        sync.RWMutex
	neighbors map[types.NodeID]interfaces.Connection
	aliases   map[types.RoutableID]types.NodeID
}

// New 创建路由表
func New(cfg Config, local types.NodeID) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if local.IsEmpty() {
		return nil, fmt.Errorf("%w: empty local node id", ErrInvalidConfig)
	}
	return &Table{
		cfg:       cfg,
		local:     local,
		neighbors: make(map[types.NodeID]interfaces.Connection),
		aliases:   make(map[types.RoutableID]types.NodeID),
	}, nil
}

// Local 返回本节点标识
func (t *Table) Local() types.NodeID {
	return t.local
}

// ============================================================================
//                              邻居维护
// ============================================================================

// Add 添加邻居连接，已有同一邻居时替换旧连接
func (t *Table) Add(conn interfaces.Connection) error {
	if conn == nil {
		return ErrNilConnection
	}
	id := conn.NodeID()
	if id == t.local {
		return ErrSelfNeighbor
	}

	t.mu.Lock()
	_, replaced := t.neighbors[id]
	t.neighbors[id] = conn
	n := len(t.neighbors)
	t.mu.Unlock()

	log.Debug("添加邻居", "neighbor", id.ShortString(), "replaced", replaced, "total", n)
	return nil
}

// Remove 移除邻居及指向它的别名，返回邻居是否存在
func (t *Table) Remove(id types.NodeID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeLocked(id)
}

// RemoveConnection 仅当邻居当前的连接就是 conn 时移除
//
// 链路关闭时使用，避免误删重连后建立的新连接。
func (t *Table) RemoveConnection(conn interfaces.Connection) bool {
	if conn == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.neighbors[conn.NodeID()]; !ok || cur != conn {
		return false
	}
	return t.removeLocked(conn.NodeID())
}

func (t *Table) removeLocked(id types.NodeID) bool {
	if _, ok := t.neighbors[id]; !ok {
		return false
	}
	delete(t.neighbors, id)
	for alias, node := range t.aliases {
		if node == id {
			delete(t.aliases, alias)
		}
	}
	log.Debug("移除邻居", "neighbor", id.ShortString(), "total", len(t.neighbors))
	return true
}

// Connection 返回邻居的连接
func (t *Table) Connection(id types.NodeID) (interfaces.Connection, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.neighbors[id]
	return c, ok
}

// Len 返回邻居数量
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.neighbors)
}

// ============================================================================
//                              别名
// ============================================================================

// AddAlias 把不透明标识（含压缩形式）映射到节点
//
// node 为本节点时，该别名由本节点负责。
func (t *Table) AddAlias(alias types.RoutableID, node types.NodeID) error {
	if alias.Type != types.DestinationOpaque && alias.Type != types.DestinationCompressed {
		return fmt.Errorf("%w: alias must be opaque, got %s", ErrInvalidConfig, alias.Type)
	}
	if alias.ID == "" || node.IsEmpty() {
		return ErrEmptyAlias
	}
	t.mu.Lock()
	t.aliases[alias] = node
	t.mu.Unlock()
	return nil
}

// RemoveAlias 移除别名
func (t *Table) RemoveAlias(alias types.RoutableID) {
	t.mu.Lock()
	delete(t.aliases, alias)
	t.mu.Unlock()
}

// ============================================================================
//                              路由查询
// ============================================================================

// NextHops 返回通往目的地的下一跳
func (t *Table) NextHops(dest types.RoutableID) []interfaces.Connection {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch dest.Type {
	case types.DestinationNode:
		if c, ok := t.neighbors[types.NodeID(dest.ID)]; ok {
			return []interfaces.Connection{c}
		}
		return t.nearestLocked(dest.Bytes(), t.cfg.K)

	case types.DestinationResource:
		return t.nearestLocked(dest.Bytes(), t.cfg.K)

	case types.DestinationOpaque, types.DestinationCompressed:
		node, ok := t.aliases[dest]
		if !ok {
			return nil
		}
		if c, ok := t.neighbors[node]; ok {
			return []interfaces.Connection{c}
		}
		return nil

	default:
		return nil
	}
}

// Neighbors 返回所有邻居，按标识排序
func (t *Table) Neighbors() []types.NodeID {
	t.mu.RLock()
	ids := make([]types.NodeID, 0, len(t.neighbors))
	for id := range t.neighbors {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Responsible 判断本节点是否负责目的地
//
// 资源标识：本节点比所有邻居都更接近时负责。不透明标识：别名指向本节点时负责。
func (t *Table) Responsible(dest types.RoutableID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch dest.Type {
	case types.DestinationNode:
		return types.NodeID(dest.ID) == t.local
	case types.DestinationResource:
		target := dest.Bytes()
		own := Distance(t.local.Bytes(), target)
		for id := range t.neighbors {
			if Distance(id.Bytes(), target).Cmp(own) <= 0 {
				return false
			}
		}
		return true
	case types.DestinationOpaque, types.DestinationCompressed:
		return t.aliases[dest] == t.local
	default:
		return false
	}
}

// NearestNeighbors 返回距离 target 最近的 count 个邻居
func (t *Table) NearestNeighbors(target []byte, count int) []types.NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	conns := t.nearestLocked(target, count)
	ids := make([]types.NodeID, len(conns))
	for i, c := range conns {
		ids[i] = c.NodeID()
	}
	return ids
}

// nearestLocked 按 XOR 距离排序，距离相同时按标识排序
func (t *Table) nearestLocked(target []byte, count int) []interfaces.Connection {
	if count <= 0 || len(t.neighbors) == 0 {
		return nil
	}

	type candidate struct {
		id       types.NodeID
		conn     interfaces.Connection
		distance *big.Int
	}
	candidates := make([]candidate, 0, len(t.neighbors))
	for id, c := range t.neighbors {
		candidates = append(candidates, candidate{id: id, conn: c, distance: Distance(id.Bytes(), target)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if c := candidates[i].distance.Cmp(candidates[j].distance); c != 0 {
			return c < 0
		}
		return candidates[i].id < candidates[j].id
	})

	if len(candidates) > count {
		candidates = candidates[:count]
	}
	out := make([]interfaces.Connection, len(candidates))
	for i, c := range candidates {
		out[i] = c.conn
	}
	return out
}
