package interfaces

import (
	"github.com/dep2p/go-reload/pkg/types"
)

// RoutingTable 拓扑组件提供的下一跳表
//
// 对核心而言是只读的，由拓扑维护组件负责更新。
type RoutingTable interface {
	// NextHops 返回通往目的地的下一跳连接，按优先级排序；不可达时为空
	NextHops(dest types.RoutableID) []Connection

	// Neighbors 返回当前所有邻居
	Neighbors() []types.NodeID
}

// ResponsibilityChecker 可选接口，判断本节点是否负责资源/不透明标识
//
// 路由表实现该接口时，路由判定据此识别发往本地的 RESOURCEID/OPAQUEID 目的地。
type ResponsibilityChecker interface {
	Responsible(dest types.RoutableID) bool
}
