// Package routetable 提供静态邻居路由表
//
// 路由表维护到邻居的连接与本地分配的不透明标识别名，按以下规则选择下一跳：
//
//   - NODEID：目的地是邻居时直接返回该连接，否则返回按 XOR 距离最近的 K 个邻居
//   - RESOURCEID：返回按 XOR 距离最近的 K 个邻居
//   - OPAQUEID：按别名解析到邻居，没有别名时不可达
//
// 拓扑维护不在本包范围内，调用方通过 Add/Remove 更新邻居。
package routetable
