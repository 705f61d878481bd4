// Package types 定义 go-reload 的基础标识类型
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，可直接作为 map 键使用。
//
// # 文件组织
//
//   - ids.go       - NodeID, ResourceID, OpaqueID
//   - routable.go  - RoutableID（目的地/途经列表条目）
//   - overlay.go   - 覆盖网络哈希
//   - base58.go    - 文本表示
//   - errors.go    - 公共错误定义
package types
