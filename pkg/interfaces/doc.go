// Package interfaces 定义 go-reload 核心与外部协作者之间的接口
//
// 核心只通过这些接口访问外部组件：
//   - connection.go - 链路连接（只写）
//   - routing.go    - 路由表（只读查询）与责任判断
//   - handler.go    - 本地内容处理器
//   - security.go   - 签名校验
//   - transport.go  - 字节流传输（QUIC、TCP、WebSocket）
//
// 核心自身提供参考实现：internal/core/link（Connection）、
// internal/core/routetable（RoutingTable）。
package interfaces
