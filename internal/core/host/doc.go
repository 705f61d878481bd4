// Package host 管理本节点的链路
//
// Host 在配置的地址上监听，接受或拨出的字节流经过链路握手后成为邻居：
//
//	传输 → link.Establish → routetable.Add → link.Run
//
// 链路结束时从路由表移除。链路上收到的消息交给 link.Handler（分发器）。
package host
