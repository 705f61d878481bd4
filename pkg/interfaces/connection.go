package interfaces

import (
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// Connection 到一个邻居节点的链路
//
// 路由器只向连接写入消息，不管理其生命周期。
type Connection interface {
	// NodeID 邻居节点标识
	NodeID() types.NodeID

	// Write 异步写出消息
	//
	// 返回的通道在消息写入链路后恰好收到一个值（成功为 nil），随后关闭。
	// 同一连接上的写入保持调用顺序。
	Write(m message.Headed) <-chan error
}
