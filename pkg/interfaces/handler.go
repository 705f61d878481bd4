package interfaces

import (
	"context"

	"github.com/dep2p/go-reload/pkg/lib/message"
)

// ContentHandler 处理发往本节点的请求
//
// 返回的内容作为应答发回请求方；返回 *message.ProtocolError 时发送错误应答；
// 返回 (nil, nil) 表示不应答。
type ContentHandler interface {
	HandleContent(ctx context.Context, req *message.Message) (message.Content, error)
}

// ContentHandlerFunc 函数形式的 ContentHandler
type ContentHandlerFunc func(ctx context.Context, req *message.Message) (message.Content, error)

// HandleContent 实现 ContentHandler
func (f ContentHandlerFunc) HandleContent(ctx context.Context, req *message.Message) (message.Content, error) {
	return f(ctx, req)
}
