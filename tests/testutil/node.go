// Package testutil 提供测试辅助工具
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-reload"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/lib/message"
)

// TestOverlay 测试节点默认使用的覆盖网络名称
const TestOverlay = "test.overlay.reload"

// TestNodeBuilder 测试节点构建器
//
// 示例:
//
//	node := testutil.NewTestNode(t).
//		WithTransport("tcp").
//		Start()
type TestNodeBuilder struct {
	t         *testing.T
	transport string
	opts      []reload.Option
}

// NewTestNode 创建测试节点构建器
//
// 默认配置:
//   - transport: "quic"，监听 127.0.0.1 随机端口
//   - overlay: TestOverlay
func NewTestNode(t *testing.T) *TestNodeBuilder {
	t.Helper()
	return &TestNodeBuilder{t: t, transport: "quic"}
}

// WithTransport 选择唯一启用的传输（quic、tcp、ws）
func (b *TestNodeBuilder) WithTransport(name string) *TestNodeBuilder {
	b.transport = name
	return b
}

// WithHandler 为请求内容类型注册处理器
func (b *TestNodeBuilder) WithHandler(t message.ContentType, h interfaces.ContentHandler) *TestNodeBuilder {
	b.opts = append(b.opts, reload.WithHandler(t, h))
	return b
}

// WithOptions 追加节点选项
func (b *TestNodeBuilder) WithOptions(opts ...reload.Option) *TestNodeBuilder {
	b.opts = append(b.opts, opts...)
	return b
}

// Start 启动节点并注册清理函数
func (b *TestNodeBuilder) Start() *reload.Node {
	b.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := []reload.Option{
		reload.WithOverlay(TestOverlay),
		reload.WithTransports(b.transport == "quic", b.transport == "tcp", b.transport == "ws"),
		reload.WithListenAddrs(b.transport + "://127.0.0.1:0"),
	}
	opts = append(opts, b.opts...)

	node, err := reload.Start(ctx, opts...)
	require.NoError(b.t, err, "启动测试节点失败")

	b.t.Cleanup(func() {
		if err := node.Close(); err != nil {
			b.t.Logf("关闭节点失败: %v", err)
		}
	})
	return node
}

// Link 连接 from 与 to，并等待双方都把对端加入邻居表
func Link(t *testing.T, from, to *reload.Node) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := from.Connect(ctx, to.ListenAddrs()[0])
	require.NoError(t, err, "连接节点失败")

	Eventually(t, 5*time.Second, func() bool {
		return hasNeighbor(to, from) && hasNeighbor(from, to)
	}, "等待双方邻居表更新")
}

func hasNeighbor(n, peer *reload.Node) bool {
	for _, id := range n.Neighbors() {
		if id == peer.ID() {
			return true
		}
	}
	return false
}
