package reload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/internal/app"
	"github.com/dep2p/go-reload/internal/core/router"
	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

var log = logger.Logger("reload")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 已创建，未启动
	StateIdle NodeState = iota

	// StateRunning 运行中
	StateRunning

	// StateStopped 已停止，不能再次启动
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              Node
// ════════════════════════════════════════════════════════════════════════════

// Node 覆盖网络节点
//
// Node 是门面，聚合 internal/app 组装的路由器、分发器与链路管理器。
type Node struct {
	cfg       *config.Config
	bootstrap *app.Bootstrap
	runtime   *app.Runtime

	mu    sync.Mutex
	state NodeState
}

// New 创建节点（不启动）
func New(opts ...Option) (*Node, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	registry := message.DefaultRegistry()
	if err := registry.RegisterRaw(o.rawTypes...); err != nil {
		return nil, err
	}
	bopts := []app.BootstrapOption{app.WithRegistry(registry)}
	if o.verifier != nil {
		v := o.verifier
		bopts = append(bopts, app.WithModules(fx.Provide(func() interfaces.SignatureVerifier { return v })))
	}

	b := app.NewBootstrap(o.cfg, bopts...)
	rt, err := b.Build()
	if err != nil {
		return nil, err
	}
	for _, h := range o.handlers {
		if err := rt.Dispatcher.Register(h.t, h.handler); err != nil {
			_ = b.Stop(context.Background())
			return nil, fmt.Errorf("register handler %s: %w", h.t, err)
		}
	}
	return &Node{cfg: o.cfg, bootstrap: b, runtime: rt}, nil
}

// Start 创建并启动节点的便捷函数
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	n, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := n.Start(ctx); err != nil {
		_ = n.Close()
		return nil, err
	}
	return n, nil
}

// Start 开始监听并连接已知邻居
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateRunning:
		return ErrAlreadyStarted
	case StateStopped:
		return ErrNodeClosed
	}
	if _, err := n.bootstrap.Start(ctx); err != nil {
		n.state = StateStopped
		_ = n.bootstrap.Stop(context.Background())
		return err
	}
	n.state = StateRunning
	log.Info("节点已启动", "id", n.runtime.Local.String(), "listen", n.runtime.Host.ListenAddrs())
	return nil
}

// Stop 停止节点
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == StateStopped {
		return nil
	}
	n.state = StateStopped
	err := n.bootstrap.Stop(ctx)
	log.Info("节点已停止", "id", n.runtime.Local.ShortString())
	return err
}

// Close 停止节点
func (n *Node) Close() error {
	return n.Stop(context.Background())
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// ID 返回本节点标识
func (n *Node) ID() types.NodeID {
	return n.runtime.Local
}

// Config 返回节点配置的副本
func (n *Node) Config() *config.Config {
	return n.cfg.Clone()
}

// Router 返回消息路由器
func (n *Node) Router() *router.Router {
	return n.runtime.Router
}

// ListenAddrs 返回实际监听的可拨号地址
func (n *Node) ListenAddrs() []string {
	return n.runtime.Host.ListenAddrs()
}

// Neighbors 返回当前邻居
func (n *Node) Neighbors() []types.NodeID {
	return n.runtime.Table.Neighbors()
}

// IntrospectAddr 返回诊断服务地址，未启用时为空
func (n *Node) IntrospectAddr() string {
	if n.runtime.Introspect == nil {
		return ""
	}
	return n.runtime.Introspect.Addr()
}

// Connect 连接邻居并返回其节点标识
func (n *Node) Connect(ctx context.Context, addr string) (types.NodeID, error) {
	if err := n.checkRunning(); err != nil {
		return types.EmptyNodeID, err
	}
	l, err := n.runtime.Host.Connect(ctx, addr, types.EmptyNodeID)
	if err != nil {
		return types.EmptyNodeID, err
	}
	return l.NodeID(), nil
}

// Handle 注册请求处理器，节点运行中也可调用
func (n *Node) Handle(t message.ContentType, h interfaces.ContentHandler) error {
	return n.runtime.Dispatcher.Register(t, h)
}

// Unhandle 注销请求处理器
func (n *Node) Unhandle(t message.ContentType) {
	n.runtime.Dispatcher.Unregister(t)
}

// Send 发送消息，不等待应答
func (n *Node) Send(m message.Headed) *router.ForwardFuture {
	return n.runtime.Router.SendMessage(m)
}

// Request 发送请求并等待应答
//
// 对端返回错误内容时以 *message.ProtocolError 失败。
func (n *Node) Request(ctx context.Context, c message.Content, dest ...types.RoutableID) (*message.Message, error) {
	if err := n.checkRunning(); err != nil {
		return nil, err
	}
	fut, err := n.runtime.Router.SendRequestMessage(n.runtime.Router.NewRequest(c, dest...))
	if err != nil {
		return nil, err
	}
	answer, err := fut.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if ec, ok := answer.Content.(*message.ErrorContent); ok {
		return answer, ec.ProtocolError()
	}
	return answer, nil
}

// Ping 探测节点并返回往返时间
func (n *Node) Ping(ctx context.Context, peer types.NodeID) (time.Duration, error) {
	start := time.Now()
	answer, err := n.Request(ctx, &message.PingRequest{}, peer.Routable())
	if err != nil {
		return 0, err
	}
	if _, ok := answer.Content.(*message.PingAnswer); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnexpectedAnswer, answer.ContentType())
	}
	return time.Since(start), nil
}

func (n *Node) checkRunning() error {
	switch n.State() {
	case StateIdle:
		return ErrNotStarted
	case StateStopped:
		return ErrNodeClosed
	}
	return nil
}
