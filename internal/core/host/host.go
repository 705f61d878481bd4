package host

import (
	"context"
	"fmt"
	"io"
	"net"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-reload/internal/core/link"
	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("host")

// 链路方向标签
const (
	directionInbound  = "inbound"
	directionOutbound = "outbound"
)

// Network 按地址监听与拨号，*transport.Manager 实现该接口
type Network interface {
	Listen(ctx context.Context, addr string, accept interfaces.AcceptFunc) (interfaces.Listener, error)
	Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error)
}

// NeighborTable 邻居表，*routetable.Table 实现该接口
type NeighborTable interface {
	Add(conn interfaces.Connection) error
	RemoveConnection(conn interfaces.Connection) bool
}

// Option Host 选项
type Option func(*Host)

// WithCodec 设置链路使用的消息编码器
func WithCodec(c *message.Codec) Option {
	return func(h *Host) {
		h.codec = c
	}
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) Option {
	return func(h *Host) {
		h.metrics = m
	}
}

// Host 链路管理器
type Host struct {
	cfg     Config
	local   types.NodeID
	network Network
	table   NeighborTable
	handler link.Handler
	codec   *message.Codec
	metrics *Metrics

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool

	// mu 保护以下字段；closed 置位后不再登记新的链路与协程
	mu        sync.Mutex
	closed    bool
	listeners []interfaces.Listener
	links     map[*link.Link]string
}

// New 创建 Host
func New(cfg Config, local types.NodeID, network Network, table NeighborTable, handler link.Handler, opts ...Option) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if network == nil || table == nil {
		return nil, fmt.Errorf("%w: nil network or table", ErrInvalidConfig)
	}
	if local.IsEmpty() {
		return nil, fmt.Errorf("%w: empty local node id", ErrInvalidConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Host{
		cfg:     cfg,
		local:   local,
		network: network,
		table:   table,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
		links:   make(map[*link.Link]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.codec == nil {
		h.codec = message.NewCodec(nil)
	}
	if h.metrics == nil {
		m, err := NewMetrics(nil)
		if err != nil {
			cancel()
			return nil, err
		}
		h.metrics = m
	}
	return h, nil
}

// Local 返回本节点标识
func (h *Host) Local() types.NodeID {
	return h.local
}

// Start 在配置的地址上监听，并在后台连接已知邻居
func (h *Host) Start(ctx context.Context) error {
	if !h.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	for _, addr := range h.cfg.ListenAddrs {
		l, err := h.network.Listen(ctx, addr, h.accept)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			_ = l.Close()
			return ErrHostClosed
		}
		h.listeners = append(h.listeners, l)
		h.mu.Unlock()
		log.Info("开始监听", "addr", l.Addr())
	}

	for _, p := range h.cfg.KnownPeers {
		p := p
		if !h.spawn(func() {
			if _, err := h.Connect(h.ctx, p.Addr, p.NodeID); err != nil {
				log.Warn("连接已知邻居失败", "addr", p.Addr, "err", err)
			}
		}) {
			return ErrHostClosed
		}
	}
	log.Info("Host 启动成功", "local", h.local.ShortString(),
		"listeners", len(h.cfg.ListenAddrs), "known_peers", len(h.cfg.KnownPeers))
	return nil
}

// Connect 拨号地址并建立链路
//
// expect 非空时校验对端标识。成功后链路已加入路由表并开始运行。
func (h *Host) Connect(ctx context.Context, addr string, expect types.NodeID) (*link.Link, error) {
	if h.isClosed() {
		return nil, ErrHostClosed
	}
	rwc, err := h.network.Dial(ctx, addr)
	if err != nil {
		h.metrics.EstablishFails.WithLabelValues(directionOutbound).Inc()
		return nil, err
	}
	l, err := h.establish(ctx, rwc)
	if err != nil {
		h.metrics.EstablishFails.WithLabelValues(directionOutbound).Inc()
		return nil, err
	}
	if !expect.IsEmpty() && l.NodeID() != expect {
		_ = l.Close()
		h.metrics.EstablishFails.WithLabelValues(directionOutbound).Inc()
		return nil, fmt.Errorf("%w: want %s, got %s", ErrUnexpectedPeer, expect.ShortString(), l.NodeID().ShortString())
	}
	if err := h.attach(l, directionOutbound); err != nil {
		return nil, err
	}
	return l, nil
}

// Links 返回运行中的链路
func (h *Host) Links() []*link.Link {
	h.mu.Lock()
	out := make([]*link.Link, 0, len(h.links))
	for l := range h.links {
		out = append(out, l)
	}
	h.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID() < out[j].NodeID() })
	return out
}

// ListenAddrs 返回实际监听的可拨号地址
func (h *Host) ListenAddrs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	addrs := make([]string, len(h.listeners))
	for i, l := range h.listeners {
		addrs[i] = l.Addr()
	}
	return addrs
}

// Close 停止监听，关闭所有链路并等待协程结束
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	listeners := h.listeners
	h.listeners = nil
	links := make([]*link.Link, 0, len(h.links))
	for l := range h.links {
		links = append(links, l)
	}
	h.mu.Unlock()

	h.cancel()
	for _, l := range listeners {
		_ = l.Close()
	}
	for _, l := range links {
		_ = l.Close()
	}
	h.wg.Wait()
	log.Info("Host 已关闭", "links", len(links))
	return nil
}

// ============================================================================
//                              内部方法
// ============================================================================

// accept 处理传输交付的入站字节流
func (h *Host) accept(rwc io.ReadWriteCloser, remote net.Addr) {
	ok := h.spawn(func() {
		l, err := h.establish(h.ctx, rwc)
		if err != nil {
			h.metrics.EstablishFails.WithLabelValues(directionInbound).Inc()
			log.Debug("入站链路握手失败", "remote", remote, "err", err)
			return
		}
		if err := h.attach(l, directionInbound); err != nil {
			log.Debug("入站链路登记失败", "remote", remote, "err", err)
		}
	})
	if !ok {
		_ = rwc.Close()
	}
}

func (h *Host) establish(ctx context.Context, rwc io.ReadWriteCloser) (*link.Link, error) {
	return link.Establish(ctx, rwc, h.local, h.handler, h.cfg.Link, link.WithCodec(h.codec))
}

// attach 把链路加入路由表并运行，链路结束时移除
func (h *Host) attach(l *link.Link, direction string) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = l.Close()
		return ErrHostClosed
	}
	h.links[l] = direction
	h.wg.Add(1)
	h.mu.Unlock()

	if err := h.table.Add(l); err != nil {
		h.detach(l)
		_ = l.Close()
		h.wg.Done()
		return err
	}
	h.metrics.Links.Inc()
	h.metrics.Established.WithLabelValues(direction).Inc()
	log.Info("邻居已连接", "neighbor", l.NodeID().ShortString(), "direction", direction)

	go func() {
		defer h.wg.Done()
		err := l.Run(h.ctx)
		h.table.RemoveConnection(l)
		h.detach(l)
		h.metrics.Links.Dec()
		log.Info("邻居已断开", "neighbor", l.NodeID().ShortString(), "err", err)
	}()
	return nil
}

func (h *Host) detach(l *link.Link) {
	h.mu.Lock()
	delete(h.links, l)
	h.mu.Unlock()
}

// spawn 在 Host 未关闭时启动受 wg 管理的协程
func (h *Host) spawn(fn func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn()
	}()
	return true
}

func (h *Host) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
