// Package router 实现消息路由器：扇出转发、逐邻居结果聚合与请求/应答关联
//
// 路由器只查询路由表、只写入连接，不拥有任何拓扑或链路状态。
// 所有发送操作都是非阻塞的，结果通过 ForwardFuture 与 RequestFuture 交付。
package router

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/lib/header"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("router")

// Option 路由器选项
type Option func(*Router)

// WithClock 设置定时器时钟，测试中使用 clock.NewMock()
func WithClock(clk clock.Clock) Option {
	return func(r *Router) {
		r.clock = clk
	}
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// Router 消息路由器
type Router struct {
	cfg     Config
	local   types.NodeID
	table   interfaces.RoutingTable
	clock   clock.Clock
	metrics *Metrics
	pending *PendingRequestCache
	closed  atomic.Bool
}

// New 创建路由器
func New(cfg Config, local types.NodeID, table interfaces.RoutingTable, opts ...Option) (*Router, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("%w: nil routing table", ErrInvalidConfig)
	}
	r := &Router{cfg: cfg, local: local, table: table, clock: clock.New()}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		m, err := NewMetrics(nil)
		if err != nil {
			return nil, err
		}
		r.metrics = m
	}

	pending, err := NewPendingRequestCache(r.clock, cfg.RequestTimeout, cfg.ExpiredCacheSize)
	if err != nil {
		return nil, err
	}
	pending.onExpire = func(txid uint64) {
		r.metrics.Timeouts.Inc()
		r.metrics.PendingRequests.Dec()
		log.Debug("请求超时", "txid", fmt.Sprintf("%#x", txid))
	}
	r.pending = pending
	return r, nil
}

// Local 返回本节点标识
func (r *Router) Local() types.NodeID {
	return r.local
}

// Config 返回配置
func (r *Router) Config() Config {
	return r.cfg
}

// Pending 返回等待应答的请求表
func (r *Router) Pending() *PendingRequestCache {
	return r.pending
}

// ============================================================================
//                              发送
// ============================================================================

// SendMessage 把消息写给当前目的地的所有下一跳
//
// 立即返回，ForwardFuture 在每个下一跳都报告写入结果后完成。
// 同一邻居出现多次时只写一次。
func (r *Router) SendMessage(m message.Headed) *ForwardFuture {
	h := m.MessageHeader()
	if r.closed.Load() {
		return r.noRoute(h, "router closed")
	}
	dest, ok := h.DestinationID()
	if !ok {
		return r.noRoute(h, "empty destination list")
	}

	hops := dedupe(r.table.NextHops(dest))
	ids := make([]types.NodeID, len(hops))
	for i, c := range hops {
		ids[i] = c.NodeID()
	}
	fut := newForwardFuture(ids)
	if len(hops) == 0 {
		r.metrics.observeForward(fut)
		log.Debug("没有下一跳", "dest", dest, "txid", txidString(h))
		return fut
	}
	fut.OnComplete(r.metrics.observeForward)

	for _, c := range hops {
		id := c.NodeID()
		ch := c.Write(m)
		go func() {
			err, ok := <-ch
			if !ok {
				err = ErrWriteAborted
			}
			if err != nil {
				r.metrics.WriteFailures.WithLabelValues(id.ShortString()).Inc()
				log.Debug("邻居写入失败", "neighbor", id.ShortString(), "txid", txidString(h), "err", err)
			}
			fut.complete(id, err)
		}()
	}
	return fut
}

// SendRequestMessage 登记请求并发送
//
// 事务标识在发送前登记，保证很快到达的应答也能匹配。只有当没有任何邻居
// 接受写入时请求立即以转发错误失败；否则等待应答或超时。
func (r *Router) SendRequestMessage(m *message.Message) (*RequestFuture, error) {
	if m.Content == nil || !m.Content.ContentType().IsRequest() {
		return nil, ErrNotRequest
	}
	if r.closed.Load() {
		return nil, ErrRouterClosed
	}
	txid := m.Header.TransactionID
	req, err := r.pending.Put(txid)
	if err != nil {
		return nil, err
	}
	r.metrics.PendingRequests.Inc()

	fut := r.SendMessage(m)
	req.forward = fut
	fut.OnComplete(func(f *ForwardFuture) {
		if f.AnySucceeded() {
			return
		}
		if r.pending.Fail(txid, f.Err()) {
			r.metrics.PendingRequests.Dec()
			r.metrics.FailFast.Inc()
			log.Debug("请求发送失败", "txid", fmt.Sprintf("%#x", txid), "err", f.Err())
		}
	})
	return req, nil
}

// HandleAnswer 把应答交给等待中的请求
//
// 非应答消息被忽略；没有对应请求（未知或已超时）的应答被丢弃并记录日志。
// 返回是否匹配到请求。
func (r *Router) HandleAnswer(m *message.Message) bool {
	if !m.IsAnswer() {
		return false
	}
	txid := m.Header.TransactionID
	outcome := r.pending.Resolve(txid, m)
	if outcome != Resolved {
		r.metrics.Unmatched.WithLabelValues(outcome.String()).Inc()
		log.Debug("丢弃未匹配的应答", "txid", fmt.Sprintf("%#x", txid), "reason", outcome.String())
		return false
	}
	r.metrics.PendingRequests.Dec()
	return true
}

// ============================================================================
//                              转发与应答
// ============================================================================

// Forward 转发途经本节点的消息
//
// 跳数减一；pop 为 true 时先弹出已到达的目的地（本节点）。
// 调用方负责在途经列表中记录上一跳。
func (r *Router) Forward(fm *message.ForwardMessage, pop bool) *ForwardFuture {
	h := fm.Header
	if pop {
		h.PopDestination()
	}
	if h.TTL > 0 {
		h.TTL--
	}
	return r.SendMessage(fm)
}

// SendAnswer 沿请求的逆途经路由发送应答
func (r *Router) SendAnswer(req *header.Header, c message.Content) *ForwardFuture {
	h := header.New(req.OverlayHash, req.ReversedVia()...)
	h.ConfigurationSequence = req.ConfigurationSequence
	h.Version = req.Version
	h.TTL = r.cfg.InitialTTL
	h.TransactionID = req.TransactionID
	return r.SendMessage(message.New(h, c))
}

// SendError 向请求方发送错误应答
func (r *Router) SendError(req *header.Header, pe *message.ProtocolError) *ForwardFuture {
	return r.SendAnswer(req, pe.Content())
}

// NewRequest 创建指向 dest 的请求消息，分配新的事务标识
func (r *Router) NewRequest(c message.Content, dest ...types.RoutableID) *message.Message {
	h := header.New(r.cfg.OverlayHash, dest...)
	h.TTL = r.cfg.InitialTTL
	h.MaxResponseLength = r.cfg.MaxResponseLength
	h.TransactionID = r.newTransactionID()
	return message.New(h, c)
}

// Close 关闭路由器，等待中的请求以 ErrRouterClosed 结束
func (r *Router) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	n := r.pending.Len()
	r.pending.Close()
	r.metrics.PendingRequests.Sub(float64(n))
	log.Info("路由器已关闭", "pending", n)
	return nil
}

// newTransactionID 生成在等待中请求内不重复的随机事务标识
func (r *Router) newTransactionID() uint64 {
	var b [8]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		txid := binary.BigEndian.Uint64(b[:])
		if txid != 0 && !r.pending.Contains(txid) {
			return txid
		}
	}
}

func (r *Router) noRoute(h *header.Header, reason string) *ForwardFuture {
	fut := newForwardFuture(nil)
	r.metrics.observeForward(fut)
	log.Debug("消息未发送", "reason", reason, "txid", txidString(h))
	return fut
}

// dedupe 按邻居标识去重，保持顺序
func dedupe(hops []interfaces.Connection) []interfaces.Connection {
	if len(hops) < 2 {
		return hops
	}
	seen := make(map[types.NodeID]struct{}, len(hops))
	out := make([]interfaces.Connection, 0, len(hops))
	for _, c := range hops {
		if _, ok := seen[c.NodeID()]; ok {
			continue
		}
		seen[c.NodeID()] = struct{}{}
		out = append(out, c)
	}
	return out
}

func txidString(h *header.Header) string {
	return fmt.Sprintf("%#x", h.TransactionID)
}
