package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/dep2p/go-reload/internal/core/link"
	"github.com/dep2p/go-reload/internal/core/router"
	"github.com/dep2p/go-reload/internal/core/routing"
	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/lib/header"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("dispatcher")

// 确保实现了接口
var _ link.Handler = (*Dispatcher)(nil)

// 请求处理结果标签
const (
	resultAnswered  = "answered"
	resultNoAnswer  = "no_answer"
	resultError     = "error_answer"
	resultFailed    = "failed"
	resultRejected  = "rejected"
	resultNoHandler = "no_handler"
)

// Router 分发器使用的路由器操作，*router.Router 实现该接口
type Router interface {
	Forward(fm *message.ForwardMessage, pop bool) *router.ForwardFuture
	SendAnswer(req *header.Header, c message.Content) *router.ForwardFuture
	SendError(req *header.Header, pe *message.ProtocolError) *router.ForwardFuture
	HandleAnswer(m *message.Message) bool
}

// Option 分发器选项
type Option func(*Dispatcher)

// WithVerifier 设置签名校验器，本地请求在交给处理器前校验
func WithVerifier(v interfaces.SignatureVerifier) Option {
	return func(d *Dispatcher) {
		d.verifier = v
	}
}

// WithCodec 设置消息编码器
func WithCodec(c *message.Codec) Option {
	return func(d *Dispatcher) {
		d.codec = c
	}
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// Dispatcher 入站消息分发器
type Dispatcher struct {
	cfg      Config
	router   Router
	decider  *routing.Decider
	codec    *message.Codec
	verifier interfaces.SignatureVerifier
	metrics  *Metrics

	mu       sync.RWMutex
	handlers map[message.ContentType]interfaces.ContentHandler

	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc

	// runMu 使 wg.Add 与 Close 互斥，关闭后不再启动处理器
	runMu  sync.Mutex
	wg     sync.WaitGroup
	closed atomic.Bool
}

// New 创建分发器
func New(cfg Config, r Router, decider *routing.Decider, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil || decider == nil {
		return nil, fmt.Errorf("%w: nil router or decider", ErrInvalidConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		cfg:      cfg,
		router:   r,
		decider:  decider,
		handlers: make(map[message.ContentType]interfaces.ContentHandler),
		sem:      semaphore.NewWeighted(int64(cfg.Workers)),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.codec == nil {
		d.codec = message.NewCodec(nil)
	}
	if d.metrics == nil {
		m, err := NewMetrics(nil)
		if err != nil {
			cancel()
			return nil, err
		}
		d.metrics = m
	}
	if cfg.EnablePing {
		if err := d.Register(message.PingRequestType, NewPingHandler(decider.Local())); err != nil {
			cancel()
			return nil, err
		}
	}
	return d, nil
}

// Register 为请求类型注册处理器
func (d *Dispatcher) Register(t message.ContentType, h interfaces.ContentHandler) error {
	if h == nil {
		return ErrNilHandler
	}
	if !t.IsRequest() {
		return fmt.Errorf("%w: %s", ErrNotRequestType, t)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[t]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerExists, t)
	}
	d.handlers[t] = h
	return nil
}

// Unregister 注销处理器
func (d *Dispatcher) Unregister(t message.ContentType) {
	d.mu.Lock()
	delete(d.handlers, t)
	d.mu.Unlock()
}

// HandlePayload 实现 link.Handler
func (d *Dispatcher) HandlePayload(from *link.Link, payload []byte) {
	d.Dispatch(from.NodeID(), payload)
}

// Dispatch 处理从邻居 from 收到的一条消息
//
// from 为空表示本地注入，不记录上一跳。
func (d *Dispatcher) Dispatch(from types.NodeID, raw []byte) {
	if d.closed.Load() {
		return
	}
	d.metrics.Received.Inc()

	h, payload, err := message.SplitHeader(raw)
	if err != nil {
		d.metrics.DecodeErrors.WithLabelValues("header").Inc()
		log.Debug("丢弃无法解码头部的消息", "from", from.ShortString(), "err", err)
		return
	}
	// 内容类型不可读时按应答处理，不会产生错误应答
	ct, _ := message.PeekContentType(payload)

	if !from.IsEmpty() {
		h.AppendVia(from.Routable())
	}

	dec := d.decider.Decide(h, ct)
	d.metrics.Decisions.WithLabelValues(dec.Action.String()).Inc()

	switch dec.Action {
	case routing.ActionForward:
		d.router.Forward(&message.ForwardMessage{Header: h, Payload: payload}, dec.Pop)

	case routing.ActionDrop:
		log.Debug("丢弃请求并回复错误", "from", from.ShortString(), "txid", txid(h),
			"code", dec.ErrorCode, "reason", dec.Reason)
		d.router.SendError(h, message.NewProtocolError(dec.ErrorCode, "%s", dec.Reason))

	case routing.ActionDropSilent:
		log.Debug("静默丢弃消息", "from", from.ShortString(), "txid", txid(h), "reason", dec.Reason)

	case routing.ActionHandle:
		d.handleLocal(h, payload, ct)
	}
}

// handleLocal 解码发往本节点的消息
func (d *Dispatcher) handleLocal(h *header.Header, payload []byte, ct message.ContentType) {
	if h.IsFragmented() {
		d.metrics.DecodeErrors.WithLabelValues("fragment").Inc()
		d.reject(h, ct, message.NewProtocolError(message.ErrorInvalidMessage, "fragmented messages are not reassembled"))
		return
	}

	m, err := d.codec.DecodePayload(h, payload)
	if err != nil {
		d.metrics.DecodeErrors.WithLabelValues("content").Inc()
		if pe, ok := message.AsProtocolError(err); ok {
			d.reject(h, ct, pe)
			return
		}
		log.Debug("丢弃无法解码的消息", "txid", txid(h), "err", err)
		return
	}

	if m.IsAnswer() {
		d.router.HandleAnswer(m)
		return
	}

	if d.verifier != nil {
		if err := d.verifier.Verify(m); err != nil {
			d.metrics.Handled.WithLabelValues(resultRejected).Inc()
			if pe, ok := message.AsProtocolError(err); ok {
				d.router.SendError(h, pe)
				return
			}
			log.Debug("签名校验失败", "txid", txid(h), "err", err)
			return
		}
	}

	d.mu.RLock()
	handler, ok := d.handlers[m.ContentType()]
	d.mu.RUnlock()
	if !ok {
		d.metrics.Handled.WithLabelValues(resultNoHandler).Inc()
		d.router.SendError(h, message.NewProtocolError(message.ErrorInvalidMessage,
			"no handler for %s", m.ContentType()))
		return
	}

	// 工作池满时阻塞调用方（链路读协程），形成背压
	if err := d.sem.Acquire(d.ctx, 1); err != nil {
		return
	}
	started := d.spawn(func() {
		d.metrics.ActiveHandler.Inc()
		defer func() {
			d.metrics.ActiveHandler.Dec()
			d.sem.Release(1)
		}()
		d.runHandler(handler, m)
	})
	if !started {
		d.sem.Release(1)
	}
}

// spawn 在未关闭时启动协程，返回是否已启动
func (d *Dispatcher) spawn(fn func()) bool {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if d.closed.Load() {
		return false
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
	return true
}

func (d *Dispatcher) runHandler(handler interfaces.ContentHandler, m *message.Message) {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.HandlerTimeout)
	defer cancel()

	content, err := handler.HandleContent(ctx, m)
	switch {
	case err != nil:
		if pe, ok := message.AsProtocolError(err); ok {
			d.metrics.Handled.WithLabelValues(resultError).Inc()
			d.router.SendError(m.Header, pe)
			return
		}
		d.metrics.Handled.WithLabelValues(resultFailed).Inc()
		log.Warn("请求处理失败", "type", m.ContentType(), "txid", txid(m.Header), "err", err)
	case content == nil:
		d.metrics.Handled.WithLabelValues(resultNoAnswer).Inc()
	default:
		d.metrics.Handled.WithLabelValues(resultAnswered).Inc()
		d.router.SendAnswer(m.Header, content)
	}
}

// reject 对请求回复错误应答，应答与错误消息静默丢弃
func (d *Dispatcher) reject(h *header.Header, ct message.ContentType, pe *message.ProtocolError) {
	if !ct.IsRequest() {
		log.Debug("静默丢弃无效应答", "txid", txid(h), "err", pe)
		return
	}
	d.metrics.Handled.WithLabelValues(resultRejected).Inc()
	d.router.SendError(h, pe)
}

// Close 关闭分发器，等待运行中的处理器结束
func (d *Dispatcher) Close() error {
	d.runMu.Lock()
	first := d.closed.CompareAndSwap(false, true)
	d.runMu.Unlock()
	if !first {
		return nil
	}
	d.cancel()
	d.wg.Wait()
	log.Info("分发器已关闭")
	return nil
}

func txid(h *header.Header) string {
	return fmt.Sprintf("%#x", h.TransactionID)
}
