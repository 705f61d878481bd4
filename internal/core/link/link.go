package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/lib/frame"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("link")

// 确保实现了接口
var _ interfaces.Connection = (*Link)(nil)

// Handler 接收链路上的 DATA 负载
//
// 在读协程中按到达顺序调用，实现不应长时间阻塞。
type Handler interface {
	HandlePayload(from *Link, payload []byte)
}

// HandlerFunc 函数形式的 Handler
type HandlerFunc func(from *Link, payload []byte)

// HandlePayload 实现 Handler
func (f HandlerFunc) HandlePayload(from *Link, payload []byte) {
	f(from, payload)
}

// Option 链路选项
type Option func(*Link)

// WithCodec 设置消息编码器
func WithCodec(c *message.Codec) Option {
	return func(l *Link) {
		l.codec = c
	}
}

// Stats 链路统计
type Stats struct {
	FramesSent     uint64
	FramesReceived uint64
	AcksSent       uint64
	AcksReceived   uint64
	AcksDropped    uint64
	BytesSent      uint64
	BytesReceived  uint64

	// InFlight 已写出但未被确认的 DATA 帧数
	InFlight int
}

type writeRequest struct {
	payload []byte
	done    chan error
}

type ackRequest struct {
	seq  uint32
	mask uint32
}

type counters struct {
	framesSent     atomic.Uint64
	framesReceived atomic.Uint64
	acksSent       atomic.Uint64
	acksReceived   atomic.Uint64
	acksDropped    atomic.Uint64
	bytesSent      atomic.Uint64
	bytesReceived  atomic.Uint64
}

// Link 与一个邻居之间的链路
type Link struct {
	cfg     Config
	rwc     io.ReadWriteCloser
	local   types.NodeID
	remote  types.NodeID
	handler Handler
	codec   *message.Codec

	queue   chan writeRequest
	acks    chan ackRequest
	closing chan struct{}
	running atomic.Bool

	// mu 保护 closed，入队与关闭互斥，关闭后不会再有请求进入队列
	mu     sync.Mutex
	closed bool

	inflightMu sync.Mutex
	inflight   map[uint32]struct{}

	stats counters
}

// Establish 在字节流上交换节点标识并创建链路
//
// 失败时字节流被关闭。返回的链路需要调用 Run 才开始收发。
func Establish(ctx context.Context, rwc io.ReadWriteCloser, local types.NodeID, h Handler, cfg Config, opts ...Option) (*Link, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	remote, err := handshake(ctx, rwc, local, cfg.HandshakeTimeout)
	if err != nil {
		_ = rwc.Close()
		return nil, err
	}
	if remote == local {
		_ = rwc.Close()
		return nil, ErrSelfLink
	}
	if h == nil {
		h = HandlerFunc(func(*Link, []byte) {})
	}

	l := &Link{
		cfg:      cfg,
		rwc:      rwc,
		local:    local,
		remote:   remote,
		handler:  h,
		queue:    make(chan writeRequest, cfg.WriteQueueSize),
		acks:     make(chan ackRequest, cfg.WriteQueueSize),
		closing:  make(chan struct{}),
		inflight: make(map[uint32]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.codec == nil {
		l.codec = message.NewCodec(nil)
	}
	log.Debug("链路已建立", "local", local.ShortString(), "remote", remote.ShortString())
	return l, nil
}

// NodeID 返回对端节点标识
func (l *Link) NodeID() types.NodeID {
	return l.remote
}

// LocalID 返回本端节点标识
func (l *Link) LocalID() types.NodeID {
	return l.local
}

// String 返回链路描述
func (l *Link) String() string {
	return fmt.Sprintf("link(%s->%s)", l.local.ShortString(), l.remote.ShortString())
}

// Write 编码消息并排入写队列
//
// 不阻塞。返回的通道在 DATA 帧写入字节流后收到 nil，失败时收到错误，
// 之后关闭。
func (l *Link) Write(m message.Headed) <-chan error {
	done := make(chan error, 1)
	raw, err := l.codec.Encode(m)
	if err == nil && len(raw) > l.cfg.MaxPayload {
		err = fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(raw), l.cfg.MaxPayload)
	}
	if err != nil {
		return failed(done, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return failed(done, ErrLinkClosed)
	}
	select {
	case l.queue <- writeRequest{payload: raw, done: done}:
	default:
		return failed(done, ErrQueueFull)
	}
	return done
}

// Run 运行读写协程，直到链路关闭、字节流出错或 ctx 取消
//
// 正常关闭时返回 nil。
func (l *Link) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := l.readLoop()
		_ = l.Close()
		return err
	})
	g.Go(func() error {
		err := l.writeLoop()
		_ = l.Close()
		return err
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-l.closing:
		}
		_ = l.Close()
		return nil
	})

	err := g.Wait()
	if err != nil {
		log.Debug("链路异常结束", "link", l.String(), "err", err)
	}
	return err
}

// Close 关闭链路，写队列中未写出的请求以 ErrLinkClosed 失败
func (l *Link) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	close(l.closing)
	err := l.rwc.Close()
	l.drain()
	log.Debug("链路关闭", "link", l.String())
	return err
}

// Closed 返回关闭信号
func (l *Link) Closed() <-chan struct{} {
	return l.closing
}

// Stats 返回统计快照
func (l *Link) Stats() Stats {
	l.inflightMu.Lock()
	inflight := len(l.inflight)
	l.inflightMu.Unlock()
	return Stats{
		FramesSent:     l.stats.framesSent.Load(),
		FramesReceived: l.stats.framesReceived.Load(),
		AcksSent:       l.stats.acksSent.Load(),
		AcksReceived:   l.stats.acksReceived.Load(),
		AcksDropped:    l.stats.acksDropped.Load(),
		BytesSent:      l.stats.bytesSent.Load(),
		BytesReceived:  l.stats.bytesReceived.Load(),
		InFlight:       inflight,
	}
}

// ============================================================================
//                              写协程
// ============================================================================

func (l *Link) writeLoop() error {
	defer l.drain()

	var seq uint32
	var buf []byte
	write := func(f *frame.Frame) error {
		var err error
		buf, err = frame.Append(buf[:0], f)
		if err != nil {
			return err
		}
		if _, err := l.rwc.Write(buf); err != nil {
			return err
		}
		l.stats.bytesSent.Add(uint64(len(buf)))
		return nil
	}

	for {
		select {
		case <-l.closing:
			return nil

		case a := <-l.acks:
			if err := write(frame.NewAck(a.seq, a.mask)); err != nil {
				return l.writeFailed(err)
			}
			l.stats.acksSent.Add(1)

		case req := <-l.queue:
			l.track(seq)
			err := write(frame.NewData(seq, req.payload))
			if err != nil {
				l.untrack(seq)
				werr := l.writeFailed(err)
				if werr == nil {
					req.done <- ErrLinkClosed
				} else {
					req.done <- werr
				}
				close(req.done)
				return werr
			}
			l.stats.framesSent.Add(1)
			seq++
			req.done <- nil
			close(req.done)
		}
	}
}

// writeFailed 关闭过程中的写错误视为正常结束
func (l *Link) writeFailed(err error) error {
	if l.isClosed() {
		return nil
	}
	return fmt.Errorf("link write: %w", err)
}

// ============================================================================
//                              读协程
// ============================================================================

func (l *Link) readLoop() error {
	dec := frame.NewStreamDecoder(l.cfg.MaxPayload)
	var window frame.AckWindow
	buf := make([]byte, l.cfg.ReadBufferSize)

	for {
		n, err := l.rwc.Read(buf)
		if n > 0 {
			l.stats.bytesReceived.Add(uint64(n))
			_, _ = dec.Write(buf[:n])
			for {
				f, derr := dec.Next()
				if derr != nil {
					log.Warn("链路帧格式错误", "link", l.String(), "err", derr)
					return fmt.Errorf("link read: %w", derr)
				}
				if f == nil {
					break
				}
				l.handleFrame(f, &window)
			}
		}
		if err != nil {
			if l.isClosed() || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("link read: %w", err)
		}
	}
}

func (l *Link) handleFrame(f *frame.Frame, window *frame.AckWindow) {
	switch f.Type {
	case frame.TypeData:
		l.stats.framesReceived.Add(1)
		window.Record(f.Sequence)
		select {
		case l.acks <- ackRequest{seq: f.Sequence, mask: window.Mask(f.Sequence)}:
		default:
			// 后续 ACK 的位图覆盖本帧
			l.stats.acksDropped.Add(1)
		}
		l.handler.HandlePayload(l, f.Payload)

	case frame.TypeAck:
		l.stats.acksReceived.Add(1)
		l.inflightMu.Lock()
		for _, seq := range frame.Acked(f.Sequence, f.ReceivedMask) {
			delete(l.inflight, seq)
		}
		l.inflightMu.Unlock()
	}
}

// ============================================================================
//                              内部方法
// ============================================================================

func (l *Link) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *Link) track(seq uint32) {
	l.inflightMu.Lock()
	l.inflight[seq] = struct{}{}
	l.inflightMu.Unlock()
}

func (l *Link) untrack(seq uint32) {
	l.inflightMu.Lock()
	delete(l.inflight, seq)
	l.inflightMu.Unlock()
}

// drain 以 ErrLinkClosed 结束队列中的请求
func (l *Link) drain() {
	for {
		select {
		case req := <-l.queue:
			req.done <- ErrLinkClosed
			close(req.done)
		default:
			return
		}
	}
}

func failed(done chan error, err error) <-chan error {
	done <- err
	close(done)
	return done
}
