package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/interfaces"
)

// 包级别日志实例
var log = logger.Logger("transport/tcp")

// Scheme 地址前缀
const Scheme = "tcp"

// 确保实现了接口
var (
	_ interfaces.Transport = (*Transport)(nil)
	_ interfaces.Listener  = (*Listener)(nil)
)

// ============================================================================
//                              Transport 实现
// ============================================================================

// Transport TCP 传输
type Transport struct {
	dialer net.Dialer

	mu        sync.Mutex
	listeners map[*Listener]struct{}
	closed    bool
}

// New 创建 TCP 传输
func New(keepAlive time.Duration) *Transport {
	return &Transport{
		dialer:    net.Dialer{KeepAlive: keepAlive},
		listeners: make(map[*Listener]struct{}),
	}
}

// Scheme 实现 Transport
func (t *Transport) Scheme() string {
	return Scheme
}

// Listen 监听 TCP 地址
func (t *Transport) Listen(_ context.Context, addr string, accept interfaces.AcceptFunc) (interfaces.Listener, error) {
	hostport, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrTransportClosed
	}

	ln, err := net.Listen("tcp", hostport)
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", hostport, err)
	}
	l := &Listener{ln: ln, accept: accept, done: make(chan struct{})}
	go l.acceptLoop()
	t.listeners[l] = struct{}{}
	log.Info("TCP 监听启动", "addr", l.Addr())
	return l, nil
}

// Dial 建立 TCP 连接
func (t *Transport) Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	hostport, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, ErrTransportClosed
	}

	conn, err := t.dialer.DialContext(ctx, "tcp", hostport)
	if err != nil {
		return nil, fmt.Errorf("tcp dial %s: %w", hostport, err)
	}
	log.Debug("TCP 拨号成功", "remote", conn.RemoteAddr())
	return conn, nil
}

// Close 关闭所有监听器
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	listeners := t.listeners
	t.listeners = nil
	t.mu.Unlock()

	for l := range listeners {
		_ = l.Close()
	}
	return nil
}

func parseAddress(addr string) (string, error) {
	hostport := strings.TrimPrefix(addr, Scheme+"://")
	if _, _, err := net.SplitHostPort(hostport); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return hostport, nil
}

// ============================================================================
//                              Listener 实现
// ============================================================================

// Listener TCP 监听器
type Listener struct {
	ln     net.Listener
	accept interfaces.AcceptFunc
	closed atomic.Bool
	done   chan struct{}
}

// Addr 返回可拨号地址
func (l *Listener) Addr() string {
	return Scheme + "://" + l.ln.Addr().String()
}

// Close 停止接受新连接；已交付的连接不受影响
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := l.ln.Close()
	<-l.done
	return err
}

func (l *Listener) acceptLoop() {
	defer close(l.done)
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if !l.closed.Load() && !errors.Is(err, net.ErrClosed) {
				log.Warn("接受连接失败", "addr", l.Addr(), "err", err)
			}
			return
		}
		log.Debug("接受 TCP 链路", "remote", conn.RemoteAddr())
		l.accept(conn, conn.RemoteAddr())
	}
}
