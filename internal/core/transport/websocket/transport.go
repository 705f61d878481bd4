package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/interfaces"
)

// 包级别日志实例
var log = logger.Logger("transport/websocket")

// Scheme 地址前缀
const Scheme = "ws"

// 确保实现了接口
var (
	_ interfaces.Transport = (*Transport)(nil)
	_ interfaces.Listener  = (*Listener)(nil)
)

// Transport WebSocket 传输
type Transport struct {
	cfg      Config
	upgrader websocket.Upgrader
	dialer   *websocket.Dialer

	mu        sync.Mutex
	listeners map[*Listener]struct{}
	closed    bool
}

// New 创建 WebSocket 传输
func New(cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Transport{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
			// 对端是节点而不是浏览器
			CheckOrigin: func(*http.Request) bool { return true },
		},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
		},
		listeners: make(map[*Listener]struct{}),
	}, nil
}

// Scheme 实现 Transport
func (t *Transport) Scheme() string {
	return Scheme
}

// Handler 返回把 HTTP 请求升级为链路字节流的处理器
func (t *Transport) Handler(accept interfaces.AcceptFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := t.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade 已写出错误响应
			log.Debug("WebSocket 升级失败", "remote", r.RemoteAddr, "err", err)
			return
		}
		log.Debug("接受 WebSocket 链路", "remote", ws.RemoteAddr())
		accept(newConn(ws, t.cfg.WriteTimeout), ws.RemoteAddr())
	})
}

// Listen 在 host:port 上启动 HTTP 服务，升级路径为 Config.Path
func (t *Transport) Listen(_ context.Context, addr string, accept interfaces.AcceptFunc) (interfaces.Listener, error) {
	hostport := strings.TrimPrefix(addr, Scheme+"://")
	if _, _, err := net.SplitHostPort(hostport); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrTransportClosed
	}

	ln, err := net.Listen("tcp", hostport)
	if err != nil {
		return nil, fmt.Errorf("websocket listen %s: %w", hostport, err)
	}
	mux := http.NewServeMux()
	mux.Handle(t.cfg.Path, t.Handler(accept))
	l := &Listener{
		ln:   ln,
		path: t.cfg.Path,
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: t.cfg.HandshakeTimeout},
	}
	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("WebSocket 服务异常退出", "addr", l.Addr(), "err", err)
		}
	}()
	t.listeners[l] = struct{}{}
	log.Info("WebSocket 监听启动", "addr", l.Addr())
	return l, nil
}

// Dial 拨号 ws:// 或 wss:// 地址；没有前缀时视为 host:port 并使用 Config.Path
func (t *Transport) Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	target, err := t.dialURL(addr)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, ErrTransportClosed
	}

	ws, resp, err := t.dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", target, err)
	}
	log.Debug("WebSocket 拨号成功", "remote", ws.RemoteAddr())
	return newConn(ws, t.cfg.WriteTimeout), nil
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

func (t *Transport) dialURL(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = Scheme + "://" + addr + t.cfg.Path
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return u.String(), nil
}

// ============================================================================
//                              Listener
// ============================================================================

// Listener WebSocket 监听器
type Listener struct {
	ln   net.Listener
	path string
	srv  *http.Server
	once sync.Once
	err  error
}

// Addr 返回可拨号地址
func (l *Listener) Addr() string {
	return Scheme + "://" + l.ln.Addr().String() + l.path
}

// Close 停止 HTTP 服务；已升级的链路不受影响
func (l *Listener) Close() error {
	l.once.Do(func() {
		l.err = l.srv.Close()
	})
	return l.err
}
