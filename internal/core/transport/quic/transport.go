package quic

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/quic-go/quic-go"

	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("transport/quic")

// Scheme 地址前缀
const Scheme = "quic"

// 确保实现了接口
var _ interfaces.Transport = (*Transport)(nil)

// Transport QUIC 传输
type Transport struct {
	mu sync.Mutex

	local         types.NodeID
	cfg           Config
	serverTLSConf *tls.Config
	clientTLSConf *tls.Config

	listeners map[*Listener]struct{}
	closed    bool
}

// New 创建 QUIC 传输
func New(local types.NodeID, cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	server, client, err := NewTLSConfig(local)
	if err != nil {
		return nil, err
	}
	return &Transport{
		local:         local,
		cfg:           cfg,
		serverTLSConf: server,
		clientTLSConf: client,
		listeners:     make(map[*Listener]struct{}),
	}, nil
}

// Scheme 实现 Transport
func (t *Transport) Scheme() string {
	return Scheme
}

// Listen 监听 UDP 地址
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

	ql, err := quic.ListenAddr(hostport, t.serverTLSConf, t.cfg.quicConfig())
	if err != nil {
		return nil, fmt.Errorf("quic listen %s: %w", hostport, err)
	}
	l := newListener(ql, accept)
	t.listeners[l] = struct{}{}
	log.Info("QUIC 监听启动", "addr", l.Addr())
	return l, nil
}

// Dial 建立连接并打开链路流
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

	conn, err := quic.DialAddr(ctx, hostport, t.clientTLSConf, t.cfg.quicConfig())
	if err != nil {
		return nil, fmt.Errorf("quic dial %s: %w", hostport, err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(closeCodeNormal, "open stream failed")
		return nil, fmt.Errorf("quic open stream: %w", err)
	}
	log.Debug("QUIC 拨号成功", "remote", conn.RemoteAddr())
	return newStreamConn(conn, stream), nil
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

// parseAddress 去掉可选的 quic:// 前缀并校验 host:port
func parseAddress(addr string) (string, error) {
	hostport := strings.TrimPrefix(addr, Scheme+"://")
	if _, _, err := net.SplitHostPort(hostport); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return hostport, nil
}
