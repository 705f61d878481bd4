package transport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/internal/core/transport/quic"
	"github.com/dep2p/go-reload/internal/core/transport/tcp"
	"github.com/dep2p/go-reload/internal/core/transport/websocket"
	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/types"
)

var log = logger.Logger("transport")

// Config 传输层配置
type Config struct {
	// 协议开关
	EnableQUIC      bool
	EnableTCP       bool
	EnableWebSocket bool

	// QUIC 配置
	QUIC quic.Config

	// WebSocket 配置
	WebSocket websocket.Config

	// TCPKeepAlive TCP 保活间隔
	TCPKeepAlive time.Duration

	// DialTimeout 拨号超时
	DialTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		EnableQUIC:      true,  // QUIC 默认启用
		EnableTCP:       false, // TCP 默认禁用
		EnableWebSocket: false, // WebSocket 默认禁用

		QUIC:      quic.DefaultConfig(),
		WebSocket: websocket.DefaultConfig(),

		TCPKeepAlive: 15 * time.Second,
		DialTimeout:  10 * time.Second,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if !c.EnableQUIC && !c.EnableTCP && !c.EnableWebSocket {
		return ErrNoTransport
	}
	if c.EnableQUIC {
		if err := c.QUIC.Validate(); err != nil {
			return err
		}
	}
	if c.EnableWebSocket {
		if err := c.WebSocket.Validate(); err != nil {
			return err
		}
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("%w: dial timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建传输层配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	t := cfg.Transport
	c.EnableQUIC = t.EnableQUIC
	c.EnableTCP = t.EnableTCP
	c.EnableWebSocket = t.EnableWebSocket
	c.QUIC = quic.Config{
		MaxIdleTimeout:       t.QUIC.MaxIdleTimeout.Duration(),
		KeepAlivePeriod:      t.QUIC.KeepAlivePeriod.Duration(),
		HandshakeIdleTimeout: t.QUIC.HandshakeIdleTimeout.Duration(),
		MaxIncomingStreams:   t.QUIC.MaxIncomingStreams,
	}
	c.WebSocket = websocket.Config{
		Path:             t.WebSocket.Path,
		HandshakeTimeout: t.WebSocket.HandshakeTimeout.Duration(),
		ReadBufferSize:   t.WebSocket.ReadBufferSize,
		WriteBufferSize:  t.WebSocket.WriteBufferSize,
		WriteTimeout:     t.WebSocket.WriteTimeout.Duration(),
	}
	c.TCPKeepAlive = t.TCP.KeepAlivePeriod.Duration()
	c.DialTimeout = t.DialTimeout.Duration()
	return c
}

// ============================================================================
//                              Manager
// ============================================================================

// Manager 传输管理器，按地址前缀分派 Listen 与 Dial
type Manager struct {
	config     Config
	transports map[string]interfaces.Transport
	order      []string

	mu        sync.Mutex
	listeners []interfaces.Listener
}

// NewManager 创建传输管理器
func NewManager(cfg Config, local types.NodeID) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		config:     cfg,
		transports: make(map[string]interfaces.Transport),
	}

	// QUIC 排在首位，作为无前缀地址的默认传输
	if cfg.EnableQUIC {
		t, err := quic.New(local, cfg.QUIC)
		if err != nil {
			return nil, err
		}
		m.add(t)
	}
	if cfg.EnableTCP {
		m.add(tcp.New(cfg.TCPKeepAlive))
	}
	if cfg.EnableWebSocket {
		t, err := websocket.New(cfg.WebSocket)
		if err != nil {
			return nil, err
		}
		m.add(t)
	}

	log.Info("传输管理器创建成功", "transports", strings.Join(m.order, ","))
	return m, nil
}

func (m *Manager) add(t interfaces.Transport) {
	m.transports[t.Scheme()] = t
	m.order = append(m.order, t.Scheme())
}

// Transport 返回指定前缀的传输
func (m *Manager) Transport(scheme string) (interfaces.Transport, bool) {
	t, ok := m.transports[scheme]
	return t, ok
}

// Schemes 返回已启用的传输前缀，默认传输在首位
func (m *Manager) Schemes() []string {
	return append([]string(nil), m.order...)
}

// Listen 在地址上监听
func (m *Manager) Listen(ctx context.Context, addr string, accept interfaces.AcceptFunc) (interfaces.Listener, error) {
	t, err := m.resolve(addr)
	if err != nil {
		return nil, err
	}
	l, err := t.Listen(ctx, addr, accept)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
	return l, nil
}

// Dial 拨号地址，使用 DialTimeout
func (m *Manager) Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	t, err := m.resolve(addr)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, m.config.DialTimeout)
	defer cancel()
	return t.Dial(ctx, addr)
}

// Listeners 返回已创建的监听器
func (m *Manager) Listeners() []interfaces.Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]interfaces.Listener(nil), m.listeners...)
}

// Close 关闭所有传输
func (m *Manager) Close() error {
	for _, scheme := range m.order {
		_ = m.transports[scheme].Close()
	}
	return nil
}

// resolve 按地址前缀选择传输；wss 由 WebSocket 传输处理
func (m *Manager) resolve(addr string) (interfaces.Transport, error) {
	scheme, _, found := strings.Cut(addr, "://")
	if !found {
		if len(m.order) == 0 {
			return nil, ErrNoTransport
		}
		return m.transports[m.order[0]], nil
	}
	if scheme == "wss" {
		scheme = websocket.Scheme
	}
	t, ok := m.transports[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
	return t, nil
}

// ============================================================================
//                              Fx 模块
// ============================================================================

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Config     *Config        `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
	Local      types.NodeID   `name:"local_node_id"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideManager),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideManager 提供传输管理器
func ProvideManager(input ModuleInput) (*Manager, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)
	if input.Config != nil {
		cfg = *input.Config
	}
	return NewManager(cfg, input.Local)
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return m.Close()
		},
	})
}
