package reload

import (
	"fmt"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// Option 节点配置选项
type Option func(*options) error

// handlerEntry 启动前注册的处理器
type handlerEntry struct {
	t       message.ContentType
	handler interfaces.ContentHandler
}

type options struct {
	cfg      *config.Config
	rawTypes []message.ContentType
	handlers []handlerEntry
	verifier interfaces.SignatureVerifier
}

func defaultOptions() *options {
	return &options{cfg: config.NewConfig()}
}

// WithConfig 使用完整配置，后续选项在其副本上修改
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return config.ErrNilConfig
		}
		o.cfg = cfg.Clone()
		return nil
	}
}

// WithNodeID 设置本节点标识
func WithNodeID(id types.NodeID) Option {
	return func(o *options) error {
		if id.IsEmpty() {
			return fmt.Errorf("%w: empty node id", config.ErrInvalidConfig)
		}
		o.cfg.Node.ID = id.String()
		return nil
	}
}

// WithOverlay 设置覆盖网络名称
func WithOverlay(name string) Option {
	return func(o *options) error {
		o.cfg.Node.OverlayName = name
		return nil
	}
}

// WithListenAddrs 设置监听地址，例如 "quic://0.0.0.0:6084"、"tcp://:7000"
func WithListenAddrs(addrs ...string) Option {
	return func(o *options) error {
		o.cfg.Node.ListenAddrs = append([]string(nil), addrs...)
		return nil
	}
}

// WithKnownPeers 设置启动时连接的邻居地址
func WithKnownPeers(addrs ...string) Option {
	return func(o *options) error {
		o.cfg.KnownPeers = o.cfg.KnownPeers[:0]
		for _, a := range addrs {
			o.cfg.KnownPeers = append(o.cfg.KnownPeers, config.KnownPeer{Addr: a})
		}
		return nil
	}
}

// WithTransports 选择启用的传输
func WithTransports(quic, tcp, websocket bool) Option {
	return func(o *options) error {
		o.cfg.Transport.EnableQUIC = quic
		o.cfg.Transport.EnableTCP = tcp
		o.cfg.Transport.EnableWebSocket = websocket
		return nil
	}
}

// WithMetrics 在 addr 上启动诊断 HTTP 服务（/metrics、/debug/introspect、/health）
func WithMetrics(addr string) Option {
	return func(o *options) error {
		o.cfg.Metrics.Enabled = true
		o.cfg.Metrics.Addr = addr
		return nil
	}
}

// WithLogFile 把日志写入文件
func WithLogFile(path string) Option {
	return func(o *options) error {
		o.cfg.LogFile = path
		return nil
	}
}

// WithRawContentTypes 注册按原始字节收发的应用内容类型
func WithRawContentTypes(types ...message.ContentType) Option {
	return func(o *options) error {
		o.rawTypes = append(o.rawTypes, types...)
		return nil
	}
}

// WithHandler 为请求内容类型注册处理器
func WithHandler(t message.ContentType, h interfaces.ContentHandler) Option {
	return func(o *options) error {
		if h == nil {
			return fmt.Errorf("%w: nil handler for %s", config.ErrInvalidConfig, t)
		}
		o.handlers = append(o.handlers, handlerEntry{t: t, handler: h})
		return nil
	}
}

// WithVerifier 设置本地请求的签名校验器
func WithVerifier(v interfaces.SignatureVerifier) Option {
	return func(o *options) error {
		o.verifier = v
		return nil
	}
}
