// Package config 提供统一的节点配置
//
// 主 Config 结构体包含所有组件的子配置，每个子配置在独立文件中定义，
// 支持 JSON 加载与保存以及 RELOAD_* 环境变量覆盖。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Node.ListenAddrs = []string{"quic://0.0.0.0:6084"}
//
//	// 从 JSON 加载
//	cfg, err := config.Load("node.json")
//
//	// 环境变量覆盖
//	err = cfg.ApplyEnv(os.LookupEnv)
//
// 各组件通过自身的 ConfigFromUnified 把对应子配置转换为组件配置。
package config

import (
	"fmt"

	"github.com/dep2p/go-reload/internal/util/logger"
)

// KnownPeer 启动时主动连接的邻居
type KnownPeer struct {
	// Addr 邻居地址，例如 "quic://10.0.0.2:6084"、"ws://example.org/reload"
	Addr string `json:"addr"`

	// NodeID 期望的邻居标识（Base58），为空时不校验
	NodeID string `json:"node_id,omitempty"`
}

// Config 是节点的完整配置结构
//
//   - Node: 节点标识、覆盖网络与监听地址
//   - Router: 请求超时与新建消息的头部默认值
//   - Link: 链路握手与写队列
//   - Transport: QUIC/TCP/WebSocket
//   - RouteTable: 下一跳选择
//   - Dispatcher: 本地请求处理
//   - Metrics: 指标与诊断 HTTP 服务
type Config struct {
	Node       NodeConfig       `json:"node"`
	Router     RouterConfig     `json:"router"`
	Link       LinkConfig       `json:"link"`
	Transport  TransportConfig  `json:"transport"`
	RouteTable RouteTableConfig `json:"route_table"`
	Dispatcher DispatcherConfig `json:"dispatcher"`
	Metrics    MetricsConfig    `json:"metrics"`

	// KnownPeers 启动时连接的邻居
	KnownPeers []KnownPeer `json:"known_peers,omitempty"`

	// LogFile 日志文件路径，为空时输出到 stderr
	LogFile string `json:"log_file,omitempty"`

	// LogLevel 日志级别描述，如 "router=debug,info"，为空时沿用环境变量
	LogLevel string `json:"log_level,omitempty"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Node:       DefaultNodeConfig(),
		Router:     DefaultRouterConfig(),
		Link:       DefaultLinkConfig(),
		Transport:  DefaultTransportConfig(),
		RouteTable: DefaultRouteTableConfig(),
		Dispatcher: DefaultDispatcherConfig(),
		Metrics:    DefaultMetricsConfig(),
	}
}

// Validate 验证所有子配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	validators := []struct {
		name string
		fn   func() error
	}{
		{"node", c.Node.Validate},
		{"router", c.Router.Validate},
		{"link", c.Link.Validate},
		{"transport", c.Transport.Validate},
		{"route_table", c.RouteTable.Validate},
		{"dispatcher", c.Dispatcher.Validate},
		{"metrics", c.Metrics.Validate},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	if c.LogLevel != "" {
		if _, err := logger.ParseLevels(c.LogLevel); err != nil {
			return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
		}
	}
	for i, p := range c.KnownPeers {
		if p.Addr == "" {
			return fmt.Errorf("%w: known_peers[%d]: empty addr", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Clone 返回深拷贝
func (c *Config) Clone() *Config {
	out := *c
	out.Node.ListenAddrs = append([]string(nil), c.Node.ListenAddrs...)
	out.KnownPeers = append([]KnownPeer(nil), c.KnownPeers...)
	return &out
}
