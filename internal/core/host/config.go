package host

import (
	"fmt"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/internal/core/link"
	"github.com/dep2p/go-reload/pkg/types"
)

// Peer 启动时连接的邻居
type Peer struct {
	Addr string

	// NodeID 期望的邻居标识，为空时不校验
	NodeID types.NodeID
}

// Config Host 配置
type Config struct {
	// ListenAddrs 监听地址
	ListenAddrs []string

	// KnownPeers 启动时连接的邻居
	KnownPeers []Peer

	// Link 链路配置
	Link link.Config
}

// DefaultConfig 返回默认配置：不监听，不主动连接
func DefaultConfig() Config {
	return Config{Link: link.DefaultConfig()}
}

// Validate 验证配置
func (c Config) Validate() error {
	for i, p := range c.KnownPeers {
		if p.Addr == "" {
			return fmt.Errorf("%w: known peer %d has empty addr", ErrInvalidConfig, i)
		}
	}
	return c.Link.Validate()
}

// ConfigFromUnified 从统一配置创建 Host 配置
func ConfigFromUnified(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return DefaultConfig(), nil
	}
	c := Config{
		ListenAddrs: append([]string(nil), cfg.Node.ListenAddrs...),
		Link:        link.ConfigFromUnified(cfg),
	}
	for _, p := range cfg.KnownPeers {
		peer := Peer{Addr: p.Addr}
		if p.NodeID != "" {
			id, err := types.ParseNodeID(p.NodeID)
			if err != nil {
				return Config{}, fmt.Errorf("%w: known peer %s: %v", ErrInvalidConfig, p.Addr, err)
			}
			peer.NodeID = id
		}
		c.KnownPeers = append(c.KnownPeers, peer)
	}
	return c, nil
}
