package routetable

import (
	"fmt"

	"github.com/dep2p/go-reload/config"
)

// Config 路由表配置
type Config struct {
	// K 目的地不是邻居时返回的最近邻居数量
	// 默认值: 3
	K int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{K: 3}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("%w: k must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithK 设置最近邻居数量
func (c Config) WithK(k int) Config {
	c.K = k
	return c
}

// ConfigFromUnified 从统一配置创建路由表配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{K: cfg.RouteTable.K}
}
