package config

import (
	"fmt"
	"time"
)

// RouterConfig 路由器配置
type RouterConfig struct {
	// RequestTimeout 等待应答的时间
	RequestTimeout Duration `json:"request_timeout"`

	// ExpiredCacheSize 记住最近超时的事务数量，用于识别迟到的应答
	ExpiredCacheSize int `json:"expired_cache_size"`

	// InitialTTL 新建消息的初始跳数
	InitialTTL uint8 `json:"initial_ttl"`

	// MaxResponseLength 新建请求的应答长度上限，0 表示不限制
	MaxResponseLength uint32 `json:"max_response_length,omitempty"`
}

// DefaultRouterConfig 返回默认路由器配置
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RequestTimeout:   Duration(3000 * time.Millisecond),
		ExpiredCacheSize: 1024,
		InitialTTL:       100,
	}
}

// Validate 验证路由器配置
func (c RouterConfig) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	if c.ExpiredCacheSize <= 0 {
		return fmt.Errorf("%w: expired cache size must be positive", ErrInvalidConfig)
	}
	if c.InitialTTL == 0 {
		return fmt.Errorf("%w: initial ttl must be positive", ErrInvalidConfig)
	}
	return nil
}
