package router

import (
	"fmt"
	"time"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/pkg/lib/header"
)

// Config 路由器配置
type Config struct {
	// OverlayHash 本覆盖网络的哈希，写入新建请求的头部
	OverlayHash uint32

	// RequestTimeout 等待应答的时间
	// 默认值: 3 秒
	RequestTimeout time.Duration

	// ExpiredCacheSize 记住最近超时的事务标识数量，用于识别迟到的应答
	// 默认值: 1024
	ExpiredCacheSize int

	// InitialTTL 新建消息的初始跳数
	// 默认值: 100
	InitialTTL uint8

	// MaxResponseLength 新建请求的应答长度上限，0 表示不限制
	MaxResponseLength uint32
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		RequestTimeout:   3000 * time.Millisecond,
		ExpiredCacheSize: 1024,
		InitialTTL:       header.DefaultTTL,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
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

// WithOverlayHash 设置覆盖网络哈希
func (c Config) WithOverlayHash(h uint32) Config {
	c.OverlayHash = h
	return c
}

// WithRequestTimeout 设置请求超时
func (c Config) WithRequestTimeout(d time.Duration) Config {
	c.RequestTimeout = d
	return c
}

// WithExpiredCacheSize 设置超时事务缓存大小
func (c Config) WithExpiredCacheSize(n int) Config {
	c.ExpiredCacheSize = n
	return c
}

// WithInitialTTL 设置初始跳数
func (c Config) WithInitialTTL(ttl uint8) Config {
	c.InitialTTL = ttl
	return c
}

// ConfigFromUnified 从统一配置创建路由器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		OverlayHash:       cfg.Node.OverlayHash(),
		RequestTimeout:    cfg.Router.RequestTimeout.Duration(),
		ExpiredCacheSize:  cfg.Router.ExpiredCacheSize,
		InitialTTL:        cfg.Router.InitialTTL,
		MaxResponseLength: cfg.Router.MaxResponseLength,
	}
}
