package dispatcher

import (
	"fmt"
	"time"

	"github.com/dep2p/go-reload/config"
)

// Config 分发器配置
type Config struct {
	// Workers 同时运行的请求处理器数量上限
	// 默认值: 64
	Workers int

	// HandlerTimeout 单个请求处理的时间上限
	// 默认值: 3 秒
	HandlerTimeout time.Duration

	// EnablePing 是否注册内置的 Ping 处理器
	// 默认值: true
	EnablePing bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Workers:        64,
		HandlerTimeout: 3 * time.Second,
		EnablePing:     true,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.HandlerTimeout <= 0 {
		return fmt.Errorf("%w: handler timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithWorkers 设置工作池大小
func (c Config) WithWorkers(n int) Config {
	c.Workers = n
	return c
}

// WithHandlerTimeout 设置处理超时
func (c Config) WithHandlerTimeout(d time.Duration) Config {
	c.HandlerTimeout = d
	return c
}

// WithPing 设置是否注册 Ping 处理器
func (c Config) WithPing(enabled bool) Config {
	c.EnablePing = enabled
	return c
}

// ConfigFromUnified 从统一配置创建分发器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Workers:        cfg.Dispatcher.Workers,
		HandlerTimeout: cfg.Dispatcher.HandlerTimeout.Duration(),
		EnablePing:     cfg.Dispatcher.EnablePing,
	}
}
