package config

import (
	"fmt"
	"net"
	"time"
)

// ============================================================================
//                              RouteTable
// ============================================================================

// RouteTableConfig 路由表配置
type RouteTableConfig struct {
	// K 目的地不是邻居时扇出的最近邻居数量
	K int `json:"k"`
}

// DefaultRouteTableConfig 返回默认路由表配置
func DefaultRouteTableConfig() RouteTableConfig {
	return RouteTableConfig{K: 3}
}

// Validate 验证路由表配置
func (c RouteTableConfig) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("%w: k must be positive", ErrInvalidConfig)
	}
	return nil
}

// ============================================================================
//                              Dispatcher
// ============================================================================

// DispatcherConfig 分发器配置
type DispatcherConfig struct {
	// Workers 同时运行的请求处理器数量上限
	Workers int `json:"workers"`

	// HandlerTimeout 单个请求处理的时间上限
	HandlerTimeout Duration `json:"handler_timeout"`

	// EnablePing 是否应答 Ping 请求
	EnablePing bool `json:"enable_ping"`
}

// DefaultDispatcherConfig 返回默认分发器配置
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:        64,
		HandlerTimeout: Duration(3 * time.Second),
		EnablePing:     true,
	}
}

// Validate 验证分发器配置
func (c DispatcherConfig) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.HandlerTimeout <= 0 {
		return fmt.Errorf("%w: handler timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// ============================================================================
//                              Metrics
// ============================================================================

// MetricsConfig 指标与诊断服务配置
type MetricsConfig struct {
	// Enabled 是否启动诊断 HTTP 服务（/metrics、/debug/introspect、/health）
	Enabled bool `json:"enabled"`

	// Addr 诊断服务监听地址
	Addr string `json:"addr"`

	// EnablePprof 是否挂载 /debug/pprof
	EnablePprof bool `json:"enable_pprof"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: false,
		Addr:    "127.0.0.1:9184",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w: metrics addr: %v", ErrInvalidConfig, err)
	}
	return nil
}
