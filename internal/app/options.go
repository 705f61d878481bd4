package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-reload/pkg/lib/message"
)

// BootstrapOption Bootstrap 配置选项
type BootstrapOption func(*Bootstrap)

// WithRegistry 设置内容类型注册表，用于注册应用自定义的内容类型
func WithRegistry(r *message.Registry) BootstrapOption {
	return func(b *Bootstrap) {
		b.registry = r
	}
}

// WithMetricsRegistry 设置 Prometheus 注册表
func WithMetricsRegistry(r *prometheus.Registry) BootstrapOption {
	return func(b *Bootstrap) {
		b.metrics = r
	}
}

// WithModules 追加 fx 选项，例如通过 dispatcher.HandlerOut 提供内容处理器
func WithModules(opts ...fx.Option) BootstrapOption {
	return func(b *Bootstrap) {
		b.extra = append(b.extra, opts...)
	}
}

// WithStartTimeout 设置启动超时
func WithStartTimeout(d time.Duration) BootstrapOption {
	return func(b *Bootstrap) {
		b.startTimeout = d
	}
}

// WithStopTimeout 设置停止超时
func WithStopTimeout(d time.Duration) BootstrapOption {
	return func(b *Bootstrap) {
		b.stopTimeout = d
	}
}
