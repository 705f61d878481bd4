package introspect

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/internal/core/host"
	"github.com/dep2p/go-reload/internal/core/router"
)

// Module 返回诊断服务 Fx 模块
func Module() fx.Option {
	return fx.Module("introspect",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}

// Params 诊断服务依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config      `optional:"true"`
	Host       *host.Host          `optional:"true"`
	Router     *router.Router      `optional:"true"`
	Gatherer   prometheus.Gatherer `optional:"true"`
}

// Output 诊断服务输出
type Output struct {
	fx.Out

	Server *Server
}

// ConfigFromUnified 从统一配置创建诊断服务配置，未启用时返回 nil
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil || !cfg.Metrics.Enabled {
		return nil
	}
	addr := cfg.Metrics.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	return &Config{
		Addr:        addr,
		EnablePprof: cfg.Metrics.EnablePprof,
	}
}

// NewFromParams 从参数创建诊断服务，未启用时提供 nil
func NewFromParams(params Params) Output {
	cfg := ConfigFromUnified(params.UnifiedCfg)
	if cfg == nil {
		return Output{}
	}

	if params.Host != nil {
		cfg.Node = params.Host
	}
	if params.Router != nil {
		cfg.Pending = params.Router.Pending()
	}
	cfg.Gatherer = params.Gatherer

	return Output{Server: New(*cfg)}
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, server *Server) {
	if server == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return server.Stop()
		},
	})
}
