package router

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/types"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置（可选，优先于统一配置）
	Config *Config `optional:"true"`

	// UnifiedCfg 统一配置（可选）
	UnifiedCfg *config.Config `optional:"true"`

	// Local 本节点标识
	Local types.NodeID `name:"local_node_id"`

	// Table 路由表
	Table interfaces.RoutingTable

	// Registerer 指标注册器（可选）
	Registerer prometheus.Registerer `optional:"true"`

	// Clock 时钟（可选，测试注入 mock）
	Clock clock.Clock `optional:"true"`
}

// ============================================================================
//                              服务提供
// ============================================================================

// ProvideRouter 提供路由器
func ProvideRouter(input ModuleInput) (*Router, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)
	if input.Config != nil {
		cfg = *input.Config
	}

	metrics, err := NewMetrics(input.Registerer)
	if err != nil {
		return nil, err
	}
	opts := []Option{WithMetrics(metrics)}
	if input.Clock != nil {
		opts = append(opts, WithClock(input.Clock))
	}
	return New(cfg, input.Local, input.Table, opts...)
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("router",
		fx.Provide(ProvideRouter),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC     fx.Lifecycle
	Router *Router
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			log.Info("路由器启动", "local", input.Router.Local().ShortString(),
				"request_timeout", input.Router.Config().RequestTimeout)
			return nil
		},
		OnStop: func(_ context.Context) error {
			return input.Router.Close()
		},
	})
}
