package host

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/internal/core/dispatcher"
	"github.com/dep2p/go-reload/internal/core/routetable"
	"github.com/dep2p/go-reload/internal/core/transport"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Config     *Config        `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
	Local      types.NodeID   `name:"local_node_id"`
	Transports *transport.Manager
	Table      *routetable.Table
	Dispatcher *dispatcher.Dispatcher
	Codec      *message.Codec        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("host",
		fx.Provide(ProvideHost),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideHost 提供 Host
func ProvideHost(input ModuleInput) (*Host, error) {
	cfg, err := ConfigFromUnified(input.UnifiedCfg)
	if err != nil {
		return nil, err
	}
	if input.Config != nil {
		cfg = *input.Config
	}
	metrics, err := NewMetrics(input.Registerer)
	if err != nil {
		return nil, err
	}
	opts := []Option{WithMetrics(metrics)}
	if input.Codec != nil {
		opts = append(opts, WithCodec(input.Codec))
	}
	return New(cfg, input.Local, input.Transports, input.Table, input.Dispatcher, opts...)
}

// registerLifecycle 注册生命周期钩子
//
// Host 在分发器与路由器之后创建，停止时最先关闭。
func registerLifecycle(lc fx.Lifecycle, h *Host) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return h.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return h.Close()
		},
	})
}
