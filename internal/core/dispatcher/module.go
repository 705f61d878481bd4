package dispatcher

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/internal/core/router"
	"github.com/dep2p/go-reload/internal/core/routing"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// Registration 通过 fx group 注册的内容处理器
type Registration struct {
	Type    message.ContentType
	Handler interfaces.ContentHandler
}

// HandlerOut 向 group:"content_handlers" 提供处理器
type HandlerOut struct {
	fx.Out

	Registration Registration `group:"content_handlers"`
}

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Config     *Config                      `optional:"true"`
	UnifiedCfg *config.Config               `optional:"true"`
	Local      types.NodeID                 `name:"local_node_id"`
	Router     *router.Router
	Table      interfaces.RoutingTable
	Codec      *message.Codec               `optional:"true"`
	Verifier   interfaces.SignatureVerifier `optional:"true"`
	Registerer prometheus.Registerer        `optional:"true"`

	// 从 group:"content_handlers" 收集所有处理器
	Handlers []Registration `group:"content_handlers"`
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("dispatcher",
		fx.Provide(ProvideDispatcher),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideDispatcher 提供分发器
func ProvideDispatcher(input ModuleInput) (*Dispatcher, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)
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
	if input.Verifier != nil {
		opts = append(opts, WithVerifier(input.Verifier))
	}

	decider := routing.NewDecider(input.Local, input.Router.Config().OverlayHash, input.Table)
	d, err := New(cfg, input.Router, decider, opts...)
	if err != nil {
		return nil, err
	}
	for _, reg := range input.Handlers {
		if err := d.Register(reg.Type, reg.Handler); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func registerLifecycle(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return d.Close()
		},
	})
}
