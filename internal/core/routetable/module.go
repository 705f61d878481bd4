package routetable

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/types"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Config     *Config        `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
	Local      types.NodeID   `name:"local_node_id"`
}

// Module 返回 fx 模块，同时以 interfaces.RoutingTable 提供路由表
func Module() fx.Option {
	return fx.Module("routetable",
		fx.Provide(
			ProvideTable,
			asRoutingTable,
		),
	)
}

// ProvideTable 提供路由表
func ProvideTable(input ModuleInput) (*Table, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)
	if input.Config != nil {
		cfg = *input.Config
	}
	return New(cfg, input.Local)
}

func asRoutingTable(t *Table) interfaces.RoutingTable {
	return t
}
