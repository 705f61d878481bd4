// Package app 提供模块集合清单
//
// modulesets.go 集中维护各层包含的模块，是 Bootstrap 组装的唯一模块来源。
package app

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-reload/internal/core/dispatcher"
	"github.com/dep2p/go-reload/internal/core/host"
	"github.com/dep2p/go-reload/internal/core/router"
	"github.com/dep2p/go-reload/internal/core/routetable"
	"github.com/dep2p/go-reload/internal/core/transport"
	"github.com/dep2p/go-reload/internal/debug/introspect"
)

// RoutingModules 路由层模块组合
//
// 路由表、路由器与入站分发器，不涉及网络。
func RoutingModules() fx.Option {
	return fx.Options(
		routetable.Module(),
		router.Module(),
		dispatcher.Module(),
	)
}

// NetworkModules 网络层模块组合
//
// 传输与链路管理，依赖路由层。
func NetworkModules() fx.Option {
	return fx.Options(
		transport.Module(),
		host.Module(),
	)
}

// MonitoringModules 诊断 HTTP 服务
//
// 由 config.Metrics.Enabled 决定是否真正启动。
func MonitoringModules() fx.Option {
	return introspect.Module()
}

// AllModules 所有模块组合
func AllModules() fx.Option {
	return fx.Options(
		RoutingModules(),
		NetworkModules(),
		MonitoringModules(),
	)
}
