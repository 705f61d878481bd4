package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/internal/core/dispatcher"
	"github.com/dep2p/go-reload/internal/core/host"
	"github.com/dep2p/go-reload/internal/core/router"
	"github.com/dep2p/go-reload/internal/core/routetable"
	"github.com/dep2p/go-reload/internal/core/transport"
	"github.com/dep2p/go-reload/internal/debug/introspect"
	"github.com/dep2p/go-reload/pkg/types"
)

// Runtime 通过 fx 组装完成的节点运行时
//
// 根包 reload 的 Node 组合 Runtime 对外提供 API。
type Runtime struct {
	Config     *config.Config
	Local      types.NodeID
	Table      *routetable.Table
	Router     *router.Router
	Dispatcher *dispatcher.Dispatcher
	Transports *transport.Manager
	Host       *host.Host

	// Introspect 诊断服务，未启用时为 nil
	Introspect *introspect.Server

	// Metrics 所有组件共用的指标注册表
	Metrics *prometheus.Registry

	stop func(ctx context.Context) error
}

// Stop 停止运行时（触发 fx 生命周期 OnStop）
func (r *Runtime) Stop(ctx context.Context) error {
	if r.stop == nil {
		return nil
	}
	return r.stop(ctx)
}
