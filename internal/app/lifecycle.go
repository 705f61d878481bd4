package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dep2p/go-reload/internal/util/logger"
)

// App 运行中的节点应用
type App struct {
	bootstrap *Bootstrap
	runtime   *Runtime

	stopOnce sync.Once
	stopErr  error
	stopped  chan struct{}
}

// RunApp 构建并启动节点应用
//
// 示例:
//
//	a, err := app.RunApp(ctx, app.NewBootstrap(cfg))
//	if err != nil {
//	    return err
//	}
//	a.Wait(ctx)
func RunApp(ctx context.Context, bootstrap *Bootstrap) (*App, error) {
	rt, err := bootstrap.Start(ctx)
	if err != nil {
		_ = bootstrap.Stop(context.Background())
		return nil, err
	}
	return &App{
		bootstrap: bootstrap,
		runtime:   rt,
		stopped:   make(chan struct{}),
	}, nil
}

// Runtime 返回运行时
func (a *App) Runtime() *Runtime {
	return a.runtime
}

// Wait 等待 SIGINT/SIGTERM、ctx 取消或 Stop，然后停止应用
func (a *App) Wait(ctx context.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		logger.Info("app", "收到信号，正在退出", "signal", sig.String())
	case <-ctx.Done():
	case <-a.stopped:
		return a.stopErr
	}
	return a.Stop()
}

// Stop 停止应用，可重复调用
func (a *App) Stop() error {
	a.stopOnce.Do(func() {
		if err := a.bootstrap.Stop(context.Background()); err != nil {
			a.stopErr = fmt.Errorf("停止应用失败: %w", err)
		}
		close(a.stopped)
	})
	<-a.stopped
	return a.stopErr
}
