// Package app 提供节点的 fx 编排层
//
// app 包负责：
// - fx 模块组装
// - 依赖注入协调
// - 生命周期管理
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-reload/config"
	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// 默认启动与停止超时
const (
	DefaultStartTimeout = 30 * time.Second
	DefaultStopTimeout  = 30 * time.Second
)

// Bootstrap 应用引导程序
//
// Bootstrap 负责：
// - 解析配置
// - 组装 fx 模块
// - 管理应用生命周期
type Bootstrap struct {
	config       *config.Config
	registry     *message.Registry
	metrics      *prometheus.Registry
	extra        []fx.Option
	startTimeout time.Duration
	stopTimeout  time.Duration

	fxApp   *fx.App
	runtime *Runtime
	logFile *os.File
}

// NewBootstrap 创建引导程序
func NewBootstrap(cfg *config.Config, opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{
		config:       cfg,
		startTimeout: DefaultStartTimeout,
		stopTimeout:  DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build 组装节点（不启动）
//
// 返回的 Runtime 需要调用 Start 才开始监听与连接邻居。
func (b *Bootstrap) Build() (*Runtime, error) {
	if b.runtime != nil {
		return b.runtime, nil
	}
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}
	if err := b.setupLogging(); err != nil {
		return nil, fmt.Errorf("设置日志失败: %w", err)
	}

	modules, err := b.setupModules()
	if err != nil {
		return nil, fmt.Errorf("设置模块失败: %w", err)
	}

	rt := &Runtime{Config: b.config, Metrics: b.metrics}
	b.fxApp = fx.New(
		fx.Options(modules...),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.StartTimeout(b.startTimeout),
		fx.StopTimeout(b.stopTimeout),
		fx.Populate(&rt.Table, &rt.Router, &rt.Dispatcher, &rt.Transports, &rt.Host, &rt.Introspect),
	)
	if err := b.fxApp.Err(); err != nil {
		b.closeLogFile()
		return nil, fmt.Errorf("组装模块失败: %w", err)
	}

	rt.Local = rt.Host.Local()
	rt.stop = b.Stop
	b.runtime = rt
	return rt, nil
}

// Start 组装并启动节点
func (b *Bootstrap) Start(ctx context.Context) (*Runtime, error) {
	rt, err := b.Build()
	if err != nil {
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(ctx, b.startTimeout)
	defer cancel()
	if err := b.fxApp.Start(startCtx); err != nil {
		return nil, fmt.Errorf("启动应用失败: %w", err)
	}
	return rt, nil
}

// Stop 停止应用
func (b *Bootstrap) Stop(ctx context.Context) error {
	if b.fxApp == nil {
		return nil
	}
	defer b.closeLogFile()

	stopCtx, cancel := context.WithTimeout(ctx, b.stopTimeout)
	defer cancel()
	return b.fxApp.Stop(stopCtx)
}

// setupModules 组装所有 fx 模块
func (b *Bootstrap) setupModules() ([]fx.Option, error) {
	local, err := b.config.Node.NodeID()
	if err != nil {
		return nil, err
	}
	if b.registry == nil {
		b.registry = message.DefaultRegistry()
	}
	if b.metrics == nil {
		b.metrics = prometheus.NewRegistry()
	}

	modules := []fx.Option{
		b.setupConfigModule(local),
		AllModules(),
	}
	return append(modules, b.extra...), nil
}

// setupConfigModule 提供统一配置、本节点标识、编码器与指标注册表
func (b *Bootstrap) setupConfigModule(local types.NodeID) fx.Option {
	reg := b.metrics
	return fx.Options(
		fx.Supply(b.config),
		fx.Provide(
			fx.Annotated{
				Name:   "local_node_id",
				Target: func() types.NodeID { return local },
			},
			func() *message.Codec { return message.NewCodec(b.registry) },
			func() prometheus.Registerer { return reg },
			func() prometheus.Gatherer { return reg },
		),
	)
}

// setupLogging 配置日志级别与输出
//
// 指定 LogFile 时把所有日志重定向到文件
func (b *Bootstrap) setupLogging() error {
	if b.config.LogLevel != "" {
		if err := logger.ApplyLevels(b.config.LogLevel); err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
	}
	if b.config.LogFile == "" {
		return nil
	}

	file, err := os.OpenFile(b.config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}
	b.logFile = file
	logger.SetOutput(file)

	logger.Info("bootstrap", "日志文件初始化成功", "path", b.config.LogFile)
	return nil
}

func (b *Bootstrap) closeLogFile() {
	if b.logFile == nil {
		return
	}
	logger.SetOutput(os.Stderr)
	_ = b.logFile.Close()
	b.logFile = nil
}
