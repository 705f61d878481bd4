package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/dep2p/go-reload/config"
)

// ============================================================================
//                              命令行参数
// ============================================================================

// cliFlags 命令行参数
//
// 命令行参数用于本次运行的覆盖，JSON 配置文件保存节点的固定配置。
type cliFlags struct {
	configFile string
	genConfig  string

	id         string
	overlay    string
	listen     string
	peers      string
	transports string
	metrics    string
	pprof      bool
	logFile    string
	logLevel   string

	pingInterval string

	showVersion bool
}

// newFlagSet 注册所有参数
func newFlagSet(f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("reload-node", flag.ContinueOnError)
	fs.StringVar(&f.configFile, "config", "", "JSON 配置文件路径")
	fs.StringVar(&f.genConfig, "gen-config", "", "把合并后的配置写入该路径后退出")
	fs.StringVar(&f.id, "id", "", "节点标识（Base58，为空时随机生成）")
	fs.StringVar(&f.overlay, "overlay", "", "覆盖网络名称")
	fs.StringVar(&f.listen, "listen", "", "监听地址，逗号分隔（如 quic://0.0.0.0:6084,tcp://0.0.0.0:6085）")
	fs.StringVar(&f.peers, "peers", "", "启动时连接的邻居地址，逗号分隔")
	fs.StringVar(&f.transports, "transports", "", "启用的传输，逗号分隔（quic,tcp,ws）")
	fs.StringVar(&f.metrics, "metrics", "", "诊断服务地址（如 127.0.0.1:9184）")
	fs.BoolVar(&f.pprof, "pprof", false, "在诊断服务上挂载 /debug/pprof")
	fs.StringVar(&f.logFile, "log", "", "日志文件路径")
	fs.StringVar(&f.logLevel, "log-level", "", "日志级别（如 router=debug,info）")
	fs.StringVar(&f.pingInterval, "ping-interval", "", "定期 Ping 所有邻居的间隔（如 10s），为空时不 Ping")
	fs.BoolVar(&f.showVersion, "version", false, "显示版本信息")
	return fs
}

// buildConfig 合并配置
//
// 优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（RELOAD_* 前缀）
//  3. 配置文件
//  4. 默认值
func buildConfig(fs *flag.FlagSet, f *cliFlags, lookup config.LookupFunc) (*config.Config, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["id"] {
		cfg.Node.ID = f.id
	}
	if set["overlay"] {
		cfg.Node.OverlayName = f.overlay
	}
	if set["listen"] {
		cfg.Node.ListenAddrs = splitAndTrim(f.listen)
	}
	if set["peers"] {
		cfg.KnownPeers = nil
		for _, addr := range splitAndTrim(f.peers) {
			cfg.KnownPeers = append(cfg.KnownPeers, config.KnownPeer{Addr: addr})
		}
	}
	if set["transports"] {
		if err := applyTransports(&cfg.Transport, f.transports); err != nil {
			return nil, err
		}
	}
	if set["metrics"] {
		cfg.Metrics.Enabled = f.metrics != ""
		cfg.Metrics.Addr = f.metrics
	}
	if set["pprof"] {
		cfg.Metrics.EnablePprof = f.pprof
	}
	if set["log"] {
		cfg.LogFile = f.logFile
	}
	if set["log-level"] {
		cfg.LogLevel = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyTransports 按名称列表启用传输，未列出的传输关闭
func applyTransports(t *config.TransportConfig, list string) error {
	t.EnableQUIC, t.EnableTCP, t.EnableWebSocket = false, false, false
	for _, name := range splitAndTrim(list) {
		switch strings.ToLower(name) {
		case "quic":
			t.EnableQUIC = true
		case "tcp":
			t.EnableTCP = true
		case "ws", "websocket":
			t.EnableWebSocket = true
		default:
			return fmt.Errorf("%w: unknown transport %q", config.ErrInvalidConfig, name)
		}
	}
	return nil
}

// splitAndTrim 以逗号分割字符串并去除空白
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
