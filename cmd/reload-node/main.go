// Package main 提供 reload-node 命令行入口
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dep2p/go-reload"
	"github.com/dep2p/go-reload/internal/util/logger"
)

var log = logger.Logger("cmd")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var f cliFlags
	fs := newFlagSet(&f)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if f.showVersion {
		fmt.Println(reload.VersionInfo())
		return nil
	}

	cfg, err := buildConfig(fs, &f, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	if f.genConfig != "" {
		if err := cfg.Save(f.genConfig); err != nil {
			return err
		}
		fmt.Printf("配置已写入 %s\n", f.genConfig)
		return nil
	}

	var interval time.Duration
	if f.pingInterval != "" {
		if interval, err = time.ParseDuration(f.pingInterval); err != nil || interval <= 0 {
			return fmt.Errorf("配置错误: 无效的 -ping-interval %q", f.pingInterval)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("启动 reload 节点", "version", reload.Version, "commit", reload.GitCommit)
	node, err := reload.Start(ctx, reload.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	printNodeInfo(node)

	if interval > 0 {
		go pingLoop(ctx, node, interval)
	}

	fmt.Println("节点已启动，按 Ctrl+C 退出")
	<-ctx.Done()
	fmt.Println("\n正在关闭节点...")
	return nil
}

// printNodeInfo 输出节点信息
func printNodeInfo(node *reload.Node) {
	fmt.Printf("%s\n", reload.VersionInfo())
	fmt.Printf("  节点标识: %s\n", node.ID())
	fmt.Printf("  覆盖网络: %s\n", node.Config().Node.OverlayName)
	for _, addr := range node.ListenAddrs() {
		fmt.Printf("  监听地址: %s\n", addr)
	}
	if addr := node.IntrospectAddr(); addr != "" {
		fmt.Printf("  诊断服务: http://%s/debug/introspect\n", addr)
	}
}

// pingLoop 定期 Ping 所有邻居并记录往返时间
func pingLoop(ctx context.Context, node *reload.Node, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for _, peer := range node.Neighbors() {
			pctx, cancel := context.WithTimeout(ctx, interval)
			rtt, err := node.Ping(pctx, peer)
			cancel()
			if err != nil {
				log.Warn("Ping 失败", "peer", peer.ShortString(), "err", err)
				continue
			}
			log.Info("Ping", "peer", peer.ShortString(), "rtt", rtt)
		}
	}
}
