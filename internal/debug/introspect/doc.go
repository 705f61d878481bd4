// Package introspect 提供本地诊断 HTTP 服务
//
// 该服务运行在本地端口，提供 JSON 格式的节点状态与 Prometheus 指标。
// 默认绑定到 127.0.0.1，不暴露到网络。
//
// # 端点
//
//	GET /debug/introspect         - 完整诊断报告 (JSON)
//	GET /debug/introspect/links   - 链路统计
//	GET /debug/introspect/runtime - 运行时信息
//	GET /metrics                  - Prometheus 指标
//	GET /debug/pprof/*            - Go pprof 端点（需启用）
//	GET /health                   - 健康检查
//
// # 使用示例
//
//	server := introspect.New(introspect.Config{
//	    Addr:     "127.0.0.1:9184",
//	    Node:     myHost,
//	    Pending:  myRouter.Pending(),
//	    Gatherer: registry,
//	})
//	server.Start(ctx)
//	defer server.Stop()
//
// 通过 config.Metrics.Enabled 启用。
package introspect
