// Package reload 提供 RELOAD 风格覆盖网络的消息路由节点
//
// 节点通过链路（QUIC、TCP 或 WebSocket 上的可靠字节流）与邻居相连，
// 按目的地列表逐跳转发消息，把发往本节点的请求交给按内容类型注册的处理器，
// 并把应答与等待中的请求关联。
//
// # 快速开始
//
//	node, err := reload.New(
//	    reload.WithOverlay("overlay.example.org"),
//	    reload.WithListenAddrs("quic://0.0.0.0:6084"),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := node.Start(ctx); err != nil {
//	    return err
//	}
//	defer node.Close()
//
//	peer, err := node.Connect(ctx, "quic://10.0.0.2:6084")
//	rtt, err := node.Ping(ctx, peer)
//
// # 自定义内容类型
//
//	node, _ := reload.New(
//	    reload.WithRawContentTypes(message.StoreRequest, message.StoreAnswer),
//	    reload.WithHandler(message.StoreRequest, storeHandler),
//	)
//	answer, err := node.Request(ctx, &message.RawContent{Type: message.StoreRequest, Body: kv}, dest)
//
// # 组件
//
//   - Router: 发送、转发、请求/应答关联（internal/core/router）
//   - Dispatcher: 入站消息的路由决策与本地处理（internal/core/dispatcher）
//   - Host: 传输监听、链路建立与邻居表维护（internal/core/host）
//
// 所有组件通过 internal/app 用 fx 组装。
package reload
