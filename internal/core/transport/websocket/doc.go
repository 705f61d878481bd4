// Package websocket 实现基于 WebSocket 的链路传输
//
// 帧流以二进制消息承载，消息边界与帧边界无关，读端把连续的二进制消息
// 拼接为字节流。文本消息被忽略。
//
// # 地址格式
//
//	ws://127.0.0.1:8080/reload
//	wss://example.org/reload
//
// 监听地址为 host:port，路径来自 Config.Path。也可以用 Handler 把升级
// 逻辑挂到已有的 HTTP 服务上。
package websocket
