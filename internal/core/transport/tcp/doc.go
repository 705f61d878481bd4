// Package tcp 实现基于 TCP 的链路传输
//
// 用于 UDP 被阻断或调试的场景。TCP 连接本身即为字节流，不提供加密，
// 消息安全由消息层的安全块负责。
//
// # 地址格式
//
//	tcp://127.0.0.1:4434
package tcp
