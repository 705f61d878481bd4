// Package transport 管理链路传输
//
// Manager 按地址前缀选择传输：
//
//	quic://host:port   QUIC（默认）
//	tcp://host:port    明文 TCP
//	ws://host:port/p   WebSocket
//
// 没有前缀的地址使用 QUIC。
package transport
