// Package quic 实现基于 QUIC 的链路传输
//
// 每条链路使用一个 QUIC 连接上的一条双向流。拨号方打开流后立即写出
// 链路握手，监听方据此接受流。TLS 1.3 使用自签名证书，证书扩展中携带
// 本节点标识，仅用于诊断，节点身份以链路握手为准。
//
// # 地址格式
//
//	quic://127.0.0.1:4433
//	127.0.0.1:4433
//
// # 使用示例
//
//	t, err := quic.New(local, quic.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	ln, err := t.Listen(ctx, "127.0.0.1:0", func(rwc io.ReadWriteCloser, remote net.Addr) {
//	    go serve(rwc)
//	})
//	rwc, err := t.Dial(ctx, ln.Addr())
package quic
