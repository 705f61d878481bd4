// Package link 实现邻居链路：在可靠字节流上收发 DATA/ACK 帧
//
// 链路建立时双方先交换节点标识：
//
//	length u8 | node_id
//
// 之后字节流上只有帧。写入按调用顺序由单个写协程完成，每次写入通过
// 一次性结果通道报告；读协程增量解码帧，DATA 负载按到达顺序交给
// Handler 并以 ACK 应答，收到的 ACK 清除在途表。链路不重传，可靠性
// 由底层字节流（QUIC 流、WebSocket）保证。
//
// 使用示例：
//
//	l, err := link.Establish(ctx, stream, local, handler, link.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	go l.Run(ctx)
//	table.Add(l)
package link
