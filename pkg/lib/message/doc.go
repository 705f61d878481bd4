// Package message 定义消息内容、安全块和完整消息的编解码
//
// 一条消息由三部分组成：
//
//	forwarding header | content | security block
//
// content 线格式为 message_code u16 | body <u32> | extensions <u32>。
// message_code 奇数为请求、偶数为应答，0xffff 为错误（按应答处理）。
//
// 内容解码通过 Registry 完成：从线格式读出 message_code 后查表得到解码函数，
// 不依赖任何运行时类型推断。
//
// 使用示例:
//
//	c := message.NewCodec(message.DefaultRegistry())
//	raw, err := c.Encode(message.New(h, &message.PingRequest{}))
//	...
//	h, payload, err := message.SplitHeader(raw)
//	msg, err := c.DecodePayload(h, payload)
package message
