// Package frame 实现单条链路上的传输帧编解码
//
// 线格式：
//
//	type u8 | sequence u32 | DATA: length u24 + payload
//	                       | ACK:  received mask u32
//
// 解码前先确认缓冲区中存在完整帧；数据不足时返回 (nil, 0, nil)，不消费任何字节。
// 未知帧类型对链路是致命错误。
package frame
