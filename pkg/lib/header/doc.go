// Package header 实现转发头（forwarding header）的编解码
//
// 线格式（大端）：
//
//	0   token                 u32  0xd2454c4f
//	4   overlayHash           u32
//	8   configurationSequence u16
//	10  version               u8
//	11  ttl                   u8
//	12  fragment              u16  0x8000 恒置位，0x4000 最后分片
//	14  fragmentOffset        u16
//	16  totalMessageLength    u32  占位，由消息编码器回填
//	20  transactionId         u64
//	28  maxResponseLength     u32
//	32  viaListLength         u16
//	34  destListLength        u16
//	36  fwdOptionsLength      u16
//	38  viaList | destinationList | forwardingOptions
//
// 三个列表各自只在声明长度的有界视图内解码，某一列表长度错误不会影响兄弟列表。
package header
