package interfaces

import (
	"github.com/dep2p/go-reload/pkg/lib/message"
)

// SignatureVerifier 校验消息安全块中的签名
//
// 证书与密钥管理不在核心范围内，核心只在处理本地请求前调用校验。
type SignatureVerifier interface {
	// Verify 校验失败时返回错误；返回 *message.ProtocolError 时向请求方发送错误应答
	Verify(m *message.Message) error
}
