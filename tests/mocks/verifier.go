package mocks

import (
	"sync/atomic"

	"github.com/dep2p/go-reload/pkg/lib/message"
)

// MockVerifier 模拟 SignatureVerifier 接口实现
type MockVerifier struct {
	// Err 未设置 VerifyFunc 时的校验结果
	Err error

	// 可覆盖的方法
	VerifyFunc func(m *message.Message) error

	// 调用记录
	calls atomic.Int32
}

// Verify 校验消息
func (m *MockVerifier) Verify(msg *message.Message) error {
	m.calls.Add(1)
	if m.VerifyFunc != nil {
		return m.VerifyFunc(msg)
	}
	return m.Err
}

// Calls 返回调用次数
func (m *MockVerifier) Calls() int {
	return int(m.calls.Load())
}
