package mocks

import (
	"sync"

	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// MockConnection 模拟 Connection 接口实现
type MockConnection struct {
	// 基本属性
	NodeIDValue types.NodeID

	// WriteErr 未设置 WriteFunc 时每次写入的结果
	WriteErr error

	// 可覆盖的方法，在独立 goroutine 中调用，可阻塞以模拟慢链路
	WriteFunc func(m message.Headed) error

	mu      sync.Mutex
	written []message.Headed
}

// NewMockConnection 创建 MockConnection
func NewMockConnection(id types.NodeID) *MockConnection {
	return &MockConnection{NodeIDValue: id}
}

// NodeID 返回邻居标识
func (m *MockConnection) NodeID() types.NodeID {
	return m.NodeIDValue
}

// Write 记录消息并异步报告结果
func (m *MockConnection) Write(msg message.Headed) <-chan error {
	m.mu.Lock()
	m.written = append(m.written, msg)
	m.mu.Unlock()

	ch := make(chan error, 1)
	if m.WriteFunc == nil {
		ch <- m.WriteErr
		close(ch)
		return ch
	}
	go func() {
		ch <- m.WriteFunc(msg)
		close(ch)
	}()
	return ch
}

// Written 返回已写入消息的快照
func (m *MockConnection) Written() []message.Headed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]message.Headed(nil), m.written...)
}
