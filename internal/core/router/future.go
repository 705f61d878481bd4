package router

import (
	"context"
	"sync"

	"github.com/dep2p/go-reload/pkg/types"
)

// ============================================================================
//                              ForwardFuture
// ============================================================================

// ForwardFuture 一次扇出转发的结果聚合
//
// pending、success、failure 三个集合互不相交，所有修改与完成判断都在
// 同一把锁内进行，保证 pending 清空时只触发一次完成。
// 完成时先依次执行已注册的回调，再关闭 Done 通道。
type ForwardFuture struct {
	mu        sync.Mutex
	attempted int
	pending   map[types.NodeID]struct{}
	success   map[types.NodeID]struct{}
	failure   map[types.NodeID]error
	noRoute   bool
	completed bool
	callbacks []func(*ForwardFuture)
	done      chan struct{}
}

// newForwardFuture 以实际写入的邻居集合创建；集合为空时立即以 ErrNoRoute 完成
func newForwardFuture(hops []types.NodeID) *ForwardFuture {
	f := &ForwardFuture{
		pending: make(map[types.NodeID]struct{}, len(hops)),
		success: make(map[types.NodeID]struct{}),
		failure: make(map[types.NodeID]error),
		done:    make(chan struct{}),
	}
	for _, id := range hops {
		f.pending[id] = struct{}{}
	}
	f.attempted = len(f.pending)
	if f.attempted == 0 {
		f.noRoute = true
		f.completed = true
		close(f.done)
	}
	return f
}

// complete 记录一个邻居的写入结果
//
// 不在 pending 中的邻居被忽略，同一邻居的重复结果只记录第一次。
func (f *ForwardFuture) complete(id types.NodeID, err error) {
	f.mu.Lock()
	if _, ok := f.pending[id]; !ok {
		f.mu.Unlock()
		return
	}
	delete(f.pending, id)
	if err != nil {
		f.failure[id] = err
	} else {
		f.success[id] = struct{}{}
	}
	if len(f.pending) > 0 {
		f.mu.Unlock()
		return
	}
	f.completed = true
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(f)
	}
	close(f.done)
}

// OnComplete 注册完成回调；已完成时在当前 goroutine 立即调用
//
// 回调在 Done 通道关闭之前执行。回调内 IsDone、Wait、Err 等查询已反映
// 完成状态，但不应在回调内等待 Done 通道。
func (f *ForwardFuture) OnComplete(cb func(*ForwardFuture)) {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		cb(f)
		return
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// Done 返回完成信号
func (f *ForwardFuture) Done() <-chan struct{} {
	return f.done
}

// IsDone 是否已完成
func (f *ForwardFuture) IsDone() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Wait 等待完成并返回 Err()
//
// 已完成时立即返回，回调内调用不会阻塞。
func (f *ForwardFuture) Wait(ctx context.Context) error {
	if f.IsDone() {
		return f.Err()
	}
	select {
	case <-f.done:
		return f.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AllSucceeded 严格判定：已完成、有邻居且没有任何失败
func (f *ForwardFuture) AllSucceeded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed && !f.noRoute && len(f.failure) == 0
}

// AnySucceeded 宽松判定：至少一个邻居写入成功
//
// 相关请求据此决定是否继续等待应答。
func (f *ForwardFuture) AnySucceeded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.success) > 0
}

// IsSuccess 等同于 AllSucceeded
func (f *ForwardFuture) IsSuccess() bool {
	return f.AllSucceeded()
}

// Err 返回严格判定失败的原因
//
// 未完成或全部成功时为 nil；没有下一跳时为 ErrNoRoute；
// 否则为 *ForwardingError。
func (f *ForwardFuture) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.completed {
		return nil
	}
	if f.noRoute {
		return ErrNoRoute
	}
	if len(f.failure) == 0 {
		return nil
	}
	return newForwardingError(f.attempted, f.failure)
}

// Attempted 返回写入的邻居数
func (f *ForwardFuture) Attempted() int {
	return f.attempted
}

// Pending 返回尚未报告结果的邻居
func (f *ForwardFuture) Pending() []types.NodeID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return keys(f.pending)
}

// Succeeded 返回写入成功的邻居
func (f *ForwardFuture) Succeeded() []types.NodeID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return keys(f.success)
}

// Failed 返回写入失败的邻居及原因
func (f *ForwardFuture) Failed() map[types.NodeID]error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[types.NodeID]error, len(f.failure))
	for id, err := range f.failure {
		out[id] = err
	}
	return out
}

func keys(m map[types.NodeID]struct{}) []types.NodeID {
	out := make([]types.NodeID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}
