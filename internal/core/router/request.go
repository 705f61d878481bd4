package router

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/dep2p/go-reload/pkg/lib/message"
)

// ErrPending 请求尚未完成
var ErrPending = errors.New("router: request pending")

// RequestFuture 一次请求的应答槽
//
// 只会被解决一次：应答、超时、转发失败或关闭中先到者生效。
type RequestFuture struct {
	txid     uint64
	resolved atomic.Bool
	done     chan struct{}

	// forward 发送请求的扇出结果，由 SendRequestMessage 设置
	forward *ForwardFuture

	// answer 与 err 只在 done 关闭前写入一次
	answer *message.Message
	err    error
}

func newRequestFuture(txid uint64) *RequestFuture {
	return &RequestFuture{txid: txid, done: make(chan struct{})}
}

// resolve 解决应答槽，返回是否由本次调用解决
func (f *RequestFuture) resolve(answer *message.Message, err error) bool {
	if !f.resolved.CompareAndSwap(false, true) {
		return false
	}
	f.answer = answer
	f.err = err
	close(f.done)
	return true
}

// TransactionID 返回事务标识
func (f *RequestFuture) TransactionID() uint64 {
	return f.txid
}

// Forward 返回请求本身的扇出结果
func (f *RequestFuture) Forward() *ForwardFuture {
	return f.forward
}

// Done 返回完成信号
func (f *RequestFuture) Done() <-chan struct{} {
	return f.done
}

// Wait 等待应答
//
// ctx 取消只结束等待，请求仍在缓存中直到应答或超时。
func (f *RequestFuture) Wait(ctx context.Context) (*message.Message, error) {
	select {
	case <-f.done:
		return f.answer, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result 返回结果；未完成时返回 ErrPending
func (f *RequestFuture) Result() (*message.Message, error) {
	select {
	case <-f.done:
		return f.answer, f.err
	default:
		return nil, ErrPending
	}
}
