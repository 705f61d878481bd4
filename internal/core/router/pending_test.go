package router

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-reload/pkg/lib/header"
	"github.com/dep2p/go-reload/pkg/lib/message"
)

const testTTL = 3 * time.Second

func newTestCache(t *testing.T) (*PendingRequestCache, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	c, err := NewPendingRequestCache(mock, testTTL, 16)
	require.NoError(t, err)
	return c, mock
}

// waitDone 等待完成信号；模拟时钟的定时器回调在独立 goroutine 中运行
func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("等待完成超时")
	}
}

func answerFor(txid uint64) *message.Message {
	h := header.New(0)
	h.TransactionID = txid
	return message.New(h, &message.PingAnswer{ResponseID: 1})
}

func TestPendingRequestCache_Resolve(t *testing.T) {
	c, _ := newTestCache(t)

	fut, err := c.Put(42)
	require.NoError(t, err)
	assert.True(t, c.Contains(42))
	assert.Equal(t, 1, c.Len())

	_, err = fut.Result()
	assert.ErrorIs(t, err, ErrPending)

	ans := answerFor(42)
	assert.Equal(t, Resolved, c.Resolve(42, ans))

	got, err := fut.Result()
	require.NoError(t, err)
	assert.Same(t, ans, got)
	assert.False(t, c.Contains(42))

	t.Run("重复应答视为未知", func(t *testing.T) {
		assert.Equal(t, Unknown, c.Resolve(42, ans))
	})
}

func TestPendingRequestCache_Timeout(t *testing.T) {
	c, mock := newTestCache(t)
	var expired atomic.Uint64
	c.onExpire = func(txid uint64) { expired.Store(txid) }

	fut, err := c.Put(7)
	require.NoError(t, err)

	mock.Add(testTTL - time.Millisecond)
	assert.True(t, c.Contains(7), "未到超时时间")

	mock.Add(time.Millisecond)
	waitDone(t, fut.Done())

	_, err = fut.Result()
	assert.ErrorIs(t, err, ErrRequestTimeout)
	assert.False(t, c.Contains(7))
	assert.Equal(t, uint64(7), expired.Load())

	t.Run("迟到的应答", func(t *testing.T) {
		assert.Equal(t, Late, c.Resolve(7, answerFor(7)))
		_, err := fut.Result()
		assert.ErrorIs(t, err, ErrRequestTimeout, "结果不被覆盖")
	})

	t.Run("重新登记后不再视为迟到", func(t *testing.T) {
		_, err := c.Put(7)
		require.NoError(t, err)
		assert.Equal(t, Resolved, c.Resolve(7, answerFor(7)))
	})
}

func TestPendingRequestCache_AnswerStopsTimer(t *testing.T) {
	c, mock := newTestCache(t)
	var expired atomic.Int32
	c.onExpire = func(uint64) { expired.Add(1) }

	fut, err := c.Put(9)
	require.NoError(t, err)
	require.Equal(t, Resolved, c.Resolve(9, answerFor(9)))

	mock.Add(2 * testTTL)
	time.Sleep(10 * time.Millisecond)

	_, err = fut.Result()
	assert.NoError(t, err)
	assert.Equal(t, int32(0), expired.Load())
	assert.Equal(t, Unknown, c.Resolve(9, answerFor(9)), "应答解决的事务不记为超时")
}

func TestPendingRequestCache_Duplicate(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Put(1)
	require.NoError(t, err)
	_, err = c.Put(1)
	assert.ErrorIs(t, err, ErrDuplicateTransaction)
}

func TestPendingRequestCache_Fail(t *testing.T) {
	c, _ := newTestCache(t)
	cause := errors.New("boom")

	fut, err := c.Put(3)
	require.NoError(t, err)

	assert.True(t, c.Fail(3, cause))
	assert.False(t, c.Fail(3, cause), "只解决一次")

	_, err = fut.Result()
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Unknown, c.Resolve(3, answerFor(3)))
}

func TestPendingRequestCache_Close(t *testing.T) {
	c, _ := newTestCache(t)

	a, err := c.Put(1)
	require.NoError(t, err)
	b, err := c.Put(2)
	require.NoError(t, err)

	c.Close()
	c.Close()

	for _, fut := range []*RequestFuture{a, b} {
		_, err := fut.Result()
		assert.ErrorIs(t, err, ErrRouterClosed)
	}
	assert.Equal(t, 0, c.Len())

	_, err = c.Put(3)
	assert.ErrorIs(t, err, ErrRouterClosed)
}

func TestPendingRequestCache_ExpiredEviction(t *testing.T) {
	mock := clock.NewMock()
	c, err := NewPendingRequestCache(mock, testTTL, 2)
	require.NoError(t, err)

	futs := make([]*RequestFuture, 0, 3)
	for txid := uint64(1); txid <= 3; txid++ {
		fut, err := c.Put(txid)
		require.NoError(t, err)
		futs = append(futs, fut)
	}
	mock.Add(testTTL)
	for _, fut := range futs {
		waitDone(t, fut.Done())
	}

	late := 0
	for txid := uint64(1); txid <= 3; txid++ {
		if c.Resolve(txid, answerFor(txid)) == Late {
			late++
		}
	}
	assert.Equal(t, 2, late, "只记住最近的超时事务")
}

func TestPendingRequestCache_ResolveRacesTimeout(t *testing.T) {
	c, err := NewPendingRequestCache(clock.New(), time.Millisecond, 1024)
	require.NoError(t, err)

	const n = 200
	var resolved, timedOut atomic.Int32
	var wg sync.WaitGroup
	for txid := uint64(1); txid <= n; txid++ {
		fut, err := c.Put(txid)
		require.NoError(t, err)

		wg.Add(1)
		go func(txid uint64) {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			c.Resolve(txid, answerFor(txid))
			<-fut.Done()
			if _, err := fut.Result(); err == nil {
				resolved.Add(1)
			} else {
				timedOut.Add(1)
			}
		}(txid)
	}
	wg.Wait()

	assert.Equal(t, int32(n), resolved.Load()+timedOut.Load(), "每个请求恰好解决一次")
	assert.Equal(t, 0, c.Len())
}

func TestResolveOutcome_String(t *testing.T) {
	assert.Equal(t, "resolved", Resolved.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "late", Late.String())
}
