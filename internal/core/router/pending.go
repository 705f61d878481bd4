package router

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-reload/pkg/lib/message"
)

// ResolveOutcome 应答匹配结果
type ResolveOutcome int

const (
	// Resolved 匹配到等待中的请求
	Resolved ResolveOutcome = iota
	// Unknown 没有对应的请求
	Unknown
	// Late 请求已超时
	Late
)

// String 返回结果名称
func (o ResolveOutcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Late:
		return "late"
	default:
		return "unknown"
	}
}

type pendingEntry struct {
	fut   *RequestFuture
	timer *clock.Timer
}

// PendingRequestCache 等待应答的请求表
//
// 每个条目在 Put 时注册一个时钟定时器。应答、超时、失败都通过 take 在锁内
// 取出条目，只有取出者可以解决它，因此同一条目只会被解决一次。
type PendingRequestCache struct {
	clock clock.Clock
	ttl   time.Duration

	mu      sync.Mutex
	entries map[uint64]*pendingEntry
	expired *lru.Cache[uint64, struct{}]
	closed  bool

	onExpire func(txid uint64)
}

// NewPendingRequestCache 创建请求表
//
// expiredSize 为记住的最近超时事务数量。
func NewPendingRequestCache(clk clock.Clock, ttl time.Duration, expiredSize int) (*PendingRequestCache, error) {
	if clk == nil {
		clk = clock.New()
	}
	expired, err := lru.New[uint64, struct{}](expiredSize)
	if err != nil {
		return nil, err
	}
	return &PendingRequestCache{
		clock:   clk,
		ttl:     ttl,
		entries: make(map[uint64]*pendingEntry),
		expired: expired,
	}, nil
}

// TTL 返回条目存活时间
func (c *PendingRequestCache) TTL() time.Duration {
	return c.ttl
}

// Put 登记请求并开始计时
func (c *PendingRequestCache) Put(txid uint64) (*RequestFuture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrRouterClosed
	}
	if _, ok := c.entries[txid]; ok {
		return nil, ErrDuplicateTransaction
	}

	e := &pendingEntry{fut: newRequestFuture(txid)}
	e.timer = c.clock.AfterFunc(c.ttl, func() { c.expire(txid, e) })
	c.entries[txid] = e
	c.expired.Remove(txid)
	return e.fut, nil
}

// Resolve 用应答解决请求并移除条目
func (c *PendingRequestCache) Resolve(txid uint64, answer *message.Message) ResolveOutcome {
	e, outcome := c.take(txid, nil)
	if e == nil {
		return outcome
	}
	e.fut.resolve(answer, nil)
	return Resolved
}

// Fail 以错误解决请求并移除条目
func (c *PendingRequestCache) Fail(txid uint64, err error) bool {
	e, _ := c.take(txid, nil)
	if e == nil {
		return false
	}
	return e.fut.resolve(nil, err)
}

// Contains 请求是否仍在等待
func (c *PendingRequestCache) Contains(txid uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[txid]
	return ok
}

// Len 返回等待中的请求数
func (c *PendingRequestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close 以 ErrRouterClosed 解决所有等待中的请求
func (c *PendingRequestCache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	entries := c.entries
	c.entries = make(map[uint64]*pendingEntry)
	c.mu.Unlock()

	for _, e := range entries {
		e.timer.Stop()
		e.fut.resolve(nil, ErrRouterClosed)
	}
}

// expire 定时器回调
func (c *PendingRequestCache) expire(txid uint64, e *pendingEntry) {
	taken, _ := c.take(txid, e)
	if taken == nil {
		return
	}
	if taken.fut.resolve(nil, ErrRequestTimeout) && c.onExpire != nil {
		c.onExpire(txid)
	}
}

// take 在锁内取出条目
//
// want 非空时只取出该条目本身，防止旧定时器取走同一事务标识的新条目。
// 超时取出的事务记入 expired。
func (c *PendingRequestCache) take(txid uint64, want *pendingEntry) (*pendingEntry, ResolveOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[txid]
	if !ok || (want != nil && e != want) {
		if c.expired.Contains(txid) {
			return nil, Late
		}
		return nil, Unknown
	}
	delete(c.entries, txid)
	if want != nil {
		c.expired.Add(txid, struct{}{})
	} else {
		e.timer.Stop()
	}
	return e, Resolved
}
