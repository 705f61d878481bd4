package host

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-reload/internal/core/dispatcher"
	"github.com/dep2p/go-reload/internal/core/router"
	"github.com/dep2p/go-reload/internal/core/routetable"
	"github.com/dep2p/go-reload/internal/core/routing"
	"github.com/dep2p/go-reload/internal/core/transport"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

const testOverlay uint32 = 0x0badcafe

// stack 一个完整节点：路由表、路由器、分发器、传输与 Host
type stack struct {
	id      types.NodeID
	table   *routetable.Table
	router  *router.Router
	host    *Host
	metrics *Metrics
}

func newStack(t *testing.T, id types.NodeID, cfg Config) *stack {
	t.Helper()
	table, err := routetable.New(routetable.DefaultConfig(), id)
	require.NoError(t, err)

	r, err := router.New(router.DefaultConfig().WithOverlayHash(testOverlay), id, table)
	require.NoError(t, err)

	d, err := dispatcher.New(dispatcher.DefaultConfig(), r, routing.NewDecider(id, testOverlay, table))
	require.NoError(t, err)

	tcfg := transport.DefaultConfig()
	tcfg.EnableQUIC = false
	tcfg.EnableTCP = true
	tm, err := transport.NewManager(tcfg, id)
	require.NoError(t, err)

	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	h, err := New(cfg, id, tm, table, d, WithMetrics(m))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = h.Close()
		_ = d.Close()
		_ = r.Close()
		_ = tm.Close()
	})
	return &stack{id: id, table: table, router: r, host: h, metrics: m}
}

func listenConfig() Config {
	cfg := DefaultConfig()
	cfg.ListenAddrs = []string{"tcp://127.0.0.1:0"}
	return cfg
}

func TestHost_ConnectAndPing(t *testing.T) {
	a := newStack(t, "node-a", DefaultConfig())
	b := newStack(t, "node-b", listenConfig())
	require.NoError(t, b.host.Start(context.Background()))
	require.NoError(t, a.host.Start(context.Background()))

	addrs := b.host.ListenAddrs()
	require.Len(t, addrs, 1)

	l, err := a.host.Connect(context.Background(), addrs[0], b.id)
	require.NoError(t, err)
	assert.Equal(t, b.id, l.NodeID())

	require.Eventually(t, func() bool {
		return a.table.Len() == 1 && b.table.Len() == 1
	}, 2*time.Second, 5*time.Millisecond, "双方路由表都有对端")

	fut, err := a.router.SendRequestMessage(a.router.NewRequest(&message.PingRequest{}, b.id.Routable()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	answer, err := fut.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, message.PingAnswerType, answer.ContentType())

	assert.Len(t, a.host.Links(), 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(a.metrics.Links))
	assert.Equal(t, float64(1), testutil.ToFloat64(a.metrics.Established.WithLabelValues(directionOutbound)))
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(b.metrics.Established.WithLabelValues(directionInbound)) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHost_LinkRemovedOnClose(t *testing.T) {
	a := newStack(t, "node-a", DefaultConfig())
	b := newStack(t, "node-b", listenConfig())
	require.NoError(t, b.host.Start(context.Background()))

	_, err := a.host.Connect(context.Background(), b.host.ListenAddrs()[0], "")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return b.table.Len() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, b.host.Close())
	assert.Equal(t, 0, b.table.Len())
	assert.Eventually(t, func() bool {
		return a.table.Len() == 0 && len(a.host.Links()) == 0
	}, 2*time.Second, 5*time.Millisecond, "对端关闭后移除邻居")
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(a.metrics.Links) == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHost_KnownPeers(t *testing.T) {
	b := newStack(t, "node-b", listenConfig())
	require.NoError(t, b.host.Start(context.Background()))

	cfg := DefaultConfig()
	cfg.KnownPeers = []Peer{{Addr: b.host.ListenAddrs()[0], NodeID: b.id}}
	a := newStack(t, "node-a", cfg)
	require.NoError(t, a.host.Start(context.Background()))

	assert.Eventually(t, func() bool { return a.table.Len() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, a.host.Start(context.Background()), ErrAlreadyStarted)
}

func TestHost_Errors(t *testing.T) {
	t.Run("对端标识不符", func(t *testing.T) {
		a := newStack(t, "node-a", DefaultConfig())
		b := newStack(t, "node-b", listenConfig())
		require.NoError(t, b.host.Start(context.Background()))

		_, err := a.host.Connect(context.Background(), b.host.ListenAddrs()[0], "node-c")
		assert.ErrorIs(t, err, ErrUnexpectedPeer)
		assert.Equal(t, 0, a.table.Len())
		assert.Equal(t, float64(1), testutil.ToFloat64(a.metrics.EstablishFails.WithLabelValues(directionOutbound)))
	})

	t.Run("关闭后连接", func(t *testing.T) {
		a := newStack(t, "node-a", DefaultConfig())
		require.NoError(t, a.host.Close())
		require.NoError(t, a.host.Close())

		_, err := a.host.Connect(context.Background(), "tcp://127.0.0.1:1", "")
		assert.ErrorIs(t, err, ErrHostClosed)
	})

	t.Run("监听地址无效", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ListenAddrs = []string{"tcp://localhost"}
		a := newStack(t, "node-a", cfg)
		assert.Error(t, a.host.Start(context.Background()))
	})

	t.Run("参数无效", func(t *testing.T) {
		_, err := New(DefaultConfig(), "node-a", nil, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)

		cfg := DefaultConfig()
		cfg.KnownPeers = []Peer{{}}
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}
