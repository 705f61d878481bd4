package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-reload/pkg/types"
)

func env(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3*time.Second, cfg.Router.RequestTimeout.Duration())
	assert.True(t, cfg.Transport.EnableQUIC)
	assert.False(t, cfg.Transport.EnableTCP)
	assert.Equal(t, 3, cfg.RouteTable.K)
	assert.True(t, cfg.Dispatcher.EnablePing)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"覆盖网络名为空", func(c *Config) { c.Node.OverlayName = "" }},
		{"节点标识无效", func(c *Config) { c.Node.ID = "0OIl" }},
		{"请求超时为零", func(c *Config) { c.Router.RequestTimeout = 0 }},
		{"初始跳数为零", func(c *Config) { c.Router.InitialTTL = 0 }},
		{"写队列为零", func(c *Config) { c.Link.WriteQueueSize = 0 }},
		{"负载超限", func(c *Config) { c.Link.MaxPayload = maxFramePayload + 1 }},
		{"没有传输", func(c *Config) { c.Transport.EnableQUIC = false }},
		{"保活不小于空闲超时", func(c *Config) { c.Transport.QUIC.KeepAlivePeriod = c.Transport.QUIC.MaxIdleTimeout }},
		{"WebSocket 路径无效", func(c *Config) {
			c.Transport.EnableWebSocket = true
			c.Transport.WebSocket.Path = "reload"
		}},
		{"K 为零", func(c *Config) { c.RouteTable.K = 0 }},
		{"工作池为零", func(c *Config) { c.Dispatcher.Workers = 0 }},
		{"指标地址无效", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Addr = "nope"
		}},
		{"已知邻居地址为空", func(c *Config) { c.KnownPeers = []KnownPeer{{}} }},
		{"日志级别无效", func(c *Config) { c.LogLevel = "router=loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrNilConfig)
}

func TestNodeConfig(t *testing.T) {
	t.Run("未配置时随机生成", func(t *testing.T) {
		a, err := DefaultNodeConfig().NodeID()
		require.NoError(t, err)
		b, err := DefaultNodeConfig().NodeID()
		require.NoError(t, err)
		assert.Len(t, a.Bytes(), types.NodeIDLength)
		assert.NotEqual(t, a, b)
	})

	t.Run("解析配置的标识", func(t *testing.T) {
		id := types.RandomNodeID()
		cfg := DefaultNodeConfig()
		cfg.ID = id.String()
		got, err := cfg.NodeID()
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("覆盖网络哈希", func(t *testing.T) {
		cfg := DefaultNodeConfig()
		assert.Equal(t, types.OverlayHash(cfg.OverlayName), cfg.OverlayHash())
	})
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, d.UnmarshalJSON([]byte(`1000000`)))
	assert.Equal(t, time.Millisecond, d.Duration())

	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))

	out, err := Duration(3 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"3s"`, string(out))
}

func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"node": {"overlay_name": "test.overlay", "listen_addrs": ["tcp://127.0.0.1:0"]},
		"router": {"request_timeout": "500ms"},
		"transport": {"enable_tcp": true},
		"known_peers": [{"addr": "tcp://10.0.0.2:6084"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "test.overlay", cfg.Node.OverlayName)
	assert.Equal(t, []string{"tcp://127.0.0.1:0"}, cfg.Node.ListenAddrs)
	assert.Equal(t, 500*time.Millisecond, cfg.Router.RequestTimeout.Duration())
	assert.Equal(t, 1024, cfg.Router.ExpiredCacheSize, "未出现的字段保持默认值")
	assert.True(t, cfg.Transport.EnableTCP)
	assert.True(t, cfg.Transport.EnableQUIC)
	require.Len(t, cfg.KnownPeers, 1)
	require.NoError(t, cfg.Validate())

	_, err = FromJSON([]byte(`{"router": {"request_timeout": "later"}}`))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "node.json")
	cfg := NewConfig()
	cfg.Node.ID = types.RandomNodeID().String()
	cfg.Metrics.Enabled = true
	cfg.KnownPeers = []KnownPeer{{Addr: "quic://10.0.0.3:6084"}}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Run("覆盖字段", func(t *testing.T) {
		cfg := NewConfig()
		err := cfg.ApplyEnv(env(map[string]string{
			"RELOAD_OVERLAY":         "env.overlay",
			"RELOAD_LISTEN":          "tcp://0.0.0.0:7000, ws://0.0.0.0:7001",
			"RELOAD_PEERS":           "tcp://10.0.0.2:7000,,tcp://10.0.0.3:7000",
			"RELOAD_REQUEST_TIMEOUT": "750ms",
			"RELOAD_ENABLE_TCP":      "true",
			"RELOAD_WORKERS":         "8",
			"RELOAD_METRICS_ADDR":    "127.0.0.1:9999",
			"RELOAD_LOG_LEVEL":       "router=debug",
		}))
		require.NoError(t, err)

		assert.Equal(t, "env.overlay", cfg.Node.OverlayName)
		assert.Equal(t, []string{"tcp://0.0.0.0:7000", "ws://0.0.0.0:7001"}, cfg.Node.ListenAddrs)
		assert.Equal(t, []KnownPeer{{Addr: "tcp://10.0.0.2:7000"}, {Addr: "tcp://10.0.0.3:7000"}}, cfg.KnownPeers)
		assert.Equal(t, 750*time.Millisecond, cfg.Router.RequestTimeout.Duration())
		assert.True(t, cfg.Transport.EnableTCP)
		assert.Equal(t, 8, cfg.Dispatcher.Workers)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "127.0.0.1:9999", cfg.Metrics.Addr)
		assert.Equal(t, "router=debug", cfg.LogLevel)
	})

	t.Run("取值无效", func(t *testing.T) {
		for key, v := range map[string]string{
			"RELOAD_ENABLE_TCP":      "maybe",
			"RELOAD_WORKERS":         "many",
			"RELOAD_REQUEST_TIMEOUT": "soon",
		} {
			err := NewConfig().ApplyEnv(env(map[string]string{key: v}))
			assert.ErrorIs(t, err, ErrInvalidEnv, key)
		}
	})

	t.Run("未设置时不变", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, cfg.ApplyEnv(env(nil)))
		assert.Equal(t, NewConfig(), cfg)
	})
}

func TestClone(t *testing.T) {
	cfg := NewConfig()
	cfg.KnownPeers = []KnownPeer{{Addr: "a"}}
	c := cfg.Clone()
	c.Node.ListenAddrs[0] = "changed"
	c.KnownPeers[0].Addr = "b"
	assert.Equal(t, "quic://0.0.0.0:6084", cfg.Node.ListenAddrs[0])
	assert.Equal(t, "a", cfg.KnownPeers[0].Addr)
}
