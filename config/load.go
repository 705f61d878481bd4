package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "RELOAD_"

// FromJSON 从 JSON 数据创建配置，未出现的字段保持默认值
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Load 从 JSON 文件加载配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return FromJSON(data)
}

// ToJSON 序列化为缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Save 写入 JSON 文件，必要时创建目录
func (c *Config) Save(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// ============================================================================
//                              环境变量覆盖
// ============================================================================

// LookupFunc 环境变量查找函数，与 os.LookupEnv 签名一致
type LookupFunc func(key string) (string, bool)

// envOverride 单个环境变量的覆盖规则
type envOverride struct {
	key   string
	apply func(c *Config, v string) error
}

var envOverrides = []envOverride{
	{"NODE_ID", func(c *Config, v string) error { c.Node.ID = v; return nil }},
	{"OVERLAY", func(c *Config, v string) error { c.Node.OverlayName = v; return nil }},
	{"LISTEN", func(c *Config, v string) error { c.Node.ListenAddrs = splitList(v); return nil }},
	{"PEERS", func(c *Config, v string) error {
		c.KnownPeers = c.KnownPeers[:0]
		for _, addr := range splitList(v) {
			c.KnownPeers = append(c.KnownPeers, KnownPeer{Addr: addr})
		}
		return nil
	}},
	{"REQUEST_TIMEOUT", func(c *Config, v string) error { return c.Router.RequestTimeout.Set(v) }},
	{"ENABLE_QUIC", func(c *Config, v string) error { return setBool(&c.Transport.EnableQUIC, v) }},
	{"ENABLE_TCP", func(c *Config, v string) error { return setBool(&c.Transport.EnableTCP, v) }},
	{"ENABLE_WEBSOCKET", func(c *Config, v string) error { return setBool(&c.Transport.EnableWebSocket, v) }},
	{"WORKERS", func(c *Config, v string) error { return setInt(&c.Dispatcher.Workers, v) }},
	{"METRICS_ADDR", func(c *Config, v string) error {
		c.Metrics.Addr = v
		c.Metrics.Enabled = v != ""
		return nil
	}},
	{"LOG_FILE", func(c *Config, v string) error { c.LogFile = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = v; return nil }},
}

// ApplyEnv 用 RELOAD_* 环境变量覆盖配置
//
// 支持 RELOAD_NODE_ID、RELOAD_OVERLAY、RELOAD_LISTEN、RELOAD_PEERS（逗号分隔）、
// RELOAD_REQUEST_TIMEOUT、RELOAD_ENABLE_QUIC/TCP/WEBSOCKET、RELOAD_WORKERS、
// RELOAD_METRICS_ADDR、RELOAD_LOG_FILE、RELOAD_LOG_LEVEL。
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if c == nil {
		return ErrNilConfig
	}
	for _, o := range envOverrides {
		v, ok := lookup(EnvPrefix + o.key)
		if !ok {
			continue
		}
		if err := o.apply(c, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalidEnv, EnvPrefix, o.key, err)
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}
