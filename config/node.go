package config

import (
	"fmt"

	"github.com/dep2p/go-reload/pkg/types"
)

// NodeConfig 节点配置
type NodeConfig struct {
	// ID 节点标识（Base58），为空时每次启动随机生成
	ID string `json:"id,omitempty"`

	// OverlayName 覆盖网络名称，其哈希写入每条消息的头部
	OverlayName string `json:"overlay_name"`

	// ListenAddrs 监听地址，前缀选择传输；无前缀时使用默认传输
	ListenAddrs []string `json:"listen_addrs"`
}

// DefaultNodeConfig 返回默认节点配置
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		OverlayName: "overlay.reload.local",
		ListenAddrs: []string{"quic://0.0.0.0:6084"},
	}
}

// Validate 验证节点配置
func (c NodeConfig) Validate() error {
	if c.OverlayName == "" {
		return fmt.Errorf("%w: empty overlay name", ErrInvalidConfig)
	}
	if c.ID != "" {
		if _, err := types.ParseNodeID(c.ID); err != nil {
			return fmt.Errorf("%w: node id: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// NodeID 返回配置的节点标识，未配置时返回随机标识
func (c NodeConfig) NodeID() (types.NodeID, error) {
	if c.ID == "" {
		return types.RandomNodeID(), nil
	}
	return types.ParseNodeID(c.ID)
}

// OverlayHash 返回覆盖网络哈希
func (c NodeConfig) OverlayHash() uint32 {
	return types.OverlayHash(c.OverlayName)
}
