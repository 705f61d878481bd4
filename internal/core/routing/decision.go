// Package routing 实现入站消息的路由判定
//
// 判定只解释路由表协作者给出的结果，不维护任何拓扑状态。
package routing

import (
	"fmt"

	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/lib/header"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// Action 路由动作
type Action int

const (
	// ActionDrop 丢弃并（对请求）回复错误应答
	ActionDrop Action = iota
	// ActionDropSilent 丢弃且不产生任何应答，用于应答/错误消息，避免错误应答循环
	ActionDropSilent
	// ActionForward 转发给下一跳
	ActionForward
	// ActionHandle 交给本地内容处理
	ActionHandle
)

// String 返回动作名称
func (a Action) String() string {
	switch a {
	case ActionDrop:
		return "DROP"
	case ActionDropSilent:
		return "DROP_SILENT"
	case ActionForward:
		return "FORWARD"
	case ActionHandle:
		return "HANDLE"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Decision 路由判定结果
type Decision struct {
	Action Action

	// ErrorCode ActionDrop 时建议回复的错误码
	ErrorCode message.ErrorCode

	// Pop 转发前需要弹出已到达的目的地（本节点位于源路由中间）
	Pop bool

	// Reason 日志用说明
	Reason string
}

// Decider 路由判定器
type Decider struct {
	local       types.NodeID
	table       interfaces.RoutingTable
	overlayHash uint32
}

// NewDecider 创建路由判定器
func NewDecider(local types.NodeID, overlayHash uint32, table interfaces.RoutingTable) *Decider {
	return &Decider{local: local, table: table, overlayHash: overlayHash}
}

// Local 返回本节点标识
func (d *Decider) Local() types.NodeID {
	return d.local
}

// Decide 对已解码头部的入站消息作出路由判定
//
// ct 为负载中的内容类型，用于区分 DROP 与 DROP_SILENT。
func (d *Decider) Decide(h *header.Header, ct message.ContentType) Decision {
	if h.TTL == 0 {
		return d.drop(ct, message.ErrorTTLExceeded, "ttl exceeded")
	}
	if h.OverlayHash != d.overlayHash {
		return d.drop(ct, message.ErrorIncompatibleWithOverlay,
			fmt.Sprintf("overlay hash %#x", h.OverlayHash))
	}
	if o, ok := h.UnknownCriticalOption(); ok {
		return d.drop(ct, message.ErrorUnsupportedForwardingOption,
			fmt.Sprintf("forwarding option %d", o.Type))
	}

	dest, ok := h.DestinationID()
	if !ok {
		return d.drop(ct, message.ErrorInvalidMessage, "empty destination list")
	}

	local, known := d.isLocal(dest)
	if !known {
		return d.drop(ct, message.ErrorInvalidMessage, "destination type "+dest.Type.String())
	}
	if local {
		if len(h.DestinationList) > 1 {
			return Decision{Action: ActionForward, Pop: true, Reason: "source route hop"}
		}
		return Decision{Action: ActionHandle, Reason: "local destination"}
	}

	if len(d.table.NextHops(dest)) == 0 {
		return d.drop(ct, message.ErrorNotFound, "no next hop for "+dest.String())
	}
	return Decision{Action: ActionForward, Reason: "next hop available"}
}

// isLocal 判断目的地是否指向本节点，known 为 false 表示类型标签未知
func (d *Decider) isLocal(dest types.RoutableID) (local bool, known bool) {
	switch dest.Type {
	case types.DestinationNode:
		return types.NodeID(dest.ID) == d.local, true
	case types.DestinationResource, types.DestinationOpaque, types.DestinationCompressed:
		if rc, ok := d.table.(interfaces.ResponsibilityChecker); ok {
			return rc.Responsible(dest), true
		}
		return false, true
	default:
		return false, false
	}
}

// drop 应答与错误消息静默丢弃，请求丢弃并回复错误
func (d *Decider) drop(ct message.ContentType, code message.ErrorCode, reason string) Decision {
	if ct.IsAnswer() {
		return Decision{Action: ActionDropSilent, ErrorCode: code, Reason: reason}
	}
	return Decision{Action: ActionDrop, ErrorCode: code, Reason: reason}
}
