package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/dep2p/go-reload/pkg/types"
)

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrNoRoute 目的地没有可用的下一跳
	ErrNoRoute = errors.New("router: no route to destination")

	// ErrRequestTimeout 请求在超时前没有收到应答
	ErrRequestTimeout = errors.New("router: request timeout")

	// ErrRouterClosed 路由器已关闭
	ErrRouterClosed = errors.New("router: closed")

	// ErrDuplicateTransaction 相同事务标识的请求仍在等待应答
	ErrDuplicateTransaction = errors.New("router: duplicate transaction id")

	// ErrNotRequest 内容不是请求
	ErrNotRequest = errors.New("router: content is not a request")

	// ErrWriteAborted 连接未报告写入结果就关闭了结果通道
	ErrWriteAborted = errors.New("router: write aborted")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("router: invalid config")
)

// ForwardingError 一次扇出转发中各邻居的失败原因
//
// Unwrap 返回每个邻居的原因，errors.Is 可匹配其中任意一个。
type ForwardingError struct {
	// Attempted 尝试写入的邻居数
	Attempted int

	// Failures 邻居到失败原因的映射
	Failures map[types.NodeID]error

	cause error
}

func newForwardingError(attempted int, failures map[types.NodeID]error) *ForwardingError {
	ids := make([]types.NodeID, 0, len(failures))
	for id := range failures {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var cause error
	copied := make(map[types.NodeID]error, len(failures))
	for _, id := range ids {
		copied[id] = failures[id]
		cause = multierr.Append(cause, fmt.Errorf("%s: %w", id.ShortString(), failures[id]))
	}
	return &ForwardingError{Attempted: attempted, Failures: copied, cause: cause}
}

// Error 实现 error 接口
func (e *ForwardingError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, err := range multierr.Errors(e.cause) {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("router: forward failed on %d of %d neighbors: %s",
		len(e.Failures), e.Attempted, strings.Join(parts, "; "))
}

// Unwrap 返回各邻居的失败原因
func (e *ForwardingError) Unwrap() []error {
	return multierr.Errors(e.cause)
}
