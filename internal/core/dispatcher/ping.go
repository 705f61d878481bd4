package dispatcher

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"

	"github.com/dep2p/go-reload/pkg/interfaces"
	"github.com/dep2p/go-reload/pkg/lib/message"
	"github.com/dep2p/go-reload/pkg/types"
)

// PingHandler 内置 Ping 处理器，回复随机响应标识与当前毫秒时间
type PingHandler struct {
	local types.NodeID
	now   func() time.Time
}

var _ interfaces.ContentHandler = (*PingHandler)(nil)

// NewPingHandler 创建 Ping 处理器
func NewPingHandler(local types.NodeID) *PingHandler {
	return &PingHandler{local: local, now: time.Now}
}

// HandleContent 实现 interfaces.ContentHandler
func (p *PingHandler) HandleContent(_ context.Context, req *message.Message) (message.Content, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return nil, err
	}
	log.Debug("回复 Ping", "local", p.local.ShortString(), "txid", txid(req.Header))
	return &message.PingAnswer{
		ResponseID: binary.BigEndian.Uint64(b[:]),
		Time:       uint64(p.now().UnixMilli()),
	}, nil
}
