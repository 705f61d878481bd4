package link

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-reload/pkg/lib/codec"
	"github.com/dep2p/go-reload/pkg/types"
)

// handshake 交换节点标识
//
// 双方同时写出本端标识并读取对端标识，写和读并发进行，
// 同步管道（net.Pipe）上也不会互相等待。超时或 ctx 取消时关闭字节流。
func handshake(ctx context.Context, rwc io.ReadWriteCloser, local types.NodeID, timeout time.Duration) (types.NodeID, error) {
	if local.IsEmpty() {
		return types.EmptyNodeID, fmt.Errorf("%w: empty local node id", ErrHandshake)
	}
	w := codec.NewWriter(1 + len(local))
	if err := w.PutField(codec.U8, local.Bytes()); err != nil {
		return types.EmptyNodeID, fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(hctx, func() { _ = rwc.Close() })

	var remote types.NodeID
	var g errgroup.Group
	g.Go(func() error {
		_, err := rwc.Write(w.Bytes())
		return err
	})
	g.Go(func() error {
		var n [1]byte
		if _, err := io.ReadFull(rwc, n[:]); err != nil {
			return err
		}
		b := make([]byte, n[0])
		if _, err := io.ReadFull(rwc, b); err != nil {
			return err
		}
		id, err := types.NodeIDFromBytes(b)
		if err != nil {
			return err
		}
		remote = id
		return nil
	})
	err := g.Wait()
	if !stop() {
		return types.EmptyNodeID, fmt.Errorf("%w: %v", ErrHandshake, hctx.Err())
	}
	if err != nil {
		return types.EmptyNodeID, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	return remote, nil
}
