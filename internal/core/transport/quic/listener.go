package quic

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/quic-go/quic-go"

	"github.com/dep2p/go-reload/pkg/interfaces"
)

// 确保实现了接口
var _ interfaces.Listener = (*Listener)(nil)

// Listener QUIC 监听器
type Listener struct {
	ql     *quic.Listener
	accept interfaces.AcceptFunc
	closed atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newListener(ql *quic.Listener, accept interfaces.AcceptFunc) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Listener{ql: ql, accept: accept, ctx: ctx, cancel: cancel}
	l.wg.Add(1)
	go l.acceptLoop()
	return l
}

// Addr 返回可拨号地址
func (l *Listener) Addr() string {
	return Scheme + "://" + l.ql.Addr().String()
}

// Close 停止监听，监听器上接受的连接随之关闭
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	l.cancel()
	err := l.ql.Close()
	l.wg.Wait()
	return err
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.ql.Accept(l.ctx)
		if err != nil {
			if !l.closed.Load() && !errors.Is(err, quic.ErrServerClosed) {
				log.Warn("接受连接失败", "addr", l.Addr(), "err", err)
			}
			return
		}
		l.wg.Add(1)
		go l.acceptStream(conn)
	}
}

// acceptStream 等待拨号方打开链路流
func (l *Listener) acceptStream(conn quic.Connection) {
	defer l.wg.Done()
	stream, err := conn.AcceptStream(l.ctx)
	if err != nil {
		log.Debug("等待链路流失败", "remote", conn.RemoteAddr(), "err", err)
		_ = conn.CloseWithError(closeCodeNormal, "no stream")
		return
	}
	log.Debug("接受 QUIC 链路", "remote", conn.RemoteAddr())
	l.accept(newStreamConn(conn, stream), conn.RemoteAddr())
}
