package quic

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/quic-go/quic-go"
)

// 应用关闭码
const (
	closeCodeNormal quic.ApplicationErrorCode = 0
	streamCodeReset quic.StreamErrorCode      = 0
)

// 确保实现了接口
var _ io.ReadWriteCloser = (*streamConn)(nil)

// streamConn 把 QUIC 连接上的一条双向流适配为字节流
//
// 关闭字节流即关闭整个连接，每个连接只承载一条链路。
type streamConn struct {
	conn   quic.Connection
	stream quic.Stream

	closeOnce sync.Once
	closeErr  error
}

func newStreamConn(conn quic.Connection, stream quic.Stream) *streamConn {
	return &streamConn{conn: conn, stream: stream}
}

// Read 从流中读取
func (c *streamConn) Read(p []byte) (int, error) {
	n, err := c.stream.Read(p)
	return n, normalize(err)
}

// Write 向流写入
func (c *streamConn) Write(p []byte) (int, error) {
	n, err := c.stream.Write(p)
	return n, normalize(err)
}

// Close 关闭流和连接
func (c *streamConn) Close() error {
	c.closeOnce.Do(func() {
		c.stream.CancelRead(streamCodeReset)
		_ = c.stream.Close()
		c.closeErr = c.conn.CloseWithError(closeCodeNormal, "link closed")
	})
	return c.closeErr
}

// RemoteAddr 返回对端地址
func (c *streamConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// LocalAddr 返回本端地址
func (c *streamConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// normalize 把对端正常关闭映射为 io.EOF
func normalize(err error) error {
	if err == nil {
		return nil
	}
	var appErr *quic.ApplicationError
	if errors.As(err, &appErr) && appErr.ErrorCode == closeCodeNormal {
		return io.EOF
	}
	var streamErr *quic.StreamError
	if errors.As(err, &streamErr) && streamErr.ErrorCode == streamCodeReset {
		return io.EOF
	}
	return err
}
