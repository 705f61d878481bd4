package websocket

import (
	"context"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T) *Transport {
	t.Helper()
	tr, err := New(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func acceptOne(t *testing.T, ch <-chan io.ReadWriteCloser) io.ReadWriteCloser {
	t.Helper()
	select {
	case rwc := <-ch:
		t.Cleanup(func() { _ = rwc.Close() })
		return rwc
	case <-time.After(2 * time.Second):
		t.Fatal("等待入站连接超时")
		return nil
	}
}

func TestTransport_ByteStream(t *testing.T) {
	tr := newTestTransport(t)
	accepted := make(chan io.ReadWriteCloser, 1)
	ln, err := tr.Listen(context.Background(), "127.0.0.1:0", func(rwc io.ReadWriteCloser, _ net.Addr) {
		accepted <- rwc
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ln.Addr(), "ws://127.0.0.1:"))
	assert.True(t, strings.HasSuffix(ln.Addr(), "/reload"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := tr.Dial(ctx, ln.Addr())
	require.NoError(t, err)
	defer out.Close()
	in := acceptOne(t, accepted)

	t.Run("多条消息拼接为字节流", func(t *testing.T) {
		for _, part := range []string{"he", "llo", " wor", "ld"} {
			_, err := out.Write([]byte(part))
			require.NoError(t, err)
		}
		buf := make([]byte, len("hello world"))
		_, err := io.ReadFull(in, buf)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(buf))
	})

	t.Run("小缓冲区分次读取", func(t *testing.T) {
		_, err := in.Write([]byte("abcdef"))
		require.NoError(t, err)
		buf := make([]byte, 4)
		n, err := out.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "abcd", string(buf[:n]))
		n, err = out.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "ef", string(buf[:n]))
	})

	t.Run("关闭后对端读到 EOF", func(t *testing.T) {
		require.NoError(t, out.Close())
		_, err := in.Read(make([]byte, 1))
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestHandler_IgnoresTextMessages(t *testing.T) {
	tr := newTestTransport(t)
	accepted := make(chan io.ReadWriteCloser, 1)
	srv := httptest.NewServer(tr.Handler(func(rwc io.ReadWriteCloser, _ net.Addr) {
		accepted <- rwc
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	in := acceptOne(t, accepted)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("ignored")))
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}))

	buf := make([]byte, 3)
	_, err = io.ReadFull(in, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, buf)
}

func TestDialURL(t *testing.T) {
	tr := newTestTransport(t)
	tests := []struct {
		addr    string
		want    string
		wantErr bool
	}{
		{"ws://127.0.0.1:8080/reload", "ws://127.0.0.1:8080/reload", false},
		{"wss://example.org/overlay", "wss://example.org/overlay", false},
		{"127.0.0.1:8080", "ws://127.0.0.1:8080/reload", false},
		{"http://127.0.0.1:8080/", "", true},
		{"ws:///reload", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, err := tr.dialURL(tt.addr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransport_Closed(t *testing.T) {
	tr := newTestTransport(t)
	require.NoError(t, tr.Close())

	_, err := tr.Listen(context.Background(), "127.0.0.1:0", func(io.ReadWriteCloser, net.Addr) {})
	assert.ErrorIs(t, err, ErrTransportClosed)
	_, err = tr.Dial(context.Background(), "ws://127.0.0.1:1/reload")
	assert.ErrorIs(t, err, ErrTransportClosed)

	_, err = New(Config{Path: "reload"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
