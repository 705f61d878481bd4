package quic

import (
	"context"
	"crypto/x509"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-reload/pkg/types"
)

func newTestTransport(t *testing.T, id string) *Transport {
	t.Helper()
	tr, err := New(types.NodeID(id), DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestTransport_DialListen(t *testing.T) {
	server := newTestTransport(t, "server")
	client := newTestTransport(t, "client")

	accepted := make(chan io.ReadWriteCloser, 1)
	ln, err := server.Listen(context.Background(), "127.0.0.1:0", func(rwc io.ReadWriteCloser, _ net.Addr) {
		accepted <- rwc
	})
	require.NoError(t, err)
	assert.Contains(t, ln.Addr(), "quic://127.0.0.1:")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := client.Dial(ctx, ln.Addr())
	require.NoError(t, err)
	defer out.Close()

	// 拨号方先写，监听方才能接受到流
	_, err = out.Write([]byte("hello"))
	require.NoError(t, err)

	var in io.ReadWriteCloser
	select {
	case in = <-accepted:
	case <-ctx.Done():
		t.Fatal("等待入站流超时")
	}
	defer in.Close()

	buf := make([]byte, 5)
	_, err = io.ReadFull(in, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	t.Run("反向写入", func(t *testing.T) {
		_, err := in.Write([]byte("world"))
		require.NoError(t, err)
		_, err = io.ReadFull(out, buf)
		require.NoError(t, err)
		assert.Equal(t, "world", string(buf))
	})

	t.Run("对端关闭后读到 EOF", func(t *testing.T) {
		require.NoError(t, out.Close())
		_, err := in.Read(buf)
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestTransport_Closed(t *testing.T) {
	tr := newTestTransport(t, "closed")
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	_, err := tr.Listen(context.Background(), "127.0.0.1:0", func(io.ReadWriteCloser, net.Addr) {})
	assert.ErrorIs(t, err, ErrTransportClosed)
	_, err = tr.Dial(context.Background(), "127.0.0.1:1")
	assert.ErrorIs(t, err, ErrTransportClosed)
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		addr    string
		want    string
		wantErr bool
	}{
		{"quic://127.0.0.1:4433", "127.0.0.1:4433", false},
		{"127.0.0.1:4433", "127.0.0.1:4433", false},
		{"[::1]:4433", "[::1]:4433", false},
		{"quic://127.0.0.1", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, err := parseAddress(tt.addr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelfSignedCertificate(t *testing.T) {
	local := types.NodeID("cert-node")
	cert, err := selfSignedCertificate(local)
	require.NoError(t, err)

	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	assert.NoError(t, verifyPeerCertificate(cert.Certificate, nil))

	found := false
	for _, ext := range parsed.Extensions {
		if ext.Id.Equal(nodeIDExtensionOID) {
			found = true
			assert.Equal(t, local.Bytes(), ext.Value)
		}
	}
	assert.True(t, found, "证书携带节点标识扩展")

	t.Run("没有证书", func(t *testing.T) {
		assert.ErrorIs(t, verifyPeerCertificate(nil, nil), ErrNoCertificate)
	})
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.KeepAlivePeriod = cfg.MaxIdleTimeout
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.MaxIncomingStreams = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
