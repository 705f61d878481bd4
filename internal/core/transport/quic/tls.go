package quic

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
	"time"

	"github.com/dep2p/go-reload/pkg/types"
)

// ALPN 链路协议标识
const ALPN = "reload-link"

// nodeIDExtensionOID 证书扩展中存储节点标识的 OID
var nodeIDExtensionOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 53594, 2, 1}

// certValidity 自签名证书有效期
const certValidity = 180 * 24 * time.Hour

// NewTLSConfig 生成服务端与客户端 TLS 配置
//
// 每次调用生成新的 Ed25519 密钥和自签名证书。没有 CA 可供校验，
// 标准校验被关闭，VerifyPeerCertificate 只检查证书格式与有效期。
func NewTLSConfig(local types.NodeID) (server, client *tls.Config, err error) {
	cert, err := selfSignedCertificate(local)
	if err != nil {
		return nil, nil, err
	}

	server = &tls.Config{
		Certificates:          []tls.Certificate{cert},
		NextProtos:            []string{ALPN},
		MinVersion:            tls.VersionTLS13,
		ClientAuth:            tls.RequireAnyClientCert,
		InsecureSkipVerify:    true, //nolint:gosec // 自签名证书，由 verifyPeerCertificate 检查
		VerifyPeerCertificate: verifyPeerCertificate,
	}
	client = server.Clone()
	client.ClientAuth = tls.NoClientCert
	return server, client, nil
}

func selfSignedCertificate(local types.NodeID) (tls.Certificate, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("生成密钥失败: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("生成序列号失败: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"go-reload"},
			CommonName:   "reload node " + local.ShortString(),
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		ExtraExtensions: []pkix.Extension{
			{Id: nodeIDExtensionOID, Critical: false, Value: local.Bytes()},
		},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, pub, priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("创建证书失败: %w", err)
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}, nil
}

// verifyPeerCertificate 检查对端证书格式与有效期
func verifyPeerCertificate(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return ErrNoCertificate
	}
	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("解析证书失败: %w", err)
	}
	now := time.Now()
	if now.Before(cert.NotBefore) {
		return fmt.Errorf("证书尚未生效: NotBefore=%v", cert.NotBefore)
	}
	if now.After(cert.NotAfter) {
		return fmt.Errorf("证书已过期: NotAfter=%v", cert.NotAfter)
	}
	return nil
}

// ExtractNodeID 从 TLS 连接状态中读取证书携带的节点标识
func ExtractNodeID(state tls.ConnectionState) (types.NodeID, error) {
	if len(state.PeerCertificates) == 0 {
		return types.EmptyNodeID, ErrNoCertificate
	}
	for _, ext := range state.PeerCertificates[0].Extensions {
		if ext.Id.Equal(nodeIDExtensionOID) {
			return types.NodeIDFromBytes(ext.Value)
		}
	}
	return types.EmptyNodeID, fmt.Errorf("证书没有节点标识扩展")
}
