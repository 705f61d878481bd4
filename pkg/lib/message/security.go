package message

import (
	"fmt"

	"github.com/dep2p/go-reload/pkg/lib/codec"
)

// CertificateType 证书类型
type CertificateType uint8

// 证书类型取值
const (
	CertificateX509 CertificateType = 0
)

// GenericCertificate 安全块中携带的证书
//
//	type u8 | certificate <u16>
type GenericCertificate struct {
	Type        CertificateType
	Certificate []byte
}

// HashAlgorithm 哈希算法
type HashAlgorithm uint8

// 哈希算法取值
const (
	HashNone   HashAlgorithm = 0
	HashMD5    HashAlgorithm = 1
	HashSHA1   HashAlgorithm = 2
	HashSHA224 HashAlgorithm = 3
	HashSHA256 HashAlgorithm = 4
	HashSHA384 HashAlgorithm = 5
	HashSHA512 HashAlgorithm = 6
)

// Valid 判断是否为已定义的哈希算法
func (a HashAlgorithm) Valid() bool {
	return a <= HashSHA512
}

// SignatureAlgorithm 签名算法
type SignatureAlgorithm uint8

// 签名算法取值
const (
	SignatureAnonymous SignatureAlgorithm = 0
	SignatureRSA       SignatureAlgorithm = 1
	SignatureDSA       SignatureAlgorithm = 2
	SignatureECDSA     SignatureAlgorithm = 3
)

// Valid 判断是否为已定义的签名算法
func (a SignatureAlgorithm) Valid() bool {
	return a <= SignatureECDSA
}

// String 返回算法名称
func (a SignatureAlgorithm) String() string {
	switch a {
	case SignatureAnonymous:
		return "ANONYMOUS"
	case SignatureRSA:
		return "RSA"
	case SignatureDSA:
		return "DSA"
	case SignatureECDSA:
		return "ECDSA"
	default:
		return fmt.Sprintf("SignatureAlgorithm(%d)", uint8(a))
	}
}

// SignerIdentityType 签名者身份类型
type SignerIdentityType uint8

// 签名者身份类型取值
const (
	IdentityCertHash     SignerIdentityType = 1
	IdentityCertHashNode SignerIdentityType = 2
	IdentityNone         SignerIdentityType = 3
)

// SignerIdentity 签名者身份，值按原始字节保留，由签名组件解释
//
//	identity_type u8 | length u16 | identity
type SignerIdentity struct {
	Type  SignerIdentityType
	Value []byte
}

// Signature 签名
//
//	hash u8 | signature u8 | identity | signature_value <u16>
type Signature struct {
	Hash      HashAlgorithm
	Algorithm SignatureAlgorithm
	Identity  SignerIdentity
	Value     []byte
}

// SecurityBlock 消息末尾的安全块
//
//	certificates <u16> | signature
type SecurityBlock struct {
	Certificates []GenericCertificate
	Signature    Signature
}

// AnonymousSecurityBlock 返回未签名的安全块
func AnonymousSecurityBlock() *SecurityBlock {
	return &SecurityBlock{
		Signature: Signature{
			Hash:      HashNone,
			Algorithm: SignatureAnonymous,
			Identity:  SignerIdentity{Type: IdentityNone},
		},
	}
}

// Encode 编码安全块
func (s *SecurityBlock) Encode(w *codec.Writer) error {
	certs := w.AllocateField(codec.U16)
	for _, c := range s.Certificates {
		w.PutUint8(uint8(c.Type))
		if err := w.PutField(codec.U16, c.Certificate); err != nil {
			return err
		}
	}
	if err := certs.UpdateDataLength(); err != nil {
		return err
	}

	sig := s.Signature
	w.PutUint8(uint8(sig.Hash))
	w.PutUint8(uint8(sig.Algorithm))
	w.PutUint8(uint8(sig.Identity.Type))
	if err := w.PutField(codec.U16, sig.Identity.Value); err != nil {
		return err
	}
	return w.PutField(codec.U16, sig.Value)
}

// DecodeSecurityBlock 解码安全块
func DecodeSecurityBlock(r *codec.Reader) (*SecurityBlock, error) {
	certs, err := r.ReadField(codec.U16)
	if err != nil {
		return nil, fmt.Errorf("certificates: %w", err)
	}
	s := &SecurityBlock{}
	for certs.Len() > 0 {
		t, err := certs.ReadUint8()
		if err != nil {
			return nil, err
		}
		b, err := certs.ReadFieldBytes(codec.U16)
		if err != nil {
			return nil, fmt.Errorf("certificate: %w", err)
		}
		s.Certificates = append(s.Certificates, GenericCertificate{Type: CertificateType(t), Certificate: b})
	}

	hash, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	if !HashAlgorithm(hash).Valid() {
		return nil, fmt.Errorf("%w: hash %d", ErrUnsupportedAlgorithm, hash)
	}
	alg, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	if !SignatureAlgorithm(alg).Valid() {
		return nil, fmt.Errorf("%w: signature %d", ErrUnsupportedAlgorithm, alg)
	}
	idType, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("signer identity: %w", err)
	}
	idValue, err := r.ReadFieldBytes(codec.U16)
	if err != nil {
		return nil, fmt.Errorf("signer identity: %w", err)
	}
	value, err := r.ReadFieldBytes(codec.U16)
	if err != nil {
		return nil, fmt.Errorf("signature value: %w", err)
	}
	s.Signature = Signature{
		Hash:      HashAlgorithm(hash),
		Algorithm: SignatureAlgorithm(alg),
		Identity:  SignerIdentity{Type: SignerIdentityType(idType), Value: idValue},
		Value:     value,
	}
	return s, nil
}
