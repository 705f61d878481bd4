package message

import (
	"errors"
	"fmt"
)

// 消息编解码错误
var (
	// ErrTruncatedPayload 负载短于头部声明的长度
	ErrTruncatedPayload = errors.New("message: truncated payload")

	// ErrTrailingData 安全块之后存在多余字节
	ErrTrailingData = errors.New("message: trailing data after security block")

	// ErrDuplicateContentType 内容类型重复注册
	ErrDuplicateContentType = errors.New("message: content type already registered")

	// ErrNilContent 消息缺少内容
	ErrNilContent = errors.New("message: nil content")

	// ErrUnsupportedAlgorithm 安全块中的哈希或签名算法未定义
	ErrUnsupportedAlgorithm = errors.New("message: unsupported algorithm")
)

// ============================================================================
//                              协议错误码
// ============================================================================

// ErrorCode 协议错误码，出现在错误应答中
type ErrorCode uint16

// 协议错误码取值
const (
	ErrorForbidden                   ErrorCode = 2
	ErrorNotFound                    ErrorCode = 3
	ErrorRequestTimeout              ErrorCode = 4
	ErrorGenerationCounterTooLow     ErrorCode = 5
	ErrorIncompatibleWithOverlay     ErrorCode = 6
	ErrorUnsupportedForwardingOption ErrorCode = 7
	ErrorDataTooLarge                ErrorCode = 8
	ErrorDataTooOld                  ErrorCode = 9
	ErrorTTLExceeded                 ErrorCode = 10
	ErrorMessageTooLarge             ErrorCode = 11
	ErrorUnknownKind                 ErrorCode = 12
	ErrorUnknownExtension            ErrorCode = 13
	ErrorResponseTooLarge            ErrorCode = 14
	ErrorConfigTooOld                ErrorCode = 15
	ErrorConfigTooNew                ErrorCode = 16
	ErrorInProgress                  ErrorCode = 17
	ErrorInvalidMessage              ErrorCode = 20
)

var errorCodeNames = map[ErrorCode]string{
	ErrorForbidden:                   "Forbidden",
	ErrorNotFound:                    "NotFound",
	ErrorRequestTimeout:              "RequestTimeout",
	ErrorGenerationCounterTooLow:     "GenerationCounterTooLow",
	ErrorIncompatibleWithOverlay:     "IncompatibleWithOverlay",
	ErrorUnsupportedForwardingOption: "UnsupportedForwardingOption",
	ErrorDataTooLarge:                "DataTooLarge",
	ErrorDataTooOld:                  "DataTooOld",
	ErrorTTLExceeded:                 "TTLExceeded",
	ErrorMessageTooLarge:             "MessageTooLarge",
	ErrorUnknownKind:                 "UnknownKind",
	ErrorUnknownExtension:            "UnknownExtension",
	ErrorResponseTooLarge:            "ResponseTooLarge",
	ErrorConfigTooOld:                "ConfigTooOld",
	ErrorConfigTooNew:                "ConfigTooNew",
	ErrorInProgress:                  "InProgress",
	ErrorInvalidMessage:              "InvalidMessage",
}

// String 返回错误码名称
func (c ErrorCode) String() string {
	if n, ok := errorCodeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("ErrorCode(%d)", uint16(c))
}

// ProtocolError 可以用错误应答告知发送方的失败
//
// 解码或处理中遇到的其他错误只在本地记录并丢弃消息。
type ProtocolError struct {
	Code ErrorCode
	Info string
}

// NewProtocolError 创建协议错误
func NewProtocolError(code ErrorCode, format string, args ...any) *ProtocolError {
	return &ProtocolError{Code: code, Info: fmt.Sprintf(format, args...)}
}

// Error 实现 error 接口
func (e *ProtocolError) Error() string {
	if e.Info == "" {
		return "message: protocol error " + e.Code.String()
	}
	return "message: protocol error " + e.Code.String() + ": " + e.Info
}

// Content 转换为错误应答内容
func (e *ProtocolError) Content() *ErrorContent {
	return &ErrorContent{Code: e.Code, Info: []byte(e.Info)}
}

// AsProtocolError 从错误链中提取协议错误
func AsProtocolError(err error) (*ProtocolError, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
