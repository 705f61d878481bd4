package message

import (
	"fmt"
	"sync"
)

// Registry 内容类型到解码函数的映射表
//
// 解码时从线格式读出的 message_code 决定使用哪个解码函数。
// 注册通常发生在启动阶段，查找可以并发进行。
type Registry struct {
	mu       sync.RWMutex
	decoders map[ContentType]DecodeFunc
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[ContentType]DecodeFunc)}
}

// DefaultRegistry 创建包含内置内容类型的注册表
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.decoders[ErrorType] = decodeError
	r.decoders[PingRequestType] = decodePingRequest
	r.decoders[PingAnswerType] = decodePingAnswer
	r.decoders[ConfigUpdateReqType] = decodeConfigUpdateRequest
	r.decoders[ConfigUpdateAnsType] = decodeConfigUpdateAnswer
	return r
}

// Register 注册内容类型的解码函数
func (r *Registry) Register(t ContentType, fn DecodeFunc) error {
	if fn == nil {
		return fmt.Errorf("message: nil decoder for %s", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.decoders[t]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateContentType, t)
	}
	r.decoders[t] = fn
	return nil
}

// RegisterRaw 注册按原始字节保留的内容类型
func (r *Registry) RegisterRaw(types ...ContentType) error {
	for _, t := range types {
		if err := r.Register(t, RawDecoder(t)); err != nil {
			return err
		}
	}
	return nil
}

// Lookup 查找解码函数
func (r *Registry) Lookup(t ContentType) (DecodeFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.decoders[t]
	return fn, ok
}

// Types 返回已注册的内容类型
func (r *Registry) Types() []ContentType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ContentType, 0, len(r.decoders))
	for t := range r.decoders {
		out = append(out, t)
	}
	return out
}
