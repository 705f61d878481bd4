package frame

// StreamDecoder 增量帧解码器
//
// 链路字节流可能被任意切分送达，Write 缓存片段，Next 按到达顺序
// 产出完整帧，不完整的帧永远不会产出。非并发安全，每条链路一个实例。
type StreamDecoder struct {
	buf        []byte
	maxPayload int
	err        error
}

// NewStreamDecoder 创建增量解码器，maxPayload <= 0 时使用 MaxPayload
func NewStreamDecoder(maxPayload int) *StreamDecoder {
	if maxPayload <= 0 || maxPayload > MaxPayload {
		maxPayload = MaxPayload
	}
	return &StreamDecoder{maxPayload: maxPayload}
}

// Write 追加收到的字节
func (d *StreamDecoder) Write(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	d.buf = append(d.buf, p...)
	return len(p), nil
}

// Next 返回下一个完整帧；没有完整帧时返回 (nil, nil)
//
// 解码错误之后解码器进入失败状态，后续调用都返回同一个错误。
// 返回帧的负载为独立副本，可跨调用保留。
func (d *StreamDecoder) Next() (*Frame, error) {
	if d.err != nil {
		return nil, d.err
	}
	f, n, err := decode(d.buf, d.maxPayload)
	if err != nil {
		d.err = err
		d.buf = nil
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	if f.Type == TypeData {
		f.Payload = append([]byte(nil), f.Payload...)
	}
	d.buf = d.buf[n:]
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return f, nil
}

// Buffered 返回尚未组成完整帧的字节数
func (d *StreamDecoder) Buffered() int {
	return len(d.buf)
}
