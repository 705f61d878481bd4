package frame

// AckWindow 已接收序列号的选择性确认窗口
//
// 对序列号 ackSeq 的 ACK，位图第 i 位对应序列号 ackSeq-31+i，
// 最高位（i=31）即 ackSeq 本身。
type AckWindow struct {
	highest uint32
	mask    uint32
	started bool
}

// Record 记录收到的序列号
func (w *AckWindow) Record(seq uint32) {
	if !w.started {
		w.started = true
		w.highest = seq
		w.mask = 1 << 31
		return
	}
	diff := int32(seq - w.highest)
	switch {
	case diff > 0:
		if diff >= 32 {
			w.mask = 0
		} else {
			w.mask >>= uint(diff)
		}
		w.highest = seq
		w.mask |= 1 << 31
	case diff > -32:
		w.mask |= 1 << uint(31+diff)
	}
}

// Mask 返回以 ackSeq 为基准的接收位图
func (w *AckWindow) Mask(ackSeq uint32) uint32 {
	if !w.started {
		return 0
	}
	diff := int32(ackSeq - w.highest)
	switch {
	case diff == 0:
		return w.mask
	case diff > 0:
		if diff >= 32 {
			return 0
		}
		return w.mask >> uint(diff)
	default:
		if diff <= -32 {
			return 0
		}
		return w.mask << uint(-diff)
	}
}

// Highest 返回已记录的最大序列号
func (w *AckWindow) Highest() (uint32, bool) {
	return w.highest, w.started
}

// Acked 返回 ACK 位图确认的序列号
func Acked(ackSeq uint32, mask uint32) []uint32 {
	var out []uint32
	for i := 0; i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			out = append(out, ackSeq-31+uint32(i))
		}
	}
	return out
}
