package codec

// Width 定长整数字段的字节宽度
type Width int

// 支持的字段宽度
const (
	U8  Width = 1
	U16 Width = 2
	U24 Width = 3
	U32 Width = 4
	U64 Width = 8
)

// MaxU24 24 位无符号整数的最大值
const MaxU24 = 1<<24 - 1

// Max 返回该宽度可表示的最大值
func (w Width) Max() uint64 {
	if w >= U64 {
		return ^uint64(0)
	}
	return 1<<(uint(w)*8) - 1
}

// Valid 检查宽度是否受支持
func (w Width) Valid() bool {
	switch w {
	case U8, U16, U24, U32, U64:
		return true
	}
	return false
}

// putUint 按宽度大端写入 v
func putUint(b []byte, w Width, v uint64) {
	for i := int(w) - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

// getUint 按宽度大端读取
func getUint(b []byte, w Width) uint64 {
	var v uint64
	for i := 0; i < int(w); i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
