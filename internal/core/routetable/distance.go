package routetable

import (
	"math/big"
)

// Distance 返回两个标识的 XOR 距离
//
// 较短的标识在末尾补零后按位对齐，高位在前。
func Distance(a, b []byte) *big.Int {
	return new(big.Int).SetBytes(xorBytes(a, b))
}

// CommonPrefixLen 返回两个标识的公共前缀位数
func CommonPrefixLen(a, b []byte) int {
	return countLeadingZeros(xorBytes(a, b))
}

// xorBytes 对两个字节数组进行 XOR，结果长度取较长者
func xorBytes(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		var x, y byte
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		result[i] = x ^ y
	}
	return result
}

// countLeadingZeros 计算前导零位数
func countLeadingZeros(data []byte) int {
	zeros := 0
	for _, b := range data {
		if b == 0 {
			zeros += 8
			continue
		}
		for i := 7; i >= 0; i-- {
			if (b>>i)&1 != 0 {
				return zeros
			}
			zeros++
		}
	}
	return zeros
}
