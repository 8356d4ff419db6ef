package common

import (
	"fmt"

	"abiwasm/common/hexutil"

	"golang.org/x/crypto/sha3"
)

// HashLength 是哈希的预期长度
const HashLength = 32

// Hash 表示任意数据的 32 字节 Keccak256 哈希。
type Hash [HashLength]byte

// Keccak256Hash 计算输入数据的 Keccak256 哈希。
// 生成器模块用它做指纹，便于在日志里区分不同版本的 abigen.wasm。
func Keccak256Hash(data ...[]byte) (h Hash) {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// Hex 将哈希值转换为十六进制字符串。
func (h Hash) Hex() string { return hexutil.Encode(h[:]) }

// TerminalString 实现 log.TerminalStringer，为控制台日志输出格式化一个短字符串。
func (h Hash) TerminalString() string {
	return fmt.Sprintf("%x..%x", h[:3], h[29:])
}

// String 实现了 stringer 接口，写入日志文件时使用完整形式。
func (h Hash) String() string {
	return h.Hex()
}

