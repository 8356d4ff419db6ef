// 包 common 包含各种辅助函数。
package common

import (
	"strings"
)

// StripHexPrefix 去掉 s 开头的 "0x" 或 "0X"，并裁掉首尾空白。
// abigen 读取的 --bin 文件要求不带前缀的十六进制。
func StripHexPrefix(s string) string {
	s = strings.TrimSpace(s)
	if has0xPrefix(s) {
		return s[2:]
	}
	return s
}

// has0xPrefix 验证 str 以 '0x' 或 '0X' 开头。
func has0xPrefix(str string) bool {
	return len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X')
}
