// 包 artifact 识别合约产物文件，并把它们规范化为生成器可以消费的记录。
//
// 支持三种输入：
//   - Hardhat 风格的完整产物（contractName、sourceName、abi、bytecode）
//   - 只有 ABI 的片段：裸数组，或带 abi 字段（可选 bytecode）的对象，例如 Foundry 的 out/*.json
//   - solc --combined-json 的输出，一个文件包含多个合约
package artifact

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"abiwasm/common"
)

// 完整产物的字段名。
const (
	nameField     = "contractName"
	originField   = "sourceName"
	abiField      = "abi"
	bytecodeField = "bytecode"
)

// Kind 区分产物是显式声明的完整产物，还是从 ABI 片段推断出来的。
type Kind int

const (
	Full Kind = iota
	Inferred
)

func (k Kind) String() string {
	switch k {
	case Full:
		return "full"
	case Inferred:
		return "inferred"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Artifact 描述一个需要生成绑定的合约接口。
type Artifact struct {
	Name     string        // 生成的类型名和默认输出文件名都由它派生
	Origin   string        // 合约源文件的相对路径，空或 "." 表示平铺输出
	ABI      []interface{} // 接口描述，始终是数组
	Bytecode string        // 可选，部署代码
	Kind     Kind
	Source   string // 产物所在的输入文件
}

// HasBytecode 报告产物是否带有非空字节码。
func (a *Artifact) HasBytecode() bool {
	return common.StripHexPrefix(a.Bytecode) != ""
}

// MarshalABI 返回接口描述的紧凑 JSON 文本。
func (a *Artifact) MarshalABI() ([]byte, error) {
	if a.ABI == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.ABI)
}

// NameFromPath 返回去掉扩展名的文件基本名，用作推断产物的名字。
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// checkName 检查合约名只由 ASCII 字母、数字、'_'、'$' 和 '-' 组成。
// 名字会被拼进暂存文件和输出文件的路径，不允许出现路径分隔符或 '.'。
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("contract name is empty")
	}
	for _, r := range name {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		case r == '_', r == '$', r == '-':
		default:
			return fmt.Errorf("contract name %q contains %q, only letters, digits, '_', '$' and '-' are allowed", name, r)
		}
	}
	return nil
}

// checkOrigin 检查源文件路径是相对路径且不含 ".." 段，生成目录由它镜像到输出根目录下。
func checkOrigin(origin string) error {
	slashed := filepath.ToSlash(origin)
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(origin) || filepath.VolumeName(origin) != "" {
		return fmt.Errorf("source path %q must be relative", origin)
	}
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return fmt.Errorf("source path %q must not contain \"..\"", origin)
		}
	}
	return nil
}

// ValidationError 汇总一个输入文件的所有问题。
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, strings.Join(e.Problems, "; "))
}
