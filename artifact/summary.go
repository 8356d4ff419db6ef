package artifact

import (
	"bytes"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Summary 是接口描述的概要，只用于详细日志。
type Summary struct {
	Methods     int
	Events      int
	Errors      int
	Constructor bool
}

// Summarize 用 go-ethereum 的 ABI 解析器统计接口中的方法、事件和错误。
// 解析失败不影响生成：生成器才是接口描述的最终裁判。
func (a *Artifact) Summarize() (Summary, error) {
	raw, err := a.MarshalABI()
	if err != nil {
		return Summary{}, err
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Methods:     len(parsed.Methods),
		Events:      len(parsed.Events),
		Errors:      len(parsed.Errors),
		Constructor: a.hasEntry("constructor"),
	}, nil
}

func (a *Artifact) hasEntry(typ string) bool {
	for _, entry := range a.ABI {
		if obj, ok := entry.(map[string]interface{}); ok && obj["type"] == typ {
			return true
		}
	}
	return false
}
