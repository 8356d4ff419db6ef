package artifact

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// solc --combined-json abi,bin 的输出。
// solidity v0.8 之前 abi 是一段 JSON 文本，之后直接是数组，两种形式都接受。
type solcOutput struct {
	Contracts map[string]struct {
		Bin string          `json:"bin"`
		Abi json.RawMessage `json:"abi"`
	} `json:"contracts"`
	Version string `json:"version"`
}

// isCombined 报告已解析的值是否像 solc 的 combined-json 输出。
func isCombined(value interface{}) bool {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return false
	}
	if _, ok := obj[abiField]; ok {
		return false
	}
	_, ok = obj["contracts"].(map[string]interface{})
	return ok
}

// ParseCombinedJSON 解析 solc --combined-json 的直接输出，每个合约产生一个完整产物。
// 合约键的形式是 "path/to/Source.sol:Name"，冒号前的部分作为 Origin。
//
// 有问题的合约被跳过，问题汇总在返回的 ValidationError 中；其余合约照常返回。
func ParseCombinedJSON(combinedJSON []byte, source string, requireBytecode bool) ([]*Artifact, error) {
	var output solcOutput
	if err := json.Unmarshal(combinedJSON, &output); err != nil {
		return nil, &ValidationError{Source: source, Problems: []string{fmt.Sprintf("solc: invalid combined json (%v)", err)}}
	}
	keys := make([]string, 0, len(output.Contracts))
	for key := range output.Contracts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var (
		artifacts []*Artifact
		problems  []string
	)
	for _, key := range keys {
		info := output.Contracts[key]
		origin, name := splitContractKey(key)
		if err := checkName(name); err != nil {
			problems = append(problems, fmt.Sprintf("contract %q: %v", key, err))
			continue
		}
		if err := checkOrigin(origin); err != nil {
			problems = append(problems, fmt.Sprintf("contract %q: %v", key, err))
			continue
		}
		abi, err := parseSolcABI(info.Abi)
		if err != nil {
			problems = append(problems, fmt.Sprintf("contract %q: error reading abi definition (%v)", key, err))
			continue
		}
		a := &Artifact{
			Name:     name,
			Origin:   origin,
			ABI:      abi,
			Bytecode: info.Bin,
			Kind:     Full,
			Source:   source,
		}
		if requireBytecode && !a.HasBytecode() {
			problems = append(problems, fmt.Sprintf("contract %q: field \"bin\" is required for deployable bindings", key))
			continue
		}
		artifacts = append(artifacts, a)
	}
	if len(problems) > 0 {
		return artifacts, &ValidationError{Source: source, Problems: problems}
	}
	return artifacts, nil
}

func splitContractKey(key string) (origin, name string) {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return "", key
	}
	return key[:i], key[i+1:]
}

func parseSolcABI(raw json.RawMessage) ([]interface{}, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing abi")
	}
	// 旧版 solc：abi 是字符串形式的 JSON
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		raw = json.RawMessage(text)
	}
	var abi []interface{}
	if err := json.Unmarshal(raw, &abi); err != nil {
		return nil, err
	}
	if abi == nil {
		return nil, fmt.Errorf("abi is not an array")
	}
	return abi, nil
}
