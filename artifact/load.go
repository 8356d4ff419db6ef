package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Load 读取并解析一个输入文件，返回其中识别出的产物。
//
// 普通产物文件最多产生一个产物；combined-json 文件可能产生多个，
// 此时部分合约有问题不会影响其他合约，返回的 error 只描述被跳过的部分。
// 读取失败、JSON 语法错误都以 *ValidationError 报告，调用方据此继续处理其他文件。
func Load(path string, requireBytecode bool) ([]*Artifact, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &ValidationError{Source: path, Problems: []string{fmt.Sprintf("read failed: %v", err)}}
	}
	value, err := decodeJSON(data)
	if err != nil {
		return nil, nil, &ValidationError{Source: path, Problems: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}
	if isCombined(value) {
		artifacts, err := ParseCombinedJSON(data, path, requireBytecode)
		return artifacts, nil, err
	}
	a, warnings, err := Validate(value, path, requireBytecode)
	if err != nil {
		return nil, warnings, err
	}
	return []*Artifact{a}, warnings, nil
}

// decodeJSON 把 data 解析为通用值，数字保留为 json.Number 以免丢失精度。
// 文档后面出现多余内容视为语法错误。
func decodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return value, nil
}
