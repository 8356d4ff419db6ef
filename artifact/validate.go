package artifact

import (
	"encoding/json"
	"fmt"
)

// Validate 把一个已解析的 JSON 值规范化为 Artifact。
//
// 同时带有 contractName、sourceName 和 abi 三个键（无论类型）的对象视为完整产物，
// 所有字段问题会一次性收集到同一个 ValidationError 中。其他输入走推断路径：
// 裸数组，或带 abi 数组的对象。requireBytecode 时，完整产物缺少字节码是错误，
// 推断产物缺少字节码只产生一条警告，并按不可部署方式生成。
func Validate(value interface{}, source string, requireBytecode bool) (*Artifact, []string, error) {
	switch v := value.(type) {
	case []interface{}:
		name := NameFromPath(source)
		if err := checkName(name); err != nil {
			return nil, nil, &ValidationError{Source: source, Problems: []string{"file name: " + err.Error()}}
		}
		return &Artifact{
			Name:   name,
			ABI:    v,
			Kind:   Inferred,
			Source: source,
		}, missingBytecodeWarning(source, requireBytecode), nil

	case map[string]interface{}:
		if isFull(v) {
			a, err := validateFull(v, source, requireBytecode)
			return a, nil, err
		}
		return inferFromObject(v, source, requireBytecode)

	default:
		return nil, nil, &ValidationError{
			Source:   source,
			Problems: []string{fmt.Sprintf("unsupported top-level JSON %s, want an artifact object or an ABI array", jsonType(value))},
		}
	}
}

func isFull(obj map[string]interface{}) bool {
	for _, key := range []string{nameField, originField, abiField} {
		if _, ok := obj[key]; !ok {
			return false
		}
	}
	return true
}

func validateFull(obj map[string]interface{}, source string, requireBytecode bool) (*Artifact, error) {
	var problems []string

	name, ok := obj[nameField].(string)
	if !ok || name == "" {
		problems = append(problems, fmt.Sprintf("field %q must be a non-empty string", nameField))
	} else if err := checkName(name); err != nil {
		problems = append(problems, fmt.Sprintf("field %q: %v", nameField, err))
	}
	origin, ok := obj[originField].(string)
	if !ok {
		problems = append(problems, fmt.Sprintf("field %q must be a string", originField))
	} else if err := checkOrigin(origin); err != nil {
		problems = append(problems, fmt.Sprintf("field %q: %v", originField, err))
	}
	abi, ok := obj[abiField].([]interface{})
	if !ok {
		problems = append(problems, fmt.Sprintf("field %q must be an array", abiField))
	}
	bytecode, present, err := bytecodeOf(obj)
	switch {
	case err != nil:
		problems = append(problems, err.Error())
	case requireBytecode && !present:
		problems = append(problems, fmt.Sprintf("field %q is required for deployable bindings", bytecodeField))
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Source: source, Problems: problems}
	}
	return &Artifact{
		Name:     name,
		Origin:   origin,
		ABI:      abi,
		Bytecode: bytecode,
		Kind:     Full,
		Source:   source,
	}, nil
}

func inferFromObject(obj map[string]interface{}, source string, requireBytecode bool) (*Artifact, []string, error) {
	abi, ok := obj[abiField].([]interface{})
	if !ok {
		var problems []string
		for _, key := range []string{nameField, originField} {
			if _, ok := obj[key]; !ok {
				problems = append(problems, fmt.Sprintf("missing field %q", key))
			}
		}
		if _, present := obj[abiField]; present {
			problems = append(problems, fmt.Sprintf("field %q must be an array", abiField))
		} else {
			problems = append(problems, fmt.Sprintf("missing field %q", abiField))
		}
		return nil, nil, &ValidationError{Source: source, Problems: problems}
	}
	bytecode, present, err := bytecodeOf(obj)
	if err != nil {
		return nil, nil, &ValidationError{Source: source, Problems: []string{err.Error()}}
	}
	// 推断产物的名字总是取自文件名
	name := NameFromPath(source)
	if err := checkName(name); err != nil {
		return nil, nil, &ValidationError{Source: source, Problems: []string{"file name: " + err.Error()}}
	}
	a := &Artifact{
		Name:     name,
		ABI:      abi,
		Bytecode: bytecode,
		Kind:     Inferred,
		Source:   source,
	}
	if present {
		return a, nil, nil
	}
	return a, missingBytecodeWarning(source, requireBytecode), nil
}

// bytecodeOf 读取 bytecode 字段。支持字符串，以及 Foundry 的 {"object": "0x..."} 形式。
// present 只有在字节码非空（去掉 0x 后）时才为真。
func bytecodeOf(obj map[string]interface{}) (code string, present bool, err error) {
	raw, ok := obj[bytecodeField]
	if !ok || raw == nil {
		return "", false, nil
	}
	switch v := raw.(type) {
	case string:
		code = v
	case map[string]interface{}:
		s, ok := v["object"].(string)
		if !ok {
			return "", false, fmt.Errorf("field %q must be a string or an object with a string \"object\" field", bytecodeField)
		}
		code = s
	default:
		return "", false, fmt.Errorf("field %q must be a string or an object with a string \"object\" field", bytecodeField)
	}
	a := Artifact{Bytecode: code}
	return code, a.HasBytecode(), nil
}

func missingBytecodeWarning(source string, requireBytecode bool) []string {
	if !requireBytecode {
		return nil
	}
	return []string{fmt.Sprintf("%s: no bytecode found, generating non-deployable bindings", source)}
}

func jsonType(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
