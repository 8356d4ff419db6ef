package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenABI = `[
	{"type":"constructor","inputs":[{"name":"supply","type":"uint256"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"totalSupply","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"error","name":"InsufficientBalance","inputs":[]}
]`

func mustDecode(t *testing.T, text string) interface{} {
	t.Helper()
	v, err := decodeJSON([]byte(text))
	require.NoError(t, err)
	return v
}

func problemsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)
	return verr.Problems
}

func TestValidateFullArtifact(t *testing.T) {
	doc := `{"_format":"hh-sol-artifact-1","contractName":"Token","sourceName":"contracts/Token.sol","abi":` + tokenABI + `,"bytecode":"0x6080"}`

	for _, deployable := range []bool{false, true} {
		a, warnings, err := Validate(mustDecode(t, doc), "artifacts/Token.json", deployable)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, "Token", a.Name)
		assert.Equal(t, "contracts/Token.sol", a.Origin)
		assert.Equal(t, Full, a.Kind)
		assert.Len(t, a.ABI, 5)
		assert.True(t, a.HasBytecode())
	}
}

func TestValidateFullCollectsEveryProblem(t *testing.T) {
	doc := `{"contractName":"","sourceName":7,"abi":{"not":"an array"}}`

	_, _, err := Validate(mustDecode(t, doc), "bad.json", true)
	problems := problemsOf(t, err)
	assert.Equal(t, []string{
		`field "contractName" must be a non-empty string`,
		`field "sourceName" must be a string`,
		`field "abi" must be an array`,
		`field "bytecode" is required for deployable bindings`,
	}, problems)
}

func TestValidateFullMissingBytecodeIsHardFailure(t *testing.T) {
	doc := `{"contractName":"Vault","sourceName":"contracts/Vault.sol","abi":[],"bytecode":"0x"}`

	_, _, err := Validate(mustDecode(t, doc), "Vault.json", true)
	assert.Equal(t, []string{`field "bytecode" is required for deployable bindings`}, problemsOf(t, err))

	// 不要求部署代码时同一个产物是合法的
	a, _, err := Validate(mustDecode(t, doc), "Vault.json", false)
	require.NoError(t, err)
	assert.False(t, a.HasBytecode())
}

func TestValidateBareArray(t *testing.T) {
	a, warnings, err := Validate(mustDecode(t, tokenABI), filepath.Join("abis", "ERC20.abi.json"), false)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "ERC20.abi", a.Name)
	assert.Equal(t, "", a.Origin)
	assert.Equal(t, Inferred, a.Kind)
	assert.Empty(t, a.Bytecode)

	_, warnings, err = Validate(mustDecode(t, `[]`), "Empty.json", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Empty.json: no bytecode found, generating non-deployable bindings"}, warnings)
}

func TestValidateInferredObject(t *testing.T) {
	// Foundry 的 out/Counter.sol/Counter.json
	doc := `{"abi":[],"bytecode":{"object":"0x6080","sourceMap":"","linkReferences":{}},"methodIdentifiers":{}}`
	a, warnings, err := Validate(mustDecode(t, doc), "out/Counter.sol/Counter.json", true)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "Counter", a.Name)
	assert.Equal(t, "", a.Origin)
	assert.Equal(t, "0x6080", a.Bytecode)
	assert.Equal(t, Inferred, a.Kind)

	// 有 contractName 但没有 sourceName：仍是推断产物，名字取自文件名
	a, warnings, err = Validate(mustDecode(t, `{"contractName":"Lib","abi":[]}`), "x.json", true)
	require.NoError(t, err)
	assert.Equal(t, "x", a.Name)
	assert.Equal(t, []string{"x.json: no bytecode found, generating non-deployable bindings"}, warnings)
}

func TestValidateRejectsUnsafeNames(t *testing.T) {
	for _, name := range []string{"../../escaped", "a/B", `a\B`, "Token.v2", "My Token", "Tökén"} {
		doc := `{"contractName":"` + name + `","sourceName":"c/E.sol","abi":[]}`
		_, _, err := Validate(mustDecode(t, doc), "E.json", false)
		problems := problemsOf(t, err)
		require.Len(t, problems, 1, "name %q", name)
		assert.Contains(t, problems[0], `field "contractName"`)
	}

	a, _, err := Validate(mustDecode(t, `{"contractName":"My-Token_V2$","sourceName":"c/E.sol","abi":[]}`), "E.json", false)
	require.NoError(t, err)
	assert.Equal(t, "My-Token_V2$", a.Name)

	// 推断产物的名字来自文件名，同样要检查
	_, _, err = Validate(mustDecode(t, `[]`), "dir/Token.v2.json", false)
	assert.Contains(t, problemsOf(t, err)[0], "file name")
	_, _, err = Validate(mustDecode(t, `{"abi":[]}`), "dir/My Token.json", false)
	assert.Contains(t, problemsOf(t, err)[0], "file name")

	artifacts, err := ParseCombinedJSON([]byte(`{"contracts":{"a.sol:../x":{"abi":[]},"../a.sol:Up":{"abi":[]},"a.sol:Ok":{"abi":[]}}}`), "c.json", false)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "Ok", artifacts[0].Name)
	assert.Len(t, problemsOf(t, err), 2)
}

func TestValidateRejectsEscapingOrigins(t *testing.T) {
	for _, origin := range []string{"../../x.sol", "contracts/../../x.sol", "/abs/x.sol"} {
		doc := `{"contractName":"X","sourceName":"` + origin + `","abi":[]}`
		_, _, err := Validate(mustDecode(t, doc), "X.json", false)
		problems := problemsOf(t, err)
		require.Len(t, problems, 1, "origin %q", origin)
		assert.Contains(t, problems[0], `field "sourceName"`)
	}
	a, _, err := Validate(mustDecode(t, `{"contractName":"X","sourceName":"contracts/x..y/X.sol","abi":[]}`), "X.json", false)
	require.NoError(t, err)
	assert.Equal(t, "contracts/x..y/X.sol", a.Origin)
}

func TestValidateRejectsUnrecognized(t *testing.T) {
	_, _, err := Validate(mustDecode(t, `{"name":"Token"}`), "t.json", false)
	assert.Equal(t, []string{
		`missing field "contractName"`,
		`missing field "sourceName"`,
		`missing field "abi"`,
	}, problemsOf(t, err))

	_, _, err = Validate(mustDecode(t, `{"abi":"[]"}`), "t.json", false)
	assert.Contains(t, problemsOf(t, err), `field "abi" must be an array`)

	_, _, err = Validate(mustDecode(t, `"just a string"`), "t.json", false)
	assert.Len(t, problemsOf(t, err), 1)

	_, _, err = Validate(mustDecode(t, `{"abi":[],"bytecode":42}`), "t.json", false)
	assert.Len(t, problemsOf(t, err), 1)
}

func TestParseCombinedJSON(t *testing.T) {
	doc := `{
		"contracts": {
			"contracts/Token.sol:Token": {"abi": [], "bin": "6080"},
			"contracts/Token.sol:IToken": {"abi": "[{\"type\":\"function\",\"name\":\"x\",\"inputs\":[],\"outputs\":[]}]", "bin": ""}
		},
		"version": "0.8.24+commit.e11b9ed9"
	}`
	artifacts, err := ParseCombinedJSON([]byte(doc), "combined.json", false)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, "IToken", artifacts[0].Name)
	assert.Equal(t, "contracts/Token.sol", artifacts[0].Origin)
	assert.Len(t, artifacts[0].ABI, 1)
	assert.Equal(t, "Token", artifacts[1].Name)
	assert.Equal(t, Full, artifacts[1].Kind)

	artifacts, err = ParseCombinedJSON([]byte(doc), "combined.json", true)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "Token", artifacts[0].Name)
	assert.Len(t, problemsOf(t, err), 1)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	artifacts, warnings, err := Load(write("Token.json", tokenABI), false)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "Token", artifacts[0].Name)

	_, _, err = Load(write("broken.json", `{"abi": [`), false)
	problems := problemsOf(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "invalid JSON")

	_, _, err = Load(write("trailing.json", `[] []`), false)
	assert.Contains(t, problemsOf(t, err)[0], "invalid JSON")

	_, _, err = Load(filepath.Join(dir, "missing.json"), false)
	assert.Contains(t, problemsOf(t, err)[0], "read failed")

	artifacts, _, err = Load(write("combined.json", `{"contracts":{"A.sol:A":{"abi":[],"bin":""}}}`), false)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "A.sol", artifacts[0].Origin)
}

func TestSummarize(t *testing.T) {
	a, _, err := Validate(mustDecode(t, tokenABI), "Token.json", false)
	require.NoError(t, err)

	s, err := a.Summarize()
	require.NoError(t, err)
	assert.Equal(t, Summary{Methods: 2, Events: 1, Errors: 1, Constructor: true}, s)

	bad := &Artifact{ABI: []interface{}{map[string]interface{}{"type": "function", "name": "f", "inputs": []interface{}{map[string]interface{}{"type": "notatype"}}}}}
	_, err = bad.Summarize()
	assert.Error(t, err)
}

func TestMarshalABIIsCompact(t *testing.T) {
	a, _, err := Validate(mustDecode(t, "[ {\"type\" : \"fallback\"} ]"), "F.json", false)
	require.NoError(t, err)
	raw, err := a.MarshalABI()
	require.NoError(t, err)
	assert.Equal(t, `[{"type":"fallback"}]`, string(raw))
}
