// 包 generator 封装对外部代码生成器（abigen）的调用。
//
// 生成器是一个黑盒：给定参数向量和环境变量，同步运行到结束，
// 非零退出以 *InvocationError 报告。生成器既可以是编译为 WASI 的
// WebAssembly 模块（在进程内通过 wazero 运行），也可以是本地可执行文件。
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ProgramName 是传给生成器的 argv[0]。
const ProgramName = "abigen"

var (
	ErrEmptyPath = errors.New("generator path is empty")
)

// wasmMagic 是 WebAssembly 二进制模块的前四个字节。
var wasmMagic = []byte{0x00, 'a', 's', 'm'}

// Runner 同步执行一次生成器调用。实现不要求可重入，调用方必须串行使用。
type Runner interface {
	Invoke(ctx context.Context, argv []string, env map[string]string) error
	Close(ctx context.Context) error
}

// InvocationError 描述一次失败的生成器调用。
type InvocationError struct {
	Program  string
	ExitCode int // -1 表示生成器没有正常退出
	Stderr   string
	Err      error
}

func (e *InvocationError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Program, e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("%s failed: %v", e.Program, e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Options 控制 Open 如何准备生成器。
type Options struct {
	// CacheDir 非空时，WebAssembly 编译结果缓存在该目录，后续运行跳过编译。
	CacheDir string
}

// Open 加载 path 处的生成器。以 WebAssembly 魔数开头的文件在进程内运行，
// 其他文件当作本地可执行文件启动。
func Open(ctx context.Context, path string, opts Options) (Runner, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read generator: %w", err)
	}
	if bytes.HasPrefix(code, wasmMagic) {
		return newWasmRunner(ctx, path, code, opts)
	}
	return &ExecRunner{Path: path}, nil
}

// MergeEnv 把 overrides 叠加到 host（os.Environ 形式）之上，返回合并后的映射。
// overrides 中的键覆盖宿主环境中的同名变量。
func MergeEnv(host []string, overrides map[string]string) map[string]string {
	env := make(map[string]string, len(host)+len(overrides))
	for _, kv := range host {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	for k, v := range overrides {
		env[k] = v
	}
	return env
}

// envList 把映射转换为按键排序的 KEY=VALUE 列表。
func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list := make([]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, k+"="+env[k])
	}
	return list
}
