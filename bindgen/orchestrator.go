package bindgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"abiwasm/artifact"
	"abiwasm/common"
	"abiwasm/common/hexutil"
	"abiwasm/generator"
	"abiwasm/log"
)

// 生成器支持的绑定协议版本。
const (
	ProtocolV1 = "v1"
	ProtocolV2 = "v2"
)

var (
	ErrNoGenerator         = errors.New("generator module not found")
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
)

// Config 是一次生成运行的设置。
type Config struct {
	OutputDir  string
	Protocol   string // ProtocolV1 或 ProtocolV2，空值等同 v1
	Deployable bool   // 为带字节码的产物生成部署方法
	Verbose    bool

	// Env 叠加在宿主环境之上，传给每一次生成器调用
	Env map[string]string
}

// Orchestrator 为产物逐个准备暂存文件并调用生成器。
type Orchestrator struct {
	config Config
	runner generator.Runner
}

// New 检查配置并创建 Orchestrator。runner 为 nil 表示没有找到生成器。
// 输出目录被转换为绝对路径：WASI 客体按自己的 PWD 解析相对参数，不一定是宿主的工作目录。
func New(config Config, runner generator.Runner) (*Orchestrator, error) {
	switch config.Protocol {
	case "":
		config.Protocol = ProtocolV1
	case ProtocolV1, ProtocolV2:
	default:
		return nil, fmt.Errorf("%w %q (want %s or %s)", ErrUnsupportedProtocol, config.Protocol, ProtocolV1, ProtocolV2)
	}
	if runner == nil {
		return nil, ErrNoGenerator
	}
	if config.OutputDir == "" {
		return nil, errors.New("output directory is empty")
	}
	abs, err := filepath.Abs(config.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	config.OutputDir = abs
	return &Orchestrator{config: config, runner: runner}, nil
}

// Generate 按顺序为每个产物生成绑定。第一个失败的产物终止整批，
// 之前已经生成的文件保留。无论成败，暂存文件都会被删除。
func (o *Orchestrator) Generate(ctx context.Context, artifacts []*artifact.Artifact) error {
	for _, a := range artifacts {
		if err := o.generate(ctx, a); err != nil {
			return fmt.Errorf("generate %s: %w", a.Name, err)
		}
	}
	return nil
}

func (o *Orchestrator) generate(ctx context.Context, a *artifact.Artifact) error {
	plan := PlanPaths(a.Name, a.Origin, o.config.OutputDir)
	logger := log.New("contract", a.Name)
	if o.config.Verbose {
		logSummary(logger, a)
	}

	if err := os.MkdirAll(o.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	abi, err := a.MarshalABI()
	if err != nil {
		return fmt.Errorf("encode ABI: %w", err)
	}
	if err := os.WriteFile(plan.InterfaceFile, abi, 0o644); err != nil {
		return fmt.Errorf("stage ABI: %w", err)
	}
	defer removeStaged(plan.InterfaceFile)

	if err := os.MkdirAll(plan.GeneratedDir, 0o755); err != nil {
		return fmt.Errorf("create package directory: %w", err)
	}
	argv := []string{
		"--abi", plan.InterfaceFile,
		"--pkg", plan.Package,
		"--type", plan.Type,
		"--out", plan.GeneratedFile,
	}
	if o.config.Protocol == ProtocolV2 {
		argv = append(argv, "--v2")
	}
	if o.config.Deployable && a.HasBytecode() {
		if err := os.WriteFile(plan.BytecodeFile, []byte(common.StripHexPrefix(a.Bytecode)), 0o644); err != nil {
			return fmt.Errorf("stage bytecode: %w", err)
		}
		defer removeStaged(plan.BytecodeFile)
		argv = append(argv, "--bin", plan.BytecodeFile)
	}

	logger.Debug("Invoking generator", "args", argv)
	start := time.Now()
	if err := o.runner.Invoke(ctx, argv, generator.MergeEnv(os.Environ(), o.config.Env)); err != nil {
		return err
	}
	logger.Info("Generated bindings", "package", plan.Package, "out", plan.GeneratedFile,
		"elapsed", common.PrettyDuration(time.Since(start)))
	return nil
}

func logSummary(logger log.Logger, a *artifact.Artifact) {
	ctx := []interface{}{"kind", a.Kind, "source", a.Source}
	if summary, err := a.Summarize(); err != nil {
		ctx = append(ctx, "abi", err)
	} else {
		ctx = append(ctx, "methods", summary.Methods, "events", summary.Events, "errors", summary.Errors, "constructor", summary.Constructor)
	}
	if a.HasBytecode() {
		ctx = append(ctx, "bytecode", log.Lazy{Fn: func() interface{} { return bytecodeSize(a.Bytecode) }})
	}
	logger.Info("Preparing bindings", ctx...)
}

// bytecodeSize 返回字节码的字节数。未链接的库占位符不是十六进制，返回 "unlinked"。
func bytecodeSize(bytecode string) interface{} {
	code, err := hexutil.Decode("0x" + common.StripHexPrefix(bytecode))
	if err != nil {
		return "unlinked"
	}
	return len(code)
}

func removeStaged(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("Failed to remove staging file", "path", path, "err", err)
	}
}
