package generator

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"

	"abiwasm/log"
)

// ExecRunner 把生成器作为本地子进程启动，契约与 WasmRunner 相同。
type ExecRunner struct {
	Path string
}

func (e *ExecRunner) Invoke(ctx context.Context, argv []string, env map[string]string) error {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Path, argv...)
	cmd.Args[0] = filepath.Base(e.Path)
	cmd.Env = envList(env)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if out := strings.TrimSpace(stdout.String()); out != "" {
		log.Trace("Generator output", "stdout", out)
	}
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return &InvocationError{Program: e.Path, ExitCode: exitErr.ExitCode(), Stderr: stderr.String(), Err: err}
	}
	return &InvocationError{Program: e.Path, ExitCode: -1, Stderr: stderr.String(), Err: err}
}

func (e *ExecRunner) Close(context.Context) error { return nil }
