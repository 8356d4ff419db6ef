package generator

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"abiwasm/common"
	"abiwasm/log"
)

// WasmRunner 在进程内运行编译为 WASI 的生成器模块。
//
// 模块只编译一次；每次 Invoke 实例化一个新的模块实例，运行 _start 直到退出。
// 宿主文件系统根目录挂载为客体的 "/"，因此参数中的绝对路径可以直接使用。
// 客体按 PWD 解析相对路径，Invoke 总是把 PWD 设为宿主当前的工作目录。
type WasmRunner struct {
	path     string
	runtime  wazero.Runtime
	module   wazero.CompiledModule
	cache    wazero.CompilationCache
	mountDir string
}

func newWasmRunner(ctx context.Context, path string, code []byte, opts Options) (*WasmRunner, error) {
	w := &WasmRunner{
		path:     path,
		mountDir: "/",
	}
	config := wazero.NewRuntimeConfig()
	if opts.CacheDir != "" {
		cache, err := wazero.NewCompilationCacheWithDir(opts.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("open compilation cache %s: %w", opts.CacheDir, err)
		}
		w.cache = cache
		config = config.WithCompilationCache(cache)
	}
	w.runtime = wazero.NewRuntimeWithConfig(ctx, config)

	// 生成器是 GOOS=wasip1 编译的，实例化前必须先提供 WASI
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, w.runtime); err != nil {
		w.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}
	module, err := w.runtime.CompileModule(ctx, code)
	if err != nil {
		w.Close(ctx)
		return nil, fmt.Errorf("compile generator %s: %w", path, err)
	}
	w.module = module

	log.Debug("Loaded generator module", "path", path, "hash", common.Keccak256Hash(code), "size", len(code), "cached", opts.CacheDir != "")
	return w, nil
}

// Invoke 以 argv 和 env 运行一次生成器。
func (w *WasmRunner) Invoke(ctx context.Context, argv []string, env map[string]string) error {
	var stdout, stderr bytes.Buffer
	config := wazero.NewModuleConfig().
		WithName("").
		WithArgs(append([]string{ProgramName}, argv...)...).
		WithStdout(&stdout).
		WithStderr(&stderr).
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader).
		WithFSConfig(wazero.NewFSConfig().WithDirMount(w.mountDir, "/"))
	for _, kv := range envList(guestEnv(env)) {
		k, v, _ := strings.Cut(kv, "=")
		config = config.WithEnv(k, v)
	}

	mod, err := w.runtime.InstantiateModule(ctx, w.module, config)
	if mod != nil {
		mod.Close(ctx)
	}
	if out := strings.TrimSpace(stdout.String()); out != "" {
		log.Trace("Generator output", "stdout", out)
	}
	if err == nil {
		return nil
	}
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		// Go 编译的 WASI 程序在 main 返回后调用 proc_exit(0)
		if exitErr.ExitCode() == 0 {
			return nil
		}
		return &InvocationError{Program: w.path, ExitCode: int(exitErr.ExitCode()), Stderr: stderr.String(), Err: err}
	}
	return &InvocationError{Program: w.path, ExitCode: -1, Stderr: stderr.String(), Err: err}
}

// guestEnv 返回 env 的副本，其中 PWD 为宿主当前的工作目录。
// 继承来的 PWD 可能缺失或已经过时。
func guestEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	if wd, err := os.Getwd(); err == nil {
		out["PWD"] = wd
	}
	return out
}

// Close 释放编译模块和运行时。
func (w *WasmRunner) Close(ctx context.Context) error {
	var err error
	if w.runtime != nil {
		err = w.runtime.Close(ctx)
	}
	if w.cache != nil {
		if cerr := w.cache.Close(ctx); err == nil {
			err = cerr
		}
	}
	return err
}
