package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"abiwasm/artifact"
	"abiwasm/bindgen"
	"abiwasm/common"
	"abiwasm/generator"
	"abiwasm/log"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	v, err := newViper(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := configFromViper(v, cmd.Flags())
	if err != nil {
		return err
	}
	closer, err := log.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", logLevelKey, err)
	}
	defer closer.Close()

	ctx := cmd.Context()
	var runner generator.Runner
	if path := generator.Locate(cfg.Generator); path != "" {
		r, err := generator.Open(ctx, path, generator.Options{CacheDir: cfg.CacheDir})
		if err != nil {
			return err
		}
		defer func() {
			if err := r.Close(ctx); err != nil {
				log.Error("Failed to release generator", "path", path, "err", err)
			}
		}()
		runner = r
		log.Debug("Using generator", "path", path)
	}
	orchestrator, err := bindgen.New(cfg.Bindgen, runner)
	if errors.Is(err, bindgen.ErrNoGenerator) {
		return fmt.Errorf("%w: pass --%s or install %s in one of: %s",
			err, generatorKey, generator.ModuleName, strings.Join(generator.SearchDirs(), ", "))
	}
	if err != nil {
		return err
	}

	outDir := cfg.Bindgen.OutputDir
	if cfg.Clean {
		if err := cleanOutput(outDir); err != nil {
			return err
		}
	}

	stderr := cmd.ErrOrStderr()
	files, warnings, err := bindgen.Collect(args)
	printList(stderr, "Warnings", warnings)
	if err != nil {
		return err
	}
	log.Debug("Collected input files", "count", len(files))

	var (
		artifacts []*artifact.Artifact
		failures  []string
	)
	warnings = warnings[:0]
	for _, file := range files {
		loaded, w, err := artifact.Load(file, cfg.Bindgen.Deployable)
		warnings = append(warnings, w...)
		if err != nil {
			failures = append(failures, err.Error())
		}
		artifacts = append(artifacts, loaded...)
	}
	printList(stderr, "Warnings", warnings)
	printList(stderr, "Validation failed", failures)
	if len(artifacts) == 0 {
		return fmt.Errorf("no valid artifacts in %d input file(s)", len(files))
	}

	if err := orchestrator.Generate(ctx, artifacts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated bindings for %d contract(s) in %s\n", len(artifacts), outDir)
	return nil
}

// printList 以一个标题加缩进列表的形式输出一批非致命问题。
func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d):\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

// cleanOutput 删除输出目录。文件系统根目录、当前工作目录及其祖先目录拒绝删除。
func cleanOutput(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}
	if filepath.Dir(abs) == abs {
		return fmt.Errorf("refusing to clean %s: filesystem root", abs)
	}
	if wd, err := os.Getwd(); err == nil && common.IsAncestor(abs, wd) {
		return fmt.Errorf("refusing to clean %s: contains the working directory", abs)
	}
	log.Info("Cleaning output directory", "dir", abs)
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("clean output directory: %w", err)
	}
	return nil
}
