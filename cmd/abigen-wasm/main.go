// abigen-wasm 用编译为 WebAssembly 的 abigen 把合约产物转换为 Go 绑定。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "abigen-wasm [flags] <path>...",
		Short: "Generate Go bindings from contract artifacts using a WebAssembly abigen",
		Long: `Generate Go bindings from contract artifacts using a WebAssembly abigen.

Inputs are artifact files or directories that are searched recursively for
*.json files. Hardhat artifacts, Foundry output, bare ABI arrays and
solc --combined-json output are recognized.

Every flag can also be set through an ABIGEN_ environment variable, e.g.
ABIGEN_PROTOCOL=v2 or ABIGEN_LOG_FILE=abigen.log.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runGenerate,
	}
	addFlags(c.Flags())
	return c
}

// fatalf 把错误格式化输出到 stderr 并以退出码 1 结束进程。
func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fatalf("%v", err)
	}
}
