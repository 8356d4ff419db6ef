package log

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Config 描述命令行工具的日志输出方式。
type Config struct {
	Verbose bool   // 打开 debug 级别，否则只输出 warn 及以上
	Level   string // 非空时覆盖 Verbose，取值见 LvlFromString
	JSON    bool   // 以 JSON 行输出，便于 CI 收集
	File    string // 额外写入的滚动日志文件，空表示不写文件

	// Output 为 nil 时写 os.Stderr
	Output io.Writer
}

const (
	logFileMaxSizeMB  = 16
	logFileMaxBackups = 3
)

// Setup 按配置替换根记录器的处理程序。
// 返回的 io.Closer 需要在进程退出前调用，用于关闭日志文件。
func Setup(cfg Config) (io.Closer, error) {
	lvl := LvlWarn
	if cfg.Verbose {
		lvl = LvlDebug
	}
	if cfg.Level != "" {
		var err error
		if lvl, err = LvlFromString(cfg.Level); err != nil {
			return nil, err
		}
	}
	// debug 及以下在终端输出中附带调用位置
	PrintOrigins(lvl >= LvlDebug)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	var format Format
	switch {
	case cfg.JSON:
		format = JSONFormat()
	case isTerminal(out):
		format = TerminalFormat(os.Getenv("NO_COLOR") == "")
	default:
		format = LogfmtFormat()
	}
	handler := StreamHandler(out, format)

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		fileFormat := LogfmtFormat()
		if cfg.JSON {
			fileFormat = JSONFormat()
		}
		var fh Handler
		fh, closer = RotatingFileHandler(cfg.File, logFileMaxSizeMB, logFileMaxBackups, fileFormat)
		handler = MultiHandler(handler, CallerFileHandler(fh))
	}
	root.SetHandler(LvlFilterHandler(lvl, handler))
	return closer, nil
}

// isTerminal 报告 w 是否是一个交互式终端。
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
