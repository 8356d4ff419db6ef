package log

import (
	"os"
)

var (
	root          = &logger{[]interface{}{}, new(swapHandler)}
	stderrHandler = StreamHandler(os.Stderr, LogfmtFormat())
)

func init() {
	root.SetHandler(LvlFilterHandler(LvlWarn, stderrHandler))
}

// New 返回带有给定上下文、写入根处理程序的新记录器。
func New(ctx ...interface{}) Logger {
	return root.New(ctx...)
}

// 以下函数绕过导出的记录器方法 (logger.Debug 等)，
// 以保持所有路径到 logger.write 的调用深度相同，
// 这样 runtime.Caller(2) 始终引用客户端代码中的调用站点。

// Trace 以 trace 级别写入根记录器
func Trace(msg string, ctx ...interface{}) {
	root.write(msg, LvlTrace, ctx, skipLevel)
}

// Debug 以 debug 级别写入根记录器
func Debug(msg string, ctx ...interface{}) {
	root.write(msg, LvlDebug, ctx, skipLevel)
}

// Info 以 info 级别写入根记录器
func Info(msg string, ctx ...interface{}) {
	root.write(msg, LvlInfo, ctx, skipLevel)
}

// Warn 以 warn 级别写入根记录器
func Warn(msg string, ctx ...interface{}) {
	root.write(msg, LvlWarn, ctx, skipLevel)
}

// Error 以 error 级别写入根记录器
func Error(msg string, ctx ...interface{}) {
	root.write(msg, LvlError, ctx, skipLevel)
}
