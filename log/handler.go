package log

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/go-stack/stack"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Handler 定义日志记录的写入位置和方式。
// Logger 通过写入 Handler 来打印其日志记录。
// 处理程序是可组合的，可以按需要组合出适合应用程序的日志结构。
type Handler interface {
	Log(r *Record) error
}

// funcHandler 用给定函数记录日志。
type funcHandler func(r *Record) error

func (h funcHandler) Log(r *Record) error {
	return h(r)
}

// StreamHandler 使用给定的格式将日志记录写入一个 io.Writer。
//
// StreamHandler 用 LazyHandler 和 SyncHandler 包装自己，
// 以评估惰性对象并执行安全的并发写入。
func StreamHandler(wr io.Writer, fmtr Format) Handler {
	h := funcHandler(func(r *Record) error {
		_, err := wr.Write(fmtr.Format(r))
		return err
	})
	return LazyHandler(SyncHandler(h))
}

// SyncHandler 保证一次只进行一个日志操作。
func SyncHandler(h Handler) Handler {
	var mu sync.Mutex
	return funcHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()

		return h.Log(r)
	})
}

// RotatingFileHandler 返回一个将日志写入 path 的处理程序，
// 文件超过 maxSizeMB 后滚动，最多保留 maxBackups 个旧文件。
// 返回的 io.Closer 用于在退出前关闭底层文件。
func RotatingFileHandler(path string, maxSizeMB, maxBackups int, fmtr Format) (Handler, io.Closer) {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	return StreamHandler(w, fmtr), w
}

// CallerFileHandler 返回一个 Handler，它把调用函数的文件和行号
// 以键 "caller" 加入上下文。
func CallerFileHandler(h Handler) Handler {
	return funcHandler(func(r *Record) error {
		r.Ctx = append(r.Ctx, "caller", fmt.Sprint(r.Call))
		return h.Log(r)
	})
}

// FilterHandler 返回一个 Handler，仅当给定函数的结果为真时
// 才把记录写入被包装的处理程序。
func FilterHandler(fn func(r *Record) bool, h Handler) Handler {
	return funcHandler(func(r *Record) error {
		if fn(r) {
			return h.Log(r)
		}
		return nil
	})
}

// LvlFilterHandler 返回一个只写入不高于给定详细程度记录的 Handler。
// 例如，只记录 error/crit 记录：
//
//	log.LvlFilterHandler(log.LvlError, log.StreamHandler(os.Stderr, log.LogfmtFormat()))
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FilterHandler(func(r *Record) bool {
		return r.Lvl <= maxLvl
	}, h)
}

// MultiHandler 将任何写入分派给它的每个处理程序。
// 这对于同时写入终端和文件很有用。
func MultiHandler(hs ...Handler) Handler {
	return funcHandler(func(r *Record) error {
		for _, h := range hs {
			h.Log(r)
		}
		return nil
	})
}

// LazyHandler 在评估记录上下文中的惰性函数后，将所有值写入被包装的处理程序。
func LazyHandler(h Handler) Handler {
	return funcHandler(func(r *Record) error {
		// 遍历值（奇数索引），用执行结果替换惰性函数
		hadErr := false
		for i := 1; i < len(r.Ctx); i += 2 {
			lz, ok := r.Ctx[i].(Lazy)
			if ok {
				v, err := evaluateLazy(lz)
				if err != nil {
					hadErr = true
					r.Ctx[i] = err
				} else {
					if cs, ok := v.(stack.CallStack); ok {
						v = cs.TrimBelow(r.Call).TrimRuntime()
					}
					r.Ctx[i] = v
				}
			}
		}

		if hadErr {
			r.Ctx = append(r.Ctx, errorKey, "bad lazy")
		}

		return h.Log(r)
	})
}

func evaluateLazy(lz Lazy) (interface{}, error) {
	t := reflect.TypeOf(lz.Fn)

	if t == nil || t.Kind() != reflect.Func {
		return nil, fmt.Errorf("INVALID_LAZY, not func: %+v", lz.Fn)
	}

	if t.NumIn() > 0 {
		return nil, fmt.Errorf("INVALID_LAZY, func takes args: %+v", lz.Fn)
	}

	if t.NumOut() == 0 {
		return nil, fmt.Errorf("INVALID_LAZY, no func return val: %+v", lz.Fn)
	}

	value := reflect.ValueOf(lz.Fn)
	results := value.Call([]reflect.Value{})
	if len(results) == 1 {
		return results[0].Interface(), nil
	}
	values := make([]interface{}, len(results))
	for i, v := range results {
		values[i] = v.Interface()
	}
	return values, nil
}

// discardHandler 报告所有写入成功但不执行任何操作。
func discardHandler() Handler {
	return funcHandler(func(r *Record) error {
		return nil
	})
}
