// 包 cmdtest 重新执行当前测试二进制来运行命令行工具，并检查其输出和退出状态。
package cmdtest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"text/template"
	"time"

	"github.com/docker/docker/pkg/reexec"
)

func NewTestCmd(t *testing.T, data interface{}) *TestCmd {
	return &TestCmd{T: t, Data: data}
}

type TestCmd struct {
	// 为方便起见，所有测试方法均可用。
	*testing.T

	// Data 是 Expect 模板的参数
	Data interface{}

	// Dir 和 Env 在 Run 之前设置，分别是子进程的工作目录和附加的环境变量
	Dir string
	Env []string

	cmd    *exec.Cmd
	stdout *bufio.Reader
	stderr *testlogger
	// Err 会包含进程退出错误或中断信号错误
	Err error
}

var id int32

// Run 使用名称作为 argv[0] 执行当前二进制文件，这会触发以该名称注册的
// reexec 初始化函数（例如 cmd/abigen-wasm/run_test.go 中的 "abigen-wasm-test"）。
func (tt *TestCmd) Run(name string, args ...string) {
	id := atomic.AddInt32(&id, 1)
	tt.stderr = &testlogger{t: tt.T, name: fmt.Sprintf("%d", id)}
	tt.cmd = &exec.Cmd{
		Path:   reexec.Self(),
		Args:   append([]string{name}, args...),
		Dir:    tt.Dir,
		Stderr: tt.stderr,
	}
	if len(tt.Env) > 0 {
		tt.cmd.Env = append(os.Environ(), tt.Env...)
	}
	stdout, err := tt.cmd.StdoutPipe()
	if err != nil {
		tt.Fatal(err)
	}
	tt.stdout = bufio.NewReader(stdout)
	if err := tt.cmd.Start(); err != nil {
		tt.Fatal(err)
	}
}

// Expect 将其参数作为模板运行，然后期望子进程在 5s 内输出模板的结果。
// 模板开头的换行符在匹配前被删除。
func (tt *TestCmd) Expect(tplsource string) {
	tpl := template.Must(template.New("").Parse(tplsource))
	wantbuf := new(bytes.Buffer)
	if err := tpl.Execute(wantbuf, tt.Data); err != nil {
		panic(err)
	}
	want := bytes.TrimPrefix(wantbuf.Bytes(), []byte("\n"))
	if err := tt.matchExactOutput(want); err != nil {
		tt.Fatal(err)
	}
	tt.Logf("Matched stdout text:\n%s", want)
}

func (tt *TestCmd) matchExactOutput(want []byte) error {
	buf := make([]byte, len(want))
	n := 0
	tt.withKillTimeOut(func() { n, _ = io.ReadFull(tt.stdout, buf) })
	buf = buf[:n]
	if n < len(want) || !bytes.Equal(buf, want) {
		// 不匹配时把已缓冲的输出一起带上，便于调试
		buf = append(buf, make([]byte, tt.stdout.Buffered())...)
		tt.stdout.Read(buf[n:])
		for i := 0; i < n; i++ {
			if want[i] != buf[i] {
				return fmt.Errorf("output mismatch at ◊:\n---------------- (stdout text)\n%s◊%s\n---------------- (expected text)\n%s",
					buf[:i], buf[i:n], want)
			}
		}
		if n < len(want) {
			return fmt.Errorf("not enough output, got until ◊:\n---------------- (stdout text)\n%s\n---------------- (expected text)\n%s◊%s",
				buf, want[:n], want[n:])
		}
	}
	return nil
}

// ExpectRegexp 期望子进程在 5s 内输出与正则表达式匹配的文本。
//
// 正则表达式可能消耗任意数量的输出，因此 ExpectRegexp 之后通常不能再用 Expect。
func (tt *TestCmd) ExpectRegexp(regex string) (*regexp.Regexp, []string) {
	regex = strings.TrimPrefix(regex, "\n")
	var (
		re      = regexp.MustCompile(regex)
		rtee    = &runeTee{in: tt.stdout}
		matches []int
	)
	tt.withKillTimeOut(func() { matches = re.FindReaderSubmatchIndex(rtee) })
	output := rtee.buf.Bytes()
	if matches == nil {
		tt.Fatalf("Output did not match:\n---------------- (stdout text)\n%s\n---------------- (regular expression)\n%s",
			output, regex)
		return re, nil
	}
	tt.Logf("Match stdout text:\n%s", output)
	var submatches []string
	for i := 0; i < len(matches); i += 2 {
		submatches = append(submatches, string(output[matches[i]:matches[i+1]]))
	}
	return re, submatches
}

// ExpectExit 期望子进程在 5s 内退出，且标准输出上没有多余的文本。
func (tt *TestCmd) ExpectExit() {
	var output []byte
	tt.withKillTimeOut(func() {
		output, _ = io.ReadAll(tt.stdout)
	})
	tt.Err = tt.cmd.Wait()
	if len(output) > 0 {
		tt.Errorf("Unmatched stdout text:\n%s", output)
	}
}

// ExitStatus 返回进程的退出码，只在进程结束后有效。
func (tt *TestCmd) ExitStatus() int {
	var exitErr *exec.ExitError
	if errors.As(tt.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 0
}

// StderrText 返回到目前为止写入的 stderr 输出。
func (tt *TestCmd) StderrText() string {
	tt.stderr.mu.Lock()
	defer tt.stderr.mu.Unlock()
	return tt.stderr.buf.String()
}

func (tt *TestCmd) withKillTimeOut(fn func()) {
	timeout := time.AfterFunc(5*time.Second, func() {
		tt.Log("Killing the child process (timeout)")
		tt.cmd.Process.Kill()
	})
	defer timeout.Stop()
	fn()
}

// testlogger 通过 t.Log 记录所有写入的行，并收集它们供以后检查。
type testlogger struct {
	t    *testing.T
	mu   sync.Mutex
	buf  bytes.Buffer
	name string
}

func (tl *testlogger) Write(b []byte) (n int, err error) {
	lines := bytes.Split(b, []byte("\n"))
	for _, line := range lines {
		if len(line) > 0 {
			tl.t.Logf("(stderr:%v) %s", tl.name, line)
		}
	}
	tl.mu.Lock()
	tl.buf.Write(b)
	tl.mu.Unlock()
	return len(b), err
}

// runeTee 将读取的文本收集到 buf 中。
type runeTee struct {
	in interface {
		io.Reader
		io.ByteReader
		io.RuneReader
	}
	buf bytes.Buffer
}

func (rtee *runeTee) Read(b []byte) (n int, err error) {
	n, err = rtee.in.Read(b)
	rtee.buf.Write(b[:n])
	return n, err
}

func (rtee *runeTee) ReadRune() (r rune, size int, err error) {
	r, size, err = rtee.in.ReadRune()
	if err == nil {
		rtee.buf.WriteRune(r)
	}
	return r, size, err
}

func (rtee *runeTee) ReadByte() (b byte, err error) {
	b, err = rtee.in.ReadByte()
	if err == nil {
		rtee.buf.WriteByte(b)
	}
	return b, err
}
