package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggingWithLogfmt(t *testing.T) {
	out := new(bytes.Buffer)
	l := New("contract", "Token")
	l.SetHandler(StreamHandler(out, LogfmtFormat()))

	l.Info("Generated bindings", "out", "bindings/token.go", "deployable", true)

	have := out.String()
	for _, want := range []string{
		"lvl=info",
		`msg="Generated bindings"`,
		"contract=Token",
		"out=bindings/token.go",
		"deployable=true",
	} {
		if !strings.Contains(have, want) {
			t.Errorf("missing %q in %q", want, have)
		}
	}
}

func TestLvlFilter(t *testing.T) {
	out := new(bytes.Buffer)
	l := New()
	l.SetHandler(LvlFilterHandler(LvlWarn, StreamHandler(out, LogfmtFormat())))

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("shown")

	if strings.Contains(out.String(), "hidden") {
		t.Fatalf("filtered records were written: %q", out.String())
	}
	if !strings.Contains(out.String(), "msg=shown") {
		t.Fatalf("warn record missing: %q", out.String())
	}
}

func TestOddContextNormalized(t *testing.T) {
	out := new(bytes.Buffer)
	l := New()
	l.SetHandler(StreamHandler(out, LogfmtFormat()))

	l.Warn("odd", "lonely")

	if !strings.Contains(out.String(), "lonely=nil") {
		t.Fatalf("odd key not normalized: %q", out.String())
	}
	if !strings.Contains(out.String(), errorKey) {
		t.Fatalf("normalization marker missing: %q", out.String())
	}
}

func TestJSONFormat(t *testing.T) {
	out := new(bytes.Buffer)
	l := New()
	l.SetHandler(StreamHandler(out, JSONFormat()))

	l.Error("Generation failed", "contract", "Vault", "code", 2)

	var rec map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, out.String())
	}
	if rec["msg"] != "Generation failed" || rec["contract"] != "Vault" || rec["lvl"] != "eror" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["code"] != float64(2) {
		t.Fatalf("numeric value mangled: %v", rec["code"])
	}
}

func TestLazyEvaluation(t *testing.T) {
	out := new(bytes.Buffer)
	l := New()
	l.SetHandler(LvlFilterHandler(LvlInfo, StreamHandler(out, LogfmtFormat())))

	called := false
	l.Debug("skipped", "value", Lazy{func() int { called = true; return 1 }})
	if called {
		t.Fatal("lazy value evaluated for a filtered record")
	}
	l.Info("kept", "value", Lazy{func() int { called = true; return 7 }})
	if !called || !strings.Contains(out.String(), "value=7") {
		t.Fatalf("lazy value not evaluated: %q", out.String())
	}
}

func TestSetupWritesFile(t *testing.T) {
	defer root.SetHandler(LvlFilterHandler(LvlWarn, stderrHandler))

	path := filepath.Join(t.TempDir(), "abigen.log")
	console := new(bytes.Buffer)
	closer, err := Setup(Config{Verbose: true, File: path, Output: console})
	if err != nil {
		t.Fatal(err)
	}

	Debug("Staged interface", "file", "Token.json")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "file=Token.json") || !strings.Contains(string(data), "caller=") {
		t.Fatalf("log file missing record: %q", data)
	}
	if !strings.Contains(console.String(), "Staged interface") {
		t.Fatalf("console missing record: %q", console.String())
	}
}

func TestSetupLevel(t *testing.T) {
	defer root.SetHandler(LvlFilterHandler(LvlWarn, stderrHandler))
	defer PrintOrigins(false)

	if _, err := Setup(Config{Level: "loud"}); err == nil {
		t.Fatal("unknown level accepted")
	}
	out := new(bytes.Buffer)
	if _, err := Setup(Config{Verbose: true, Level: "error", Output: out}); err != nil {
		t.Fatal(err)
	}
	Warn("Failed to remove staging file")
	Error("Generation failed")
	if strings.Contains(out.String(), "staging") || !strings.Contains(out.String(), "Generation failed") {
		t.Fatalf("level override not applied: %q", out.String())
	}
}

func TestChildLoggerFollowsSetup(t *testing.T) {
	defer root.SetHandler(LvlFilterHandler(LvlWarn, stderrHandler))
	defer PrintOrigins(false)

	child := New("contract", "Token")
	out := new(bytes.Buffer)
	if _, err := Setup(Config{Level: "trace", Output: out}); err != nil {
		t.Fatal(err)
	}
	child.Info("Generated bindings", "package", "token")
	Trace("Generator output", "stdout", "ok")

	have := out.String()
	if !strings.Contains(have, "contract=Token") || !strings.Contains(have, "package=token") {
		t.Fatalf("child record missing context: %q", have)
	}
	if !strings.Contains(have, "lvl=trce") || !strings.Contains(have, "stdout=ok") {
		t.Fatalf("trace record missing: %q", have)
	}
}
