// Package fixtures runs script fixtures against the interpreter. A fixture
// is a .js file whose leading /*--- ... ---*/ block is YAML metadata
// declaring what the script must produce.
package fixtures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/evaljs/bindings"
	"github.com/example/evaljs/builtins"
	"github.com/example/evaljs/interpreter"
	"github.com/example/evaljs/runtime"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

type Result int

const (
	Pass Result = iota
	Fail
	Skip
	Error
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

type TestResult struct {
	Path    string
	Result  Result
	Message string
	Elapsed time.Duration
}

type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int
	Elapsed time.Duration
}

type Config struct {
	Dir     string
	Filter  string
	Limit   int
	Verbose bool
	// Timeout bounds each fixture, timers included. Zero means 5s.
	Timeout time.Duration
	// Logger receives interpreter diagnostics. Nil discards them.
	Logger *slog.Logger
	// Out receives per-fixture lines in verbose mode. Nil means stdout.
	Out io.Writer
}

// Meta is the YAML header of a fixture.
type Meta struct {
	Description string `yaml:"description"`
	// Scope holds extra globals in the bindings format.
	Scope yaml.Node `yaml:"scope"`
	// Result is the expected completion value as rendered by the REPL.
	Result *string `yaml:"result"`
	// Error is a prefix of the expected uncaught error, e.g. "TypeError".
	Error  string  `yaml:"error"`
	Output *string `yaml:"output"`
	Lines  []int   `yaml:"lines"`
	Skip   string  `yaml:"skip"`
}

// Run discovers and runs the fixtures under cfg.Dir.
func Run(cfg Config) ([]TestResult, Summary) {
	var files []string
	filepath.WalkDir(cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".js") {
			return nil
		}
		if cfg.Filter != "" {
			rel, _ := filepath.Rel(cfg.Dir, path)
			if !strings.Contains(rel, cfg.Filter) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})

	if cfg.Limit > 0 && len(files) > cfg.Limit {
		files = files[:cfg.Limit]
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	start := time.Now()
	var results []TestResult
	var summary Summary
	summary.Total = len(files)

	for _, path := range files {
		rel, _ := filepath.Rel(cfg.Dir, path)
		tr := RunFile(path, cfg)
		tr.Path = rel
		results = append(results, tr)

		switch tr.Result {
		case Pass:
			summary.Passed++
		case Fail:
			summary.Failed++
		case Skip:
			summary.Skipped++
		case Error:
			summary.Errors++
		}

		if cfg.Verbose {
			msg := ""
			if tr.Message != "" {
				msg = " " + tr.Message
			}
			fmt.Fprintf(out, "%s %s%s\n", tr.Result, rel, msg)
		}
	}

	summary.Elapsed = time.Since(start)
	return results, summary
}

// RunFile runs a single fixture.
func RunFile(path string, cfg Config) TestResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return TestResult{Path: path, Result: Error, Message: "read error: " + err.Error()}
	}
	return RunSource(path, string(source), cfg)
}

// RunSource runs fixture source that was already read.
func RunSource(name, source string, cfg Config) TestResult {
	meta, err := ParseMeta(source)
	if err != nil {
		return TestResult{Path: name, Result: Error, Message: "metadata: " + err.Error()}
	}
	if meta.Skip != "" {
		return TestResult{Path: name, Result: Skip, Message: meta.Skip}
	}
	var scope map[string]*runtime.Value
	if meta.Scope.Kind != 0 {
		if scope, err = bindings.FromNode(&meta.Scope); err != nil {
			return TestResult{Path: name, Result: Error, Message: "scope: " + err.Error()}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	start := time.Now()
	var stdout bytes.Buffer
	env := interpreter.NewEnvironment(interpreter.Options{
		Scope:  scope,
		Logger: logger,
		Stdout: &stdout,
		Stderr: &stdout,
	})
	var lines []int
	if meta.Lines != nil {
		env.OnLine(func(line int) { lines = append(lines, line) })
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	resultCh := make(chan evalResult, 1)
	go func() {
		val, err := env.Run(source)
		if err == nil {
			err = env.Loop().Drain(ctx)
		}
		resultCh <- evalResult{val: val, err: err}
	}()

	var res evalResult
	select {
	case res = <-resultCh:
	case <-ctx.Done():
		return TestResult{
			Path:    name,
			Result:  Error,
			Message: fmt.Sprintf("timeout (%s)", timeout),
			Elapsed: time.Since(start),
		}
	}
	elapsed := time.Since(start)

	fail := func(format string, args ...any) TestResult {
		return TestResult{Path: name, Result: Fail, Message: fmt.Sprintf(format, args...), Elapsed: elapsed}
	}

	if errors.Is(res.err, context.DeadlineExceeded) {
		return TestResult{Path: name, Result: Error, Message: fmt.Sprintf("timeout (%s)", timeout), Elapsed: elapsed}
	}
	if meta.Error != "" {
		if res.err == nil {
			return fail("expected %s, got no error", meta.Error)
		}
		if got := runtime.Describe(runtime.ErrorValue(res.err)); !strings.HasPrefix(got, meta.Error) {
			return fail("expected %s, got %s", meta.Error, got)
		}
	} else if res.err != nil {
		return fail("%v", res.err)
	}

	if meta.Result != nil && res.err == nil {
		if got := builtins.Inspect(res.val); got != *meta.Result {
			return fail("result: want %s, got %s", *meta.Result, got)
		}
	}
	if meta.Output != nil {
		if diff := cmp.Diff(*meta.Output, stdout.String()); diff != "" {
			return fail("output (-want +got):\n%s", diff)
		}
	}
	if meta.Lines != nil {
		if diff := cmp.Diff(meta.Lines, lines); diff != "" {
			return fail("lines (-want +got):\n%s", diff)
		}
	}
	return TestResult{Path: name, Result: Pass, Elapsed: elapsed}
}

type evalResult struct {
	val *runtime.Value
	err error
}

// ParseMeta decodes the /*--- ... ---*/ header of source. A source without
// a header has empty metadata, which only requires that it runs without
// error.
func ParseMeta(source string) (Meta, error) {
	var meta Meta

	startIdx := strings.Index(source, "/*---")
	if startIdx < 0 {
		return meta, nil
	}
	endIdx := strings.Index(source[startIdx:], "---*/")
	if endIdx < 0 {
		return meta, fmt.Errorf("unterminated header")
	}

	dec := yaml.NewDecoder(strings.NewReader(source[startIdx+5 : startIdx+endIdx]))
	dec.KnownFields(true)
	if err := dec.Decode(&meta); err != nil && !errors.Is(err, io.EOF) {
		return meta, err
	}
	return meta, nil
}
