package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/evaljs/builtins"
	"github.com/example/evaljs/interpreter"
	"github.com/example/evaljs/parser"
	"github.com/peterh/liner"
)

const (
	promptMain  = "> "
	promptCont  = "... "
	historyFile = ".evaljs_history"
)

// repl reads statements until EOF or .exit. Bindings persist across inputs;
// pending promise reactions and timers are drained after each one.
func repl(env *interpreter.Environment, timeout time.Duration) int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == ".exit" {
			return 0
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		v, err := env.Run(code)
		if err == nil {
			err = drain(env, timeout)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		fmt.Println(builtins.Inspect(v))
	}
}

// readStatement keeps prompting while the input so far ends mid-construct.
// ok is false at end of input.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := parser.Parse(src); parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
