package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/example/evaljs/bindings"
	"github.com/example/evaljs/builtins"
	"github.com/example/evaljs/interpreter"
	"github.com/example/evaljs/parser"
	"github.com/example/evaljs/runtime"
)

func main() {
	evalCode := flag.String("e", "", "evaluate inline JavaScript code")
	dumpAST := flag.Bool("ast", false, "dump the AST as JSON")
	scopeFile := flag.String("scope", "", "YAML file of extra global bindings")
	trace := flag.Bool("trace", false, "print a line event for every evaluated line")
	verbose := flag.Bool("v", false, "log diagnostics and closure invocations at debug level")
	interactive := flag.Bool("i", false, "start an interactive session")
	timeout := flag.Duration("timeout", 30*time.Second, "maximum time to wait for pending timers")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := interpreter.Options{Logger: logger, Debug: *verbose}
	if *scopeFile != "" {
		scope, err := bindings.Load(*scopeFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts.Scope = scope
	}

	var source string
	hasSource := true

	if *evalCode != "" {
		source = *evalCode
	} else if flag.NArg() > 0 {
		filename := flag.Arg(0)
		data, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	} else if *interactive {
		hasSource = false
	} else {
		fmt.Fprintf(os.Stderr, "Usage: evaljs [options] <file.js>\n")
		fmt.Fprintf(os.Stderr, "       evaljs -e \"code\"\n")
		fmt.Fprintf(os.Stderr, "       evaljs -i\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// AST dump mode: parse and print JSON
	if *dumpAST {
		program, err := parser.Parse(source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(program); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding AST: %v\n", err)
			os.Exit(1)
		}
		return
	}

	env := interpreter.NewEnvironment(opts)
	if *trace {
		env.OnLine(func(line int) {
			fmt.Fprintf(os.Stderr, "line %d\n", line)
		})
	}

	if hasSource {
		result, err := env.Run(source)
		if err == nil {
			err = drain(env, *timeout)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !*interactive {
			if result != nil && result.Type != runtime.TypeUndefined {
				fmt.Println(builtins.Inspect(result))
			}
			return
		}
	}

	os.Exit(repl(env, *timeout))
}

func drain(env *interpreter.Environment, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return env.Loop().Drain(ctx)
}
