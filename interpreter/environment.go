// Package interpreter compiles parsed programs into closures and runs them.
//
// Every AST node is compiled once into a thunk. Running a thunk yields a
// coro.Task, so nested evaluation is driven by the coro trampoline instead
// of the Go stack. An Environment owns the scope chain, the receiver slot
// and the event loop that promise reactions and timers run on.
package interpreter

import (
	"context"
	"io"
	"log/slog"

	"github.com/example/evaljs/ast"
	"github.com/example/evaljs/builtins"
	"github.com/example/evaljs/coro"
	"github.com/example/evaljs/parser"
	"github.com/example/evaljs/runtime"
)

// Options configures a new Environment.
type Options struct {
	// Scope holds extra global bindings. They override built-in globals of
	// the same name.
	Scope map[string]*runtime.Value
	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// Debug logs every closure invocation at debug level.
	Debug bool
	// Stdout and Stderr back the console object. They default to the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// constructorNames lists the host constructors that `new` may invoke.
var constructorNames = []string{
	"Number", "String", "Boolean", "Object", "Promise", "Array",
	"Error", "TypeError", "RangeError", "SyntaxError", "ReferenceError", "EvalError", "URIError",
	"Set", "Map", "RegExp", "Date", "Symbol", "Proxy",
}

// Environment runs programs against one global object.
type Environment struct {
	Logger *slog.Logger

	global *runtime.Object
	loop   *runtime.Loop
	store  *runtime.Store
	this   *runtime.Value
	// decls collects hoisted bindings of the body being compiled.
	decls *declarations
	debug bool
	// constructors is the `new` allow-list, keyed by object identity.
	constructors map[*runtime.Object]bool
	listeners    []*lineListener
	state        string
}

type lineListener struct {
	fn func(line int)
}

// NewEnvironment creates an environment with the built-in globals plus
// opts.Scope.
func NewEnvironment(opts Options) *Environment {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loop := runtime.NewLoop()
	global := runtime.NewOrdinaryObject(nil)
	builtins.RegisterAll(global, builtins.HostOptions{Loop: loop, Stdout: opts.Stdout, Stderr: opts.Stderr})

	env := &Environment{
		Logger:       logger,
		global:       global,
		loop:         loop,
		store:        runtime.NewGlobalStore(global),
		this:         runtime.NewObject(global),
		debug:        opts.Debug,
		constructors: make(map[*runtime.Object]bool),
		state:        "running",
	}
	for _, name := range constructorNames {
		if v := global.Get(name); v.Type == runtime.TypeObject {
			env.constructors[v.Object] = true
		}
	}
	for name, v := range opts.Scope {
		global.DefineProperty(name, &runtime.Property{Value: v, Writable: true, Enumerable: true, Configurable: true})
	}
	return env
}

// Evaluate runs code in a fresh environment and drains its event loop.
func Evaluate(code string, opts Options) (*runtime.Value, error) {
	return EvaluateContext(context.Background(), code, opts)
}

// EvaluateContext is Evaluate with a context bounding the wait for timers.
func EvaluateContext(ctx context.Context, code string, opts Options) (*runtime.Value, error) {
	env := NewEnvironment(opts)
	v, err := env.Run(code)
	if err != nil {
		return nil, err
	}
	if err := env.loop.Drain(ctx); err != nil {
		return v, err
	}
	return v, nil
}

// Global returns the global object.
func (env *Environment) Global() *runtime.Object { return env.global }

// Loop returns the event loop that promise reactions and timers run on.
func (env *Environment) Loop() *runtime.Loop { return env.loop }

func (env *Environment) State() string { return env.state }

func (env *Environment) SetState(state string) { env.state = state }

// OnLine subscribes fn to line events. The returned function removes the
// subscription.
func (env *Environment) OnLine(fn func(line int)) (cancel func()) {
	l := &lineListener{fn: fn}
	env.listeners = append(env.listeners, l)
	return func() {
		for i, cur := range env.listeners {
			if cur == l {
				env.listeners = append(env.listeners[:i:i], env.listeners[i+1:]...)
				return
			}
		}
	}
}

func (env *Environment) emitLine(line int) {
	for _, l := range env.listeners {
		l.fn(line)
	}
}

// Run compiles and runs src in this environment. Bindings persist between
// calls, which is what the REPL relies on. The event loop is not drained.
func (env *Environment) Run(src string) (*runtime.Value, error) {
	c, err := env.GenSource(src)
	if err != nil {
		return nil, err
	}
	return c.Run()
}

// GenSource parses and compiles src.
func (env *Environment) GenSource(src string) (*Closure, error) {
	program, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return env.Gen(program), nil
}

// Gen compiles node and installs its hoisted declarations in the current
// store.
func (env *Environment) Gen(node ast.Node) *Closure {
	saved := env.decls
	env.decls = newDeclarations()
	body := env.gen(node)
	decls := env.decls
	env.decls = saved
	decls.install(env.store)
	return &Closure{env: env, body: body}
}

// Closure is a compiled program or fragment bound to its Environment.
type Closure struct {
	env  *Environment
	body thunk
}

// Task starts a new evaluation that the caller can step through.
func (c *Closure) Task() coro.Task[Completion] {
	return c.body()
}

// Run evaluates the closure to completion.
func (c *Closure) Run() (*runtime.Value, error) {
	store, this := c.env.store, c.env.this
	res, err := coro.Run(c.Task())
	c.env.store, c.env.this = store, this
	if err != nil {
		return nil, err
	}
	return res.value(), nil
}
