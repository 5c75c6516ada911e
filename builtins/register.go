package builtins

import (
	"io"
	"os"
	"sync"

	"github.com/example/evaljs/runtime"
)

// HostOptions configures the bindings that belong to a single environment.
type HostOptions struct {
	// Loop receives promise reactions and timers. Nil runs reactions
	// synchronously and disables timers.
	Loop   *runtime.Loop
	Stdout io.Writer
	Stderr io.Writer
}

type binding struct {
	name  string
	value *runtime.Value
}

var (
	initOnce sync.Once
	shared   []binding
)

// Init builds the shared prototypes and constructors. It is safe to call
// more than once.
func Init() {
	initOnce.Do(initShared)
}

func initShared() {
	// Object and Function first: every later object links to them.
	objProto := runtime.NewOrdinaryObject(nil)
	runtime.DefaultObjectPrototype = objProto
	funcProto := runtime.NewOrdinaryObject(objProto)
	funcProto.OType = runtime.ObjTypeFunction
	funcProto.Callable = func(*runtime.Value, []*runtime.Value) (*runtime.Value, error) {
		return runtime.Undefined, nil
	}
	runtime.DefaultFunctionPrototype = funcProto

	add := func(name string, obj *runtime.Object) {
		shared = append(shared, binding{name, runtime.NewObject(obj)})
	}

	add("Object", createObjectConstructor(objProto))
	add("Function", createFunctionConstructor(funcProto))
	add("Array", createArrayConstructor(objProto))
	add("String", createStringConstructor(objProto))
	add("Number", createNumberConstructor(objProto))
	add("Boolean", createBooleanConstructor(objProto))
	add("Symbol", createSymbolConstructor(objProto))

	errorCtor := createErrorConstructor(objProto)
	add("Error", errorCtor)
	for _, name := range []string{"TypeError", "ReferenceError", "SyntaxError", "RangeError", "URIError", "EvalError"} {
		add(name, createErrorSubtype(name, errorCtor))
	}

	add("RegExp", createRegExpConstructor(objProto))
	add("Map", createMapConstructor(objProto))
	add("Set", createSetConstructor(objProto))
	add("Date", createDateConstructor(objProto))
	add("Math", createMathObject(objProto))
	add("JSON", createJSONObject(objProto))
	add("Proxy", createProxyConstructor())
	add("Reflect", createReflectObject(objProto))

	runtime.DefaultPromisePrototype = createPromisePrototype(objProto)

	shared = append(shared,
		binding{"undefined", runtime.Undefined},
		binding{"NaN", runtime.NaN},
		binding{"Infinity", runtime.PosInf},
	)
	for _, fn := range globalFunctions() {
		add(fn.Get("name").Str, fn)
	}
}

// Globals returns the shared initial bindings. The map is a fresh copy;
// the values it holds are shared between environments.
func Globals() map[string]*runtime.Value {
	Init()
	out := make(map[string]*runtime.Value, len(shared))
	for _, b := range shared {
		out[b.name] = b.value
	}
	return out
}

// HostGlobals returns the bindings tied to one environment: console, the
// Promise constructor and the timer functions.
func HostGlobals(opts HostOptions) map[string]*runtime.Value {
	Init()
	out := make(map[string]*runtime.Value)
	for _, b := range hostBindings(opts) {
		out[b.name] = b.value
	}
	return out
}

func hostBindings(opts HostOptions) []binding {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	bs := []binding{
		{"console", runtime.NewObject(createConsoleObject(opts.Stdout, opts.Stderr))},
		{"Promise", runtime.NewObject(createPromiseConstructor(opts.Loop))},
	}
	for _, fn := range timerFunctions(opts.Loop) {
		bs = append(bs, binding{fn.Get("name").Str, runtime.NewObject(fn)})
	}
	return bs
}

// RegisterAll installs the shared and per-environment bindings on global
// and links it to Object.prototype.
func RegisterAll(global *runtime.Object, opts HostOptions) {
	Init()
	global.Prototype = runtime.DefaultObjectPrototype
	for _, b := range shared {
		constant := b.name == "undefined" || b.name == "NaN" || b.name == "Infinity"
		setDataProp(global, b.name, b.value, !constant, false, !constant)
	}
	for _, b := range hostBindings(opts) {
		setDataProp(global, b.name, b.value, true, false, true)
	}
}
