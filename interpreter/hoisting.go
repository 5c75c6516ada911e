package interpreter

import (
	"github.com/example/evaljs/runtime"
)

// declarations collects the hoisted bindings of one function body or
// program while it is compiled. Function declarations anywhere in the body,
// nested blocks included, are recorded as factories; var names start as
// undefined.
type declarations struct {
	names []string
	funcs map[string]func(*runtime.Store) *runtime.Value
	seen  map[string]bool
}

func newDeclarations() *declarations {
	return &declarations{
		funcs: make(map[string]func(*runtime.Store) *runtime.Value),
		seen:  make(map[string]bool),
	}
}

func (d *declarations) addVar(name string) {
	if !d.seen[name] {
		d.seen[name] = true
		d.names = append(d.names, name)
	}
}

// addFunc records a function declaration. A later declaration of the same
// name replaces an earlier one.
func (d *declarations) addFunc(name string, factory func(*runtime.Store) *runtime.Value) {
	d.addVar(name)
	d.funcs[name] = factory
}

// install binds every declaration in store. Functions are created against
// store so that they close over it. A name store already binds keeps its
// value, so host scope bindings take precedence over declarations.
func (d *declarations) install(store *runtime.Store) {
	for _, name := range d.names {
		if store.Record.HasOwnProperty(name) {
			continue
		}
		v := runtime.Undefined
		if factory, ok := d.funcs[name]; ok {
			v = factory(store)
		}
		store.Declare(name, v)
	}
}
