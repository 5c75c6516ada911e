package interpreter

import (
	"github.com/example/evaljs/coro"
	"github.com/example/evaljs/runtime"
)

// CompletionKind tags how a statement finished.
type CompletionKind int

const (
	Normal CompletionKind = iota
	Break
	Continue
	Return
)

func (k CompletionKind) String() string {
	switch k {
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Return:
		return "return"
	}
	return "normal"
}

// Completion is the result of running a compiled node. Expressions always
// complete normally with a non-nil Value. Statements that produce no value
// (declarations, empty statements) complete normally with a nil Value, so
// that they leave the running statement value untouched.
type Completion struct {
	Kind  CompletionKind
	Value *runtime.Value
}

// Abrupt reports whether c must stop statement sequencing.
func (c Completion) Abrupt() bool {
	return c.Kind != Normal
}

// value returns the completion value, reading an empty completion as
// undefined.
func (c Completion) value() *runtime.Value {
	if c.Value == nil {
		return runtime.Undefined
	}
	return c.Value
}

// thunk is the compiled form of one AST node. Each call starts a fresh
// evaluation.
type thunk func() coro.Task[Completion]

type step = coro.Step[Completion]

var empty = coro.Value(Completion{}, nil)

func noop() coro.Task[Completion] { return empty }

func direct(v *runtime.Value, err error) coro.Task[Completion] {
	return coro.Value(Completion{Value: v}, err)
}

func done(v *runtime.Value) step {
	return coro.Done(Completion{Value: v})
}

func fail(err error) step {
	return coro.Fail[Completion](err)
}

func delegate(t thunk) step {
	return coro.Delegate(t())
}

// collect evaluates thunks left to right and passes their values to next.
// A nil thunk yields a nil value, which array literals read as a hole.
func collect(thunks []thunk, next func([]*runtime.Value) coro.Task[Completion]) coro.Task[Completion] {
	vals := make([]*runtime.Value, 0, len(thunks))
	i := 0
	finished := false
	return coro.Func[Completion](func(in Completion) step {
		if finished {
			return coro.Done(in)
		}
		if i > 0 {
			vals = append(vals, in.Value)
		}
		for i < len(thunks) && thunks[i] == nil {
			vals = append(vals, nil)
			i++
		}
		if i < len(thunks) {
			i++
			return delegate(thunks[i-1])
		}
		finished = true
		return coro.Delegate(next(vals))
	})
}
