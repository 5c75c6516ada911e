package interpreter

import (
	"github.com/example/evaljs/ast"
	"github.com/example/evaljs/coro"
	"github.com/example/evaljs/runtime"
)

func (env *Environment) genThrow(n *ast.ThrowStatement) thunk {
	arg := env.gen(n.Argument)
	return func() coro.Task[Completion] {
		return coro.Stages(
			func(Completion) step {
				return delegate(arg)
			},
			func(c Completion) step {
				return fail(runtime.Throw(c.Value))
			},
		)
	}
}

type tryParts struct {
	block     thunk
	handler   thunk
	param     string
	finalizer thunk
}

// genTry drives the protected block with its own trampoline so that an
// error surfaces here, after the abandoned frames have restored the store
// and receiver.
func (env *Environment) genTry(n *ast.TryStatement) thunk {
	parts := &tryParts{block: noop}
	if n.Block != nil {
		parts.block = env.gen(n.Block)
	}
	if n.Handler != nil {
		parts.handler = noop
		if n.Handler.Body != nil {
			parts.handler = env.gen(n.Handler.Body)
		}
		if n.Handler.Param != nil {
			parts.param = n.Handler.Param.Name
		}
	}
	if n.Finalizer != nil {
		parts.finalizer = env.gen(n.Finalizer)
	}
	return func() coro.Task[Completion] {
		return coro.Func[Completion](func(Completion) step {
			return env.runTry(parts)
		})
	}
}

func (env *Environment) runTry(p *tryParts) step {
	c, err := env.drive(p.block)
	if err != nil && p.handler != nil {
		c, err = env.runCatch(p, err)
	}
	if p.finalizer != nil {
		fc, ferr := env.drive(p.finalizer)
		if ferr != nil {
			return fail(ferr)
		}
		if fc.Abrupt() {
			return coro.Done(fc)
		}
	}
	if err != nil {
		return fail(err)
	}
	return coro.Done(c)
}

// runCatch binds the caught value in the current store for the duration of
// the catch body, then puts back whatever the name held before.
func (env *Environment) runCatch(p *tryParts, caught error) (Completion, error) {
	if p.param == "" {
		return env.drive(p.handler)
	}
	rec := env.store.Record
	prev, had := rec.Properties[p.param]
	rec.DefineProperty(p.param, &runtime.Property{
		Value:        runtime.ErrorValue(caught),
		Writable:     true,
		Enumerable:   true,
		Configurable: true,
	})
	defer func() {
		if had {
			rec.DefineProperty(p.param, prev)
		} else {
			rec.Delete(p.param)
		}
	}()
	return env.drive(p.handler)
}

// drive runs t on a nested trampoline, putting the store and receiver back
// if it fails.
func (env *Environment) drive(t thunk) (Completion, error) {
	store, this := env.store, env.this
	c, err := coro.Run(t())
	if err != nil {
		env.store, env.this = store, this
	}
	return c, err
}
