package interpreter

import (
	"fmt"
	"strings"

	"github.com/example/evaljs/ast"
	"github.com/example/evaljs/coro"
	"github.com/example/evaljs/runtime"
)

// template is the compiled, scope-independent part of a function.
type template struct {
	name   string
	params []string
	body   thunk
	decls  *declarations
	// source is what Function.prototype.toString shows.
	source string
}

// function is a template closed over the store it was created in.
type function struct {
	*template
	scope *runtime.Store
}

func (env *Environment) compileFunction(name *ast.Identifier, params []*ast.Identifier, body *ast.BlockStatement) *template {
	t := &template{}
	if name != nil {
		t.name = name.Name
	}
	for _, p := range params {
		t.params = append(t.params, p.Name)
	}
	t.source = fmt.Sprintf("function %s(%s) { [script code] }", t.name, strings.Join(t.params, ", "))
	saved := env.decls
	env.decls = newDeclarations()
	if body != nil {
		t.body = env.genSequence(body.Statements)
	} else {
		t.body = noop
	}
	t.decls = env.decls
	env.decls = saved
	return t
}

func (env *Environment) genFuncDecl(n *ast.FunctionDeclaration) thunk {
	t := env.compileFunction(n.Name, n.Params, n.Body)
	env.decls.addFunc(t.name, func(store *runtime.Store) *runtime.Value {
		return env.instantiate(t, store)
	})
	return noop
}

// genFuncExpr gives a named function expression a scope of its own that
// binds the name to the function.
func (env *Environment) genFuncExpr(n *ast.FunctionExpression) thunk {
	t := env.compileFunction(n.Name, n.Params, n.Body)
	return func() coro.Task[Completion] {
		if t.name == "" {
			return direct(env.instantiate(t, env.store), nil)
		}
		scope := runtime.Push(env.store, nil)
		fn := env.instantiate(t, scope)
		scope.Record.Set(t.name, fn)
		return direct(fn, nil)
	}
}

// instantiate creates a function value closing over scope. Host code calls
// it through its Callable, which drives the body with its own trampoline.
func (env *Environment) instantiate(t *template, scope *runtime.Store) *runtime.Value {
	fn := &function{template: t, scope: scope}
	obj := runtime.NewFunctionObject(t.name, len(t.params), func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := coro.Run(env.invoke(fn, this, args))
		if err != nil {
			return nil, err
		}
		return c.value(), nil
	})
	obj.Internal = map[string]interface{}{"function": fn, "source": t.source}
	proto := runtime.NewPlainObject()
	proto.DefineProperty("constructor", &runtime.Property{Value: runtime.NewObject(obj), Writable: true, Configurable: true})
	obj.DefineProperty("prototype", &runtime.Property{Value: runtime.NewObject(proto), Writable: true})
	return runtime.NewObject(obj)
}

func functionOf(v *runtime.Value) (*function, bool) {
	if v == nil || v.Type != runtime.TypeObject || v.Object == nil {
		return nil, false
	}
	fn, ok := v.Object.Internal["function"].(*function)
	return fn, ok
}

// invoke runs one call of fn. The previous store and receiver are restored
// when the task is popped, whether the body finished or failed.
func (env *Environment) invoke(fn *function, this *runtime.Value, args []*runtime.Value) coro.Task[Completion] {
	var (
		savedStore *runtime.Store
		savedThis  *runtime.Value
		entered    bool
	)
	return coro.Stages(
		func(Completion) step {
			store := runtime.Push(fn.scope, nil)
			fn.decls.install(store)
			store.Record.Set("arguments", runtime.NewObject(runtime.NewArgumentsObject(args)))
			for i, name := range fn.params {
				v := runtime.Undefined
				if i < len(args) && args[i] != nil {
					v = args[i]
				}
				store.Record.Set(name, v)
			}
			if this.IsNullish() {
				this = runtime.NewObject(env.global)
			}
			savedStore, savedThis, entered = env.store, env.this, true
			env.store, env.this = store, this
			return delegate(fn.body)
		},
		func(c Completion) step {
			if c.Kind == Return {
				return done(c.value())
			}
			if _, ok := runtime.PromiseOf(c.Value); ok {
				return done(c.Value)
			}
			return done(runtime.Undefined)
		},
	).Finally(func() {
		if entered {
			env.store, env.this = savedStore, savedThis
		}
	})
}

// call invokes fn. Script functions run on the caller's trampoline; host
// functions are called directly.
func (env *Environment) call(fn, this *runtime.Value, args []*runtime.Value) coro.Task[Completion] {
	if f, ok := functionOf(fn); ok {
		return env.invoke(f, this, args)
	}
	return direct(runtime.Call(fn, this, args))
}

// construct implements `new`. Script functions get a fresh object linked to
// their prototype property, and that object is the result whatever the body
// returns. Host constructors must be on the allow-list.
func (env *Environment) construct(ctor *runtime.Value, args []*runtime.Value, text string) coro.Task[Completion] {
	if f, ok := functionOf(ctor); ok {
		proto := runtime.DefaultObjectPrototype
		p, err := ctor.Object.Lookup("prototype")
		if err != nil {
			return direct(nil, err)
		}
		if p.Type == runtime.TypeObject {
			proto = p.Object
		}
		obj := runtime.NewObject(runtime.NewOrdinaryObject(proto))
		return coro.Stages(
			func(Completion) step {
				return coro.Delegate(env.invoke(f, obj, args))
			},
			func(Completion) step {
				return done(obj)
			},
		)
	}
	if ctor.Type == runtime.TypeObject && env.constructors[ctor.Object] && ctor.Object.Construct != nil {
		return direct(ctor.Object.Construct(args))
	}
	return direct(nil, fmt.Errorf("TypeError: %s is not a constructor", text))
}

// method reads base[key] for a call. then and catch on a promise are
// replaced by continuations that run script callbacks through the
// interpreter.
func (env *Environment) method(base *runtime.Value, key string) (*runtime.Value, error) {
	if p, ok := runtime.PromiseOf(base); ok && (key == "then" || key == "catch") {
		return env.promiseMethod(p, key), nil
	}
	return runtime.GetMember(base, key)
}

func (env *Environment) promiseMethod(p *runtime.Promise, key string) *runtime.Value {
	fn := runtime.NewFunctionObject(key, 2, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		if key == "catch" {
			return p.Then(nil, env.reaction(arg(args, 0))).Value(), nil
		}
		return p.Then(env.reaction(arg(args, 0)), env.reaction(arg(args, 1))).Value(), nil
	})
	return runtime.NewObject(fn)
}

// reaction adapts a callback to a promise continuation. Non-callable values
// give nil so the settled value passes through.
func (env *Environment) reaction(fn *runtime.Value) runtime.Reaction {
	if !fn.IsCallable() {
		return nil
	}
	return func(v *runtime.Value) (*runtime.Value, error) {
		c, err := coro.Run(env.call(fn, runtime.Undefined, []*runtime.Value{v}))
		if err != nil {
			return nil, err
		}
		return c.value(), nil
	}
}

func arg(args []*runtime.Value, i int) *runtime.Value {
	if i < len(args) && args[i] != nil {
		return args[i]
	}
	return runtime.Undefined
}
