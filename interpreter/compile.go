package interpreter

import (
	"fmt"
	"strings"

	"github.com/example/evaljs/ast"
	"github.com/example/evaljs/coro"
	"github.com/example/evaljs/runtime"
)

type strategy func(env *Environment, n ast.Node) thunk

// strategies maps node kinds to their compile strategy. It is filled in
// init because the strategies call back into gen.
var strategies map[string]strategy

func on[N ast.Node](fn func(*Environment, N) thunk) strategy {
	return func(env *Environment, n ast.Node) thunk {
		return fn(env, n.(N))
	}
}

func init() {
	strategies = map[string]strategy{
		"Program":             on(func(env *Environment, n *ast.Program) thunk { return env.genSequence(n.Statements) }),
		"BlockStatement":      on(func(env *Environment, n *ast.BlockStatement) thunk { return env.genSequence(n.Statements) }),
		"ExpressionStatement": on(func(env *Environment, n *ast.ExpressionStatement) thunk { return env.gen(n.Expression) }),
		"EmptyStatement":      on(func(*Environment, *ast.EmptyStatement) thunk { return noop }),
		"VariableDeclaration": on((*Environment).genVarDecl),
		"FunctionDeclaration": on((*Environment).genFuncDecl),
		"ReturnStatement":     on((*Environment).genReturn),
		"IfStatement":         on((*Environment).genIf),
		"ForStatement":        on((*Environment).genFor),
		"WhileStatement":      on((*Environment).genWhile),
		"DoWhileStatement":    on((*Environment).genDoWhile),
		"ForInStatement":      on((*Environment).genForIn),
		"BreakStatement":      on((*Environment).genBreak),
		"ContinueStatement":   on((*Environment).genContinue),
		"SwitchStatement":     on((*Environment).genSwitch),
		"WithStatement":       on((*Environment).genWith),
		"ThrowStatement":      on((*Environment).genThrow),
		"TryStatement":        on((*Environment).genTry),

		"Identifier":            on((*Environment).genIdent),
		"NumberLiteral":         on(func(_ *Environment, n *ast.NumberLiteral) thunk { return constant(runtime.NewNumber(n.Value)) }),
		"StringLiteral":         on(func(_ *Environment, n *ast.StringLiteral) thunk { return constant(runtime.NewString(n.Value)) }),
		"BooleanLiteral":        on(func(_ *Environment, n *ast.BooleanLiteral) thunk { return constant(runtime.NewBool(n.Value)) }),
		"NullLiteral":           on(func(*Environment, *ast.NullLiteral) thunk { return constant(runtime.Null) }),
		"RegExpLiteral":         on((*Environment).genRegExp),
		"ArrayLiteral":          on((*Environment).genArray),
		"ObjectLiteral":         on((*Environment).genObject),
		"FunctionExpression":    on((*Environment).genFuncExpr),
		"UnaryExpression":       on((*Environment).genUnary),
		"UpdateExpression":      on((*Environment).genUpdate),
		"BinaryExpression":      on((*Environment).genBinary),
		"LogicalExpression":     on((*Environment).genLogical),
		"AssignmentExpression":  on((*Environment).genAssign),
		"ConditionalExpression": on((*Environment).genConditional),
		"CallExpression":        on((*Environment).genCall),
		"NewExpression":         on((*Environment).genNew),
		"MemberExpression":      on((*Environment).genMember),
		"SequenceExpression":    on((*Environment).genSequenceExpr),
		"ThisExpression":        on(func(env *Environment, _ *ast.ThisExpression) thunk { return env.genThis() }),
	}
}

// gen compiles n. Kinds without a strategy log a warning and compile to a
// no-op.
func (env *Environment) gen(n ast.Node) thunk {
	if n == nil {
		return noop
	}
	s, ok := strategies[n.Kind()]
	if !ok {
		env.Logger.Warn("unsupported syntax", "kind", n.Kind(), "line", ast.Start(n).Line)
		return noop
	}
	t := s(env, n)
	if env.debug {
		return env.traced(n, t)
	}
	return t
}

func (env *Environment) traced(n ast.Node, t thunk) thunk {
	kind, line := n.Kind(), ast.Start(n).Line
	return func() coro.Task[Completion] {
		env.Logger.Debug("closure invoked", "kind", kind, "line", line)
		return t()
	}
}

func (env *Environment) genAll(exprs []ast.Expression) []thunk {
	out := make([]thunk, len(exprs))
	for i, e := range exprs {
		if e != nil {
			out[i] = env.gen(e)
		}
	}
	return out
}

func constant(v *runtime.Value) thunk {
	task := direct(v, nil)
	return func() coro.Task[Completion] { return task }
}

// reference is a compiled assignment target: a variable name, or an object
// expression plus a static or computed property name.
type reference struct {
	name   string
	object thunk
	key    thunk
}

// reference compiles expr as an assignment target. ok is false for
// expressions that cannot be assigned to.
func (env *Environment) reference(expr ast.Expression) (*reference, bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return &reference{name: e.Name}, true
	case *ast.MemberExpression:
		return env.memberReference(e), true
	}
	return nil, false
}

func (env *Environment) memberReference(e *ast.MemberExpression) *reference {
	ref := &reference{object: env.gen(e.Object)}
	if id, ok := e.Property.(*ast.Identifier); ok && !e.Computed {
		ref.name = id.Name
	} else {
		ref.key = env.gen(e.Property)
	}
	return ref
}

// resolve evaluates the object and key of r and hands them to next. base is
// nil for variable references.
func (r *reference) resolve(next func(base *runtime.Value, key string) coro.Task[Completion]) coro.Task[Completion] {
	if r.object == nil {
		return next(nil, r.name)
	}
	var base *runtime.Value
	return coro.Stages(
		func(Completion) step {
			return delegate(r.object)
		},
		func(c Completion) step {
			base = c.Value
			if r.key == nil {
				return coro.Next(Completion{Value: runtime.NewString(r.name)})
			}
			return delegate(r.key)
		},
		func(c Completion) step {
			key, err := runtime.ToPropertyKey(c.Value)
			if err != nil {
				return fail(err)
			}
			return coro.Delegate(next(base, key))
		},
	)
}

func (env *Environment) get(base *runtime.Value, key string) (*runtime.Value, error) {
	if base == nil {
		return env.store.Lookup(key)
	}
	return runtime.GetMember(base, key)
}

func (env *Environment) put(base *runtime.Value, key string, v *runtime.Value) error {
	if base == nil {
		return env.store.Assign(key, v)
	}
	return runtime.SetMember(base, key, v)
}

func (env *Environment) remove(base *runtime.Value, key string) (bool, error) {
	if base == nil {
		s := env.store.Resolve(key)
		if !s.Record.HasOwnProperty(key) {
			return true, nil
		}
		return s.Record.Delete(key), nil
	}
	obj, err := runtime.ToObject(base)
	if err != nil {
		return false, err
	}
	return obj.Delete(key), nil
}

// sourceText renders a callee for error messages, e.g. "obj.method".
func sourceText(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.ThisExpression:
		return "this"
	case *ast.MemberExpression:
		if id, ok := e.Property.(*ast.Identifier); ok && !e.Computed {
			return sourceText(e.Object) + "." + id.Name
		}
		if s, ok := e.Property.(*ast.StringLiteral); ok {
			return fmt.Sprintf("%s[%q]", sourceText(e.Object), s.Value)
		}
		return sourceText(e.Object) + "[...]"
	case *ast.CallExpression:
		return sourceText(e.Callee) + "(...)"
	case *ast.FunctionExpression:
		return "(intermediate value)"
	}
	return strings.ToLower(strings.TrimSuffix(expr.Kind(), "Expression"))
}
