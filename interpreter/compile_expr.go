package interpreter

import (
	"fmt"

	"github.com/example/evaljs/ast"
	"github.com/example/evaljs/builtins"
	"github.com/example/evaljs/coro"
	"github.com/example/evaljs/runtime"
)

func (env *Environment) genIdent(n *ast.Identifier) thunk {
	name := n.Name
	return func() coro.Task[Completion] {
		return direct(env.store.Lookup(name))
	}
}

func (env *Environment) genThis() thunk {
	return func() coro.Task[Completion] {
		return direct(env.this, nil)
	}
}

func (env *Environment) genRegExp(n *ast.RegExpLiteral) thunk {
	pattern, flags := n.Pattern, n.Flags
	return func() coro.Task[Completion] {
		return direct(builtins.NewRegExp(pattern, flags))
	}
}

func (env *Environment) genArray(n *ast.ArrayLiteral) thunk {
	elems := env.genAll(n.Elements)
	return func() coro.Task[Completion] {
		return collect(elems, func(vals []*runtime.Value) coro.Task[Completion] {
			return direct(runtime.NewArray(vals), nil)
		})
	}
}

type objectEntry struct {
	key  string
	kind string
}

// genObject computes property keys once at compile time; only the values
// are evaluated per run.
func (env *Environment) genObject(n *ast.ObjectLiteral) thunk {
	entries := make([]objectEntry, len(n.Properties))
	values := make([]thunk, len(n.Properties))
	for i, p := range n.Properties {
		entries[i] = objectEntry{key: env.propertyKey(p.Key), kind: p.PropKind}
		values[i] = env.gen(p.Value)
	}
	return func() coro.Task[Completion] {
		return collect(values, func(vals []*runtime.Value) coro.Task[Completion] {
			obj := runtime.NewPlainObject()
			for i, e := range entries {
				switch e.kind {
				case "get", "set":
					prop, ok := obj.GetOwnProperty(e.key)
					if !ok || !prop.IsAccessor {
						prop = &runtime.Property{IsAccessor: true, Enumerable: true, Configurable: true}
					}
					if e.kind == "get" {
						prop.Getter = vals[i]
					} else {
						prop.Setter = vals[i]
					}
					obj.DefineProperty(e.key, prop)
				default:
					obj.DefineProperty(e.key, &runtime.Property{Value: vals[i], Writable: true, Enumerable: true, Configurable: true})
				}
			}
			return direct(runtime.NewObject(obj), nil)
		})
	}
}

func (env *Environment) propertyKey(key ast.Expression) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.StringLiteral:
		return k.Value
	case *ast.NumberLiteral:
		return runtime.FormatNumber(k.Value)
	}
	env.Logger.Warn("unsupported property key", "kind", key.Kind(), "line", key.Pos().Line)
	return key.TokenLiteral()
}

func (env *Environment) genUnary(n *ast.UnaryExpression) thunk {
	if n.Operator == "delete" {
		return env.genDelete(n)
	}
	op, ok := unaryOps[n.Operator]
	if !ok {
		env.Logger.Warn("unsupported operator", "operator", n.Operator, "line", n.Pos().Line)
		return noop
	}
	operand := env.gen(n.Operand)
	return func() coro.Task[Completion] {
		return coro.Stages(
			func(Completion) step {
				return delegate(operand)
			},
			func(c Completion) step {
				v, err := op(c.Value)
				if err != nil {
					return fail(err)
				}
				return done(v)
			},
		)
	}
}

func (env *Environment) genDelete(n *ast.UnaryExpression) thunk {
	ref, ok := env.reference(n.Operand)
	if !ok {
		env.Logger.Warn("invalid delete target", "kind", n.Operand.Kind(), "line", n.Pos().Line)
		operand := env.gen(n.Operand)
		return func() coro.Task[Completion] {
			return coro.Stages(
				func(Completion) step { return delegate(operand) },
				func(Completion) step { return done(runtime.True) },
			)
		}
	}
	return func() coro.Task[Completion] {
		return ref.resolve(func(base *runtime.Value, key string) coro.Task[Completion] {
			ok, err := env.remove(base, key)
			if err != nil {
				return direct(nil, err)
			}
			return direct(runtime.NewBool(ok), nil)
		})
	}
}

func (env *Environment) genUpdate(n *ast.UpdateExpression) thunk {
	line := ast.Start(n).Line
	ref, ok := env.reference(n.Operand)
	if !ok {
		env.Logger.Warn("invalid update target", "kind", n.Operand.Kind(), "line", line)
		return env.gen(n.Operand)
	}
	delta, prefix := updateOps[n.Operator], n.Prefix
	return func() coro.Task[Completion] {
		return ref.resolve(func(base *runtime.Value, key string) coro.Task[Completion] {
			old, err := env.get(base, key)
			if err != nil {
				return direct(nil, err)
			}
			num, err := runtime.ToNumber(old)
			if err != nil {
				return direct(nil, err)
			}
			next := runtime.NewNumber(num + delta)
			env.emitLine(line)
			if err := env.put(base, key, next); err != nil {
				return direct(nil, err)
			}
			if prefix {
				return direct(next, nil)
			}
			return direct(runtime.NewNumber(num), nil)
		})
	}
}

func (env *Environment) genBinary(n *ast.BinaryExpression) thunk {
	op, ok := binaryOps[n.Operator]
	if !ok {
		env.Logger.Warn("unsupported operator", "operator", n.Operator, "line", n.Pos().Line)
		return noop
	}
	left, right := env.gen(n.Left), env.gen(n.Right)
	return func() coro.Task[Completion] {
		var lv *runtime.Value
		return coro.Stages(
			func(Completion) step {
				return delegate(left)
			},
			func(c Completion) step {
				lv = c.Value
				return delegate(right)
			},
			func(c Completion) step {
				v, err := op(lv, c.Value)
				if err != nil {
					return fail(err)
				}
				return done(v)
			},
		)
	}
}

func (env *Environment) genLogical(n *ast.LogicalExpression) thunk {
	more, ok := logicalOps[n.Operator]
	if !ok {
		env.Logger.Warn("unsupported operator", "operator", n.Operator, "line", n.Pos().Line)
		return noop
	}
	left, right := env.gen(n.Left), env.gen(n.Right)
	return func() coro.Task[Completion] {
		return coro.Stages(
			func(Completion) step {
				return delegate(left)
			},
			func(c Completion) step {
				if more(c.Value) {
					return delegate(right)
				}
				return coro.Done(c)
			},
		)
	}
}

func (env *Environment) genAssign(n *ast.AssignmentExpression) thunk {
	line := ast.Start(n.Left).Line
	right := env.gen(n.Right)
	ref, ok := env.reference(n.Left)
	if !ok {
		env.Logger.Warn("invalid assignment target", "kind", n.Left.Kind(), "line", line)
		return right
	}
	if n.Operator == "=" {
		return env.genStore(ref, right, line)
	}
	opName, ok := compoundOps[n.Operator]
	if !ok {
		env.Logger.Warn("unsupported operator", "operator", n.Operator, "line", line)
		return right
	}
	op := binaryOps[opName]
	return func() coro.Task[Completion] {
		return ref.resolve(func(base *runtime.Value, key string) coro.Task[Completion] {
			var old *runtime.Value
			return coro.Stages(
				func(Completion) step {
					v, err := env.get(base, key)
					if err != nil {
						return fail(err)
					}
					old = v
					return delegate(right)
				},
				func(c Completion) step {
					v, err := op(old, c.Value)
					if err != nil {
						return fail(err)
					}
					env.emitLine(line)
					if err := env.put(base, key, v); err != nil {
						return fail(err)
					}
					return done(v)
				},
			)
		})
	}
}

// genStore compiles a plain assignment of value to ref.
func (env *Environment) genStore(ref *reference, value thunk, line int) thunk {
	return func() coro.Task[Completion] {
		return ref.resolve(func(base *runtime.Value, key string) coro.Task[Completion] {
			return coro.Stages(
				func(Completion) step {
					return delegate(value)
				},
				func(c Completion) step {
					env.emitLine(line)
					if err := env.put(base, key, c.Value); err != nil {
						return fail(err)
					}
					return done(c.Value)
				},
			)
		})
	}
}

func (env *Environment) genConditional(n *ast.ConditionalExpression) thunk {
	test, cons, alt := env.gen(n.Test), env.gen(n.Consequent), env.gen(n.Alternate)
	line := ast.Start(n).Line
	return func() coro.Task[Completion] {
		return coro.Stages(
			func(Completion) step {
				env.emitLine(line)
				return delegate(test)
			},
			func(c Completion) step {
				if c.Value.ToBoolean() {
					return delegate(cons)
				}
				return delegate(alt)
			},
		)
	}
}

func (env *Environment) genSequenceExpr(n *ast.SequenceExpression) thunk {
	exprs := env.genAll(n.Expressions)
	return func() coro.Task[Completion] {
		return collect(exprs, func(vals []*runtime.Value) coro.Task[Completion] {
			if len(vals) == 0 {
				return direct(runtime.Undefined, nil)
			}
			return direct(vals[len(vals)-1], nil)
		})
	}
}

func (env *Environment) genMember(n *ast.MemberExpression) thunk {
	ref := env.memberReference(n)
	line := ast.Start(n).Line
	return func() coro.Task[Completion] {
		return ref.resolve(func(base *runtime.Value, key string) coro.Task[Completion] {
			env.emitLine(line)
			return direct(runtime.GetMember(base, key))
		})
	}
}

// genCall binds a member callee to its object, which is evaluated once.
// Other callees are called with an undefined receiver.
func (env *Environment) genCall(n *ast.CallExpression) thunk {
	args := env.genAll(n.Arguments)
	line := ast.Start(n).Line
	text := sourceText(n.Callee)

	if member, ok := n.Callee.(*ast.MemberExpression); ok {
		ref := env.memberReference(member)
		return func() coro.Task[Completion] {
			return ref.resolve(func(base *runtime.Value, key string) coro.Task[Completion] {
				fn, err := env.method(base, key)
				if err != nil {
					return direct(nil, err)
				}
				return collect(args, func(vals []*runtime.Value) coro.Task[Completion] {
					env.emitLine(line)
					return env.callValue(fn, base, vals, text)
				})
			})
		}
	}

	callee := env.gen(n.Callee)
	return func() coro.Task[Completion] {
		return coro.Stages(
			func(Completion) step {
				return delegate(callee)
			},
			func(c Completion) step {
				fn := c.Value
				return coro.Delegate(collect(args, func(vals []*runtime.Value) coro.Task[Completion] {
					env.emitLine(line)
					return env.callValue(fn, runtime.Undefined, vals, text)
				}))
			},
		)
	}
}

func (env *Environment) callValue(fn, this *runtime.Value, args []*runtime.Value, text string) coro.Task[Completion] {
	if !fn.IsCallable() {
		return direct(nil, fmt.Errorf("TypeError: %s is not a function", text))
	}
	return env.call(fn, this, args)
}

func (env *Environment) genNew(n *ast.NewExpression) thunk {
	callee := env.gen(n.Callee)
	args := env.genAll(n.Arguments)
	line := ast.Start(n).Line
	text := sourceText(n.Callee)
	return func() coro.Task[Completion] {
		return coro.Stages(
			func(Completion) step {
				return delegate(callee)
			},
			func(c Completion) step {
				ctor := c.Value
				return coro.Delegate(collect(args, func(vals []*runtime.Value) coro.Task[Completion] {
					env.emitLine(line)
					return env.construct(ctor, vals, text)
				}))
			},
		)
	}
}
