package interpreter

import (
	"github.com/example/evaljs/ast"
	"github.com/example/evaljs/coro"
	"github.com/example/evaljs/runtime"
)

// genSequence runs statements in order, stopping at the first abrupt
// completion. The value of the last statement that produced one is the
// value of the sequence.
func (env *Environment) genSequence(stmts []ast.Statement) thunk {
	body := make([]thunk, len(stmts))
	for i, s := range stmts {
		body[i] = env.gen(s)
	}
	return func() coro.Task[Completion] {
		i := 0
		var last *runtime.Value
		return coro.Func[Completion](func(in Completion) step {
			if i > 0 {
				if in.Abrupt() {
					if in.Value == nil {
						in.Value = last
					}
					return coro.Done(in)
				}
				if in.Value != nil {
					last = in.Value
				}
			}
			if i == len(body) {
				return coro.Done(Completion{Value: last})
			}
			i++
			return delegate(body[i-1])
		})
	}
}

func (env *Environment) genVarDecl(n *ast.VariableDeclaration) thunk {
	var assigns []thunk
	for _, d := range n.Declarations {
		env.decls.addVar(d.Name.Name)
		if d.Value != nil {
			assigns = append(assigns, env.genStore(&reference{name: d.Name.Name}, env.gen(d.Value), ast.Start(d.Name).Line))
		}
	}
	if len(assigns) == 0 {
		return noop
	}
	return func() coro.Task[Completion] {
		return collect(assigns, func([]*runtime.Value) coro.Task[Completion] { return empty })
	}
}

func (env *Environment) genReturn(n *ast.ReturnStatement) thunk {
	var arg thunk
	if n.Value != nil {
		arg = env.gen(n.Value)
	}
	line := n.Pos().Line
	return func() coro.Task[Completion] {
		return coro.Stages(
			func(Completion) step {
				env.emitLine(line)
				if arg == nil {
					return coro.Next(Completion{})
				}
				return delegate(arg)
			},
			func(c Completion) step {
				return coro.Done(Completion{Kind: Return, Value: c.value()})
			},
		)
	}
}

func (env *Environment) genIf(n *ast.IfStatement) thunk {
	test := env.gen(n.Condition)
	cons := env.gen(n.Consequence)
	alt := thunk(noop)
	if n.Alternative != nil {
		alt = env.gen(n.Alternative)
	}
	line := n.Pos().Line
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

// loop describes the parts of a for, while or do-while statement. Nil parts
// are skipped; a nil test is always true.
type loop struct {
	line         int
	init         thunk
	test         thunk
	update       thunk
	body         thunk
	testAfterRun bool
}

func (env *Environment) genFor(n *ast.ForStatement) thunk {
	l := &loop{line: n.Pos().Line, body: env.gen(n.Body)}
	if n.Init != nil {
		l.init = env.gen(n.Init)
	}
	if n.Test != nil {
		l.test = env.gen(n.Test)
	}
	if n.Update != nil {
		l.update = env.gen(n.Update)
	}
	return env.loopThunk(l)
}

func (env *Environment) genWhile(n *ast.WhileStatement) thunk {
	return env.loopThunk(&loop{line: n.Pos().Line, test: env.gen(n.Condition), body: env.gen(n.Body)})
}

func (env *Environment) genDoWhile(n *ast.DoWhileStatement) thunk {
	return env.loopThunk(&loop{line: n.Pos().Line, test: env.gen(n.Condition), body: env.gen(n.Body), testAfterRun: true})
}

const (
	loopStart = iota
	loopInit
	loopTest
	loopBody
	loopUpdate
)

func (env *Environment) loopThunk(l *loop) thunk {
	return func() coro.Task[Completion] {
		phase := loopStart
		var last *runtime.Value
		return coro.Func[Completion](func(in Completion) step {
			for {
				switch phase {
				case loopStart:
					env.emitLine(l.line)
					if l.testAfterRun {
						phase = loopBody
						return delegate(l.body)
					}
					phase = loopInit
					if l.init != nil {
						return delegate(l.init)
					}
				case loopInit, loopUpdate:
					phase = loopTest
					if l.test != nil {
						env.emitLine(l.line)
						return delegate(l.test)
					}
					in = Completion{Value: runtime.True}
				case loopTest:
					if !in.Value.ToBoolean() {
						return coro.Done(Completion{Value: last})
					}
					phase = loopBody
					return delegate(l.body)
				case loopBody:
					if in.Value != nil {
						last = in.Value
					}
					switch in.Kind {
					case Break:
						return coro.Done(Completion{Value: last})
					case Return:
						return coro.Done(in)
					}
					phase = loopUpdate
					if l.update != nil {
						return delegate(l.update)
					}
				}
			}
		})
	}
}

func (env *Environment) genForIn(n *ast.ForInStatement) thunk {
	var target ast.Expression
	switch left := n.Left.(type) {
	case *ast.VariableDeclaration:
		if len(left.Declarations) > 0 {
			name := left.Declarations[0].Name
			env.decls.addVar(name.Name)
			target = name
		}
	case ast.Expression:
		target = left
	}
	ref, ok := env.reference(target)
	if !ok {
		env.Logger.Warn("invalid for-in target", "line", n.Pos().Line)
		ref = &reference{}
	}
	right := env.gen(n.Right)
	body := env.gen(n.Body)
	line := n.Pos().Line

	return func() coro.Task[Completion] {
		const (
			start = iota
			object
			assigned
			ran
		)
		phase := start
		var (
			obj  *runtime.Object
			keys []string
			i    int
			last *runtime.Value
		)
		return coro.Func[Completion](func(in Completion) step {
			switch phase {
			case start:
				env.emitLine(line)
				phase = object
				return delegate(right)
			case object:
				if in.Value.IsNullish() {
					return coro.Done(Completion{})
				}
				o, err := runtime.ToObject(in.Value)
				if err != nil {
					return fail(err)
				}
				obj, keys = o, o.EnumerableKeys()
			case assigned:
				phase = ran
				return delegate(body)
			case ran:
				if in.Value != nil {
					last = in.Value
				}
				switch in.Kind {
				case Break:
					return coro.Done(Completion{Value: last})
				case Return:
					return coro.Done(in)
				}
			}
			for i < len(keys) {
				key := keys[i]
				i++
				// Keys deleted during iteration are skipped.
				if !obj.HasProperty(key) {
					continue
				}
				env.emitLine(line)
				phase = assigned
				return coro.Delegate(ref.resolve(func(base *runtime.Value, name string) coro.Task[Completion] {
					return direct(nil, env.put(base, name, runtime.NewString(key)))
				}))
			}
			return coro.Done(Completion{Value: last})
		})
	}
}

func (env *Environment) genBreak(n *ast.BreakStatement) thunk {
	if n.Label != nil {
		env.Logger.Warn("labels are not supported", "label", n.Label.Name, "line", n.Pos().Line)
	}
	task := coro.Value(Completion{Kind: Break}, nil)
	return func() coro.Task[Completion] { return task }
}

func (env *Environment) genContinue(n *ast.ContinueStatement) thunk {
	if n.Label != nil {
		env.Logger.Warn("labels are not supported", "label", n.Label.Name, "line", n.Pos().Line)
	}
	task := coro.Value(Completion{Kind: Continue}, nil)
	return func() coro.Task[Completion] { return task }
}

type switchCase struct {
	test thunk // nil for default
	body thunk
}

// genSwitch compares the discriminant with each case test in order using
// strict equality. Execution starts at the first matching case and falls
// through until a break. When nothing matched only the default body runs.
func (env *Environment) genSwitch(n *ast.SwitchStatement) thunk {
	disc := env.gen(n.Discriminant)
	cases := make([]switchCase, len(n.Cases))
	for i, c := range n.Cases {
		if c.Test != nil {
			cases[i].test = env.gen(c.Test)
		}
		cases[i].body = env.genSequence(c.Consequent)
	}
	return func() coro.Task[Completion] {
		const (
			start = iota
			matching
			running
		)
		phase := start
		var (
			value *runtime.Value
			last  *runtime.Value
		)
		i, def := 0, -1
		defaultOnly := false
		return coro.Func[Completion](func(in Completion) step {
			switch phase {
			case start:
				phase = matching
				return delegate(disc)
			case matching:
				if value == nil {
					value = in.Value
				} else if runtime.StrictEquals(value, in.Value) {
					phase = running
					i--
					break
				}
				for i < len(cases) && cases[i].test == nil {
					def = i
					i++
				}
				if i < len(cases) {
					i++
					return delegate(cases[i-1].test)
				}
				if def < 0 {
					return coro.Done(Completion{})
				}
				phase, i, defaultOnly = running, def, true
			case running:
				if in.Value != nil {
					last = in.Value
				}
				switch in.Kind {
				case Break:
					return coro.Done(Completion{Value: last})
				case Continue, Return:
					if in.Value == nil {
						in.Value = last
					}
					return coro.Done(in)
				}
				if defaultOnly {
					return coro.Done(Completion{Value: last})
				}
				i++
			}
			if i < len(cases) {
				return delegate(cases[i].body)
			}
			return coro.Done(Completion{Value: last})
		})
	}
}

func (env *Environment) genWith(n *ast.WithStatement) thunk {
	object := env.gen(n.Object)
	body := env.gen(n.Body)
	return func() coro.Task[Completion] {
		var saved *runtime.Store
		entered := false
		return coro.Stages(
			func(Completion) step {
				return delegate(object)
			},
			func(c Completion) step {
				obj, err := runtime.ToObject(c.Value)
				if err != nil {
					return fail(err)
				}
				saved, entered = env.store, true
				env.store = runtime.PushObject(env.store, obj)
				return delegate(body)
			},
		).Finally(func() {
			if entered {
				env.store = saved
			}
		})
	}
}
