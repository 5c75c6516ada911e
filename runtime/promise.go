package runtime

import "fmt"

// PromiseState is the settlement state of a promise.
type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// Reaction is a continuation registered with Then. A nil reaction passes
// the settled value through unchanged.
type Reaction func(v *Value) (*Value, error)

type reaction struct {
	onFulfilled Reaction
	onRejected  Reaction
	derived     *Promise
}

// Promise is a deferred value whose reactions run as microtasks on its loop.
type Promise struct {
	Object *Object

	loop      *Loop
	state     PromiseState
	result    *Value
	reactions []reaction
}

// NewPromise creates a pending promise bound to loop. A nil loop runs
// reactions synchronously.
func NewPromise(loop *Loop) *Promise {
	obj := NewOrdinaryObject(DefaultPromisePrototype)
	obj.OType = ObjTypePromise
	p := &Promise{Object: obj, loop: loop, result: Undefined}
	obj.Internal = map[string]interface{}{"promise": p}
	return p
}

// PromiseOf returns the promise behind v, if v is a promise object.
func PromiseOf(v *Value) (*Promise, bool) {
	if v == nil || v.Type != TypeObject || v.Object == nil || v.Object.OType != ObjTypePromise {
		return nil, false
	}
	p, ok := v.Object.Internal["promise"].(*Promise)
	return p, ok
}

func (p *Promise) Value() *Value {
	return NewObject(p.Object)
}

func (p *Promise) State() PromiseState {
	return p.state
}

// Result is the fulfillment value or rejection reason once settled.
func (p *Promise) Result() *Value {
	return p.result
}

// Resolve settles p with v. Promises and thenables are adopted.
func (p *Promise) Resolve(v *Value) {
	if p.state != PromisePending {
		return
	}
	if v != nil && v.Type == TypeObject && v.Object == p.Object {
		p.Reject(NewObject(NewErrorObject("TypeError", "Chaining cycle detected for promise")))
		return
	}
	if inner, ok := PromiseOf(v); ok {
		inner.Then(func(r *Value) (*Value, error) {
			p.Resolve(r)
			return Undefined, nil
		}, func(r *Value) (*Value, error) {
			p.Reject(r)
			return Undefined, nil
		})
		return
	}
	if v != nil && v.Type == TypeObject {
		then, err := v.Object.Lookup("then")
		if err != nil {
			p.Reject(ErrorValue(err))
			return
		}
		if then.IsCallable() {
			p.enqueue(func() error {
				p.adopt(v, then)
				return nil
			})
			return
		}
	}
	p.settle(PromiseFulfilled, v)
}

func (p *Promise) adopt(thenable, then *Value) {
	done := false
	resolve := NewFunctionObject("", 1, func(_ *Value, args []*Value) (*Value, error) {
		if !done {
			done = true
			p.Resolve(argOrUndefined(args))
		}
		return Undefined, nil
	})
	reject := NewFunctionObject("", 1, func(_ *Value, args []*Value) (*Value, error) {
		if !done {
			done = true
			p.Reject(argOrUndefined(args))
		}
		return Undefined, nil
	})
	if _, err := then.Object.Callable(thenable, []*Value{NewObject(resolve), NewObject(reject)}); err != nil && !done {
		done = true
		p.Reject(ErrorValue(err))
	}
}

// Reject settles p as rejected with reason.
func (p *Promise) Reject(reason *Value) {
	if p.state != PromisePending {
		return
	}
	p.settle(PromiseRejected, reason)
}

func (p *Promise) settle(state PromiseState, v *Value) {
	if v == nil {
		v = Undefined
	}
	p.state = state
	p.result = v
	reactions := p.reactions
	p.reactions = nil
	for _, r := range reactions {
		p.schedule(r)
	}
}

// Then registers continuations and returns the derived promise, which
// settles with the continuation's result or error.
func (p *Promise) Then(onFulfilled, onRejected Reaction) *Promise {
	r := reaction{onFulfilled: onFulfilled, onRejected: onRejected, derived: NewPromise(p.loop)}
	if p.state == PromisePending {
		p.reactions = append(p.reactions, r)
	} else {
		p.schedule(r)
	}
	return r.derived
}

func (p *Promise) schedule(r reaction) {
	state, result := p.state, p.result
	p.enqueue(func() error {
		handler := r.onFulfilled
		if state == PromiseRejected {
			handler = r.onRejected
		}
		if handler == nil {
			if state == PromiseRejected {
				r.derived.Reject(result)
			} else {
				r.derived.Resolve(result)
			}
			return nil
		}
		out, err := handler(result)
		if err != nil {
			r.derived.Reject(ErrorValue(err))
			return nil
		}
		r.derived.Resolve(out)
		return nil
	})
}

func (p *Promise) enqueue(job func() error) {
	if p.loop == nil {
		_ = job()
		return
	}
	p.loop.Enqueue(job)
}

// ReactionFor adapts a script callback to a Reaction. Non-callable values
// yield nil so the settled value passes through.
func ReactionFor(fn *Value) Reaction {
	if !fn.IsCallable() {
		return nil
	}
	return func(v *Value) (*Value, error) {
		return Call(fn, Undefined, []*Value{v})
	}
}

func (s PromiseState) String() string {
	switch s {
	case PromisePending:
		return "pending"
	case PromiseFulfilled:
		return "fulfilled"
	case PromiseRejected:
		return "rejected"
	}
	return fmt.Sprintf("PromiseState(%d)", int(s))
}

func argOrUndefined(args []*Value) *Value {
	if len(args) == 0 || args[0] == nil {
		return Undefined
	}
	return args[0]
}
