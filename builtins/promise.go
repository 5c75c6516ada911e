package builtins

import (
	"github.com/example/evaljs/runtime"
)

func createPromisePrototype(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(objProto)
	proto.Internal = map[string]interface{}{"toStringTag": "Promise"}
	setMethod(proto, "then", 2, promiseThen)
	setMethod(proto, "catch", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return promiseThen(this, []*runtime.Value{runtime.Undefined, argAt(args, 0)})
	})
	setMethod(proto, "finally", 1, promiseFinally)
	return proto
}

func thisPromise(this *runtime.Value, method string) (*runtime.Promise, error) {
	p, ok := runtime.PromiseOf(this)
	if !ok {
		return nil, typeErrorf("Method Promise.prototype.%s called on incompatible receiver", method)
	}
	return p, nil
}

func promiseThen(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	p, err := thisPromise(this, "then")
	if err != nil {
		return nil, err
	}
	return p.Then(runtime.ReactionFor(argAt(args, 0)), runtime.ReactionFor(argAt(args, 1))).Value(), nil
}

func promiseFinally(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	p, err := thisPromise(this, "finally")
	if err != nil {
		return nil, err
	}
	fn := argAt(args, 0)
	if !fn.IsCallable() {
		return p.Then(nil, nil).Value(), nil
	}
	// after runs fn, waits for any promise it returns, then settles with out.
	after := func(out func() (*runtime.Value, error)) runtime.Reaction {
		return func(*runtime.Value) (*runtime.Value, error) {
			r, err := runtime.Call(fn, runtime.Undefined, nil)
			if err != nil {
				return nil, err
			}
			if rp, ok := runtime.PromiseOf(r); ok {
				return rp.Then(func(*runtime.Value) (*runtime.Value, error) { return out() }, nil).Value(), nil
			}
			return out()
		}
	}
	onFulfilled := func(v *runtime.Value) (*runtime.Value, error) {
		return after(func() (*runtime.Value, error) { return v, nil })(v)
	}
	onRejected := func(v *runtime.Value) (*runtime.Value, error) {
		return after(func() (*runtime.Value, error) { return nil, runtime.Throw(v) })(v)
	}
	return p.Then(onFulfilled, onRejected).Value(), nil
}

// resolvingFunctions returns script functions that settle p at most once.
func resolvingFunctions(p *runtime.Promise) (resolve, reject *runtime.Value) {
	done := false
	resolve = runtime.NewObject(newFuncObject("", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		if !done {
			done = true
			p.Resolve(argAt(args, 0))
		}
		return runtime.Undefined, nil
	}))
	reject = runtime.NewObject(newFuncObject("", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		if !done {
			done = true
			p.Reject(argAt(args, 0))
		}
		return runtime.Undefined, nil
	}))
	return resolve, reject
}

// createPromiseConstructor builds a Promise constructor whose promises run
// their reactions on loop. The prototype is shared, so it carries no
// constructor back-link.
func createPromiseConstructor(loop *runtime.Loop) *runtime.Object {
	ctor := newFuncObject("Promise", 1, requireNew("Promise"))
	ctor.Construct = func(args []*runtime.Value) (*runtime.Value, error) {
		executor := argAt(args, 0)
		if !executor.IsCallable() {
			return nil, typeErrorf("Promise resolver %s is not a function", executor.ToString())
		}
		p := runtime.NewPromise(loop)
		resolve, reject := resolvingFunctions(p)
		if _, err := runtime.Call(executor, runtime.Undefined, []*runtime.Value{resolve, reject}); err != nil {
			_, _ = runtime.Call(reject, runtime.Undefined, []*runtime.Value{runtime.ErrorValue(err)})
		}
		return p.Value(), nil
	}
	setDataProp(ctor, "prototype", runtime.NewObject(runtime.DefaultPromisePrototype), false, false, false)

	setMethod(ctor, "resolve", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		v := argAt(args, 0)
		if _, ok := runtime.PromiseOf(v); ok {
			return v, nil
		}
		p := runtime.NewPromise(loop)
		p.Resolve(v)
		return p.Value(), nil
	})
	setMethod(ctor, "reject", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		p := runtime.NewPromise(loop)
		p.Reject(argAt(args, 0))
		return p.Value(), nil
	})
	setMethod(ctor, "all", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return combine(loop, argAt(args, 0), false)
	})
	setMethod(ctor, "allSettled", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return combine(loop, argAt(args, 0), true)
	})
	setMethod(ctor, "race", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		items, err := listFromArrayLike(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		result := runtime.NewPromise(loop)
		for _, item := range items {
			promiseFor(loop, item).Then(
				func(v *runtime.Value) (*runtime.Value, error) { result.Resolve(v); return runtime.Undefined, nil },
				func(v *runtime.Value) (*runtime.Value, error) { result.Reject(v); return runtime.Undefined, nil },
			)
		}
		return result.Value(), nil
	})
	return ctor
}

// promiseFor wraps v in a promise on loop unless it already is one.
func promiseFor(loop *runtime.Loop, v *runtime.Value) *runtime.Promise {
	if p, ok := runtime.PromiseOf(v); ok {
		return p
	}
	p := runtime.NewPromise(loop)
	p.Resolve(v)
	return p
}

// combine implements Promise.all and, when settled is set, Promise.allSettled.
func combine(loop *runtime.Loop, iterable *runtime.Value, settled bool) (*runtime.Value, error) {
	items, err := listFromArrayLike(iterable)
	if err != nil {
		return nil, err
	}
	result := runtime.NewPromise(loop)
	values := make([]*runtime.Value, len(items))
	remaining := len(items)
	if remaining == 0 {
		result.Resolve(runtime.NewArray(values))
		return result.Value(), nil
	}
	outcome := func(status string, key string, v *runtime.Value) *runtime.Value {
		obj := runtime.NewPlainObject()
		obj.Set("status", runtime.NewString(status))
		obj.Set(key, v)
		return runtime.NewObject(obj)
	}
	for i, item := range items {
		store := func(v *runtime.Value) (*runtime.Value, error) {
			values[i] = v
			if remaining--; remaining == 0 {
				result.Resolve(runtime.NewArray(values))
			}
			return runtime.Undefined, nil
		}
		onFulfilled, onRejected := store, func(v *runtime.Value) (*runtime.Value, error) {
			result.Reject(v)
			return runtime.Undefined, nil
		}
		if settled {
			onFulfilled = func(v *runtime.Value) (*runtime.Value, error) { return store(outcome("fulfilled", "value", v)) }
			onRejected = func(v *runtime.Value) (*runtime.Value, error) { return store(outcome("rejected", "reason", v)) }
		}
		promiseFor(loop, item).Then(onFulfilled, onRejected)
	}
	return result.Value(), nil
}
