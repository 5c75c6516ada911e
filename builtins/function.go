package builtins

import (
	"fmt"

	"github.com/example/evaljs/runtime"
)

func createFunctionConstructor(proto *runtime.Object) *runtime.Object {
	setMethod(proto, "call", 1, functionCall)
	setMethod(proto, "apply", 2, functionApply)
	setMethod(proto, "bind", 1, functionBind)
	setMethod(proto, "toString", 0, functionToString)

	construct := func(args []*runtime.Value) (*runtime.Value, error) {
		return functionConstructorCall(runtime.Undefined, args)
	}
	return newConstructor("Function", 1, proto, functionConstructorCall, construct)
}

func functionConstructorCall(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return nil, fmt.Errorf("EvalError: Function constructor is not supported")
}

func functionCall(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn := getCallable(this)
	if fn == nil {
		return nil, typeErrorf("Function.prototype.call called on non-function")
	}
	var callArgs []*runtime.Value
	if len(args) > 1 {
		callArgs = args[1:]
	}
	return fn(argAt(args, 0), callArgs)
}

// listFromArrayLike copies the indexed elements of an array-like object.
func listFromArrayLike(v *runtime.Value) ([]*runtime.Value, error) {
	if v.IsNullish() {
		return nil, nil
	}
	obj := toObject(v)
	if obj == nil {
		return nil, typeErrorf("CreateListFromArrayLike called on non-object")
	}
	if obj.OType == runtime.ObjTypeArray || obj.OType == runtime.ObjTypeArguments {
		out := make([]*runtime.Value, len(obj.ArrayData))
		for i, e := range obj.ArrayData {
			if e == nil {
				e = runtime.Undefined
			}
			out[i] = e
		}
		return out, nil
	}
	n := int(runtime.ToUint32(obj.Get("length").ToNumber()))
	out := make([]*runtime.Value, n)
	for i := range out {
		e, err := obj.Lookup(itoa(i))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func functionApply(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn := getCallable(this)
	if fn == nil {
		return nil, typeErrorf("Function.prototype.apply was called on %s, which is not a function", runtime.Typeof(this))
	}
	callArgs, err := listFromArrayLike(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	return fn(argAt(args, 0), callArgs)
}

func functionBind(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn := getCallable(this)
	if fn == nil {
		return nil, typeErrorf("Bind must be called on a function")
	}
	thisArg := argAt(args, 0)
	var boundArgs []*runtime.Value
	if len(args) > 1 {
		boundArgs = append(boundArgs, args[1:]...)
	}
	boundFn := func(_ *runtime.Value, callArgs []*runtime.Value) (*runtime.Value, error) {
		allArgs := make([]*runtime.Value, 0, len(boundArgs)+len(callArgs))
		allArgs = append(allArgs, boundArgs...)
		allArgs = append(allArgs, callArgs...)
		return fn(thisArg, allArgs)
	}
	length := int(this.Object.Get("length").ToNumber()) - len(boundArgs)
	obj := newFuncObject("bound "+this.Object.Get("name").ToString(), max(length, 0), boundFn)
	if target := this.Object; target.Construct != nil {
		obj.Construct = func(callArgs []*runtime.Value) (*runtime.Value, error) {
			return target.Construct(append(append([]*runtime.Value(nil), boundArgs...), callArgs...))
		}
	}
	return runtime.NewObject(obj), nil
}

func functionToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if !this.IsCallable() {
		return nil, typeErrorf("Function.prototype.toString requires that 'this' be a Function")
	}
	if src, ok := this.Object.Internal["source"].(string); ok {
		return runtime.NewString(src), nil
	}
	return runtime.NewString(fmt.Sprintf("function %s() { [native code] }", this.Object.Get("name").ToString())), nil
}
