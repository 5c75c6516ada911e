package builtins

import (
	"github.com/example/evaljs/runtime"
)

func createProxyConstructor() *runtime.Object {
	ctor := newFuncObject("Proxy", 2, func(*runtime.Value, []*runtime.Value) (*runtime.Value, error) {
		return nil, typeErrorf("Constructor Proxy requires 'new'")
	})
	ctor.Construct = proxyConstruct
	return ctor
}

func proxyConstruct(args []*runtime.Value) (*runtime.Value, error) {
	target := toObject(argAt(args, 0))
	handler := toObject(argAt(args, 1))
	if target == nil || handler == nil {
		return nil, typeErrorf("Cannot create proxy with a non-object as target or handler")
	}
	return runtime.NewObject(runtime.NewProxy(target, handler)), nil
}

func createReflectObject(objProto *runtime.Object) *runtime.Object {
	reflect := runtime.NewOrdinaryObject(objProto)

	setMethod(reflect, "get", 2, reflectGet)
	setMethod(reflect, "set", 3, reflectSet)
	setMethod(reflect, "has", 2, reflectHas)
	setMethod(reflect, "deleteProperty", 2, reflectDeleteProperty)
	setMethod(reflect, "apply", 3, reflectApply)
	setMethod(reflect, "ownKeys", 1, reflectOwnKeys)
	return reflect
}

func reflectTarget(args []*runtime.Value, method string) (*runtime.Object, error) {
	target := toObject(argAt(args, 0))
	if target == nil {
		return nil, typeErrorf("Reflect.%s called on non-object", method)
	}
	return target, nil
}

func reflectGet(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target, err := reflectTarget(args, "get")
	if err != nil {
		return nil, err
	}
	return target.Lookup(argAt(args, 1).ToString())
}

func reflectSet(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target, err := reflectTarget(args, "set")
	if err != nil {
		return nil, err
	}
	if err := target.Assign(argAt(args, 1).ToString(), argAt(args, 2)); err != nil {
		return nil, err
	}
	return runtime.True, nil
}

func reflectHas(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target, err := reflectTarget(args, "has")
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(target.HasProperty(argAt(args, 1).ToString())), nil
}

func reflectDeleteProperty(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target, err := reflectTarget(args, "deleteProperty")
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(target.Delete(argAt(args, 1).ToString())), nil
}

func reflectApply(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn := argAt(args, 0)
	if !fn.IsCallable() {
		return nil, typeErrorf("Function.prototype.apply was called on %s, which is not a function", runtime.Typeof(fn))
	}
	var callArgs []*runtime.Value
	if list := toObject(argAt(args, 2)); list != nil && list.OType == runtime.ObjTypeArray {
		callArgs = list.ArrayData
	}
	return runtime.Call(fn, argAt(args, 1), callArgs)
}

func reflectOwnKeys(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target, err := reflectTarget(args, "ownKeys")
	if err != nil {
		return nil, err
	}
	return createStringArray(target.OwnKeys()), nil
}
