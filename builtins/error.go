package builtins

import (
	"fmt"

	"github.com/example/evaljs/runtime"
)

func typeErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("TypeError: "+format, args...)
}

func rangeErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("RangeError: "+format, args...)
}

func createErrorConstructor(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(objProto)
	runtime.DefaultErrorPrototype = proto
	runtime.ErrorPrototypes["Error"] = proto

	setDataProp(proto, "name", runtime.NewString("Error"), true, false, true)
	setDataProp(proto, "message", runtime.NewString(""), true, false, true)
	setMethod(proto, "toString", 0, errorToString)

	call := func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return makeErrorValue("Error", args), nil
	}
	return newConstructor("Error", 1, proto, call, func(args []*runtime.Value) (*runtime.Value, error) {
		return makeErrorValue("Error", args), nil
	})
}

func createErrorSubtype(name string, errorCtor *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(runtime.DefaultErrorPrototype)
	runtime.ErrorPrototypes[name] = proto
	setDataProp(proto, "name", runtime.NewString(name), true, false, true)
	setDataProp(proto, "message", runtime.NewString(""), true, false, true)

	call := func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return makeErrorValue(name, args), nil
	}
	ctor := newConstructor(name, 1, proto, call, func(args []*runtime.Value) (*runtime.Value, error) {
		return makeErrorValue(name, args), nil
	})
	ctor.Prototype = errorCtor
	return ctor
}

func makeErrorValue(name string, args []*runtime.Value) *runtime.Value {
	obj := runtime.NewErrorObject(name, "")
	if msg := argAt(args, 0); msg.Type != runtime.TypeUndefined {
		setDataProp(obj, "message", runtime.NewString(msg.ToString()), true, false, true)
	} else {
		obj.Delete("message")
	}
	setDataProp(obj, "stack", runtime.NewString(runtime.Describe(runtime.NewObject(obj))), true, false, true)
	return runtime.NewObject(obj)
}

func errorToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj := toObject(this)
	if obj == nil {
		return nil, typeErrorf("Error.prototype.toString called on non-object")
	}
	nameStr := "Error"
	if name := obj.Get("name"); name.Type != runtime.TypeUndefined {
		nameStr = name.ToString()
	}
	msgStr := ""
	if msg := obj.Get("message"); msg.Type != runtime.TypeUndefined {
		msgStr = msg.ToString()
	}
	if nameStr == "" {
		return runtime.NewString(msgStr), nil
	}
	if msgStr == "" {
		return runtime.NewString(nameStr), nil
	}
	return runtime.NewString(nameStr + ": " + msgStr), nil
}
