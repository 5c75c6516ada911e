package builtins

import (
	"math"
	"strconv"

	"github.com/example/evaljs/runtime"
)

func newFuncObject(name string, length int, fn runtime.CallableFunc) *runtime.Object {
	return runtime.NewFunctionObject(name, length, fn)
}

// newConstructor creates a host constructor: fn handles plain calls and
// construct handles `new`.
func newConstructor(name string, length int, proto *runtime.Object, fn runtime.CallableFunc, construct runtime.ConstructFunc) *runtime.Object {
	ctor := newFuncObject(name, length, fn)
	ctor.Construct = construct
	setDataProp(ctor, "prototype", runtime.NewObject(proto), false, false, false)
	setDataProp(proto, "constructor", runtime.NewObject(ctor), true, false, true)
	return ctor
}

func setMethod(obj *runtime.Object, name string, length int, fn runtime.CallableFunc) {
	funcObj := newFuncObject(name, length, fn)
	obj.DefineProperty(name, &runtime.Property{
		Value:        runtime.NewObject(funcObj),
		Writable:     true,
		Enumerable:   false,
		Configurable: true,
	})
}

func setDataProp(obj *runtime.Object, name string, val *runtime.Value, writable, enumerable, configurable bool) {
	obj.DefineProperty(name, &runtime.Property{
		Value:        val,
		Writable:     writable,
		Enumerable:   enumerable,
		Configurable: configurable,
	})
}

func setConstant(obj *runtime.Object, name string, val *runtime.Value) {
	setDataProp(obj, name, val, false, false, false)
}

func toObject(v *runtime.Value) *runtime.Object {
	if v != nil && v.Type == runtime.TypeObject && v.Object != nil {
		return v.Object
	}
	return nil
}

func argAt(args []*runtime.Value, i int) *runtime.Value {
	if i < len(args) && args[i] != nil {
		return args[i]
	}
	return runtime.Undefined
}

func getCallable(v *runtime.Value) runtime.CallableFunc {
	if v.IsCallable() {
		return v.Object.Callable
	}
	return nil
}

func isArray(v *runtime.Value) bool {
	return v != nil && v.Type == runtime.TypeObject && v.Object != nil && v.Object.OType == runtime.ObjTypeArray
}

func toNumber(v *runtime.Value) float64 {
	return v.ToNumber()
}

func toInteger(v *runtime.Value) float64 {
	return runtime.ToInteger(v.ToNumber())
}

// relativeIndex resolves a possibly negative position against length and
// clamps it to [0, length].
func relativeIndex(v *runtime.Value, length, dflt int) int {
	if v == nil || v.Type == runtime.TypeUndefined {
		return dflt
	}
	n := toInteger(v)
	if n < 0 {
		n = math.Max(float64(length)+n, 0)
	}
	return int(math.Min(n, float64(length)))
}

// clampIndex clamps a non-relative position to [0, length].
func clampIndex(v *runtime.Value, length, dflt int) int {
	if v == nil || v.Type == runtime.TypeUndefined {
		return dflt
	}
	n := toInteger(v)
	return int(math.Max(0, math.Min(n, float64(length))))
}

func createStringArray(strs []string) *runtime.Value {
	data := make([]*runtime.Value, len(strs))
	for i, s := range strs {
		data[i] = runtime.NewString(s)
	}
	return runtime.NewArray(data)
}

func thisNumberValue(this *runtime.Value, method string) (float64, error) {
	if this.Type == runtime.TypeNumber {
		return this.Number, nil
	}
	if obj := toObject(this); obj != nil && obj.OType == runtime.ObjTypeNumber && obj.Primitive != nil {
		return obj.Primitive.Number, nil
	}
	return 0, typeErrorf("Number.prototype.%s requires that 'this' be a Number", method)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
