package builtins

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/evaljs/runtime"
)

func createArrayConstructor(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewArrayObject(nil)
	proto.Prototype = objProto
	runtime.DefaultArrayPrototype = proto

	setMethod(proto, "push", 1, arrayPush)
	setMethod(proto, "pop", 0, arrayPop)
	setMethod(proto, "shift", 0, arrayShift)
	setMethod(proto, "unshift", 1, arrayUnshift)
	setMethod(proto, "splice", 2, arraySplice)
	setMethod(proto, "slice", 2, arraySlice)
	setMethod(proto, "concat", 1, arrayConcat)
	setMethod(proto, "join", 1, arrayJoin)
	setMethod(proto, "reverse", 0, arrayReverse)
	setMethod(proto, "indexOf", 1, arrayIndexOf)
	setMethod(proto, "lastIndexOf", 1, arrayLastIndexOf)
	setMethod(proto, "includes", 1, arrayIncludes)
	setMethod(proto, "forEach", 1, arrayForEach)
	setMethod(proto, "map", 1, arrayMap)
	setMethod(proto, "filter", 1, arrayFilter)
	setMethod(proto, "find", 1, arrayFind)
	setMethod(proto, "findIndex", 1, arrayFindIndex)
	setMethod(proto, "reduce", 1, arrayReduce)
	setMethod(proto, "reduceRight", 1, arrayReduceRight)
	setMethod(proto, "some", 1, arraySome)
	setMethod(proto, "every", 1, arrayEvery)
	setMethod(proto, "sort", 1, arraySort)
	setMethod(proto, "fill", 1, arrayFill)
	setMethod(proto, "toString", 0, arrayToString)

	ctor := newConstructor("Array", 1, proto, arrayConstructorCall, func(args []*runtime.Value) (*runtime.Value, error) {
		return arrayConstructorCall(runtime.Undefined, args)
	})
	setMethod(ctor, "isArray", 1, arrayIsArray)
	setMethod(ctor, "of", 0, arrayOf)
	return ctor
}

func arrayConstructorCall(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if len(args) == 1 && args[0].Type == runtime.TypeNumber {
		n := args[0].Number
		if n < 0 || n != float64(runtime.ToUint32(n)) {
			return nil, rangeErrorf("Invalid array length")
		}
		arr := runtime.NewArrayObject(nil)
		if err := arr.Assign("length", args[0]); err != nil {
			return nil, err
		}
		return runtime.NewObject(arr), nil
	}
	return runtime.NewArray(append([]*runtime.Value(nil), args...)), nil
}

func arrayIsArray(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewBool(isArray(argAt(args, 0))), nil
}

func arrayOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewArray(append([]*runtime.Value(nil), args...)), nil
}

// thisArray returns the receiver when it keeps its elements densely
// (arrays and arguments objects).
func thisArray(this *runtime.Value, method string) (*runtime.Object, error) {
	obj := toObject(this)
	if obj == nil || (obj.OType != runtime.ObjTypeArray && obj.OType != runtime.ObjTypeArguments) {
		return nil, typeErrorf("Array.prototype.%s called on non-array", method)
	}
	return obj, nil
}

func thisMutableArray(this *runtime.Value, method string) (*runtime.Object, error) {
	obj, err := thisArray(this, method)
	if err != nil {
		return nil, err
	}
	if obj.Frozen {
		return nil, typeErrorf("Cannot modify frozen array")
	}
	return obj, nil
}

// elements returns a snapshot of the receiver's elements. Holes are nil.
func elements(this *runtime.Value, method string) ([]*runtime.Value, error) {
	if obj := toObject(this); obj != nil && (obj.OType == runtime.ObjTypeArray || obj.OType == runtime.ObjTypeArguments) {
		return obj.ArrayData, nil
	}
	if this.IsNullish() {
		return nil, typeErrorf("Array.prototype.%s called on null or undefined", method)
	}
	obj, err := runtime.ToObject(this)
	if err != nil {
		return nil, err
	}
	return listFromArrayLike(runtime.NewObject(obj))
}

func orUndefined(v *runtime.Value) *runtime.Value {
	if v == nil {
		return runtime.Undefined
	}
	return v
}

func arrayPush(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisMutableArray(this, "push")
	if err != nil {
		return nil, err
	}
	obj.ArrayData = append(obj.ArrayData, args...)
	return runtime.NewNumber(float64(len(obj.ArrayData))), nil
}

func arrayPop(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisMutableArray(this, "pop")
	if err != nil {
		return nil, err
	}
	if len(obj.ArrayData) == 0 {
		return runtime.Undefined, nil
	}
	last := obj.ArrayData[len(obj.ArrayData)-1]
	obj.ArrayData = obj.ArrayData[:len(obj.ArrayData)-1]
	return orUndefined(last), nil
}

func arrayShift(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisMutableArray(this, "shift")
	if err != nil {
		return nil, err
	}
	if len(obj.ArrayData) == 0 {
		return runtime.Undefined, nil
	}
	first := obj.ArrayData[0]
	obj.ArrayData = append([]*runtime.Value(nil), obj.ArrayData[1:]...)
	return orUndefined(first), nil
}

func arrayUnshift(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisMutableArray(this, "unshift")
	if err != nil {
		return nil, err
	}
	obj.ArrayData = append(append([]*runtime.Value(nil), args...), obj.ArrayData...)
	return runtime.NewNumber(float64(len(obj.ArrayData))), nil
}

func arraySplice(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisMutableArray(this, "splice")
	if err != nil {
		return nil, err
	}
	length := len(obj.ArrayData)
	start := relativeIndex(argAt(args, 0), length, 0)
	deleteCount := 0
	switch {
	case len(args) == 1:
		deleteCount = length - start
	case len(args) > 1:
		deleteCount = clampIndex(args[1], length-start, 0)
	}
	removed := append([]*runtime.Value(nil), obj.ArrayData[start:start+deleteCount]...)
	var items []*runtime.Value
	if len(args) > 2 {
		items = args[2:]
	}
	newData := make([]*runtime.Value, 0, length-deleteCount+len(items))
	newData = append(newData, obj.ArrayData[:start]...)
	newData = append(newData, items...)
	newData = append(newData, obj.ArrayData[start+deleteCount:]...)
	obj.ArrayData = newData
	return runtime.NewArray(removed), nil
}

func arraySlice(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	data, err := elements(this, "slice")
	if err != nil {
		return nil, err
	}
	length := len(data)
	start := relativeIndex(argAt(args, 0), length, 0)
	end := relativeIndex(argAt(args, 1), length, length)
	if start >= end {
		return runtime.NewArray(nil), nil
	}
	return runtime.NewArray(append([]*runtime.Value(nil), data[start:end]...)), nil
}

func arrayConcat(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	var result []*runtime.Value
	for _, a := range append([]*runtime.Value{this}, args...) {
		if isArray(a) {
			result = append(result, a.Object.ArrayData...)
		} else {
			result = append(result, a)
		}
	}
	return runtime.NewArray(result), nil
}

func arrayJoin(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	data, err := elements(this, "join")
	if err != nil {
		return nil, err
	}
	sep := ","
	if s := argAt(args, 0); s.Type != runtime.TypeUndefined {
		if sep, err = runtime.ToString(s); err != nil {
			return nil, err
		}
	}
	// Cyclic arrays join as empty strings.
	if obj := toObject(this); obj != nil {
		if obj.Internal["joining"] == true {
			return runtime.NewString(""), nil
		}
		if obj.Internal == nil {
			obj.Internal = map[string]interface{}{}
		}
		obj.Internal["joining"] = true
		defer delete(obj.Internal, "joining")
	}
	parts := make([]string, len(data))
	for i, v := range data {
		if v.IsNullish() {
			continue
		}
		if parts[i], err = runtime.ToString(v); err != nil {
			return nil, err
		}
	}
	return runtime.NewString(strings.Join(parts, sep)), nil
}

func arrayToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return arrayJoin(this, nil)
}

func arrayReverse(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisMutableArray(this, "reverse")
	if err != nil {
		return nil, err
	}
	d := obj.ArrayData
	for i, j := 0, len(d)-1; i < j; i, j = i+1, j-1 {
		d[i], d[j] = d[j], d[i]
	}
	return this, nil
}

func arrayIndexOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	data, err := elements(this, "indexOf")
	if err != nil {
		return nil, err
	}
	target := argAt(args, 0)
	for i := relativeIndex(argAt(args, 1), len(data), 0); i < len(data); i++ {
		if data[i] != nil && runtime.StrictEquals(data[i], target) {
			return runtime.NewNumber(float64(i)), nil
		}
	}
	return runtime.NewNumber(-1), nil
}

func arrayLastIndexOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	data, err := elements(this, "lastIndexOf")
	if err != nil {
		return nil, err
	}
	target := argAt(args, 0)
	from := len(data) - 1
	if len(args) > 1 {
		n := toInteger(args[1])
		if n < 0 {
			n += float64(len(data))
		}
		from = int(min(n, float64(len(data)-1)))
	}
	for i := from; i >= 0; i-- {
		if data[i] != nil && runtime.StrictEquals(data[i], target) {
			return runtime.NewNumber(float64(i)), nil
		}
	}
	return runtime.NewNumber(-1), nil
}

func arrayIncludes(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	data, err := elements(this, "includes")
	if err != nil {
		return nil, err
	}
	target := argAt(args, 0)
	for i := relativeIndex(argAt(args, 1), len(data), 0); i < len(data); i++ {
		if runtime.SameValueZero(orUndefined(data[i]), target) {
			return runtime.True, nil
		}
	}
	return runtime.False, nil
}

// iterate calls fn for each present element of the receiver with
// (element, index, array) until visit returns false.
func iterate(this *runtime.Value, args []*runtime.Value, method string, visit func(i int, v, res *runtime.Value) bool) error {
	data, err := elements(this, method)
	if err != nil {
		return err
	}
	fn := getCallable(argAt(args, 0))
	if fn == nil {
		return typeErrorf("%s is not a function", argAt(args, 0).ToString())
	}
	thisArg := argAt(args, 1)
	length := len(data)
	for i := 0; i < length; i++ {
		if obj := toObject(this); obj != nil && obj.ArrayData != nil {
			data = obj.ArrayData
		}
		if i >= len(data) || data[i] == nil {
			continue
		}
		v := data[i]
		res, err := fn(thisArg, []*runtime.Value{v, runtime.NewNumber(float64(i)), this})
		if err != nil {
			return err
		}
		if !visit(i, v, res) {
			return nil
		}
	}
	return nil
}

func arrayForEach(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	err := iterate(this, args, "forEach", func(int, *runtime.Value, *runtime.Value) bool { return true })
	if err != nil {
		return nil, err
	}
	return runtime.Undefined, nil
}

func arrayMap(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	data, err := elements(this, "map")
	if err != nil {
		return nil, err
	}
	out := make([]*runtime.Value, len(data))
	err = iterate(this, args, "map", func(i int, _, res *runtime.Value) bool {
		out[i] = res
		return true
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewArray(out), nil
}

func arrayFilter(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	var out []*runtime.Value
	err := iterate(this, args, "filter", func(_ int, v, res *runtime.Value) bool {
		if res.ToBoolean() {
			out = append(out, v)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewArray(out), nil
}

func arrayFind(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	found := runtime.Undefined
	err := iterate(this, args, "find", func(_ int, v, res *runtime.Value) bool {
		if res.ToBoolean() {
			found = v
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func arrayFindIndex(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	found := -1
	err := iterate(this, args, "findIndex", func(i int, _, res *runtime.Value) bool {
		if res.ToBoolean() {
			found = i
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(found)), nil
}

func arraySome(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	result := false
	err := iterate(this, args, "some", func(_ int, _, res *runtime.Value) bool {
		result = res.ToBoolean()
		return !result
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(result), nil
}

func arrayEvery(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	result := true
	err := iterate(this, args, "every", func(_ int, _, res *runtime.Value) bool {
		result = res.ToBoolean()
		return result
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(result), nil
}

func reduce(this *runtime.Value, args []*runtime.Value, method string, right bool) (*runtime.Value, error) {
	data, err := elements(this, method)
	if err != nil {
		return nil, err
	}
	fn := getCallable(argAt(args, 0))
	if fn == nil {
		return nil, typeErrorf("%s is not a function", argAt(args, 0).ToString())
	}
	indices := make([]int, 0, len(data))
	for i := range data {
		if data[i] != nil {
			indices = append(indices, i)
		}
	}
	if right {
		for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
			indices[i], indices[j] = indices[j], indices[i]
		}
	}
	var acc *runtime.Value
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(indices) == 0 {
			return nil, typeErrorf("Reduce of empty array with no initial value")
		}
		acc = data[indices[0]]
		indices = indices[1:]
	}
	for _, i := range indices {
		acc, err = fn(runtime.Undefined, []*runtime.Value{acc, data[i], runtime.NewNumber(float64(i)), this})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func arrayReduce(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return reduce(this, args, "reduce", false)
}

func arrayReduceRight(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return reduce(this, args, "reduceRight", true)
}

func arraySort(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisMutableArray(this, "sort")
	if err != nil {
		return nil, err
	}
	compare := argAt(args, 0)
	if compare.Type != runtime.TypeUndefined && !compare.IsCallable() {
		return nil, typeErrorf("The comparison function must be either a function or undefined")
	}
	var values, undefs []*runtime.Value
	holes := 0
	for _, v := range obj.ArrayData {
		switch {
		case v == nil:
			holes++
		case v.Type == runtime.TypeUndefined:
			undefs = append(undefs, v)
		default:
			values = append(values, v)
		}
	}
	var sortErr error
	sort.SliceStable(values, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		a, b := values[i], values[j]
		if compare.IsCallable() {
			r, err := compare.Object.Callable(runtime.Undefined, []*runtime.Value{a, b})
			if err != nil {
				sortErr = err
				return false
			}
			return r.ToNumber() < 0
		}
		as, err := runtime.ToString(a)
		if err != nil {
			sortErr = err
			return false
		}
		bs, err := runtime.ToString(b)
		if err != nil {
			sortErr = err
			return false
		}
		return as < bs
	})
	if sortErr != nil {
		return nil, sortErr
	}
	sorted := append(values, undefs...)
	sorted = append(sorted, make([]*runtime.Value, holes)...)
	obj.ArrayData = sorted
	return this, nil
}

func arrayFill(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := thisMutableArray(this, "fill")
	if err != nil {
		return nil, err
	}
	length := len(obj.ArrayData)
	start := relativeIndex(argAt(args, 1), length, 0)
	end := relativeIndex(argAt(args, 2), length, length)
	for i := start; i < end; i++ {
		obj.ArrayData[i] = argAt(args, 0)
	}
	return this, nil
}

// describeArray renders an array for console output.
func describeArray(obj *runtime.Object, depth int) string {
	parts := make([]string, len(obj.ArrayData))
	for i, v := range obj.ArrayData {
		if v == nil {
			parts[i] = "<empty>"
			continue
		}
		parts[i] = inspect(v, depth+1)
	}
	if len(parts) == 0 {
		return "[]"
	}
	return fmt.Sprintf("[ %s ]", strings.Join(parts, ", "))
}
