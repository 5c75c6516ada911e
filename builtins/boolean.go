package builtins

import (
	"github.com/example/evaljs/runtime"
)

func createBooleanConstructor(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(objProto)
	proto.OType = runtime.ObjTypeBoolean
	proto.Primitive = runtime.False
	runtime.DefaultBooleanPrototype = proto

	setMethod(proto, "toString", 0, booleanToString)
	setMethod(proto, "valueOf", 0, booleanValueOf)

	return newConstructor("Boolean", 1, proto, booleanConstructorCall, func(args []*runtime.Value) (*runtime.Value, error) {
		b, _ := booleanConstructorCall(runtime.Undefined, args)
		obj, err := runtime.ToObject(b)
		if err != nil {
			return nil, err
		}
		return runtime.NewObject(obj), nil
	})
}

func thisBooleanValue(this *runtime.Value) (bool, error) {
	if this.Type == runtime.TypeBoolean {
		return this.Bool, nil
	}
	if obj := toObject(this); obj != nil && obj.OType == runtime.ObjTypeBoolean && obj.Primitive != nil {
		return obj.Primitive.Bool, nil
	}
	return false, typeErrorf("Boolean.prototype.valueOf requires that 'this' be a Boolean")
}

func booleanConstructorCall(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewBool(argAt(args, 0).ToBoolean()), nil
}

func booleanToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	b, err := thisBooleanValue(this)
	if err != nil {
		return nil, err
	}
	if b {
		return runtime.NewString("true"), nil
	}
	return runtime.NewString("false"), nil
}

func booleanValueOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	b, err := thisBooleanValue(this)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(b), nil
}
