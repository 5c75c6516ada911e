package builtins

import (
	"github.com/example/evaljs/runtime"
)

func createObjectConstructor(proto *runtime.Object) *runtime.Object {
	setMethod(proto, "hasOwnProperty", 1, objectProtoHasOwnProperty)
	setMethod(proto, "toString", 0, objectProtoToString)
	setMethod(proto, "toLocaleString", 0, objectProtoToString)
	setMethod(proto, "valueOf", 0, objectProtoValueOf)
	setMethod(proto, "isPrototypeOf", 1, objectProtoIsPrototypeOf)
	setMethod(proto, "propertyIsEnumerable", 1, objectProtoPropertyIsEnumerable)

	ctor := newConstructor("Object", 1, proto, objectConstructorCall, func(args []*runtime.Value) (*runtime.Value, error) {
		return objectConstructorCall(runtime.Undefined, args)
	})

	setMethod(ctor, "keys", 1, objectKeys)
	setMethod(ctor, "assign", 2, objectAssign)
	setMethod(ctor, "create", 2, objectCreate)
	setMethod(ctor, "defineProperty", 3, objectDefineProperty)
	setMethod(ctor, "defineProperties", 2, objectDefineProperties)
	setMethod(ctor, "getOwnPropertyDescriptor", 2, objectGetOwnPropertyDescriptor)
	setMethod(ctor, "getOwnPropertyNames", 1, objectGetOwnPropertyNames)
	setMethod(ctor, "getPrototypeOf", 1, objectGetPrototypeOf)
	setMethod(ctor, "freeze", 1, objectFreeze)
	setMethod(ctor, "isFrozen", 1, objectIsFrozen)
	return ctor
}

func objectConstructorCall(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arg := argAt(args, 0)
	if arg.IsNullish() {
		return runtime.NewObject(runtime.NewPlainObject()), nil
	}
	obj, err := runtime.ToObject(arg)
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(obj), nil
}

func objectProtoHasOwnProperty(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := runtime.ToObject(this)
	if err != nil {
		return nil, err
	}
	name, err := runtime.ToPropertyKey(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(obj.HasOwnProperty(name)), nil
}

func objectProtoToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if this == nil || this.Type == runtime.TypeUndefined {
		return runtime.NewString("[object Undefined]"), nil
	}
	if this.Type == runtime.TypeNull {
		return runtime.NewString("[object Null]"), nil
	}
	tag := "Object"
	switch this.Type {
	case runtime.TypeString:
		tag = "String"
	case runtime.TypeNumber:
		tag = "Number"
	case runtime.TypeBoolean:
		tag = "Boolean"
	case runtime.TypeSymbol:
		tag = "Symbol"
	case runtime.TypeObject:
		switch this.Object.OType {
		case runtime.ObjTypeArray:
			tag = "Array"
		case runtime.ObjTypeArguments:
			tag = "Arguments"
		case runtime.ObjTypeFunction:
			tag = "Function"
		case runtime.ObjTypeRegExp:
			tag = "RegExp"
		case runtime.ObjTypeError:
			tag = "Error"
		case runtime.ObjTypeDate:
			tag = "Date"
		case runtime.ObjTypeString:
			tag = "String"
		case runtime.ObjTypeNumber:
			tag = "Number"
		case runtime.ObjTypeBoolean:
			tag = "Boolean"
		case runtime.ObjTypeMap:
			tag = "Map"
		case runtime.ObjTypeSet:
			tag = "Set"
		case runtime.ObjTypePromise:
			tag = "Promise"
		}
		if this.Object.Callable != nil {
			tag = "Function"
		}
		if ts, ok := this.Object.Internal["toStringTag"].(string); ok {
			tag = ts
		}
	}
	return runtime.NewString("[object " + tag + "]"), nil
}

func objectProtoValueOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := runtime.ToObject(this)
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(obj), nil
}

func objectProtoIsPrototypeOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj := toObject(this)
	target := toObject(argAt(args, 0))
	if obj == nil || target == nil {
		return runtime.False, nil
	}
	return runtime.NewBool(target.InstanceOf(obj)), nil
}

func objectProtoPropertyIsEnumerable(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := runtime.ToObject(this)
	if err != nil {
		return nil, err
	}
	prop, ok := obj.GetOwnProperty(argAt(args, 0).ToString())
	return runtime.NewBool(ok && prop.Enumerable), nil
}

func requireObject(v *runtime.Value, method string) (*runtime.Object, error) {
	if obj := toObject(v); obj != nil {
		return obj, nil
	}
	return nil, typeErrorf("Object.%s called on non-object", method)
}

func objectKeys(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := runtime.ToObject(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return createStringArray(obj.Keys()), nil
}

func objectAssign(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	target, err := runtime.ToObject(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	for _, src := range args[1:] {
		if src.IsNullish() {
			continue
		}
		from, err := runtime.ToObject(src)
		if err != nil {
			return nil, err
		}
		for _, k := range from.Keys() {
			v, err := from.Lookup(k)
			if err != nil {
				return nil, err
			}
			if err := target.Assign(k, v); err != nil {
				return nil, err
			}
		}
	}
	return runtime.NewObject(target), nil
}

func objectCreate(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	protoArg := argAt(args, 0)
	var proto *runtime.Object
	switch protoArg.Type {
	case runtime.TypeNull:
	case runtime.TypeObject:
		proto = protoArg.Object
	default:
		return nil, typeErrorf("Object prototype may only be an Object or null: %s", protoArg.ToString())
	}
	obj := runtime.NewOrdinaryObject(proto)
	if props := argAt(args, 1); props.Type == runtime.TypeObject {
		if err := definePropertiesFromDescriptors(obj, props.Object); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(obj), nil
}

func objectDefineProperty(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := requireObject(argAt(args, 0), "defineProperty")
	if err != nil {
		return nil, err
	}
	name, err := runtime.ToPropertyKey(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	desc := toObject(argAt(args, 2))
	if desc == nil {
		return nil, typeErrorf("Property description must be an object")
	}
	prop, err := descriptorToProperty(desc)
	if err != nil {
		return nil, err
	}
	if err := defineOwnProperty(obj, name, prop, desc); err != nil {
		return nil, err
	}
	return args[0], nil
}

func objectDefineProperties(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := requireObject(argAt(args, 0), "defineProperties")
	if err != nil {
		return nil, err
	}
	descs, err := runtime.ToObject(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	if err := definePropertiesFromDescriptors(obj, descs); err != nil {
		return nil, err
	}
	return args[0], nil
}

func definePropertiesFromDescriptors(obj *runtime.Object, descs *runtime.Object) error {
	for _, k := range descs.Keys() {
		desc := toObject(descs.Get(k))
		if desc == nil {
			return typeErrorf("Property description must be an object")
		}
		prop, err := descriptorToProperty(desc)
		if err != nil {
			return err
		}
		if err := defineOwnProperty(obj, k, prop, desc); err != nil {
			return err
		}
	}
	return nil
}

func descriptorToProperty(desc *runtime.Object) (*runtime.Property, error) {
	prop := &runtime.Property{
		Enumerable:   desc.Get("enumerable").ToBoolean(),
		Configurable: desc.Get("configurable").ToBoolean(),
	}
	getter, setter := desc.Get("get"), desc.Get("set")
	if desc.HasProperty("get") || desc.HasProperty("set") {
		if desc.HasProperty("value") || desc.HasProperty("writable") {
			return nil, typeErrorf("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
		}
		if getter.Type != runtime.TypeUndefined && !getter.IsCallable() {
			return nil, typeErrorf("Getter must be a function: %s", getter.ToString())
		}
		if setter.Type != runtime.TypeUndefined && !setter.IsCallable() {
			return nil, typeErrorf("Setter must be a function: %s", setter.ToString())
		}
		prop.IsAccessor = true
		if getter.IsCallable() {
			prop.Getter = getter
		}
		if setter.IsCallable() {
			prop.Setter = setter
		}
		return prop, nil
	}
	prop.Value = desc.Get("value")
	prop.Writable = desc.Get("writable").ToBoolean()
	return prop, nil
}

// defineOwnProperty merges the fields present in desc into an existing
// property, refusing changes to non-configurable ones.
func defineOwnProperty(obj *runtime.Object, name string, prop *runtime.Property, desc *runtime.Object) error {
	existing, ok := obj.Properties[name]
	if !ok {
		obj.DefineProperty(name, prop)
		return nil
	}
	if !existing.Configurable {
		sameValue := !prop.IsAccessor && !existing.IsAccessor &&
			(!desc.HasProperty("value") || runtime.StrictEquals(prop.Value, existing.Value))
		if !sameValue || prop.Configurable || (desc.HasProperty("enumerable") && prop.Enumerable != existing.Enumerable) {
			return typeErrorf("Cannot redefine property: %s", name)
		}
	}
	merged := *existing
	if desc.HasProperty("enumerable") {
		merged.Enumerable = prop.Enumerable
	}
	if desc.HasProperty("configurable") {
		merged.Configurable = prop.Configurable
	}
	if prop.IsAccessor {
		merged.IsAccessor = true
		merged.Value = nil
		merged.Writable = false
		if desc.HasProperty("get") {
			merged.Getter = prop.Getter
		}
		if desc.HasProperty("set") {
			merged.Setter = prop.Setter
		}
	} else if desc.HasProperty("value") || desc.HasProperty("writable") {
		if merged.IsAccessor {
			merged.IsAccessor = false
			merged.Getter, merged.Setter = nil, nil
			merged.Value = runtime.Undefined
		}
		if desc.HasProperty("value") {
			merged.Value = prop.Value
		}
		if desc.HasProperty("writable") {
			merged.Writable = prop.Writable
		}
	}
	obj.DefineProperty(name, &merged)
	return nil
}

func propertyToDescriptor(prop *runtime.Property) *runtime.Value {
	desc := runtime.NewPlainObject()
	if prop.IsAccessor {
		get, set := prop.Getter, prop.Setter
		if get == nil {
			get = runtime.Undefined
		}
		if set == nil {
			set = runtime.Undefined
		}
		desc.Set("get", get)
		desc.Set("set", set)
	} else {
		val := prop.Value
		if val == nil {
			val = runtime.Undefined
		}
		desc.Set("value", val)
		desc.Set("writable", runtime.NewBool(prop.Writable))
	}
	desc.Set("enumerable", runtime.NewBool(prop.Enumerable))
	desc.Set("configurable", runtime.NewBool(prop.Configurable))
	return runtime.NewObject(desc)
}

func objectGetOwnPropertyDescriptor(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := runtime.ToObject(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	name, err := runtime.ToPropertyKey(argAt(args, 1))
	if err != nil {
		return nil, err
	}
	prop, ok := obj.GetOwnProperty(name)
	if !ok {
		return runtime.Undefined, nil
	}
	return propertyToDescriptor(prop), nil
}

func objectGetOwnPropertyNames(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := runtime.ToObject(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	keys := obj.OwnKeys()
	if obj.OType == runtime.ObjTypeArray || obj.OType == runtime.ObjTypeArguments || obj.OType == runtime.ObjTypeString {
		keys = append(keys, "length")
	}
	return createStringArray(keys), nil
}

func objectGetPrototypeOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, err := runtime.ToObject(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if obj.Prototype == nil {
		return runtime.Null, nil
	}
	return runtime.NewObject(obj.Prototype), nil
}

func objectFreeze(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj := toObject(argAt(args, 0))
	if obj == nil {
		return argAt(args, 0), nil
	}
	for _, p := range obj.Properties {
		p.Configurable = false
		if !p.IsAccessor {
			p.Writable = false
		}
	}
	obj.Frozen = true
	return args[0], nil
}

func objectIsFrozen(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj := toObject(argAt(args, 0))
	if obj == nil {
		return runtime.True, nil
	}
	return runtime.NewBool(obj.Frozen), nil
}
