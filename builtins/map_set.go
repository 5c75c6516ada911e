package builtins

import (
	"math"

	"github.com/example/evaljs/runtime"
)

// collection is the insertion-ordered store behind Map and Set. Deleted
// entries are tombstoned so forEach sees additions made while it runs.
type collection struct {
	entries []*entry
	index   map[any]*entry
	live    int
}

type entry struct {
	key, value *runtime.Value
	deleted    bool
}

func newCollection() *collection {
	return &collection{index: map[any]*entry{}}
}

// hashKey maps a value to a Go map key that follows SameValueZero.
func hashKey(v *runtime.Value) any {
	switch v.Type {
	case runtime.TypeObject:
		return v.Object
	case runtime.TypeSymbol:
		return v.Symbol
	case runtime.TypeNumber:
		if math.IsNaN(v.Number) {
			return "NaN"
		}
		return v.Number + 0
	case runtime.TypeString:
		return "s:" + v.Str
	case runtime.TypeBoolean:
		return v.Bool
	case runtime.TypeNull:
		return "null"
	}
	return "undefined"
}

func (c *collection) get(k *runtime.Value) (*entry, bool) {
	e, ok := c.index[hashKey(k)]
	return e, ok
}

func (c *collection) set(k, v *runtime.Value) {
	if e, ok := c.get(k); ok {
		e.value = v
		return
	}
	if k.Type == runtime.TypeNumber && k.Number == 0 {
		k = runtime.Zero
	}
	e := &entry{key: k, value: v}
	c.entries = append(c.entries, e)
	c.index[hashKey(k)] = e
	c.live++
}

func (c *collection) remove(k *runtime.Value) bool {
	e, ok := c.get(k)
	if !ok {
		return false
	}
	e.deleted = true
	delete(c.index, hashKey(k))
	c.live--
	return true
}

func (c *collection) clear() {
	for _, e := range c.entries {
		e.deleted = true
	}
	c.entries = nil
	c.index = map[any]*entry{}
	c.live = 0
}

func (c *collection) each(fn func(e *entry) error) error {
	for i := 0; i < len(c.entries); i++ {
		if e := c.entries[i]; !e.deleted {
			if err := fn(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func thisCollection(this *runtime.Value, kind runtime.ObjectType, method string) (*collection, error) {
	if obj := toObject(this); obj != nil && obj.OType == kind {
		if c, ok := obj.Internal["collection"].(*collection); ok {
			return c, nil
		}
	}
	name := "Map"
	if kind == runtime.ObjTypeSet {
		name = "Set"
	}
	return nil, typeErrorf("Method %s.prototype.%s called on incompatible receiver", name, method)
}

func newCollectionObject(proto *runtime.Object, kind runtime.ObjectType) (*runtime.Object, *collection) {
	c := newCollection()
	obj := runtime.NewOrdinaryObject(proto)
	obj.OType = kind
	obj.Internal = map[string]interface{}{"collection": c}
	return obj, c
}

func sizeGetter(kind runtime.ObjectType) *runtime.Property {
	get := func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisCollection(this, kind, "size")
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(float64(c.live)), nil
	}
	return &runtime.Property{
		IsAccessor:   true,
		Getter:       runtime.NewObject(newFuncObject("size", 0, get)),
		Configurable: true,
	}
}

func createMapConstructor(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(objProto)
	kind := runtime.ObjTypeMap
	proto.DefineProperty("size", sizeGetter(kind))

	setMethod(proto, "get", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisCollection(this, kind, "get")
		if err != nil {
			return nil, err
		}
		if e, ok := c.get(argAt(args, 0)); ok {
			return e.value, nil
		}
		return runtime.Undefined, nil
	})
	setMethod(proto, "set", 2, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisCollection(this, kind, "set")
		if err != nil {
			return nil, err
		}
		c.set(argAt(args, 0), argAt(args, 1))
		return this, nil
	})
	addCommonMethods(proto, kind)
	setMethod(proto, "keys", 0, collectionList(kind, "keys", func(e *entry) *runtime.Value { return e.key }))
	setMethod(proto, "values", 0, collectionList(kind, "values", func(e *entry) *runtime.Value { return e.value }))
	setMethod(proto, "entries", 0, collectionList(kind, "entries", func(e *entry) *runtime.Value {
		return runtime.NewArray([]*runtime.Value{e.key, e.value})
	}))

	construct := func(args []*runtime.Value) (*runtime.Value, error) {
		obj, c := newCollectionObject(proto, kind)
		init := argAt(args, 0)
		if init.IsNullish() {
			return runtime.NewObject(obj), nil
		}
		items, err := listFromArrayLike(init)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if toObject(item) == nil {
				return nil, typeErrorf("Iterator value %s is not an entry object", orUndefined(item).ToString())
			}
			c.set(item.Object.Get("0"), item.Object.Get("1"))
		}
		return runtime.NewObject(obj), nil
	}
	return newConstructor("Map", 0, proto, requireNew("Map"), construct)
}

func createSetConstructor(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(objProto)
	kind := runtime.ObjTypeSet
	proto.DefineProperty("size", sizeGetter(kind))

	setMethod(proto, "add", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisCollection(this, kind, "add")
		if err != nil {
			return nil, err
		}
		v := argAt(args, 0)
		c.set(v, v)
		return this, nil
	})
	addCommonMethods(proto, kind)
	values := collectionList(kind, "values", func(e *entry) *runtime.Value { return e.key })
	setMethod(proto, "values", 0, values)
	setMethod(proto, "keys", 0, values)
	setMethod(proto, "entries", 0, collectionList(kind, "entries", func(e *entry) *runtime.Value {
		return runtime.NewArray([]*runtime.Value{e.key, e.key})
	}))

	construct := func(args []*runtime.Value) (*runtime.Value, error) {
		obj, c := newCollectionObject(proto, kind)
		items, err := listFromArrayLike(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			v := orUndefined(item)
			c.set(v, v)
		}
		return runtime.NewObject(obj), nil
	}
	return newConstructor("Set", 0, proto, requireNew("Set"), construct)
}

func requireNew(name string) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return nil, typeErrorf("Constructor %s requires 'new'", name)
	}
}

func addCommonMethods(proto *runtime.Object, kind runtime.ObjectType) {
	setMethod(proto, "has", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisCollection(this, kind, "has")
		if err != nil {
			return nil, err
		}
		_, ok := c.get(argAt(args, 0))
		return runtime.NewBool(ok), nil
	})
	setMethod(proto, "delete", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisCollection(this, kind, "delete")
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(c.remove(argAt(args, 0))), nil
	})
	setMethod(proto, "clear", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisCollection(this, kind, "clear")
		if err != nil {
			return nil, err
		}
		c.clear()
		return runtime.Undefined, nil
	})
	setMethod(proto, "forEach", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisCollection(this, kind, "forEach")
		if err != nil {
			return nil, err
		}
		fn := argAt(args, 0)
		if !fn.IsCallable() {
			return nil, typeErrorf("%s is not a function", fn.ToString())
		}
		err = c.each(func(e *entry) error {
			_, err := runtime.Call(fn, argAt(args, 1), []*runtime.Value{e.value, e.key, this})
			return err
		})
		if err != nil {
			return nil, err
		}
		return runtime.Undefined, nil
	})
}

// collectionList snapshots a collection into an array.
func collectionList(kind runtime.ObjectType, method string, pick func(*entry) *runtime.Value) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		c, err := thisCollection(this, kind, method)
		if err != nil {
			return nil, err
		}
		out := make([]*runtime.Value, 0, c.live)
		_ = c.each(func(e *entry) error {
			out = append(out, pick(e))
			return nil
		})
		return runtime.NewArray(out), nil
	}
}
