package runtime

import (
	"fmt"
	"strconv"
)

// ObjectType describes the kind of object.
type ObjectType int

const (
	ObjTypeOrdinary ObjectType = iota
	ObjTypeArray
	ObjTypeArguments
	ObjTypeFunction
	ObjTypeError
	ObjTypeBoolean
	ObjTypeNumber
	ObjTypeString
	ObjTypeDate
	ObjTypeRegExp
	ObjTypeMap
	ObjTypeSet
	ObjTypePromise
	ObjTypeProxy
)

// Object represents a script object.
type Object struct {
	OType      ObjectType
	Properties map[string]*Property
	Prototype  *Object
	Callable   CallableFunc
	// Construct is set on host constructors; it implements `new` for them.
	Construct ConstructFunc
	Internal  map[string]interface{} // internal slots

	// Elements of arrays and arguments objects.
	ArrayData []*Value
	// Primitive holds the wrapped value of Boolean, Number and String objects.
	Primitive *Value
	// Frozen objects reject writes, deletions and new properties.
	Frozen bool

	keys []string
}

// Property represents a property descriptor.
type Property struct {
	Value        *Value
	Getter       *Value // for accessor properties
	Setter       *Value // for accessor properties
	Writable     bool
	Enumerable   bool
	Configurable bool
	IsAccessor   bool
}

// CallableFunc is the Go function signature for callable objects.
type CallableFunc func(this *Value, args []*Value) (*Value, error)

// ConstructFunc builds a new instance from constructor arguments.
type ConstructFunc func(args []*Value) (*Value, error)

// Default prototypes, installed by the builtins package.
var (
	DefaultObjectPrototype   *Object
	DefaultFunctionPrototype *Object
	DefaultArrayPrototype    *Object
	DefaultStringPrototype   *Object
	DefaultNumberPrototype   *Object
	DefaultBooleanPrototype  *Object
	DefaultSymbolPrototype   *Object
	DefaultPromisePrototype  *Object
	DefaultErrorPrototype    *Object
)

// ErrorPrototypes maps error names such as "TypeError" to their prototypes.
var ErrorPrototypes = map[string]*Object{}

// NewOrdinaryObject creates a plain object.
func NewOrdinaryObject(proto *Object) *Object {
	return &Object{
		OType:      ObjTypeOrdinary,
		Properties: make(map[string]*Property),
		Prototype:  proto,
	}
}

// NewPlainObject creates an object inheriting from Object.prototype.
func NewPlainObject() *Object {
	return NewOrdinaryObject(DefaultObjectPrototype)
}

// NewArrayObject creates an array object from values.
func NewArrayObject(elements []*Value) *Object {
	if elements == nil {
		elements = []*Value{}
	}
	obj := NewOrdinaryObject(DefaultArrayPrototype)
	obj.OType = ObjTypeArray
	obj.ArrayData = elements
	return obj
}

// NewArray wraps NewArrayObject in a value.
func NewArray(elements []*Value) *Value {
	return NewObject(NewArrayObject(elements))
}

// NewArgumentsObject builds the arguments collection of one invocation.
func NewArgumentsObject(args []*Value) *Object {
	obj := NewOrdinaryObject(DefaultObjectPrototype)
	obj.OType = ObjTypeArguments
	obj.ArrayData = append([]*Value(nil), args...)
	return obj
}

// NewFunctionObject creates a function object with name and length properties.
func NewFunctionObject(name string, length int, fn CallableFunc) *Object {
	obj := NewOrdinaryObject(DefaultFunctionPrototype)
	obj.OType = ObjTypeFunction
	obj.Callable = fn
	obj.DefineProperty("name", &Property{Value: NewString(name), Configurable: true})
	obj.DefineProperty("length", &Property{Value: NewNumber(float64(length)), Configurable: true})
	return obj
}

// NewErrorObject creates an error of the given kind, e.g. "TypeError".
func NewErrorObject(name, message string) *Object {
	proto, ok := ErrorPrototypes[name]
	if !ok {
		proto = DefaultErrorPrototype
	}
	obj := NewOrdinaryObject(proto)
	obj.OType = ObjTypeError
	obj.DefineProperty("message", &Property{Value: NewString(message), Writable: true, Configurable: true})
	if !ok {
		obj.DefineProperty("name", &Property{Value: NewString(name), Writable: true, Configurable: true})
	}
	return obj
}

// arrayIndex parses a canonical array index.
func arrayIndex(name string) (int, bool) {
	if name == "" || len(name) > 10 || (name[0] == '0' && len(name) > 1) {
		return 0, false
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 || n >= 4294967295 {
		return 0, false
	}
	return n, true
}

// maxDenseGrowth bounds how far past the end an index write may extend an array.
const maxDenseGrowth = 1 << 20

func (o *Object) hasElements() bool {
	return o.OType == ObjTypeArray || o.OType == ObjTypeArguments
}

func (o *Object) ownElement(name string) (*Value, bool) {
	switch {
	case o.hasElements():
		if name == "length" {
			return NewNumber(float64(len(o.ArrayData))), true
		}
		if i, ok := arrayIndex(name); ok && i < len(o.ArrayData) {
			if v := o.ArrayData[i]; v != nil {
				return v, true
			}
			return Undefined, true
		}
	case o.OType == ObjTypeString && o.Primitive != nil:
		units := UTF16(o.Primitive.Str)
		if name == "length" {
			return NewNumber(float64(len(units))), true
		}
		if i, ok := arrayIndex(name); ok && i < len(units) {
			return NewString(FromUTF16(units[i : i+1])), true
		}
	}
	return nil, false
}

// GetOwnProperty returns the own property descriptor for name, synthesizing
// descriptors for array elements and string indices.
func (o *Object) GetOwnProperty(name string) (*Property, bool) {
	if t := o.proxyTarget(); t != nil {
		return t.GetOwnProperty(name)
	}
	if v, ok := o.ownElement(name); ok {
		return &Property{Value: v, Writable: name != "length" || o.OType != ObjTypeString, Enumerable: name != "length"}, true
	}
	p, ok := o.Properties[name]
	return p, ok
}

// Lookup retrieves a property, walking the prototype chain and invoking getters.
func (o *Object) Lookup(name string) (*Value, error) {
	return o.lookup(name, NewObject(o))
}

func (o *Object) lookup(name string, receiver *Value) (*Value, error) {
	for cur := o; cur != nil; cur = cur.Prototype {
		if cur.OType == ObjTypeProxy {
			return cur.proxyGet(name, receiver)
		}
		if v, ok := cur.ownElement(name); ok {
			return v, nil
		}
		prop, ok := cur.Properties[name]
		if !ok {
			continue
		}
		if prop.IsAccessor {
			if prop.Getter == nil || !prop.Getter.IsCallable() {
				return Undefined, nil
			}
			return prop.Getter.Object.Callable(receiver, nil)
		}
		if prop.Value == nil {
			return Undefined, nil
		}
		return prop.Value, nil
	}
	return Undefined, nil
}

// Get retrieves a property, walking the prototype chain. Errors raised by
// getters are dropped.
func (o *Object) Get(name string) *Value {
	v, err := o.Lookup(name)
	if err != nil {
		return Undefined
	}
	return v
}

// Assign stores a property, honouring setters and non-writable data
// properties found along the prototype chain.
func (o *Object) Assign(name string, val *Value) error {
	if o.OType == ObjTypeProxy {
		return o.proxySet(name, val)
	}
	if o.Frozen {
		return nil
	}
	if o.hasElements() {
		if name == "length" {
			return o.setLength(val)
		}
		if i, ok := arrayIndex(name); ok && i < len(o.ArrayData)+maxDenseGrowth {
			for len(o.ArrayData) <= i {
				o.ArrayData = append(o.ArrayData, nil)
			}
			o.ArrayData[i] = val
			return nil
		}
	}
	if o.OType == ObjTypeString {
		if _, ok := o.ownElement(name); ok {
			return nil
		}
	}
	for cur := o; cur != nil; cur = cur.Prototype {
		prop, ok := cur.Properties[name]
		if !ok {
			continue
		}
		if prop.IsAccessor {
			if prop.Setter == nil || !prop.Setter.IsCallable() {
				return nil
			}
			_, err := prop.Setter.Object.Callable(NewObject(o), []*Value{val})
			return err
		}
		if !prop.Writable {
			return nil
		}
		if cur == o {
			prop.Value = val
			return nil
		}
		break
	}
	o.DefineProperty(name, &Property{Value: val, Writable: true, Enumerable: true, Configurable: true})
	return nil
}

// Set stores a property, dropping errors raised by setters.
func (o *Object) Set(name string, val *Value) {
	_ = o.Assign(name, val)
}

func (o *Object) setLength(val *Value) error {
	n := val.ToNumber()
	l := ToUint32(n)
	if float64(l) != n {
		return fmt.Errorf("RangeError: Invalid array length")
	}
	switch {
	case int(l) < len(o.ArrayData):
		o.ArrayData = o.ArrayData[:l]
	case int(l) > len(o.ArrayData)+maxDenseGrowth:
		return fmt.Errorf("RangeError: Invalid array length")
	default:
		for len(o.ArrayData) < int(l) {
			o.ArrayData = append(o.ArrayData, nil)
		}
	}
	return nil
}

// DefineProperty defines a property with full descriptor control.
func (o *Object) DefineProperty(name string, prop *Property) {
	if o.hasElements() {
		if i, ok := arrayIndex(name); ok && i < len(o.ArrayData)+maxDenseGrowth && !prop.IsAccessor {
			for len(o.ArrayData) <= i {
				o.ArrayData = append(o.ArrayData, nil)
			}
			o.ArrayData[i] = prop.Value
			return
		}
	}
	if _, exists := o.Properties[name]; !exists {
		o.keys = append(o.keys, name)
	}
	o.Properties[name] = prop
}

// Delete removes an own property. It reports false for non-configurable ones.
func (o *Object) Delete(name string) bool {
	if o.OType == ObjTypeProxy {
		return o.proxyDelete(name)
	}
	if o.Frozen {
		return !o.HasOwnProperty(name)
	}
	if o.hasElements() {
		if name == "length" {
			return false
		}
		if i, ok := arrayIndex(name); ok && i < len(o.ArrayData) {
			o.ArrayData[i] = nil
			return true
		}
	}
	prop, ok := o.Properties[name]
	if !ok {
		return true
	}
	if !prop.Configurable {
		return false
	}
	delete(o.Properties, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// HasProperty checks own and prototype chain.
func (o *Object) HasProperty(name string) bool {
	for cur := o; cur != nil; cur = cur.Prototype {
		if cur.OType == ObjTypeProxy {
			return cur.proxyHas(name)
		}
		if cur.HasOwnProperty(name) {
			return true
		}
	}
	return false
}

// HasOwnProperty checks only own properties.
func (o *Object) HasOwnProperty(name string) bool {
	if t := o.proxyTarget(); t != nil {
		return t.HasOwnProperty(name)
	}
	if _, ok := o.ownElement(name); ok {
		if o.hasElements() {
			if i, isIdx := arrayIndex(name); isIdx {
				return o.ArrayData[i] != nil
			}
		}
		return true
	}
	_, ok := o.Properties[name]
	return ok
}

// OwnKeys lists own property names: element indices first, then the
// remaining keys in insertion order.
func (o *Object) OwnKeys() []string {
	if o.OType == ObjTypeProxy {
		return o.proxyOwnKeys()
	}
	var keys []string
	switch {
	case o.hasElements():
		for i, v := range o.ArrayData {
			if v != nil {
				keys = append(keys, strconv.Itoa(i))
			}
		}
	case o.OType == ObjTypeString && o.Primitive != nil:
		for i := range UTF16(o.Primitive.Str) {
			keys = append(keys, strconv.Itoa(i))
		}
	}
	return append(keys, o.keys...)
}

// Keys lists own enumerable property names in enumeration order.
func (o *Object) Keys() []string {
	var keys []string
	for _, k := range o.OwnKeys() {
		if p, ok := o.GetOwnProperty(k); ok && !p.Enumerable {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// EnumerableKeys lists the enumerable names visible on o, including
// inherited ones, each reported once.
func (o *Object) EnumerableKeys() []string {
	seen := map[string]bool{}
	var keys []string
	for cur := o; cur != nil; cur = cur.Prototype {
		for _, k := range cur.OwnKeys() {
			if seen[k] {
				continue
			}
			seen[k] = true
			if p, ok := cur.GetOwnProperty(k); ok && !p.Enumerable {
				continue
			}
			keys = append(keys, k)
		}
	}
	return keys
}

// InstanceOf reports whether proto appears on o's prototype chain.
func (o *Object) InstanceOf(proto *Object) bool {
	for cur := o.Prototype; cur != nil; cur = cur.Prototype {
		if cur == proto {
			return true
		}
	}
	return false
}
