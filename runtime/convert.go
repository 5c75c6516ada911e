package runtime

import (
	"fmt"
	"math"
	"unicode/utf16"
)

// Hint selects the preferred primitive type for ToPrimitive.
type Hint int

const (
	HintDefault Hint = iota
	HintNumber
	HintString
)

// ToPrimitive converts objects to primitives via valueOf and toString.
func ToPrimitive(v *Value, hint Hint) (*Value, error) {
	if v == nil {
		return Undefined, nil
	}
	if v.Type != TypeObject || v.Object == nil {
		return v, nil
	}
	order := []string{"valueOf", "toString"}
	if hint == HintString || (hint == HintDefault && v.Object.OType == ObjTypeDate) {
		order = []string{"toString", "valueOf"}
	}
	for _, name := range order {
		fn, err := v.Object.Lookup(name)
		if err != nil {
			return nil, err
		}
		if !fn.IsCallable() {
			continue
		}
		res, err := fn.Object.Callable(v, nil)
		if err != nil {
			return nil, err
		}
		if res.Type != TypeObject {
			return res, nil
		}
	}
	return nil, fmt.Errorf("TypeError: Cannot convert object to primitive value")
}

// ToNumber implements the ECMAScript ToNumber abstract operation.
func ToNumber(v *Value) (float64, error) {
	if v == nil {
		return math.NaN(), nil
	}
	switch v.Type {
	case TypeUndefined:
		return math.NaN(), nil
	case TypeNull:
		return 0, nil
	case TypeBoolean:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case TypeNumber:
		return v.Number, nil
	case TypeString:
		return StringToNumber(v.Str), nil
	case TypeSymbol:
		return 0, fmt.Errorf("TypeError: Cannot convert a Symbol value to a number")
	}
	prim, err := ToPrimitive(v, HintNumber)
	if err != nil {
		return 0, err
	}
	return ToNumber(prim)
}

// ToString implements the ECMAScript ToString abstract operation.
func ToString(v *Value) (string, error) {
	if v == nil {
		return "undefined", nil
	}
	switch v.Type {
	case TypeUndefined:
		return "undefined", nil
	case TypeNull:
		return "null", nil
	case TypeBoolean:
		if v.Bool {
			return "true", nil
		}
		return "false", nil
	case TypeNumber:
		return FormatNumber(v.Number), nil
	case TypeString:
		return v.Str, nil
	case TypeSymbol:
		return "", fmt.Errorf("TypeError: Cannot convert a Symbol value to a string")
	}
	prim, err := ToPrimitive(v, HintString)
	if err != nil {
		return "", err
	}
	return ToString(prim)
}

// ToPropertyKey converts v to the string used to index properties.
func ToPropertyKey(v *Value) (string, error) {
	if v != nil && v.Type == TypeSymbol {
		return v.Symbol.Key(), nil
	}
	return ToString(v)
}

// ToObject boxes primitives; undefined and null raise a TypeError.
func ToObject(v *Value) (*Object, error) {
	if v.IsNullish() {
		return nil, fmt.Errorf("TypeError: Cannot convert undefined or null to object")
	}
	switch v.Type {
	case TypeObject:
		return v.Object, nil
	case TypeString:
		obj := NewOrdinaryObject(DefaultStringPrototype)
		obj.OType = ObjTypeString
		obj.Primitive = v
		return obj, nil
	case TypeNumber:
		obj := NewOrdinaryObject(DefaultNumberPrototype)
		obj.OType = ObjTypeNumber
		obj.Primitive = v
		return obj, nil
	case TypeBoolean:
		obj := NewOrdinaryObject(DefaultBooleanPrototype)
		obj.OType = ObjTypeBoolean
		obj.Primitive = v
		return obj, nil
	default:
		obj := NewOrdinaryObject(DefaultSymbolPrototype)
		obj.Primitive = v
		return obj, nil
	}
}

func protoFor(v *Value) *Object {
	switch v.Type {
	case TypeString:
		return DefaultStringPrototype
	case TypeNumber:
		return DefaultNumberPrototype
	case TypeBoolean:
		return DefaultBooleanPrototype
	case TypeSymbol:
		return DefaultSymbolPrototype
	}
	return nil
}

// GetMember reads base[key] for any base value. Primitives are looked up on
// their prototype with the primitive itself as receiver.
func GetMember(base *Value, key string) (*Value, error) {
	if base.IsNullish() {
		return nil, fmt.Errorf("TypeError: Cannot read property '%s' of %s", key, base.ToString())
	}
	if base.Type == TypeObject {
		return base.Object.Lookup(key)
	}
	if base.Type == TypeString {
		units := UTF16(base.Str)
		if key == "length" {
			return NewNumber(float64(len(units))), nil
		}
		if i, ok := arrayIndex(key); ok {
			if i < len(units) {
				return NewString(FromUTF16(units[i : i+1])), nil
			}
			return Undefined, nil
		}
	}
	proto := protoFor(base)
	if proto == nil {
		return Undefined, nil
	}
	return proto.lookup(key, base)
}

// SetMember performs base[key] = val. Writes to primitives are discarded.
func SetMember(base *Value, key string, val *Value) error {
	if base.IsNullish() {
		return fmt.Errorf("TypeError: Cannot set property '%s' of %s", key, base.ToString())
	}
	if base.Type != TypeObject {
		return nil
	}
	return base.Object.Assign(key, val)
}

// Call invokes fn with the given receiver, failing when fn is not callable.
func Call(fn *Value, this *Value, args []*Value) (*Value, error) {
	if !fn.IsCallable() {
		return nil, fmt.Errorf("TypeError: %s is not a function", Typeof(fn))
	}
	res, err := fn.Object.Callable(this, args)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return Undefined, nil
	}
	return res, nil
}

// StrictEquals implements ===.
func StrictEquals(a, b *Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return a.Bool == b.Bool
	case TypeNumber:
		return a.Number == b.Number
	case TypeString:
		return a.Str == b.Str
	case TypeSymbol:
		return a.Symbol == b.Symbol
	default:
		return a.Object == b.Object
	}
}

// SameValueZero is StrictEquals except that NaN equals NaN.
func SameValueZero(a, b *Value) bool {
	if a.Type == TypeNumber && b.Type == TypeNumber && math.IsNaN(a.Number) && math.IsNaN(b.Number) {
		return true
	}
	return StrictEquals(a, b)
}

// LooseEquals implements ==.
func LooseEquals(a, b *Value) (bool, error) {
	if a.Type == b.Type {
		return StrictEquals(a, b), nil
	}
	if a.IsNullish() && b.IsNullish() {
		return true, nil
	}
	if a.IsNullish() || b.IsNullish() {
		return false, nil
	}
	switch {
	case a.Type == TypeNumber && b.Type == TypeString:
		return a.Number == StringToNumber(b.Str), nil
	case a.Type == TypeString && b.Type == TypeNumber:
		return StringToNumber(a.Str) == b.Number, nil
	case a.Type == TypeBoolean:
		return LooseEquals(NewNumber(a.ToNumber()), b)
	case b.Type == TypeBoolean:
		return LooseEquals(a, NewNumber(b.ToNumber()))
	case a.Type == TypeObject && b.Type != TypeObject:
		prim, err := ToPrimitive(a, HintDefault)
		if err != nil {
			return false, err
		}
		return LooseEquals(prim, b)
	case b.Type == TypeObject && a.Type != TypeObject:
		prim, err := ToPrimitive(b, HintDefault)
		if err != nil {
			return false, err
		}
		return LooseEquals(a, prim)
	}
	return false, nil
}

// UTF16 returns the UTF-16 code units of s.
func UTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// FromUTF16 decodes UTF-16 code units, replacing lone surrogates.
func FromUTF16(units []uint16) string {
	return string(utf16.Decode(units))
}

// StringLength is the length of s in UTF-16 code units.
func StringLength(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
