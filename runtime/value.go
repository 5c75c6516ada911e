package runtime

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// ValueType represents the type of a script value.
type ValueType int

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
	TypeSymbol
)

func (t ValueType) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Value is a script value. Primitives are immutable and may be shared.
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Str    string
	Object *Object
	Symbol *Symbol
}

// Symbol is a unique primitive created by Symbol().
type Symbol struct {
	Description string
	id          uint64
}

var symbolSeq atomic.Uint64

func NewSymbol(description string) *Value {
	return &Value{Type: TypeSymbol, Symbol: &Symbol{Description: description, id: symbolSeq.Add(1)}}
}

// Key is the property key under which the symbol is stored.
func (s *Symbol) Key() string {
	return "@@symbol:" + strconv.FormatUint(s.id, 10) + ":" + s.Description
}

var (
	Undefined = &Value{Type: TypeUndefined}
	Null      = &Value{Type: TypeNull}
	True      = &Value{Type: TypeBoolean, Bool: true}
	False     = &Value{Type: TypeBoolean, Bool: false}
	NaN       = &Value{Type: TypeNumber, Number: math.NaN()}
	PosInf    = &Value{Type: TypeNumber, Number: math.Inf(1)}
	NegInf    = &Value{Type: TypeNumber, Number: math.Inf(-1)}
	Zero      = &Value{Type: TypeNumber, Number: 0}
)

func NewNumber(n float64) *Value {
	return &Value{Type: TypeNumber, Number: n}
}

func NewString(s string) *Value {
	return &Value{Type: TypeString, Str: s}
}

func NewBool(b bool) *Value {
	if b {
		return True
	}
	return False
}

func NewObject(obj *Object) *Value {
	return &Value{Type: TypeObject, Object: obj}
}

// IsNullish reports whether v is undefined, null or a nil pointer.
func (v *Value) IsNullish() bool {
	return v == nil || v.Type == TypeUndefined || v.Type == TypeNull
}

// IsCallable reports whether v is a function object.
func (v *Value) IsCallable() bool {
	return v != nil && v.Type == TypeObject && v.Object != nil && v.Object.Callable != nil
}

// ToBoolean implements the ECMAScript ToBoolean abstract operation.
func (v *Value) ToBoolean() bool {
	if v == nil {
		return false
	}
	switch v.Type {
	case TypeBoolean:
		return v.Bool
	case TypeNumber:
		return v.Number != 0 && !math.IsNaN(v.Number)
	case TypeString:
		return len(v.Str) > 0
	case TypeObject, TypeSymbol:
		return true
	default:
		return false
	}
}

// ToString converts v to a string, ignoring errors raised by user-defined
// toString or valueOf methods.
func (v *Value) ToString() string {
	s, err := ToString(v)
	if err != nil {
		return "[object Object]"
	}
	return s
}

// ToNumber converts v to a number, ignoring conversion errors.
func (v *Value) ToNumber() float64 {
	n, err := ToNumber(v)
	if err != nil {
		return math.NaN()
	}
	return n
}

// Typeof returns the result of the typeof operator.
func Typeof(v *Value) string {
	if v == nil {
		return "undefined"
	}
	switch v.Type {
	case TypeNull:
		return "object"
	case TypeObject:
		if v.Object != nil && v.Object.Callable != nil {
			return "function"
		}
		return "object"
	default:
		return v.Type.String()
	}
}

// FormatNumber renders f the way Number.prototype.toString does for radix 10.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + exp[:1] + digits
}

// StringToNumber implements ToNumber applied to a string.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789.eE+-", c) {
			return math.NaN()
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return n
		}
		return math.NaN()
	}
	return n
}

// ToInteger truncates toward zero, mapping NaN to 0.
func ToInteger(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	if math.IsInf(f, 0) {
		return f
	}
	return math.Trunc(f)
}

// ToUint32 implements the ECMAScript ToUint32 conversion.
func ToUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m)
}

// ToInt32 implements the ECMAScript ToInt32 conversion.
func ToInt32(f float64) int32 {
	return int32(ToUint32(f))
}
