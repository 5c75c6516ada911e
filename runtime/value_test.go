package runtime

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatNumber(t *testing.T) {
	tenth, fifth := 0.1, 0.2
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{3, "3"},
		{-42, "-42"},
		{tenth + fifth, "0.30000000000000004"},
		{1.5, "1.5"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{123456789012, "123456789012"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStringToNumber(t *testing.T) {
	tests := map[string]float64{
		"":          0,
		"  12  ":    12,
		"0x1A":      26,
		"1e3":       1000,
		"-Infinity": math.Inf(-1),
		".5":        0.5,
	}
	for in, want := range tests {
		if got := StringToNumber(in); got != want {
			t.Errorf("StringToNumber(%q) = %v, want %v", in, got, want)
		}
	}
	for _, in := range []string{"abc", "inf", "NaN", "1_000", "12px"} {
		if got := StringToNumber(in); !math.IsNaN(got) {
			t.Errorf("StringToNumber(%q) = %v, want NaN", in, got)
		}
	}
}

func TestInt32Conversions(t *testing.T) {
	if got := ToInt32(4294967296 + 5); got != 5 {
		t.Errorf("ToInt32 wrap: got %d", got)
	}
	if got := ToInt32(2147483648); got != -2147483648 {
		t.Errorf("ToInt32 sign: got %d", got)
	}
	if got := ToUint32(-1); got != 4294967295 {
		t.Errorf("ToUint32(-1): got %d", got)
	}
	if got := ToInt32(math.NaN()); got != 0 {
		t.Errorf("ToInt32(NaN): got %d", got)
	}
}

func TestTypeof(t *testing.T) {
	fn := NewObject(NewFunctionObject("f", 0, func(*Value, []*Value) (*Value, error) { return Undefined, nil }))
	tests := []struct {
		v    *Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "object"},
		{True, "boolean"},
		{NewNumber(1), "number"},
		{NewString("s"), "string"},
		{NewObject(NewPlainObject()), "object"},
		{fn, "function"},
		{NewSymbol("x"), "symbol"},
	}
	for _, tt := range tests {
		if got := Typeof(tt.v); got != tt.want {
			t.Errorf("Typeof(%v) = %q, want %q", tt.v.Type, got, tt.want)
		}
	}
}

func TestLooseEquals(t *testing.T) {
	tests := []struct {
		a, b *Value
		want bool
	}{
		{Null, Undefined, true},
		{NewNumber(1), NewString("1"), true},
		{True, NewNumber(1), true},
		{NewString(""), NewNumber(0), true},
		{Null, NewNumber(0), false},
		{NaN, NaN, false},
	}
	for i, tt := range tests {
		got, err := LooseEquals(tt.a, tt.b)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got != tt.want {
			t.Errorf("case %d: got %v, want %v", i, got, tt.want)
		}
	}
	if !SameValueZero(NaN, NewNumber(math.NaN())) {
		t.Errorf("SameValueZero(NaN, NaN) should hold")
	}
}

func TestToPrimitiveUsesValueOf(t *testing.T) {
	obj := NewPlainObject()
	obj.Set("valueOf", NewObject(NewFunctionObject("valueOf", 0, func(*Value, []*Value) (*Value, error) {
		return NewNumber(7), nil
	})))
	n, err := ToNumber(NewObject(obj))
	if err != nil || n != 7 {
		t.Fatalf("got %v, %v", n, err)
	}
	if _, err := ToString(NewObject(NewOrdinaryObject(nil))); err == nil {
		t.Fatalf("expected TypeError for object without conversion methods")
	}
}

func TestObjectKeyOrder(t *testing.T) {
	obj := NewPlainObject()
	for _, k := range []string{"b", "a", "c"} {
		obj.Set(k, True)
	}
	obj.Delete("a")
	obj.Set("a", False)
	if diff := cmp.Diff([]string{"b", "c", "a"}, obj.Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestArrayLength(t *testing.T) {
	arr := NewArrayObject([]*Value{NewNumber(1), NewNumber(2)})
	arr.Set("4", NewNumber(5))
	if got := arr.Get("length").Number; got != 5 {
		t.Fatalf("length after sparse write = %v", got)
	}
	if arr.HasOwnProperty("3") {
		t.Errorf("hole should not be an own property")
	}
	arr.Set("length", NewNumber(1))
	if diff := cmp.Diff([]string{"0"}, arr.OwnKeys()); diff != "" {
		t.Errorf("keys after truncation (-want +got):\n%s", diff)
	}
	if err := arr.Assign("length", NewNumber(-1)); err == nil {
		t.Errorf("expected RangeError for negative length")
	}
}

func TestAccessorProperty(t *testing.T) {
	obj := NewPlainObject()
	var stored *Value
	obj.DefineProperty("x", &Property{
		IsAccessor: true,
		Getter: NewObject(NewFunctionObject("get", 0, func(this *Value, _ []*Value) (*Value, error) {
			return NewNumber(10), nil
		})),
		Setter: NewObject(NewFunctionObject("set", 1, func(this *Value, args []*Value) (*Value, error) {
			stored = args[0]
			return Undefined, nil
		})),
		Enumerable: true,
	})
	if got := obj.Get("x").Number; got != 10 {
		t.Errorf("getter returned %v", got)
	}
	obj.Set("x", NewString("v"))
	if stored == nil || stored.Str != "v" {
		t.Errorf("setter not invoked")
	}
}

func TestGetMemberOnPrimitives(t *testing.T) {
	v, err := GetMember(NewString("héllo"), "length")
	if err != nil || v.Number != 5 {
		t.Fatalf("length = %v, %v", v, err)
	}
	v, _ = GetMember(NewString("abc"), "1")
	if v.Str != "b" {
		t.Errorf("index read = %q", v.Str)
	}
	if _, err := GetMember(Undefined, "x"); err == nil {
		t.Errorf("expected TypeError reading from undefined")
	}
	if err := SetMember(Null, "x", True); err == nil {
		t.Errorf("expected TypeError writing to null")
	}
}

func TestErrorValue(t *testing.T) {
	v := ErrorValue(Throw(NewNumber(3)))
	if v.Number != 3 {
		t.Errorf("thrown value not preserved: %v", v)
	}
	ErrorPrototypes["TypeError"] = NewOrdinaryObject(nil)
	ErrorPrototypes["TypeError"].Set("name", NewString("TypeError"))
	defer delete(ErrorPrototypes, "TypeError")
	obj := ErrorValue(errorString("TypeError: x is not a function"))
	if got := Describe(obj); got != "TypeError: x is not a function" {
		t.Errorf("Describe = %q", got)
	}
}

type errorString string

func (e errorString) Error() string { return string(e) }
