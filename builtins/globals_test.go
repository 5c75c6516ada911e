package builtins

import (
	"math"
	"testing"

	"github.com/example/evaljs/runtime"
)

func callGlobal(t *testing.T, name string, args ...*runtime.Value) (*runtime.Value, error) {
	t.Helper()
	return runtime.Call(global(t, name), runtime.Undefined, args)
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		fn   string
		args []*runtime.Value
		want float64
	}{
		{"parseInt", []*runtime.Value{str("42px")}, 42},
		{"parseInt", []*runtime.Value{str("  -17")}, -17},
		{"parseInt", []*runtime.Value{str("0x1F")}, 31},
		{"parseInt", []*runtime.Value{str("ff"), num(16)}, 255},
		{"parseInt", []*runtime.Value{str("101"), num(2)}, 5},
		{"parseInt", []*runtime.Value{num(4.9)}, 4},
		{"parseFloat", []*runtime.Value{str("3.14abc")}, 3.14},
		{"parseFloat", []*runtime.Value{str(".5")}, 0.5},
		{"parseFloat", []*runtime.Value{str("1e3x")}, 1000},
		{"parseFloat", []*runtime.Value{str("1e")}, 1},
		{"parseFloat", []*runtime.Value{str("-Infinity")}, math.Inf(-1)},
	}
	for _, tt := range tests {
		got, err := callGlobal(t, tt.fn, tt.args...)
		if err != nil {
			t.Fatal(err)
		}
		if got.Number != tt.want {
			t.Errorf("%s(%s) = %v, want %v", tt.fn, FormatArgs(tt.args), got.Number, tt.want)
		}
	}

	for _, in := range []string{"", "abc", "--1"} {
		for _, fn := range []string{"parseInt", "parseFloat"} {
			got, err := callGlobal(t, fn, str(in))
			if err != nil {
				t.Fatal(err)
			}
			if !math.IsNaN(got.Number) {
				t.Errorf("%s(%q) = %v, want NaN", fn, in, got.Number)
			}
		}
	}
}

func TestIsNaNCoerces(t *testing.T) {
	got, _ := callGlobal(t, "isNaN", str("abc"))
	if !got.Bool {
		t.Errorf("isNaN('abc') = false")
	}
	got, _ = callGlobal(t, "isFinite", str("12"))
	if !got.Bool {
		t.Errorf("isFinite('12') = false")
	}
}

func TestURIEncoding(t *testing.T) {
	tests := []struct {
		fn, in, want string
	}{
		{"encodeURIComponent", "a b&c/é", "a%20b%26c%2F%C3%A9"},
		{"encodeURI", "http://x.y/a b?q=1#f", "http://x.y/a%20b?q=1#f"},
		{"decodeURIComponent", "a%20b%26c%2F%C3%A9", "a b&c/é"},
		{"decodeURI", "a%20b%2Fc", "a b%2Fc"},
		{"escape", "a b+ü", "a%20b+%FC"},
		{"escape", "€", "%u20AC"},
		{"unescape", "a%20b+%FC%u20AC", "a b+ü€"},
		{"unescape", "100%", "100%"},
	}
	for _, tt := range tests {
		got, err := callGlobal(t, tt.fn, str(tt.in))
		if err != nil {
			t.Fatalf("%s(%q): %v", tt.fn, tt.in, err)
		}
		if got.Str != tt.want {
			t.Errorf("%s(%q) = %q, want %q", tt.fn, tt.in, got.Str, tt.want)
		}
	}
}

func TestDecodeMalformedURI(t *testing.T) {
	for _, in := range []string{"%", "%zz", "%C3", "%FF"} {
		_, err := callGlobal(t, "decodeURIComponent", str(in))
		wantErr(t, err, "URIError: URI malformed")
	}
}

func TestMathFunctions(t *testing.T) {
	m := global(t, "Math")
	tests := []struct {
		method string
		args   []*runtime.Value
		want   float64
	}{
		{"round", []*runtime.Value{num(2.5)}, 3},
		{"round", []*runtime.Value{num(-2.5)}, -2},
		{"round", []*runtime.Value{num(-2.6)}, -3},
		{"max", []*runtime.Value{num(1), num(3), num(2)}, 3},
		{"max", nil, math.Inf(-1)},
		{"min", []*runtime.Value{num(1), str("0")}, 0},
		{"pow", []*runtime.Value{num(2), num(10)}, 1024},
		{"hypot", []*runtime.Value{num(3), num(4)}, 5},
		{"imul", []*runtime.Value{num(0xffffffff), num(5)}, -5},
		{"clz32", []*runtime.Value{num(1)}, 31},
		{"sign", []*runtime.Value{num(-3)}, -1},
		{"trunc", []*runtime.Value{num(-4.7)}, -4},
	}
	for _, tt := range tests {
		got := call(t, m, tt.method, tt.args...)
		if got.Number != tt.want {
			t.Errorf("Math.%s(%s) = %v, want %v", tt.method, FormatArgs(tt.args), got.Number, tt.want)
		}
	}

	for _, c := range []struct {
		method string
		args   []*runtime.Value
	}{
		{"max", []*runtime.Value{num(1), runtime.NaN}},
		{"pow", []*runtime.Value{num(1), runtime.PosInf}},
		{"sqrt", []*runtime.Value{num(-1)}},
	} {
		if got := call(t, m, c.method, c.args...); !math.IsNaN(got.Number) {
			t.Errorf("Math.%s(%s) = %v, want NaN", c.method, FormatArgs(c.args), got.Number)
		}
	}

	for i := 0; i < 20; i++ {
		if r := call(t, m, "random").Number; r < 0 || r >= 1 {
			t.Fatalf("Math.random() = %v", r)
		}
	}
}
