package builtins

import (
	"testing"

	"github.com/example/evaljs/runtime"
	"github.com/google/go-cmp/cmp"
)

func TestStringMethods(t *testing.T) {
	tests := []struct {
		recv   string
		method string
		args   []*runtime.Value
		want   *runtime.Value
	}{
		{"hello", "charAt", []*runtime.Value{num(1)}, str("e")},
		{"hello", "charAt", []*runtime.Value{num(9)}, str("")},
		{"hello", "charCodeAt", []*runtime.Value{num(0)}, num(104)},
		{"hello", "indexOf", []*runtime.Value{str("l")}, num(2)},
		{"hello", "lastIndexOf", []*runtime.Value{str("l")}, num(3)},
		{"hello", "indexOf", []*runtime.Value{str("z")}, num(-1)},
		{"hello", "includes", []*runtime.Value{str("ell")}, runtime.True},
		{"hello", "startsWith", []*runtime.Value{str("he")}, runtime.True},
		{"hello", "endsWith", []*runtime.Value{str("lo")}, runtime.True},
		{"hello", "slice", []*runtime.Value{num(-3)}, str("llo")},
		{"hello", "slice", []*runtime.Value{num(1), num(-1)}, str("ell")},
		{"hello", "substring", []*runtime.Value{num(3), num(1)}, str("el")},
		{"hello", "substr", []*runtime.Value{num(1), num(3)}, str("ell")},
		{"Hello", "toUpperCase", nil, str("HELLO")},
		{"Hello", "toLowerCase", nil, str("hello")},
		{"  hi \n", "trim", nil, str("hi")},
		{"  hi ", "trimStart", nil, str("hi ")},
		{"  hi ", "trimEnd", nil, str("  hi")},
		{"ab", "repeat", []*runtime.Value{num(3)}, str("ababab")},
		{"abc", "padStart", []*runtime.Value{num(6), str("12")}, str("121abc")},
		{"abc", "padEnd", []*runtime.Value{num(5)}, str("abc  ")},
		{"abc", "padStart", []*runtime.Value{num(2)}, str("abc")},
		{"a", "concat", []*runtime.Value{num(1), runtime.Null}, str("a1null")},
		{"a", "localeCompare", []*runtime.Value{str("b")}, num(-1)},
		{"aaa", "replace", []*runtime.Value{str("a"), str("[$&]")}, str("[a]aa")},
		{"x-y", "replace", []*runtime.Value{str("-"), str("$$")}, str("x$y")},
	}
	for _, tt := range tests {
		got := call(t, str(tt.recv), tt.method, tt.args...)
		if !runtime.StrictEquals(got, tt.want) {
			t.Errorf("%q.%s(%s) = %s, want %s", tt.recv, tt.method, FormatArgs(tt.args), Inspect(got), Inspect(tt.want))
		}
	}
}

func TestStringUsesUTF16Indices(t *testing.T) {
	s := str("a😀b")
	if n := runtime.StringLength(s.Str); n != 4 {
		t.Fatalf("length = %d, want 4", n)
	}
	if got := call(t, s, "charCodeAt", num(1)); got.Number != 0xD83D {
		t.Errorf("charCodeAt(1) = %x", int(got.Number))
	}
	if got := call(t, s, "indexOf", str("b")); got.Number != 3 {
		t.Errorf("indexOf(b) = %v", got.Number)
	}
	if got := call(t, s, "slice", num(1), num(3)); got.Str != "😀" {
		t.Errorf("slice(1, 3) = %q", got.Str)
	}
}

func TestStringSplit(t *testing.T) {
	tests := []struct {
		recv string
		args []*runtime.Value
		want []string
	}{
		{"a,b,,c", []*runtime.Value{str(",")}, []string{"a", "b", "", "c"}},
		{"abc", []*runtime.Value{str("")}, []string{"a", "b", "c"}},
		{"abc", nil, []string{"abc"}},
		{"a,b,c", []*runtime.Value{str(","), num(2)}, []string{"a", "b"}},
		{"a1b22c", []*runtime.Value{mustRegExp(t, `\d+`, "")}, []string{"a", "b", "c"}},
		{"a1b2c", []*runtime.Value{mustRegExp(t, `(\d)`, "")}, []string{"a", "1", "b", "2", "c"}},
	}
	for _, tt := range tests {
		got := stringsOf(t, call(t, str(tt.recv), "split", tt.args...))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%q.split(%s) (-want +got):\n%s", tt.recv, FormatArgs(tt.args), diff)
		}
	}
}

func TestStringReplaceWithRegExp(t *testing.T) {
	got := call(t, str("John Smith"), "replace", mustRegExp(t, `(\w+)\s(\w+)`, ""), str("$2, $1"))
	if got.Str != "Smith, John" {
		t.Errorf("replace = %q", got.Str)
	}

	got = call(t, str("a-b-c"), "replace", mustRegExp(t, "-", "g"), str("+"))
	if got.Str != "a+b+c" {
		t.Errorf("global replace = %q", got.Str)
	}

	upper := runtime.NewObject(newFuncObject("upper", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return str("<" + args[1].Str + "@" + args[2].ToString() + ">"), nil
	}))
	got = call(t, str("ab"), "replace", mustRegExp(t, "(b)", ""), upper)
	if got.Str != "a<b@1>" {
		t.Errorf("function replace = %q", got.Str)
	}
}

func TestStringMatchAndSearch(t *testing.T) {
	m := call(t, str("x12y345"), "match", mustRegExp(t, `\d+`, "g"))
	if diff := cmp.Diff([]string{"12", "345"}, stringsOf(t, m)); diff != "" {
		t.Errorf("match /g (-want +got):\n%s", diff)
	}
	if m := call(t, str("abc"), "match", mustRegExp(t, `z`, "")); m != runtime.Null {
		t.Errorf("no match = %s, want null", Inspect(m))
	}
	single := call(t, str("key=val"), "match", mustRegExp(t, `(\w+)=(\w+)`, ""))
	if diff := cmp.Diff([]string{"key=val", "key", "val"}, stringsOf(t, single)); diff != "" {
		t.Errorf("match groups (-want +got):\n%s", diff)
	}
	if idx := call(t, str("abc1"), "search", mustRegExp(t, `\d`, "")); idx.Number != 3 {
		t.Errorf("search = %v", idx.Number)
	}
}

func TestStringIncludesRejectsRegExp(t *testing.T) {
	_, err := invoke(t, str("abc"), "includes", mustRegExp(t, "a", ""))
	wantErr(t, err, "TypeError")
}

func TestStringRepeatRange(t *testing.T) {
	_, err := invoke(t, str("a"), "repeat", num(-1))
	wantErr(t, err, "RangeError")
}

func TestStringFromCharCode(t *testing.T) {
	got := call(t, global(t, "String"), "fromCharCode", num(72), num(105))
	if got.Str != "Hi" {
		t.Errorf("fromCharCode = %q", got.Str)
	}
}

func TestStringWrapper(t *testing.T) {
	boxed := construct(t, "String", str("ab"))
	if boxed.Type != runtime.TypeObject {
		t.Fatalf("new String is %s", boxed.Type)
	}
	if got := boxed.Object.Get("length"); got.Number != 2 {
		t.Errorf("length = %v", got.Number)
	}
	if got := call(t, boxed, "valueOf"); got.Str != "ab" {
		t.Errorf("valueOf = %q", got.Str)
	}
}

func mustRegExp(t *testing.T, source, flags string) *runtime.Value {
	t.Helper()
	re, err := NewRegExp(source, flags)
	if err != nil {
		t.Fatalf("NewRegExp(%q, %q): %v", source, flags, err)
	}
	return re
}
