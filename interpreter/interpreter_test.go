package interpreter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/example/evaljs/builtins"
	"github.com/example/evaljs/coro"
	"github.com/example/evaljs/parser"
	"github.com/example/evaljs/runtime"
	"github.com/google/go-cmp/cmp"
)

func quiet() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func evalExpect(t *testing.T, source string) *runtime.Value {
	t.Helper()
	val, err := Evaluate(source, quiet())
	if err != nil {
		t.Fatalf("Evaluate error for %q: %v", source, err)
	}
	return val
}

func evalExpectError(t *testing.T, source string) error {
	t.Helper()
	_, err := Evaluate(source, quiet())
	if err == nil {
		t.Fatalf("expected error for %q but got none", source)
	}
	return err
}

func expectNumber(t *testing.T, source string, expected float64) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeNumber {
		t.Fatalf("expected number for %q, got %s (type=%v)", source, builtins.Inspect(val), val.Type)
	}
	if math.IsNaN(expected) {
		if !math.IsNaN(val.Number) {
			t.Fatalf("expected NaN for %q, got %v", source, val.Number)
		}
		return
	}
	if val.Number != expected {
		t.Fatalf("expected %v for %q, got %v", expected, source, val.Number)
	}
}

func expectString(t *testing.T, source string, expected string) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeString {
		t.Fatalf("expected string for %q, got %s (type=%v)", source, builtins.Inspect(val), val.Type)
	}
	if val.Str != expected {
		t.Fatalf("expected %q for %q, got %q", expected, source, val.Str)
	}
}

func expectBool(t *testing.T, source string, expected bool) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeBoolean {
		t.Fatalf("expected boolean for %q, got %s (type=%v)", source, builtins.Inspect(val), val.Type)
	}
	if val.Bool != expected {
		t.Fatalf("expected %v for %q, got %v", expected, source, val.Bool)
	}
}

func expectUndefined(t *testing.T, source string) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeUndefined {
		t.Fatalf("expected undefined for %q, got %s", source, builtins.Inspect(val))
	}
}

func expectThrown(t *testing.T, source string, prefix string) {
	t.Helper()
	err := evalExpectError(t, source)
	if got := runtime.Describe(runtime.ErrorValue(err)); !strings.HasPrefix(got, prefix) {
		t.Fatalf("error for %q = %q, want prefix %q", source, got, prefix)
	}
}

// --- Literals and operators ---

func TestLiterals(t *testing.T) {
	expectNumber(t, "42", 42)
	expectNumber(t, "3.14", 3.14)
	expectString(t, `"hello"`, "hello")
	expectString(t, "'world'", "world")
	expectBool(t, "true", true)
	expectBool(t, "false", false)
	expectUndefined(t, "undefined")
	if v := evalExpect(t, "null"); v.Type != runtime.TypeNull {
		t.Fatalf("null evaluated to %s", builtins.Inspect(v))
	}
	expectNumber(t, "[1,,3].length", 3)
	expectString(t, "var o = {a: 1, 'b': 2, 3: 'c'}; o.a + o.b + o[3]", "3c")
}

func TestEvaluateSimpleSum(t *testing.T) {
	expectNumber(t, "1+2", 3)
	expectString(t, "var s=''; for (var i=0;i<3;i++) s+=i; s", "012")
}

func TestArithmetic(t *testing.T) {
	expectNumber(t, "2 + 3", 5)
	expectNumber(t, "10 - 3", 7)
	expectNumber(t, "4 * 5", 20)
	expectNumber(t, "10 / 4", 2.5)
	expectNumber(t, "10 % 3", 1)
	expectNumber(t, "-7 % 3", -1)
	expectNumber(t, "1 / 0", math.Inf(1))
	expectNumber(t, "0 / 0", math.NaN())
	expectNumber(t, "-5", -5)
	expectNumber(t, "+true", 1)
	expectNumber(t, "'6' * '7'", 42)
	expectNumber(t, "null + 1", 1)
}

func TestStringConcat(t *testing.T) {
	expectString(t, `"hello" + " " + "world"`, "hello world")
	expectString(t, `"num: " + 42`, "num: 42")
	expectString(t, `1 + "2"`, "12")
	expectString(t, `[1, 2] + ""`, "1,2")
	expectString(t, `1 + 2 + "3"`, "33")
}

func TestComparisons(t *testing.T) {
	expectBool(t, "1 < 2", true)
	expectBool(t, "2 > 1", true)
	expectBool(t, "1 <= 1", true)
	expectBool(t, "1 >= 2", false)
	expectBool(t, "'a' < 'b'", true)
	expectBool(t, "'10' < '9'", true)
	expectBool(t, "'10' < 9", false)
	expectBool(t, "NaN < 1", false)
	expectBool(t, "NaN >= 1", false)
	expectBool(t, "null >= 0", true)
	expectBool(t, "1 == 1", true)
	expectBool(t, "1 == '1'", true)
	expectBool(t, "1 === '1'", false)
	expectBool(t, "1 != 2", true)
	expectBool(t, "1 !== '1'", true)
	expectBool(t, "null == undefined", true)
	expectBool(t, "null === undefined", false)
	expectBool(t, "NaN == NaN", false)
}

func TestBitwise(t *testing.T) {
	expectNumber(t, "5 & 3", 1)
	expectNumber(t, "5 | 3", 7)
	expectNumber(t, "5 ^ 3", 6)
	expectNumber(t, "~5", -6)
	expectNumber(t, "1 << 4", 16)
	expectNumber(t, "-16 >> 2", -4)
	expectNumber(t, "-1 >>> 28", 15)
	expectNumber(t, "1 << 33", 2)
}

func TestLogicalShortCircuit(t *testing.T) {
	expectNumber(t, "1 && 2", 2)
	expectNumber(t, "0 && 2", 0)
	expectNumber(t, "1 || 2", 1)
	expectNumber(t, "0 || 2", 2)
	expectBool(t, "!0", true)
	expectNumber(t, "var n = 0; false && n++; true || n++; n", 0)
	expectNumber(t, "var n = 0; true && n++; false || n++; n", 2)
}

func TestUnary(t *testing.T) {
	expectString(t, "typeof undeclared", "undefined")
	expectString(t, "typeof null", "object")
	expectString(t, "typeof function () {}", "function")
	expectString(t, "typeof 'x'", "string")
	expectUndefined(t, "void 1")
	expectBool(t, "var o = {a: 1}; delete o.a; 'a' in o", false)
	expectBool(t, "leaked = 1; delete leaked", true)
	expectBool(t, "var kept = 1; delete kept", false)
}

func TestInAndInstanceof(t *testing.T) {
	expectBool(t, "'length' in []", true)
	expectBool(t, "0 in [5]", true)
	expectBool(t, "'toString' in {}", true)
	expectBool(t, "[] instanceof Array", true)
	expectBool(t, "({}) instanceof Array", false)
	expectBool(t, "1 instanceof Number", false)
	expectThrown(t, "'a' in 'abc'", "TypeError")
	expectThrown(t, "({}) instanceof 1", "TypeError")
}

func TestAssignmentOperators(t *testing.T) {
	expectString(t, "var s = 'a'; s += 'b'; s", "ab")
	expectNumber(t, "var n = 10; n -= 3; n *= 2; n", 14)
	expectNumber(t, "var n = 3; n <<= 2; n |= 1; n", 13)
	expectNumber(t, "var n = 9; n %= 4; n", 1)
	expectNumber(t, "var o = {v: 1}; o.v += 4; o['v'] *= 2; o.v", 10)
}

func TestUpdate(t *testing.T) {
	expectNumber(t, "var i = 5; i--", 5)
	expectNumber(t, "var i = 5; --i", 4)
	expectNumber(t, "var a = [1]; a[0]++; a[0]", 2)
	expectNumber(t, "var o = {n: '4'}; ++o.n", 5)
}

func TestSequenceAndConditional(t *testing.T) {
	expectNumber(t, "(1, 2, 3)", 3)
	expectString(t, "true ? 'y' : 'n'", "y")
	expectString(t, "0 ? 'y' : 'n'", "n")
}

// --- Variables and functions ---

func TestVarHoisting(t *testing.T) {
	expectUndefined(t, "var x; x")
	expectNumber(t, "x = 5; var x; x", 5)
	expectUndefined(t, "var before = x; var x = 3; before")
	expectNumber(t, "var r = f(); function f() { return 7 } r", 7)
	expectNumber(t, `
		function outer() {
			if (true) {
				var inner = 4;
			}
			return inner;
		}
		outer()`, 4)
	expectNumber(t, `
		function g() {
			return h();
			function h() { return 9 }
		}
		g()`, 9)
}

func TestUndeclaredReadsUndefined(t *testing.T) {
	expectUndefined(t, "missing")
	expectNumber(t, "function f() { leak = 1 } f(); leak", 1)
}

func TestClosures(t *testing.T) {
	expectNumber(t, `
		function counter() {
			var c = 0;
			return function () { return ++c; };
		}
		var a = counter();
		var b = counter();
		a(); a(); b();
		a()`, 3)
	expectNumber(t, `
		var fns = [];
		function make(i) { return function () { return i * 10; }; }
		for (var i = 0; i < 3; i++) fns.push(make(i));
		fns[2]()`, 20)
}

func TestRecursion(t *testing.T) {
	expectNumber(t, "function fib(n) { return n < 2 ? n : fib(n - 1) + fib(n - 2) } fib(15)", 610)
	expectNumber(t, "var f = function fact(n) { return n <= 1 ? 1 : n * fact(n - 1) }; f(5)", 120)
	expectNumber(t, "function d(n) { return n === 0 ? 0 : 1 + d(n - 1) } d(20000)", 20000)
}

func TestArgumentsAndParams(t *testing.T) {
	expectNumber(t, "function f() { return arguments.length } f(1, 2, 3)", 3)
	expectUndefined(t, "function g(a, b) { return b } g(1)")
	expectNumber(t, "function h(a) { arguments[0] = 9; return a } h(1)", 1)
	expectUndefined(t, "function noReturn() { 1 + 1 } noReturn()")
}

func TestReceiver(t *testing.T) {
	expectNumber(t, "var o = {v: 2, read: function () { return this.v }}; o.read()", 2)
	expectBool(t, "var g = this; g.parseInt === parseInt", true)
	expectBool(t, "function f() { return this } f() === this", true)
	expectNumber(t, "function f() { return this.v } f.call({v: 9})", 9)
	expectNumber(t, "var o = {v: 1, read: function () { return this.v }}; var m = {v: 5}; m.read = o.read; m.read()", 5)
}

func TestAccessorProperties(t *testing.T) {
	expectNumber(t, "var o = { get x() { return 42 } }; o.x", 42)
	expectNumber(t, "var o = { v: 0, set x(n) { this.v = n * 2 }, get x() { return this.v } }; o.x = 4; o.x", 8)
}

func TestNew(t *testing.T) {
	expectNumber(t, "function P(v) { this.v = v; return 5 } var p = new P(3); p.v", 3)
	expectBool(t, "function P() { return 1 } new P() instanceof P", true)
	expectBool(t, "function P() {} new P().constructor === P", true)
	expectNumber(t, "function P() {} P.prototype.z = 7; new P().z", 7)
	expectNumber(t, "new Array(3).length", 3)
	expectNumber(t, "new Date(0).getTime()", 0)
	expectString(t, "new Error('x').message", "x")
	expectBool(t, "new TypeError('x') instanceof Error", true)
	expectThrown(t, "new parseInt('1')", "TypeError: parseInt is not a constructor")
	expectThrown(t, "var o = {}; new o.missing()", "TypeError: o.missing is not a constructor")
}

func TestNewProxy(t *testing.T) {
	expectString(t, "var p = new Proxy({}, { get: function (t, k) { return k + '!' } }); p.foo", "foo!")
	expectNumber(t, "var t = { a: 1 }; var p = new Proxy(t, {}); p.b = 2; t.a + t.b", 3)
	expectString(t, "var seen = ''; var p = new Proxy({}, { set: function (t, k, v) { seen = k + '=' + v; return true } }); p.x = 4; seen", "x=4")
	expectBool(t, "var p = new Proxy({}, { has: function () { return true } }); 'anything' in p", true)
	expectBool(t, "var t = { x: 1 }; var p = new Proxy(t, { deleteProperty: function () { return false } }); delete p.x; 'x' in t", true)
	expectNumber(t, "var f = new Proxy(function (a) { return a * 2 }, { apply: function (t, self, args) { return t(args[0]) + 1 } }); f(5)", 11)
	expectThrown(t, "Proxy({}, {})", "TypeError: Constructor Proxy requires 'new'")
	expectThrown(t, "new Proxy(1, {})", "TypeError")
}

func TestFunctionToString(t *testing.T) {
	expectString(t, "function add(a, b) { return a + b } add.toString()", "function add(a, b) { [script code] }")
	expectString(t, "'' + function () {}", "function () { [script code] }")
	expectString(t, "parseInt.toString()", "function parseInt() { [native code] }")
	expectBool(t, "(function f() {}).toString() === Function.prototype.toString.call(function f() {})", true)
}

func TestCallErrors(t *testing.T) {
	expectThrown(t, "var o = {}; o.missing()", "TypeError: o.missing is not a function")
	expectThrown(t, "undefinedFn()", "TypeError: undefinedFn is not a function")
	expectThrown(t, "null.x", "TypeError")
}

func TestHostCallbacks(t *testing.T) {
	expectString(t, "[1, 2, 3].map(function (x) { return x * 2 }).join('-')", "2-4-6")
	expectString(t, "[3, 1, 2].sort(function (a, b) { return a - b }).join('')", "123")
	expectString(t, "JSON.stringify({a: [1, 'x']})", `{"a":[1,"x"]}`)
	expectString(t, "try { [1].forEach(function () { throw 'cb' }) } catch (e) { e }", "cb")
	expectString(t, "'a-b'.replace(/-/, function () { return '+' })", "a+b")
	expectString(t, "/a(b)/.exec('xab')[1]", "b")
}

// --- Control flow ---

func TestLoops(t *testing.T) {
	expectString(t, "var s = ''; for (var i = 0; i < 5; i++) { if (i % 2) continue; s += i } s", "024")
	expectNumber(t, "for (var i = 0; i < 10; i++) { i; if (i == 4) break; }", 4)
	expectNumber(t, "var i = 0; while (true) { i++; if (i > 3) break; }", 3)
	expectNumber(t, "var n = 0; do { n++ } while (n < 5); n", 5)
	expectNumber(t, "var m = 0; do { m++ } while (false); m", 1)
	expectNumber(t, "var n = 0; while (n < 3) n++; n", 3)
	expectNumber(t, "var c = 0; for (;;) { if (++c == 3) break } c", 3)
	expectNumber(t, "function f() { for (var i = 0; ; i++) { if (i == 6) return i } } f()", 6)
}

func TestForIn(t *testing.T) {
	expectString(t, "var o = {a: 1, b: 2, c: 3}; var ks = ''; for (var k in o) ks += k; ks", "abc")
	expectString(t, "var ks = ''; for (var i in [5, 6, 7]) ks += i; ks", "012")
	expectString(t, "function P() {} P.prototype.z = 1; var o = new P(); o.a = 2; var ks = ''; for (var k in o) ks += k; ks", "az")
	expectString(t, "for (var k in null) {} 'ok'", "ok")
	expectString(t, "var o = {a: 1, b: 2}; var ks = ''; for (var k in o) { delete o.b; ks += k } ks", "a")
	expectString(t, "var t = {}; var ks = ''; for (t.k in {x: 1}) ks += t.k; ks", "x")
	expectString(t, "var ks = ''; for (var k in {a: 1, b: 2, c: 3}) { if (k == 'b') break; ks += k } ks", "a")
}

func TestSwitch(t *testing.T) {
	expectString(t, `
		var sink = [];
		switch (1) {
		case 1: sink.push('a');
		case 2: sink.push('b'); break;
		case 3: sink.push('c');
		}
		sink.join(',')`, "a,b")
	expectString(t, "var s = ''; switch (9) { case 1: s += '1'; default: s += 'd'; case 2: s += '2' } s", "d")
	expectString(t, "var s = ''; switch (3) { default: s += 'd'; case 1: s += 'a' } s", "d")
	expectString(t, "var s = ''; switch (1) { case 1: s += '1'; default: s += 'd'; case 2: s += '2' } s", "1d2")
	expectString(t, "var s = ''; switch (2) { default: s += 'd'; case 2: s += '2' } s", "2")
	expectString(t, "var r; switch ('1') { case 1: r = 'num'; break; default: r = 'other' } r", "other")
	expectString(t, "var r = 'none'; switch (4) { case 1: r = 'one' } r", "none")
	expectString(t, "function f(x) { switch (x) { case 1: return 'one' } return 'other' } f(1) + f(2)", "oneother")
	expectString(t, "var s = ''; for (var i = 0; i < 3; i++) { switch (i) { case 1: continue } s += i } s", "02")
}

func TestWith(t *testing.T) {
	expectNumber(t, "var o = {a: 1}; with (o) { a = 2 } o.a", 2)
	expectNumber(t, "with ({x: 5}) { x * 2 }", 10)
	expectNumber(t, "var y = 1; with ({}) { y = 3 } y", 3)
}

// --- Exceptions ---

func TestTryCatchFinally(t *testing.T) {
	expectNumber(t, "try { throw 1 } catch (e) { e + 1 }", 2)
	expectBool(t, "try { undefined.x } catch (e) { e instanceof TypeError }", true)
	expectString(t, "try { null.f() } catch (e) { e.name }", "TypeError")
	expectString(t, "var log = ''; try { log += 't' } finally { log += 'f' } log", "tf")
	expectString(t, "var log = ''; try { try { throw 'x' } finally { log += 'f' } } catch (e) { log += e } log", "fx")
	expectNumber(t, "function f() { try { return 1 } finally { return 2 } } f()", 2)
	expectString(t, "var e = 'outer'; try { throw 'inner' } catch (e) { } e", "outer")
	expectString(t, "function f() { for (;;) { try { return 'x' } finally { } } } f()", "x")
	expectNumber(t, "var x = 1; function g() { var x = 2; throw 'e' } try { g() } catch (err) {} x", 1)
	expectString(t, "try { throw new RangeError('far') } catch (e) { e.message }", "far")
	expectString(t, "var s = ''; for (var i = 0; i < 3; i++) { try { if (i == 1) continue; s += i } finally { s += 'f' } } s", "0ff2f")
}

func TestFinallyRunsOnce(t *testing.T) {
	expectNumber(t, `
		var runs = 0;
		function f() {
			try { throw 'a' } catch (e) { throw 'b' } finally { runs++ }
		}
		try { f() } catch (e) {}
		runs`, 1)
	expectThrown(t, "try { throw 'a' } finally { throw 'b' }", "b")
}

func TestUncaughtErrorsAreUnwrapped(t *testing.T) {
	err := evalExpectError(t, "throw 'boom'")
	var exc *runtime.Exception
	if !errors.As(err, &exc) {
		t.Fatalf("error %v is not an Exception", err)
	}
	if exc.Value.Str != "boom" {
		t.Errorf("thrown value = %s", builtins.Inspect(exc.Value))
	}

	err = evalExpectError(t, "null.x")
	if err.Error() != "TypeError: Cannot read property 'x' of null" {
		t.Errorf("host error = %q", err.Error())
	}

	_, err = Evaluate("var = ;", quiet())
	var pe *parser.Error
	if !errors.As(err, &pe) {
		t.Fatalf("parse failure returned %v", err)
	}
}

// --- Environment facade ---

func TestScopeOverrides(t *testing.T) {
	opts := quiet()
	opts.Scope = map[string]*runtime.Value{
		"x":        runtime.NewNumber(21),
		"parseInt": runtime.NewString("shadow"),
	}
	v, err := Evaluate("x * 2 + parseInt", opts)
	if err != nil {
		t.Fatal(err)
	}
	if v.Str != "42shadow" {
		t.Errorf("result = %s", builtins.Inspect(v))
	}
}

func TestDeclarationsKeepScopeBindings(t *testing.T) {
	opts := quiet()
	opts.Scope = map[string]*runtime.Value{"foo": runtime.NewNumber(1)}
	v, err := Evaluate("function foo() { return 2 } foo", opts)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != runtime.TypeNumber || v.Number != 1 {
		t.Errorf("foo = %s, want 1", builtins.Inspect(v))
	}

	expectNumber(t, "var g = 1; function g() { return 2 } g", 1)
	expectNumber(t, "function h() { return 1 } function h() { return 2 } h()", 2)
	expectNumber(t, "function k(a) { var a; return a } k(3)", 3)
}

func TestRunPersistsBindings(t *testing.T) {
	env := NewEnvironment(quiet())
	for _, src := range []string{"var x = 1", "function f() { return 1 }", "f = function () { return 2 }"} {
		if _, err := env.Run(src); err != nil {
			t.Fatalf("Run(%q): %v", src, err)
		}
	}
	v, err := env.Run("x + f()")
	if err != nil {
		t.Fatal(err)
	}
	if v.Number != 3 {
		t.Errorf("x + f() = %s", builtins.Inspect(v))
	}
	if !env.Global().HasOwnProperty("x") {
		t.Errorf("x is not a global property")
	}
}

func TestStoreRestoredAfterError(t *testing.T) {
	env := NewEnvironment(quiet())
	if _, err := env.Run("var x = 'global'; function f(x) { throw x }"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Run("f('local')"); err == nil {
		t.Fatal("f did not throw")
	}
	v, err := env.Run("x")
	if err != nil {
		t.Fatal(err)
	}
	if v.Str != "global" {
		t.Errorf("x = %s after a failed call", builtins.Inspect(v))
	}
}

func TestState(t *testing.T) {
	env := NewEnvironment(quiet())
	if env.State() != "running" {
		t.Errorf("initial state = %q", env.State())
	}
	env.SetState("paused")
	if env.State() != "paused" {
		t.Errorf("state = %q", env.State())
	}
}

func TestLineEvents(t *testing.T) {
	src := strings.Join([]string{
		"var a = 1;",
		"a = a + 1;",
		"if (a > 1) {",
		"  a++;",
		"}",
	}, "\n")
	env := NewEnvironment(quiet())
	var lines []int
	cancel := env.OnLine(func(line int) { lines = append(lines, line) })
	if _, err := env.Run(src); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, lines); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}

	lines = nil
	if _, err := env.Run("for (var i = 0; i < 2; i++) {}"); err != nil {
		t.Fatal(err)
	}
	// entry, init, then test and update per iteration, then the final test
	if diff := cmp.Diff([]int{1, 1, 1, 1, 1, 1, 1}, lines); diff != "" {
		t.Errorf("loop lines (-want +got):\n%s", diff)
	}

	cancel()
	lines = nil
	if _, err := env.Run("a = 5"); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Errorf("cancelled listener saw %v", lines)
	}
}

func TestUnsupportedSyntaxIsDiagnosed(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	v, err := Evaluate("outer: 1; debugger; 2", opts)
	if err != nil {
		t.Fatal(err)
	}
	if v.Number != 2 {
		t.Errorf("result = %s", builtins.Inspect(v))
	}
	for _, kind := range []string{"kind=LabeledStatement", "kind=DebuggerStatement"} {
		if !strings.Contains(buf.String(), kind) {
			t.Errorf("log %q does not mention %s", buf.String(), kind)
		}
	}
}

func TestInvalidTargetIsDiagnosed(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	v, err := Evaluate("var n = 1; f() = 3", opts)
	if err != nil {
		t.Fatal(err)
	}
	if v.Number != 3 {
		t.Errorf("result = %s", builtins.Inspect(v))
	}
	if !strings.Contains(buf.String(), "invalid assignment target") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestDebugTrace(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Debug:  true,
	}
	if _, err := Evaluate("1 + 2", opts); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "kind=BinaryExpression line=1") {
		t.Errorf("trace = %q", buf.String())
	}
}

func TestClosureTask(t *testing.T) {
	env := NewEnvironment(quiet())
	c, err := env.GenSource("var n = 2; n * 21")
	if err != nil {
		t.Fatal(err)
	}
	res, err := coro.Run(c.Task())
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != Normal || res.Value.Number != 42 {
		t.Errorf("completion = %v %s", res.Kind, builtins.Inspect(res.Value))
	}
}

func TestConsoleUsesOptionWriters(t *testing.T) {
	var out bytes.Buffer
	opts := quiet()
	opts.Stdout = &out
	if _, err := Evaluate("console.log('hi', 1 + 1)", opts); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hi 2\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

// --- Promises and timers ---

func runAndDrain(t *testing.T, src string) *Environment {
	t.Helper()
	env := NewEnvironment(quiet())
	if _, err := env.Run(src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := env.Loop().Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	return env
}

func logOf(t *testing.T, env *Environment) string {
	t.Helper()
	v, err := env.Run("log.join(',')")
	if err != nil {
		t.Fatal(err)
	}
	return v.Str
}

func TestPromiseContinuations(t *testing.T) {
	env := runAndDrain(t, `
		var log = [];
		var p = new Promise(function (resolve) { resolve(2) });
		p.then(function (v) { log.push('then ' + v); return v * 2 })
		 .then(function (v) { log.push('second ' + v) });
		p.catch(function () { log.push('never') });
		Promise.reject(new Error('bad')).catch(function (e) { log.push(e.message) });
		Promise.resolve(1).then(function () { throw new TypeError('t') })
		 .catch(function (e) { log.push(e.name) });
		log.push('sync');
	`)
	if got := logOf(t, env); got != "sync,then 2,bad,second 4,TypeError" {
		t.Errorf("log = %q", got)
	}
}

func TestFunctionPassesPromiseThrough(t *testing.T) {
	v := evalExpect(t, "function f() { Promise.resolve(7) } f()")
	if _, ok := runtime.PromiseOf(v); !ok {
		t.Errorf("f() = %s, want a promise", builtins.Inspect(v))
	}
}

func TestTimersRunAfterProgram(t *testing.T) {
	env := runAndDrain(t, `
		var log = [];
		setTimeout(function () { log.push('late') }, 15);
		setTimeout(function () { log.push('early') }, 0);
		var id = setTimeout(function () { log.push('cancelled') }, 5);
		clearTimeout(id);
		Promise.resolve().then(function () { log.push('micro') });
		log.push('sync');
	`)
	if got := logOf(t, env); got != "sync,micro,early,late" {
		t.Errorf("log = %q", got)
	}
}

func TestEvaluateDrainsLoop(t *testing.T) {
	builtins.Init()
	var seen []string
	record := runtime.NewFunctionObject("record", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		seen = append(seen, args[0].ToString())
		return runtime.Undefined, nil
	})
	opts := quiet()
	opts.Scope = map[string]*runtime.Value{"record": runtime.NewObject(record)}
	if _, err := Evaluate("setTimeout(function () { record('timer') }, 1); record('body')", opts); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"body", "timer"}, seen); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}
