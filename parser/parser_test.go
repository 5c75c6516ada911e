package parser

import (
	"testing"

	"github.com/example/evaljs/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, errs := New(src).ParseProgram()
	if len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	return program
}

func firstExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	program := parseOK(t, src)
	if len(program.Statements) == 0 {
		t.Fatalf("no statements in %q", src)
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", program.Statements[0])
	}
	return stmt.Expression
}

func TestOperatorPrecedence(t *testing.T) {
	bin, ok := firstExpr(t, "1 + 2 * 3").(*ast.BinaryExpression)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expected + at root, got %#v", bin)
	}
	right, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || right.Operator != "*" {
		t.Fatalf("expected * on the right, got %#v", bin.Right)
	}
}

func TestLeftAssociativity(t *testing.T) {
	bin := firstExpr(t, "a - b - c").(*ast.BinaryExpression)
	if _, ok := bin.Left.(*ast.BinaryExpression); !ok {
		t.Fatalf("expected (a - b) - c, got left %T", bin.Left)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	as := firstExpr(t, "a = b += 1").(*ast.AssignmentExpression)
	inner, ok := as.Right.(*ast.AssignmentExpression)
	if !ok || inner.Operator != "+=" {
		t.Fatalf("expected nested += assignment, got %T", as.Right)
	}
}

func TestLogicalAndConditional(t *testing.T) {
	cond, ok := firstExpr(t, "a || b && c ? 1 : 2").(*ast.ConditionalExpression)
	if !ok {
		t.Fatalf("expected conditional expression")
	}
	or, ok := cond.Test.(*ast.LogicalExpression)
	if !ok || or.Operator != "||" {
		t.Fatalf("expected || test, got %#v", cond.Test)
	}
	if and, ok := or.Right.(*ast.LogicalExpression); !ok || and.Operator != "&&" {
		t.Fatalf("expected && under ||")
	}
}

func TestCallMemberAndNew(t *testing.T) {
	call := firstExpr(t, "obj.method(1, 2)[k]").(*ast.MemberExpression)
	if !call.Computed {
		t.Fatalf("expected computed member")
	}
	inner := call.Object.(*ast.CallExpression)
	if len(inner.Arguments) != 2 {
		t.Fatalf("expected 2 args, got %d", len(inner.Arguments))
	}
	if m := inner.Callee.(*ast.MemberExpression); m.Property.(*ast.Identifier).Name != "method" {
		t.Fatalf("unexpected callee property")
	}

	n := firstExpr(t, "new a.B(1).c").(*ast.MemberExpression)
	ne, ok := n.Object.(*ast.NewExpression)
	if !ok || len(ne.Arguments) != 1 {
		t.Fatalf("expected new expression with one argument, got %T", n.Object)
	}
	if _, ok := ne.Callee.(*ast.MemberExpression); !ok {
		t.Fatalf("expected member callee, got %T", ne.Callee)
	}
}

func TestKeywordPropertyNames(t *testing.T) {
	call := firstExpr(t, "p.then(f).catch(g)").(*ast.CallExpression)
	m := call.Callee.(*ast.MemberExpression)
	if m.Property.(*ast.Identifier).Name != "catch" {
		t.Fatalf("expected catch property")
	}
	obj := firstExpr(t, "({default: 1, 'x y': 2, 3: 4})").(*ast.ObjectLiteral)
	if len(obj.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(obj.Properties))
	}
}

func TestObjectAccessors(t *testing.T) {
	obj := firstExpr(t, "({get x() { return 1 }, set x(v) {}, get: 2})").(*ast.ObjectLiteral)
	kinds := []string{"get", "set", "init"}
	for i, k := range kinds {
		if obj.Properties[i].PropKind != k {
			t.Errorf("property %d: expected kind %s, got %s", i, k, obj.Properties[i].PropKind)
		}
	}
}

func TestArrayHoles(t *testing.T) {
	arr := firstExpr(t, "[1,,3]").(*ast.ArrayLiteral)
	if len(arr.Elements) != 3 || arr.Elements[1] != nil {
		t.Fatalf("expected a hole at index 1, got %#v", arr.Elements)
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := map[string]float64{
		"42":    42,
		"0x1F":  31,
		"010":   8,
		"1e3":   1000,
		"0.5":   0.5,
		"09":    9,
		".25e1": 2.5,
	}
	for src, want := range tests {
		lit := firstExpr(t, src).(*ast.NumberLiteral)
		if lit.Value != want {
			t.Errorf("%s: expected %v, got %v", src, want, lit.Value)
		}
	}
}

func TestRegExpLiteral(t *testing.T) {
	re := firstExpr(t, "/a\\/b/gi").(*ast.RegExpLiteral)
	if re.Pattern != "a\\/b" || re.Flags != "gi" {
		t.Fatalf("got pattern %q flags %q", re.Pattern, re.Flags)
	}
}

func TestForVariants(t *testing.T) {
	program := parseOK(t, `
for (var i = 0; i < 3; i++) {}
for (var k in obj) {}
for (k in obj) {}
for (;;) { break }
`)
	if _, ok := program.Statements[0].(*ast.ForStatement); !ok {
		t.Errorf("statement 0: expected ForStatement, got %T", program.Statements[0])
	}
	if fi, ok := program.Statements[1].(*ast.ForInStatement); !ok {
		t.Errorf("statement 1: expected ForInStatement, got %T", program.Statements[1])
	} else if _, ok := fi.Left.(*ast.VariableDeclaration); !ok {
		t.Errorf("statement 1: expected var declaration on the left")
	}
	if _, ok := program.Statements[2].(*ast.ForInStatement); !ok {
		t.Errorf("statement 2: expected ForInStatement, got %T", program.Statements[2])
	}
	f := program.Statements[3].(*ast.ForStatement)
	if f.Init != nil || f.Test != nil || f.Update != nil {
		t.Errorf("expected empty for header")
	}
}

func TestInInsideParenthesizedForInit(t *testing.T) {
	program := parseOK(t, `for (var ok = ("a" in o); ok; ok = false) {}`)
	if _, ok := program.Statements[0].(*ast.ForStatement); !ok {
		t.Fatalf("expected ForStatement, got %T", program.Statements[0])
	}
}

func TestAutomaticSemicolonInsertion(t *testing.T) {
	program := parseOK(t, "var a = 1\nvar b = a\na\n++b\nfunction f() { return\n1 }")
	if len(program.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(program.Statements))
	}
	upd := program.Statements[3].(*ast.ExpressionStatement).Expression.(*ast.UpdateExpression)
	if !upd.Prefix {
		t.Errorf("expected ++b to parse as a prefix update")
	}
	fn := program.Statements[4].(*ast.FunctionDeclaration)
	ret := fn.Body.Statements[0].(*ast.ReturnStatement)
	if ret.Value != nil {
		t.Errorf("expected return with no value before the newline")
	}
}

func TestSwitchTryAndWith(t *testing.T) {
	program := parseOK(t, `
switch (x) { case 1: a(); case 2: b(); break; default: c() }
try { f() } catch (e) { g(e) } finally { h() }
with (o) { p = 1 }
outer: for (;;) { break outer }
`)
	sw := program.Statements[0].(*ast.SwitchStatement)
	if len(sw.Cases) != 3 || sw.Cases[2].Test != nil {
		t.Fatalf("expected three cases ending in default")
	}
	if len(sw.Cases[1].Consequent) != 2 {
		t.Errorf("expected two statements in case 2")
	}
	tr := program.Statements[1].(*ast.TryStatement)
	if tr.Handler == nil || tr.Handler.Param.Name != "e" || tr.Finalizer == nil {
		t.Errorf("incomplete try statement")
	}
	if _, ok := program.Statements[2].(*ast.WithStatement); !ok {
		t.Errorf("expected WithStatement")
	}
	if _, ok := program.Statements[3].(*ast.LabeledStatement); !ok {
		t.Errorf("expected LabeledStatement")
	}
}

func TestPositions(t *testing.T) {
	program := parseOK(t, "var a = 1;\n\n  foo(a);")
	stmt := program.Statements[1].(*ast.ExpressionStatement)
	pos := ast.Start(stmt.Expression)
	if pos.Line != 3 || pos.Column != 3 {
		t.Fatalf("expected 3:3, got %d:%d", pos.Line, pos.Column)
	}
	if stmt.Expression.Kind() != "CallExpression" {
		t.Fatalf("unexpected kind %s", stmt.Expression.Kind())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src        string
		incomplete bool
	}{
		{"var = 1", false},
		{"a b", false},
		{"try {}", true},
		{"function f() {", true},
		{"(1 + ", true},
		{"x = 'abc", false},
	}
	for _, tc := range tests {
		_, err := Parse(tc.src)
		if err == nil {
			t.Errorf("%q: expected an error", tc.src)
			continue
		}
		if IsIncomplete(err) != tc.incomplete {
			t.Errorf("%q: IsIncomplete = %v, want %v (%v)", tc.src, !tc.incomplete, tc.incomplete, err)
		}
	}
}
