package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/evaljs/token"
)

type tt struct {
	Type    token.TokenType
	Literal string
}

func scanAll(input string) []tt {
	var out []tt
	for _, tok := range Tokenize(input) {
		out = append(out, tt{tok.Type, tok.Literal})
	}
	return out
}

func TestSingleCharTokens(t *testing.T) {
	got := scanAll(`( ) { } [ ] ; : , ~ ?`)
	want := []tt{
		{token.LeftParen, "("},
		{token.RightParen, ")"},
		{token.LeftBrace, "{"},
		{token.RightBrace, "}"},
		{token.LeftBracket, "["},
		{token.RightBracket, "]"},
		{token.Semicolon, ";"},
		{token.Colon, ":"},
		{token.Comma, ","},
		{token.BitwiseNot, "~"},
		{token.QuestionMark, "?"},
		{token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLongestOperatorMatch(t *testing.T) {
	got := scanAll(`a >>>= b >>> c >> d >= e === f !== g <<= h && i || j ++ k --`)
	want := []tt{
		{token.Identifier, "a"}, {token.UnsignedRightShiftAssign, ">>>="},
		{token.Identifier, "b"}, {token.UnsignedRightShift, ">>>"},
		{token.Identifier, "c"}, {token.RightShift, ">>"},
		{token.Identifier, "d"}, {token.GreaterThanOrEqual, ">="},
		{token.Identifier, "e"}, {token.StrictEqual, "==="},
		{token.Identifier, "f"}, {token.StrictNotEqual, "!=="},
		{token.Identifier, "g"}, {token.LeftShiftAssign, "<<="},
		{token.Identifier, "h"}, {token.And, "&&"},
		{token.Identifier, "i"}, {token.Or, "||"},
		{token.Identifier, "j"}, {token.Increment, "++"},
		{token.Identifier, "k"}, {token.Decrement, "--"},
		{token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	got := scanAll(`var undefined typeof instanceof $x _y with`)
	want := []tt{
		{token.Var, "var"},
		{token.Identifier, "undefined"},
		{token.Typeof, "typeof"},
		{token.Instanceof, "instanceof"},
		{token.Identifier, "$x"},
		{token.Identifier, "_y"},
		{token.With, "with"},
		{token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`'it\'s'`, "it's"},
		{`"a\nb\tc"`, "a\nb\tc"},
		{`"\x41B"`, "AB"},
		{`"\101"`, "A"},
		{`"😀"`, "\U0001F600"},
		{"\"line\\\ncontinued\"", "linecontinued"},
	}
	for _, tc := range tests {
		tok := New(tc.input).NextToken()
		if tok.Type != token.String {
			t.Fatalf("%s: expected string token, got %v (%q)", tc.input, tok.Type, tok.Literal)
		}
		if tok.Literal != tc.expected {
			t.Errorf("%s: expected %q, got %q", tc.input, tc.expected, tok.Literal)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	tok := New(`"abc`).NextToken()
	if tok.Type != token.Illegal {
		t.Fatalf("expected illegal token, got %v", tok.Type)
	}
}

func TestNumbers(t *testing.T) {
	for _, in := range []string{"0", "42", "3.14", ".5", "1e3", "2.5E-3", "0xFF"} {
		tok := New(in).NextToken()
		if tok.Type != token.Number || tok.Literal != in {
			t.Errorf("%s: got %v %q", in, tok.Type, tok.Literal)
		}
	}
	if tok := New("3in").NextToken(); tok.Type != token.Illegal {
		t.Errorf("expected illegal token for 3in, got %v", tok.Type)
	}
}

func TestRegexDetection(t *testing.T) {
	got := scanAll(`x = a / b; y = /ab+c/gi.test(s)`)
	want := []tt{
		{token.Identifier, "x"}, {token.Assign, "="},
		{token.Identifier, "a"}, {token.Slash, "/"}, {token.Identifier, "b"},
		{token.Semicolon, ";"},
		{token.Identifier, "y"}, {token.Assign, "="},
		{token.RegExp, "/ab+c/gi"},
		{token.Dot, "."}, {token.Identifier, "test"},
		{token.LeftParen, "("}, {token.Identifier, "s"}, {token.RightParen, ")"},
		{token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestRegexCharClassSlash(t *testing.T) {
	toks := Tokenize(`/[/]x/`)
	if toks[0].Type != token.RegExp || toks[0].Literal != "/[/]x/" {
		t.Fatalf("got %v %q", toks[0].Type, toks[0].Literal)
	}
}

func TestCommentsAndPositions(t *testing.T) {
	toks := Tokenize("a // line\n/* block\n */ b\n  c")
	if len(toks) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(toks))
	}
	wantLines := []int{1, 3, 4}
	for i, line := range wantLines {
		if toks[i].Line != line {
			t.Errorf("token %d: expected line %d, got %d", i, line, toks[i].Line)
		}
	}
	if toks[2].Column != 3 {
		t.Errorf("expected column 3 for c, got %d", toks[2].Column)
	}
	if toks[0].NewlineBefore {
		t.Errorf("first token should not report a preceding newline")
	}
	if !toks[1].NewlineBefore || !toks[2].NewlineBefore {
		t.Errorf("expected newline flags on b and c")
	}
}
