package token

import "fmt"

type TokenType int

const (
	// Literals
	Illegal TokenType = iota
	EOF
	Identifier
	Number
	String
	RegExp

	// Operators
	Plus
	Minus
	Asterisk
	Slash
	Percent
	Assign
	PlusAssign
	MinusAssign
	AsteriskAssign
	SlashAssign
	PercentAssign
	AmpersandAssign
	PipeAssign
	CaretAssign
	LeftShiftAssign
	RightShiftAssign
	UnsignedRightShiftAssign
	Equal
	NotEqual
	StrictEqual
	StrictNotEqual
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	And
	Or
	Not
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	BitwiseNot
	LeftShift
	RightShift
	UnsignedRightShift
	Increment
	Decrement

	// Delimiters
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Semicolon
	Colon
	Comma
	Dot
	QuestionMark

	// Keywords
	Var
	Function
	Return
	If
	Else
	While
	For
	Do
	Break
	Continue
	Switch
	Case
	Default
	Throw
	Try
	Catch
	Finally
	New
	Delete
	Typeof
	Void
	In
	Instanceof
	This
	True
	False
	Null
	Debugger
	With
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
	// NewlineBefore is set when a line terminator separates this token from the previous one.
	NewlineBefore bool
}

var Keywords = map[string]TokenType{
	"var":        Var,
	"function":   Function,
	"return":     Return,
	"if":         If,
	"else":       Else,
	"while":      While,
	"for":        For,
	"do":         Do,
	"break":      Break,
	"continue":   Continue,
	"switch":     Switch,
	"case":       Case,
	"default":    Default,
	"throw":      Throw,
	"try":        Try,
	"catch":      Catch,
	"finally":    Finally,
	"new":        New,
	"delete":     Delete,
	"typeof":     Typeof,
	"void":       Void,
	"in":         In,
	"instanceof": Instanceof,
	"this":       This,
	"true":       True,
	"false":      False,
	"null":       Null,
	"debugger":   Debugger,
	"with":       With,
}

func LookupIdentifier(ident string) TokenType {
	if tok, ok := Keywords[ident]; ok {
		return tok
	}
	return Identifier
}

// IsKeyword reports whether tt is a reserved word. Reserved words are still
// valid property names after a dot or as object literal keys.
func IsKeyword(tt TokenType) bool {
	return tt >= Var && tt <= With
}

var names = map[TokenType]string{
	Illegal:      "illegal",
	EOF:          "end of input",
	Identifier:   "identifier",
	Number:       "number",
	String:       "string",
	RegExp:       "regexp",
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	LeftBracket:  "[",
	RightBracket: "]",
	Semicolon:    ";",
	Colon:        ":",
	Comma:        ",",
	Dot:          ".",
	QuestionMark: "?",
	Assign:       "=",
}

func (tt TokenType) String() string {
	if s, ok := names[tt]; ok {
		return s
	}
	for kw, t := range Keywords {
		if t == tt {
			return kw
		}
	}
	return fmt.Sprintf("token(%d)", int(tt))
}
