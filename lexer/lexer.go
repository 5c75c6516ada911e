package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/example/evaljs/token"
)

type Lexer struct {
	input   string
	pos     int // current position in input (points to current char)
	readPos int // current reading position (after current char)
	ch      rune
	line    int
	col     int

	sawNewline bool
}

func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		l.readPos++
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) atEnd() bool {
	return l.ch == 0 && l.pos >= len(l.input)
}

func (l *Lexer) newline() {
	l.line++
	l.col = 0
	l.sawNewline = true
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == '\n':
			l.newline()
			l.readChar()
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\v' || l.ch == '\f' || l.ch == '\u00a0' || l.ch == '\ufeff':
			l.readChar()
		case l.ch == '\u2028' || l.ch == '\u2029':
			l.newline()
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && !l.atEnd() {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !l.atEnd() && !(l.ch == '*' && l.peekChar() == '/') {
				if l.ch == '\n' {
					l.newline()
				}
				l.readChar()
			}
			if !l.atEnd() {
				l.readChar()
				l.readChar()
			}
		default:
			return
		}
	}
}

// Tokens after which a '/' is division rather than the start of a regexp literal.
var divisionContext = map[token.TokenType]bool{
	token.Identifier:   true,
	token.Number:       true,
	token.String:       true,
	token.RegExp:       true,
	token.True:         true,
	token.False:        true,
	token.Null:         true,
	token.This:         true,
	token.RightParen:   true,
	token.RightBracket: true,
	token.Increment:    true,
	token.Decrement:    true,
}

func canPrecedeRegex(tt token.TokenType) bool {
	return !divisionContext[tt]
}

// op consumes the longest operator in candidates that matches at the current
// position. candidates must be ordered longest first.
func (l *Lexer) op(candidates ...string) string {
	rest := l.input[l.pos:]
	for _, c := range candidates {
		if strings.HasPrefix(rest, c) {
			for range c {
				l.readChar()
			}
			return c
		}
	}
	return ""
}

var operators = map[string]token.TokenType{
	"+": token.Plus, "++": token.Increment, "+=": token.PlusAssign,
	"-": token.Minus, "--": token.Decrement, "-=": token.MinusAssign,
	"*": token.Asterisk, "*=": token.AsteriskAssign,
	"/": token.Slash, "/=": token.SlashAssign,
	"%": token.Percent, "%=": token.PercentAssign,
	"=": token.Assign, "==": token.Equal, "===": token.StrictEqual,
	"!": token.Not, "!=": token.NotEqual, "!==": token.StrictNotEqual,
	"<": token.LessThan, "<=": token.LessThanOrEqual, "<<": token.LeftShift, "<<=": token.LeftShiftAssign,
	">": token.GreaterThan, ">=": token.GreaterThanOrEqual, ">>": token.RightShift, ">>=": token.RightShiftAssign,
	">>>": token.UnsignedRightShift, ">>>=": token.UnsignedRightShiftAssign,
	"&": token.BitwiseAnd, "&&": token.And, "&=": token.AmpersandAssign,
	"|": token.BitwiseOr, "||": token.Or, "|=": token.PipeAssign,
	"^": token.BitwiseXor, "^=": token.CaretAssign,
	"~": token.BitwiseNot, "?": token.QuestionMark,
	"(": token.LeftParen, ")": token.RightParen,
	"{": token.LeftBrace, "}": token.RightBrace,
	"[": token.LeftBracket, "]": token.RightBracket,
	";": token.Semicolon, ":": token.Colon, ",": token.Comma, ".": token.Dot,
}

var operatorCandidates = map[rune][]string{
	'+': {"++", "+=", "+"},
	'-': {"--", "-=", "-"},
	'*': {"*=", "*"},
	'/': {"/=", "/"},
	'%': {"%=", "%"},
	'=': {"===", "==", "="},
	'!': {"!==", "!=", "!"},
	'<': {"<<=", "<<", "<=", "<"},
	'>': {">>>=", ">>>", ">>=", ">>", ">=", ">"},
	'&': {"&&", "&=", "&"},
	'|': {"||", "|=", "|"},
	'^': {"^=", "^"},
}

// NextToken scans the next token treating '/' as division.
func (l *Lexer) NextToken() token.Token {
	return l.next(false)
}

// NextTokenWithRegex is like NextToken but allows the caller to hint that
// a '/' should be interpreted as the start of a regex literal rather than division.
func (l *Lexer) NextTokenWithRegex(prevType token.TokenType) token.Token {
	return l.next(canPrecedeRegex(prevType))
}

func (l *Lexer) next(regexOK bool) token.Token {
	l.sawNewline = false
	l.skipWhitespaceAndComments()
	tok := l.scan(regexOK)
	tok.NewlineBefore = l.sawNewline
	return tok
}

func (l *Lexer) scan(regexOK bool) token.Token {
	line := l.line
	col := l.col

	tok := func(tt token.TokenType, lit string) token.Token {
		return token.Token{Type: tt, Literal: lit, Line: line, Column: col}
	}

	switch {
	case l.atEnd():
		return tok(token.EOF, "")
	case l.ch == '/' && regexOK:
		return l.readRegExp(line, col)
	case l.ch == '.' && isDigit(l.peekChar()):
		return l.readNumber(line, col)
	case l.ch == '"' || l.ch == '\'':
		return l.readString(line, col)
	case isDigit(l.ch):
		return l.readNumber(line, col)
	case isIdentStart(l.ch) || l.ch == '\\':
		return l.readIdentifier(line, col)
	}

	if cands, ok := operatorCandidates[l.ch]; ok {
		lit := l.op(cands...)
		return tok(operators[lit], lit)
	}
	lit := string(l.ch)
	if tt, ok := operators[lit]; ok {
		l.readChar()
		return tok(tt, lit)
	}
	l.readChar()
	return tok(token.Illegal, lit)
}

func (l *Lexer) readIdentifier(line, col int) token.Token {
	start := l.pos
	var buf strings.Builder
	hasEscape := false

	for isIdentPart(l.ch) || l.ch == '\\' {
		if l.ch == '\\' {
			hasEscape = true
			l.readChar()
			if l.ch != 'u' {
				return token.Token{Type: token.Illegal, Literal: "invalid escape in identifier", Line: line, Column: col}
			}
			l.readChar()
			r := l.readHex(4)
			if r < 0 {
				return token.Token{Type: token.Illegal, Literal: "invalid unicode escape", Line: line, Column: col}
			}
			buf.WriteRune(rune(r))
			continue
		}
		buf.WriteRune(l.ch)
		l.readChar()
	}

	literal := l.input[start:l.pos]
	if hasEscape {
		// escaped identifiers never form keywords
		return token.Token{Type: token.Identifier, Literal: buf.String(), Line: line, Column: col}
	}
	return token.Token{Type: token.LookupIdentifier(literal), Literal: literal, Line: line, Column: col}
}

// readHex reads exactly n hex digits, returning -1 if any is missing.
func (l *Lexer) readHex(n int) int {
	val := 0
	for i := 0; i < n; i++ {
		d := hexVal(l.ch)
		if d < 0 {
			return -1
		}
		val = val*16 + d
		l.readChar()
	}
	return val
}

func (l *Lexer) readString(line, col int) token.Token {
	quote := l.ch
	l.readChar()
	var buf strings.Builder

	for l.ch != quote && !l.atEnd() && l.ch != '\n' {
		if l.ch != '\\' {
			buf.WriteRune(l.ch)
			l.readChar()
			continue
		}
		l.readChar()
		switch l.ch {
		case 'n':
			buf.WriteByte('\n')
		case 'r':
			buf.WriteByte('\r')
		case 't':
			buf.WriteByte('\t')
		case 'b':
			buf.WriteByte('\b')
		case 'f':
			buf.WriteByte('\f')
		case 'v':
			buf.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// legacy octal escape
			val := int(l.ch - '0')
			l.readChar()
			if isOctalDigit(l.ch) {
				val = val*8 + int(l.ch-'0')
				l.readChar()
				if val <= 037 && isOctalDigit(l.ch) {
					val = val*8 + int(l.ch-'0')
					l.readChar()
				}
			}
			buf.WriteRune(rune(val))
			continue
		case 'x':
			l.readChar()
			r := l.readHex(2)
			if r < 0 {
				return token.Token{Type: token.Illegal, Literal: "invalid hex escape", Line: line, Column: col}
			}
			buf.WriteRune(rune(r))
			continue
		case 'u':
			l.readChar()
			r := l.readHex(4)
			if r < 0 {
				return token.Token{Type: token.Illegal, Literal: "invalid unicode escape", Line: line, Column: col}
			}
			if r >= 0xD800 && r <= 0xDBFF && l.ch == '\\' && l.peekChar() == 'u' {
				savedPos, savedReadPos, savedCh, savedCol := l.pos, l.readPos, l.ch, l.col
				l.readChar()
				l.readChar()
				if r2 := l.readHex(4); r2 >= 0xDC00 && r2 <= 0xDFFF {
					buf.WriteRune(rune(0x10000 + (r-0xD800)*0x400 + (r2 - 0xDC00)))
					continue
				}
				l.pos, l.readPos, l.ch, l.col = savedPos, savedReadPos, savedCh, savedCol
			}
			buf.WriteRune(rune(r))
			continue
		case '\r':
			if l.peekChar() == '\n' {
				l.readChar()
			}
			l.line++
			l.col = 0
		case '\n':
			// line continuation
			l.line++
			l.col = 0
		default:
			buf.WriteRune(l.ch)
		}
		l.readChar()
	}

	if l.ch != quote {
		return token.Token{Type: token.Illegal, Literal: "unterminated string", Line: line, Column: col}
	}
	l.readChar()
	return token.Token{Type: token.String, Literal: buf.String(), Line: line, Column: col}
}

func (l *Lexer) readNumber(line, col int) token.Token {
	start := l.pos

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		if !isHexDigit(l.ch) {
			return token.Token{Type: token.Illegal, Literal: "invalid hex literal", Line: line, Column: col}
		}
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return token.Token{Type: token.Number, Literal: l.input[start:l.pos], Line: line, Column: col}
	}

	l.readDecimalDigits()
	if l.ch == '.' {
		l.readChar()
		l.readDecimalDigits()
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return token.Token{Type: token.Illegal, Literal: "invalid exponent", Line: line, Column: col}
		}
		l.readDecimalDigits()
	}
	if isIdentStart(l.ch) {
		return token.Token{Type: token.Illegal, Literal: "identifier starts immediately after number", Line: line, Column: col}
	}
	return token.Token{Type: token.Number, Literal: l.input[start:l.pos], Line: line, Column: col}
}

func (l *Lexer) readDecimalDigits() {
	for isDigit(l.ch) {
		l.readChar()
	}
}

func (l *Lexer) readRegExp(line, col int) token.Token {
	var buf strings.Builder
	buf.WriteByte('/')
	l.readChar()

	inClass := false
	for {
		if l.atEnd() || l.ch == '\n' || l.ch == '\r' {
			return token.Token{Type: token.Illegal, Literal: "unterminated regexp", Line: line, Column: col}
		}
		if l.ch == '\\' {
			buf.WriteRune(l.ch)
			l.readChar()
			if l.atEnd() || l.ch == '\n' {
				return token.Token{Type: token.Illegal, Literal: "unterminated regexp", Line: line, Column: col}
			}
			buf.WriteRune(l.ch)
			l.readChar()
			continue
		}
		if l.ch == '[' {
			inClass = true
		} else if l.ch == ']' {
			inClass = false
		}
		if l.ch == '/' && !inClass {
			buf.WriteByte('/')
			l.readChar()
			break
		}
		buf.WriteRune(l.ch)
		l.readChar()
	}

	for isIdentPart(l.ch) {
		buf.WriteRune(l.ch)
		l.readChar()
	}
	return token.Token{Type: token.RegExp, Literal: buf.String(), Line: line, Column: col}
}

// Tokenize returns all tokens from the input. It uses context-aware regex detection.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	prevType := token.EOF // start of input admits a regexp

	for {
		tok := l.NextTokenWithRegex(prevType)
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
		prevType = tok.Type
	}
	return tokens
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return hexVal(ch) >= 0
}

func isOctalDigit(ch rune) bool {
	return ch >= '0' && ch <= '7'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch > 127 && unicode.IsLetter(ch))
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '\u200c' || ch == '\u200d' || (ch > 127 && (unicode.IsDigit(ch) || unicode.Is(unicode.Mn, ch)))
}

func hexVal(ch rune) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	default:
		return -1
	}
}
