package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/example/evaljs/ast"
	"github.com/example/evaljs/lexer"
	"github.com/example/evaljs/token"
)

// Precedence levels for Pratt parsing
const (
	_ int = iota
	precComma
	precAssignment
	precConditional
	precLogicalOr
	precLogicalAnd
	precBitwiseOr
	precBitwiseXor
	precBitwiseAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precCall
	precMember
)

// Error is a syntax error at a source position.
type Error struct {
	Line   int
	Column int
	Msg    string
	// AtEOF is set when the input ended before the construct was complete.
	AtEOF bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Msg)
}

// IsIncomplete reports whether err was caused by input ending too early, so
// that more input might make it parse.
func IsIncomplete(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.AtEOF
}

type Parser struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token
	errors    []error
	noIn      bool // suppress 'in' as binary operator (for-in disambiguation)
	halted    bool
}

func New(source string) *Parser {
	p := &Parser{l: lexer.New(source)}
	p.curToken = p.l.NextTokenWithRegex(token.EOF)
	p.peekToken = p.l.NextTokenWithRegex(p.curToken.Type)
	return p
}

// Parse parses a whole program and returns the first syntax error, if any.
func Parse(source string) (*ast.Program, error) {
	program, errs := New(source).ParseProgram()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return program, nil
}

func (p *Parser) ParseProgram() (*ast.Program, []error) {
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	return program, p.errors
}

func (p *Parser) nextToken() {
	if p.halted {
		return
	}
	p.curToken = p.peekToken
	p.peekToken = p.l.NextTokenWithRegex(p.curToken.Type)
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expect(t token.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.unexpected(fmt.Sprintf("expected %s", t))
	return false
}

func (p *Parser) unexpected(context string) {
	switch p.curToken.Type {
	case token.EOF:
		p.addError("%s, got end of input", context)
	case token.Illegal:
		p.addError("%s", p.curToken.Literal)
	default:
		p.addError("%s, got %q", context, p.curToken.Literal)
	}
}

// addError records the first syntax error and stops the token stream so that
// every parse loop runs into EOF and unwinds.
func (p *Parser) addError(format string, args ...interface{}) {
	if p.halted {
		return
	}
	p.errors = append(p.errors, &Error{
		Line:   p.curToken.Line,
		Column: p.curToken.Column,
		Msg:    fmt.Sprintf(format, args...),
		AtEOF:  p.curToken.Type == token.EOF,
	})
	p.halted = true
	eof := token.Token{Type: token.EOF, Line: p.curToken.Line, Column: p.curToken.Column}
	p.curToken = eof
	p.peekToken = eof
}

// consumeSemicolon implements automatic semicolon insertion.
func (p *Parser) consumeSemicolon() {
	switch {
	case p.curTokenIs(token.Semicolon):
		p.nextToken()
	case p.curTokenIs(token.RightBrace), p.curTokenIs(token.EOF), p.curToken.NewlineBefore:
	default:
		p.unexpected("expected ;")
	}
}

// parseStatement dispatches to the appropriate statement parser.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.Var:
		stmt := p.parseVariableDeclaration()
		p.consumeSemicolon()
		return stmt
	case token.LeftBrace:
		return p.parseBlockStatement()
	case token.Return:
		return p.parseReturnStatement()
	case token.If:
		return p.parseIfStatement()
	case token.While:
		return p.parseWhileStatement()
	case token.Do:
		return p.parseDoWhileStatement()
	case token.For:
		return p.parseForStatement()
	case token.Break:
		stmt := &ast.BreakStatement{Token: p.curToken}
		stmt.Label = p.parseJumpLabel()
		return stmt
	case token.Continue:
		stmt := &ast.ContinueStatement{Token: p.curToken}
		stmt.Label = p.parseJumpLabel()
		return stmt
	case token.Switch:
		return p.parseSwitchStatement()
	case token.Throw:
		return p.parseThrowStatement()
	case token.Try:
		return p.parseTryStatement()
	case token.Function:
		return p.parseFunctionDeclaration()
	case token.Debugger:
		stmt := &ast.DebuggerStatement{Token: p.curToken}
		p.nextToken()
		p.consumeSemicolon()
		return stmt
	case token.Semicolon:
		stmt := &ast.EmptyStatement{Token: p.curToken}
		p.nextToken()
		return stmt
	case token.With:
		return p.parseWithStatement()
	case token.EOF:
		return nil
	default:
		if p.curTokenIs(token.Identifier) && p.peekTokenIs(token.Colon) {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	}
}

// ---------- Statement Parsers ----------

func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	stmt := &ast.VariableDeclaration{Token: p.curToken}
	p.nextToken() // consume var

	for {
		decl := &ast.VariableDeclarator{Token: p.curToken}
		decl.Name = p.parseIdentifier()
		if p.curTokenIs(token.Assign) {
			p.nextToken()
			decl.Value = p.parseAssignmentExpression()
		}
		stmt.Declarations = append(stmt.Declarations, decl)
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.expect(token.LeftBrace)

	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	p.expect(token.RightBrace)
	return block
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	p.nextToken() // consume return

	if !p.curTokenIs(token.Semicolon) && !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) && !p.curToken.NewlineBefore {
		stmt.Value = p.parseExpression(0)
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseJumpLabel() *ast.Identifier {
	p.nextToken() // consume break/continue
	var label *ast.Identifier
	if p.curTokenIs(token.Identifier) && !p.curToken.NewlineBefore {
		label = p.parseIdentifier()
	}
	p.consumeSemicolon()
	return label
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}
	p.nextToken() // consume if
	stmt.Condition = p.parseParenExpression()
	stmt.Consequence = p.parseStatement()

	if p.curTokenIs(token.Else) {
		p.nextToken()
		stmt.Alternative = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseParenExpression() ast.Expression {
	p.expect(token.LeftParen)
	expr := p.parseExpression(0)
	p.expect(token.RightParen)
	return expr
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken() // consume while
	stmt.Condition = p.parseParenExpression()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	stmt := &ast.DoWhileStatement{Token: p.curToken}
	p.nextToken() // consume do
	stmt.Body = p.parseStatement()
	p.expect(token.While)
	stmt.Condition = p.parseParenExpression()
	if p.curTokenIs(token.Semicolon) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	p.nextToken() // consume for
	p.expect(token.LeftParen)

	var init ast.Node
	switch {
	case p.curTokenIs(token.Semicolon):
	case p.curTokenIs(token.Var):
		p.noIn = true
		decl := p.parseVariableDeclaration()
		p.noIn = false
		if p.curTokenIs(token.In) && len(decl.Declarations) == 1 {
			return p.parseForIn(tok, decl)
		}
		init = decl
	default:
		p.noIn = true
		expr := p.parseExpression(0)
		p.noIn = false
		if p.curTokenIs(token.In) {
			return p.parseForIn(tok, expr)
		}
		init = expr
	}
	p.expect(token.Semicolon)

	stmt := &ast.ForStatement{Token: tok, Init: init}
	if !p.curTokenIs(token.Semicolon) {
		stmt.Test = p.parseExpression(0)
	}
	p.expect(token.Semicolon)
	if !p.curTokenIs(token.RightParen) {
		stmt.Update = p.parseExpression(0)
	}
	p.expect(token.RightParen)
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseForIn(tok token.Token, left ast.Node) *ast.ForInStatement {
	p.nextToken() // consume in
	stmt := &ast.ForInStatement{Token: tok, Left: left}
	stmt.Right = p.parseExpression(0)
	p.expect(token.RightParen)
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStatement {
	stmt := &ast.SwitchStatement{Token: p.curToken}
	p.nextToken() // consume switch
	stmt.Discriminant = p.parseParenExpression()
	p.expect(token.LeftBrace)

	sawDefault := false
	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
		sc := &ast.SwitchCase{Token: p.curToken}
		switch {
		case p.curTokenIs(token.Case):
			p.nextToken()
			sc.Test = p.parseExpression(0)
		case p.curTokenIs(token.Default):
			if sawDefault {
				p.addError("more than one default clause in switch")
				return stmt
			}
			sawDefault = true
			p.nextToken()
		default:
			p.unexpected("expected case or default")
			return stmt
		}
		p.expect(token.Colon)
		for !p.curTokenIs(token.Case) && !p.curTokenIs(token.Default) &&
			!p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
			if s := p.parseStatement(); s != nil {
				sc.Consequent = append(sc.Consequent, s)
			}
		}
		stmt.Cases = append(stmt.Cases, sc)
	}
	p.expect(token.RightBrace)
	return stmt
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	stmt := &ast.ThrowStatement{Token: p.curToken}
	p.nextToken() // consume throw
	if p.curToken.NewlineBefore {
		p.addError("illegal newline after throw")
		return stmt
	}
	stmt.Argument = p.parseExpression(0)
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseTryStatement() *ast.TryStatement {
	stmt := &ast.TryStatement{Token: p.curToken}
	p.nextToken() // consume try
	stmt.Block = p.parseBlockStatement()

	if p.curTokenIs(token.Catch) {
		clause := &ast.CatchClause{Token: p.curToken}
		p.nextToken()
		p.expect(token.LeftParen)
		clause.Param = p.parseIdentifier()
		p.expect(token.RightParen)
		clause.Body = p.parseBlockStatement()
		stmt.Handler = clause
	}
	if p.curTokenIs(token.Finally) {
		p.nextToken()
		stmt.Finalizer = p.parseBlockStatement()
	}
	if stmt.Handler == nil && stmt.Finalizer == nil {
		p.unexpected("missing catch or finally after try")
	}
	return stmt
}

func (p *Parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	decl := &ast.FunctionDeclaration{Token: p.curToken}
	p.nextToken() // consume function
	decl.Name = p.parseIdentifier()
	decl.Params = p.parseFunctionParams()
	decl.Body = p.parseBlockStatement()
	return decl
}

func (p *Parser) parseFunctionParams() []*ast.Identifier {
	var params []*ast.Identifier
	p.expect(token.LeftParen)
	for !p.curTokenIs(token.RightParen) && !p.curTokenIs(token.EOF) {
		params = append(params, p.parseIdentifier())
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken()
	}
	p.expect(token.RightParen)
	return params
}

func (p *Parser) parseLabeledStatement() *ast.LabeledStatement {
	stmt := &ast.LabeledStatement{Token: p.curToken}
	stmt.Label = p.parseIdentifier()
	p.nextToken() // consume :
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseWithStatement() *ast.WithStatement {
	stmt := &ast.WithStatement{Token: p.curToken}
	p.nextToken() // consume with
	stmt.Object = p.parseParenExpression()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(0)
	p.consumeSemicolon()
	return stmt
}

// ---------- Expression Parsing (Pratt) ----------

func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefixExpression()
	for {
		prec := p.infixPrecedence()
		if prec <= minPrec {
			break
		}
		left = p.parseInfixExpression(left)
	}
	return left
}

func (p *Parser) parseAssignmentExpression() ast.Expression {
	return p.parseExpression(precComma)
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.curToken
	switch tok.Type {
	case token.Identifier:
		return p.parseIdentifier()
	case token.Number:
		return p.parseNumberLiteral()
	case token.String:
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}
	case token.True, token.False:
		p.nextToken()
		return &ast.BooleanLiteral{Token: tok, Value: tok.Type == token.True}
	case token.Null:
		p.nextToken()
		return &ast.NullLiteral{Token: tok}
	case token.This:
		p.nextToken()
		return &ast.ThisExpression{Token: tok}
	case token.RegExp:
		return p.parseRegExpLiteral()
	case token.LeftParen:
		p.nextToken()
		saved := p.noIn
		p.noIn = false
		expr := p.parseExpression(0)
		p.noIn = saved
		p.expect(token.RightParen)
		return expr
	case token.LeftBracket:
		return p.parseArrayLiteral()
	case token.LeftBrace:
		return p.parseObjectLiteral()
	case token.Function:
		return p.parseFunctionExpression()
	case token.New:
		return p.parseNewExpression()
	case token.Not, token.BitwiseNot, token.Typeof, token.Void, token.Delete, token.Plus, token.Minus:
		p.nextToken()
		operand := p.parseExpression(precUnary)
		return &ast.UnaryExpression{Token: tok, Operator: tok.Literal, Operand: operand}
	case token.Increment, token.Decrement:
		p.nextToken()
		operand := p.parseExpression(precUnary)
		return &ast.UpdateExpression{Token: tok, Operator: tok.Literal, Operand: operand, Prefix: true}
	default:
		p.unexpected("unexpected token")
		return nil
	}
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	ident := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	if !p.curTokenIs(token.Identifier) {
		p.unexpected("expected identifier")
		return ident
	}
	p.nextToken()
	return ident
}

func (p *Parser) parseNumberLiteral() *ast.NumberLiteral {
	lit := &ast.NumberLiteral{Token: p.curToken}
	v, err := parseNumber(p.curToken.Literal)
	if err != nil {
		p.addError("invalid number %q", p.curToken.Literal)
		return lit
	}
	lit.Value = v
	p.nextToken()
	return lit
}

func parseNumber(lit string) (float64, error) {
	switch {
	case strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X"):
		return parseRadix(lit[2:], 16)
	case len(lit) > 1 && lit[0] == '0' && strings.Trim(lit, "01234567") == "":
		// legacy octal
		return parseRadix(lit[1:], 8)
	}
	return strconv.ParseFloat(lit, 64)
}

func parseRadix(digits string, base int) (float64, error) {
	if n, err := strconv.ParseUint(digits, base, 64); err == nil {
		return float64(n), nil
	}
	v := 0.0
	for _, c := range digits {
		d, err := strconv.ParseUint(string(c), base, 8)
		if err != nil {
			return math.NaN(), err
		}
		v = v*float64(base) + float64(d)
	}
	return v, nil
}

func (p *Parser) parseRegExpLiteral() ast.Expression {
	raw := p.curToken.Literal // e.g. "/pattern/flags"
	lastSlash := strings.LastIndex(raw, "/")
	lit := &ast.RegExpLiteral{Token: p.curToken, Pattern: raw[1:lastSlash], Flags: raw[lastSlash+1:]}
	p.nextToken()
	return lit
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLiteral {
	arr := &ast.ArrayLiteral{Token: p.curToken}
	p.nextToken() // consume [

	for !p.curTokenIs(token.RightBracket) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.Comma) {
			arr.Elements = append(arr.Elements, nil)
			p.nextToken()
			continue
		}
		arr.Elements = append(arr.Elements, p.parseAssignmentExpression())
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken()
	}
	p.expect(token.RightBracket)
	return arr
}

func (p *Parser) parseObjectLiteral() *ast.ObjectLiteral {
	obj := &ast.ObjectLiteral{Token: p.curToken}
	p.nextToken() // consume {

	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
		obj.Properties = append(obj.Properties, p.parseObjectProperty())
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken()
	}
	p.expect(token.RightBrace)
	return obj
}

func (p *Parser) parseObjectProperty() *ast.Property {
	prop := &ast.Property{Token: p.curToken, PropKind: "init"}

	accessor := p.curTokenIs(token.Identifier) &&
		(p.curToken.Literal == "get" || p.curToken.Literal == "set") &&
		!p.peekTokenIs(token.Colon) && !p.peekTokenIs(token.Comma) && !p.peekTokenIs(token.RightBrace)
	if accessor {
		prop.PropKind = p.curToken.Literal
		p.nextToken()
		prop.Key = p.parsePropertyName()
		fn := &ast.FunctionExpression{Token: p.curToken}
		fn.Params = p.parseFunctionParams()
		fn.Body = p.parseBlockStatement()
		prop.Value = fn
		return prop
	}

	prop.Key = p.parsePropertyName()
	p.expect(token.Colon)
	prop.Value = p.parseAssignmentExpression()
	return prop
}

// parsePropertyName accepts identifiers, reserved words, strings and numbers.
func (p *Parser) parsePropertyName() ast.Expression {
	tok := p.curToken
	switch {
	case tok.Type == token.Identifier || token.IsKeyword(tok.Type):
		p.nextToken()
		return &ast.Identifier{Token: tok, Name: tok.Literal}
	case tok.Type == token.String:
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}
	case tok.Type == token.Number:
		return p.parseNumberLiteral()
	default:
		p.unexpected("expected property name")
		return &ast.Identifier{Token: tok}
	}
}

func (p *Parser) parseFunctionExpression() *ast.FunctionExpression {
	fn := &ast.FunctionExpression{Token: p.curToken}
	p.nextToken() // consume function
	if p.curTokenIs(token.Identifier) {
		fn.Name = p.parseIdentifier()
	}
	fn.Params = p.parseFunctionParams()
	fn.Body = p.parseBlockStatement()
	return fn
}

func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.curToken
	p.nextToken() // consume new

	var callee ast.Expression
	if p.curTokenIs(token.New) {
		callee = p.parseNewExpression()
	} else {
		callee = p.parsePrefixExpression()
	}
	for p.curTokenIs(token.Dot) || p.curTokenIs(token.LeftBracket) {
		callee = p.parseMember(callee)
	}

	expr := &ast.NewExpression{Token: tok, Callee: callee}
	if p.curTokenIs(token.LeftParen) {
		expr.Arguments = p.parseArguments()
	}
	return expr
}

func (p *Parser) parseArguments() []ast.Expression {
	p.nextToken() // consume (
	var args []ast.Expression

	for !p.curTokenIs(token.RightParen) && !p.curTokenIs(token.EOF) {
		args = append(args, p.parseAssignmentExpression())
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken()
	}
	p.expect(token.RightParen)
	return args
}

// ---------- Infix Parsing ----------

func (p *Parser) infixPrecedence() int {
	switch p.curToken.Type {
	case token.Comma:
		return precComma
	case token.Assign, token.PlusAssign, token.MinusAssign, token.AsteriskAssign,
		token.SlashAssign, token.PercentAssign,
		token.AmpersandAssign, token.PipeAssign, token.CaretAssign,
		token.LeftShiftAssign, token.RightShiftAssign, token.UnsignedRightShiftAssign:
		return precAssignment
	case token.QuestionMark:
		return precConditional
	case token.Or:
		return precLogicalOr
	case token.And:
		return precLogicalAnd
	case token.BitwiseOr:
		return precBitwiseOr
	case token.BitwiseXor:
		return precBitwiseXor
	case token.BitwiseAnd:
		return precBitwiseAnd
	case token.Equal, token.NotEqual, token.StrictEqual, token.StrictNotEqual:
		return precEquality
	case token.LessThan, token.GreaterThan, token.LessThanOrEqual, token.GreaterThanOrEqual,
		token.Instanceof:
		return precRelational
	case token.In:
		if p.noIn {
			return 0
		}
		return precRelational
	case token.LeftShift, token.RightShift, token.UnsignedRightShift:
		return precShift
	case token.Plus, token.Minus:
		return precAdditive
	case token.Asterisk, token.Slash, token.Percent:
		return precMultiplicative
	case token.Increment, token.Decrement:
		// restricted production: a newline ends the expression
		if p.curToken.NewlineBefore {
			return 0
		}
		return precPostfix
	case token.LeftParen:
		return precCall
	case token.Dot, token.LeftBracket:
		return precMember
	default:
		return 0
	}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	prec := p.infixPrecedence()
	switch prec {
	case precComma:
		seq := &ast.SequenceExpression{Token: tok, Expressions: []ast.Expression{left}}
		for p.curTokenIs(token.Comma) {
			p.nextToken()
			seq.Expressions = append(seq.Expressions, p.parseAssignmentExpression())
		}
		return seq
	case precAssignment:
		p.nextToken()
		right := p.parseAssignmentExpression()
		return &ast.AssignmentExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
	case precConditional:
		p.nextToken() // consume ?
		saved := p.noIn
		p.noIn = false
		consequent := p.parseAssignmentExpression()
		p.noIn = saved
		p.expect(token.Colon)
		alternate := p.parseAssignmentExpression()
		return &ast.ConditionalExpression{Token: tok, Test: left, Consequent: consequent, Alternate: alternate}
	case precLogicalOr, precLogicalAnd:
		p.nextToken()
		right := p.parseExpression(prec)
		return &ast.LogicalExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
	case precPostfix:
		p.nextToken()
		return &ast.UpdateExpression{Token: tok, Operator: tok.Literal, Operand: left}
	case precCall:
		return &ast.CallExpression{Token: tok, Callee: left, Arguments: p.parseArguments()}
	case precMember:
		return p.parseMember(left)
	default:
		p.nextToken()
		right := p.parseExpression(prec)
		return &ast.BinaryExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
	}
}

func (p *Parser) parseMember(object ast.Expression) ast.Expression {
	tok := p.curToken
	if p.curTokenIs(token.Dot) {
		p.nextToken()
		name := p.curToken
		if name.Type != token.Identifier && !token.IsKeyword(name.Type) {
			p.unexpected("expected property name after .")
			return object
		}
		p.nextToken()
		return &ast.MemberExpression{Token: tok, Object: object, Property: &ast.Identifier{Token: name, Name: name.Literal}}
	}
	p.nextToken() // consume [
	saved := p.noIn
	p.noIn = false
	prop := p.parseExpression(0)
	p.noIn = saved
	p.expect(token.RightBracket)
	return &ast.MemberExpression{Token: tok, Object: object, Property: prop, Computed: true}
}
