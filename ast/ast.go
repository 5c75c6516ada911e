package ast

import "github.com/example/evaljs/token"

// Position is a 1-based source location.
type Position struct {
	Line   int
	Column int
}

// Node is the interface all AST nodes implement.
type Node interface {
	TokenLiteral() string
	// Kind names the node type; the compiler dispatches on it.
	Kind() string
	Pos() Position
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) Kind() string { return "Program" }
func (p *Program) Pos() Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return Position{Line: 1, Column: 1}
}

// ---------- Statements ----------

type VariableDeclaration struct {
	Token        token.Token // var
	Declarations []*VariableDeclarator
}

type VariableDeclarator struct {
	Token token.Token
	Name  *Identifier
	Value Expression // may be nil
}

type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

type ReturnStatement struct {
	Token token.Token
	Value Expression // may be nil
}

type IfStatement struct {
	Token       token.Token
	Condition   Expression
	Consequence Statement
	Alternative Statement // may be nil
}

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      Statement
}

type DoWhileStatement struct {
	Token     token.Token
	Body      Statement
	Condition Expression
}

type ForStatement struct {
	Token  token.Token
	Init   Node       // *VariableDeclaration or Expression, may be nil
	Test   Expression // may be nil
	Update Expression // may be nil
	Body   Statement
}

type ForInStatement struct {
	Token token.Token
	Left  Node // *VariableDeclaration or Expression
	Right Expression
	Body  Statement
}

type BreakStatement struct {
	Token token.Token
	Label *Identifier // may be nil
}

type ContinueStatement struct {
	Token token.Token
	Label *Identifier // may be nil
}

type SwitchStatement struct {
	Token        token.Token
	Discriminant Expression
	Cases        []*SwitchCase
}

type SwitchCase struct {
	Token      token.Token
	Test       Expression // nil for default
	Consequent []Statement
}

type ThrowStatement struct {
	Token    token.Token
	Argument Expression
}

type TryStatement struct {
	Token     token.Token
	Block     *BlockStatement
	Handler   *CatchClause    // may be nil
	Finalizer *BlockStatement // may be nil
}

type CatchClause struct {
	Token token.Token
	Param *Identifier
	Body  *BlockStatement
}

type FunctionDeclaration struct {
	Token  token.Token
	Name   *Identifier
	Params []*Identifier
	Body   *BlockStatement
}

type LabeledStatement struct {
	Token token.Token
	Label *Identifier
	Body  Statement
}

type DebuggerStatement struct {
	Token token.Token
}

type EmptyStatement struct {
	Token token.Token
}

type WithStatement struct {
	Token  token.Token
	Object Expression
	Body   Statement
}

// ---------- Expressions ----------

type Identifier struct {
	Token token.Token
	Name  string
}

type NumberLiteral struct {
	Token token.Token
	Value float64
}

type StringLiteral struct {
	Token token.Token
	Value string
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

type NullLiteral struct {
	Token token.Token
}

type RegExpLiteral struct {
	Token   token.Token
	Pattern string
	Flags   string
}

type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression // nil entries are holes
}

type ObjectLiteral struct {
	Token      token.Token
	Properties []*Property
}

// Property is one entry of an object literal. PropKind is "init", "get" or "set".
type Property struct {
	Token    token.Token
	Key      Expression // *Identifier, *StringLiteral or *NumberLiteral
	PropKind string
	Value    Expression
}

type FunctionExpression struct {
	Token  token.Token
	Name   *Identifier // may be nil
	Params []*Identifier
	Body   *BlockStatement
}

type UnaryExpression struct {
	Token    token.Token
	Operator string
	Operand  Expression
}

type UpdateExpression struct {
	Token    token.Token
	Operator string // "++" or "--"
	Prefix   bool
	Operand  Expression
}

type BinaryExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

type LogicalExpression struct {
	Token    token.Token
	Left     Expression
	Operator string // "&&" or "||"
	Right    Expression
}

type AssignmentExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

type ConditionalExpression struct {
	Token      token.Token
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

type CallExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
}

type MemberExpression struct {
	Token    token.Token
	Object   Expression
	Property Expression // *Identifier when not computed
	Computed bool
}

type NewExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
}

type SequenceExpression struct {
	Token       token.Token
	Expressions []Expression
}

type ThisExpression struct {
	Token token.Token
}

func posOf(t token.Token) Position { return Position{Line: t.Line, Column: t.Column} }

// Statement marker methods
func (s *VariableDeclaration) statementNode() {}
func (s *ExpressionStatement) statementNode() {}
func (s *BlockStatement) statementNode()      {}
func (s *ReturnStatement) statementNode()     {}
func (s *IfStatement) statementNode()         {}
func (s *WhileStatement) statementNode()      {}
func (s *DoWhileStatement) statementNode()    {}
func (s *ForStatement) statementNode()        {}
func (s *ForInStatement) statementNode()      {}
func (s *BreakStatement) statementNode()      {}
func (s *ContinueStatement) statementNode()   {}
func (s *SwitchStatement) statementNode()     {}
func (s *ThrowStatement) statementNode()      {}
func (s *TryStatement) statementNode()        {}
func (s *FunctionDeclaration) statementNode() {}
func (s *LabeledStatement) statementNode()    {}
func (s *DebuggerStatement) statementNode()   {}
func (s *EmptyStatement) statementNode()      {}
func (s *WithStatement) statementNode()       {}

// Expression marker methods
func (e *Identifier) expressionNode()            {}
func (e *NumberLiteral) expressionNode()         {}
func (e *StringLiteral) expressionNode()         {}
func (e *BooleanLiteral) expressionNode()        {}
func (e *NullLiteral) expressionNode()           {}
func (e *RegExpLiteral) expressionNode()         {}
func (e *ArrayLiteral) expressionNode()          {}
func (e *ObjectLiteral) expressionNode()         {}
func (e *FunctionExpression) expressionNode()    {}
func (e *UnaryExpression) expressionNode()       {}
func (e *UpdateExpression) expressionNode()      {}
func (e *BinaryExpression) expressionNode()      {}
func (e *LogicalExpression) expressionNode()     {}
func (e *AssignmentExpression) expressionNode()  {}
func (e *ConditionalExpression) expressionNode() {}
func (e *CallExpression) expressionNode()        {}
func (e *MemberExpression) expressionNode()      {}
func (e *NewExpression) expressionNode()         {}
func (e *SequenceExpression) expressionNode()    {}
func (e *ThisExpression) expressionNode()        {}

// TokenLiteral
func (n *VariableDeclaration) TokenLiteral() string   { return n.Token.Literal }
func (n *VariableDeclarator) TokenLiteral() string    { return n.Token.Literal }
func (n *ExpressionStatement) TokenLiteral() string   { return n.Token.Literal }
func (n *BlockStatement) TokenLiteral() string        { return n.Token.Literal }
func (n *ReturnStatement) TokenLiteral() string       { return n.Token.Literal }
func (n *IfStatement) TokenLiteral() string           { return n.Token.Literal }
func (n *WhileStatement) TokenLiteral() string        { return n.Token.Literal }
func (n *DoWhileStatement) TokenLiteral() string      { return n.Token.Literal }
func (n *ForStatement) TokenLiteral() string          { return n.Token.Literal }
func (n *ForInStatement) TokenLiteral() string        { return n.Token.Literal }
func (n *BreakStatement) TokenLiteral() string        { return n.Token.Literal }
func (n *ContinueStatement) TokenLiteral() string     { return n.Token.Literal }
func (n *SwitchStatement) TokenLiteral() string       { return n.Token.Literal }
func (n *SwitchCase) TokenLiteral() string            { return n.Token.Literal }
func (n *ThrowStatement) TokenLiteral() string        { return n.Token.Literal }
func (n *TryStatement) TokenLiteral() string          { return n.Token.Literal }
func (n *CatchClause) TokenLiteral() string           { return n.Token.Literal }
func (n *FunctionDeclaration) TokenLiteral() string   { return n.Token.Literal }
func (n *LabeledStatement) TokenLiteral() string      { return n.Token.Literal }
func (n *DebuggerStatement) TokenLiteral() string     { return n.Token.Literal }
func (n *EmptyStatement) TokenLiteral() string        { return n.Token.Literal }
func (n *WithStatement) TokenLiteral() string         { return n.Token.Literal }
func (n *Identifier) TokenLiteral() string            { return n.Token.Literal }
func (n *NumberLiteral) TokenLiteral() string         { return n.Token.Literal }
func (n *StringLiteral) TokenLiteral() string         { return n.Token.Literal }
func (n *BooleanLiteral) TokenLiteral() string        { return n.Token.Literal }
func (n *NullLiteral) TokenLiteral() string           { return n.Token.Literal }
func (n *RegExpLiteral) TokenLiteral() string         { return n.Token.Literal }
func (n *ArrayLiteral) TokenLiteral() string          { return n.Token.Literal }
func (n *ObjectLiteral) TokenLiteral() string         { return n.Token.Literal }
func (n *Property) TokenLiteral() string              { return n.Token.Literal }
func (n *FunctionExpression) TokenLiteral() string    { return n.Token.Literal }
func (n *UnaryExpression) TokenLiteral() string       { return n.Token.Literal }
func (n *UpdateExpression) TokenLiteral() string      { return n.Token.Literal }
func (n *BinaryExpression) TokenLiteral() string      { return n.Token.Literal }
func (n *LogicalExpression) TokenLiteral() string     { return n.Token.Literal }
func (n *AssignmentExpression) TokenLiteral() string  { return n.Token.Literal }
func (n *ConditionalExpression) TokenLiteral() string { return n.Token.Literal }
func (n *CallExpression) TokenLiteral() string        { return n.Token.Literal }
func (n *MemberExpression) TokenLiteral() string      { return n.Token.Literal }
func (n *NewExpression) TokenLiteral() string         { return n.Token.Literal }
func (n *SequenceExpression) TokenLiteral() string    { return n.Token.Literal }
func (n *ThisExpression) TokenLiteral() string        { return n.Token.Literal }

// Kind
func (n *VariableDeclaration) Kind() string   { return "VariableDeclaration" }
func (n *VariableDeclarator) Kind() string    { return "VariableDeclarator" }
func (n *ExpressionStatement) Kind() string   { return "ExpressionStatement" }
func (n *BlockStatement) Kind() string        { return "BlockStatement" }
func (n *ReturnStatement) Kind() string       { return "ReturnStatement" }
func (n *IfStatement) Kind() string           { return "IfStatement" }
func (n *WhileStatement) Kind() string        { return "WhileStatement" }
func (n *DoWhileStatement) Kind() string      { return "DoWhileStatement" }
func (n *ForStatement) Kind() string          { return "ForStatement" }
func (n *ForInStatement) Kind() string        { return "ForInStatement" }
func (n *BreakStatement) Kind() string        { return "BreakStatement" }
func (n *ContinueStatement) Kind() string     { return "ContinueStatement" }
func (n *SwitchStatement) Kind() string       { return "SwitchStatement" }
func (n *SwitchCase) Kind() string            { return "SwitchCase" }
func (n *ThrowStatement) Kind() string        { return "ThrowStatement" }
func (n *TryStatement) Kind() string          { return "TryStatement" }
func (n *CatchClause) Kind() string           { return "CatchClause" }
func (n *FunctionDeclaration) Kind() string   { return "FunctionDeclaration" }
func (n *LabeledStatement) Kind() string      { return "LabeledStatement" }
func (n *DebuggerStatement) Kind() string     { return "DebuggerStatement" }
func (n *EmptyStatement) Kind() string        { return "EmptyStatement" }
func (n *WithStatement) Kind() string         { return "WithStatement" }
func (n *Identifier) Kind() string            { return "Identifier" }
func (n *NumberLiteral) Kind() string         { return "NumberLiteral" }
func (n *StringLiteral) Kind() string         { return "StringLiteral" }
func (n *BooleanLiteral) Kind() string        { return "BooleanLiteral" }
func (n *NullLiteral) Kind() string           { return "NullLiteral" }
func (n *RegExpLiteral) Kind() string         { return "RegExpLiteral" }
func (n *ArrayLiteral) Kind() string          { return "ArrayLiteral" }
func (n *ObjectLiteral) Kind() string         { return "ObjectLiteral" }
func (n *Property) Kind() string              { return "Property" }
func (n *FunctionExpression) Kind() string    { return "FunctionExpression" }
func (n *UnaryExpression) Kind() string       { return "UnaryExpression" }
func (n *UpdateExpression) Kind() string      { return "UpdateExpression" }
func (n *BinaryExpression) Kind() string      { return "BinaryExpression" }
func (n *LogicalExpression) Kind() string     { return "LogicalExpression" }
func (n *AssignmentExpression) Kind() string  { return "AssignmentExpression" }
func (n *ConditionalExpression) Kind() string { return "ConditionalExpression" }
func (n *CallExpression) Kind() string        { return "CallExpression" }
func (n *MemberExpression) Kind() string      { return "MemberExpression" }
func (n *NewExpression) Kind() string         { return "NewExpression" }
func (n *SequenceExpression) Kind() string    { return "SequenceExpression" }
func (n *ThisExpression) Kind() string        { return "ThisExpression" }

// Pos
func (n *VariableDeclaration) Pos() Position   { return posOf(n.Token) }
func (n *VariableDeclarator) Pos() Position    { return posOf(n.Token) }
func (n *ExpressionStatement) Pos() Position   { return posOf(n.Token) }
func (n *BlockStatement) Pos() Position        { return posOf(n.Token) }
func (n *ReturnStatement) Pos() Position       { return posOf(n.Token) }
func (n *IfStatement) Pos() Position           { return posOf(n.Token) }
func (n *WhileStatement) Pos() Position        { return posOf(n.Token) }
func (n *DoWhileStatement) Pos() Position      { return posOf(n.Token) }
func (n *ForStatement) Pos() Position          { return posOf(n.Token) }
func (n *ForInStatement) Pos() Position        { return posOf(n.Token) }
func (n *BreakStatement) Pos() Position        { return posOf(n.Token) }
func (n *ContinueStatement) Pos() Position     { return posOf(n.Token) }
func (n *SwitchStatement) Pos() Position       { return posOf(n.Token) }
func (n *SwitchCase) Pos() Position            { return posOf(n.Token) }
func (n *ThrowStatement) Pos() Position        { return posOf(n.Token) }
func (n *TryStatement) Pos() Position          { return posOf(n.Token) }
func (n *CatchClause) Pos() Position           { return posOf(n.Token) }
func (n *FunctionDeclaration) Pos() Position   { return posOf(n.Token) }
func (n *LabeledStatement) Pos() Position      { return posOf(n.Token) }
func (n *DebuggerStatement) Pos() Position     { return posOf(n.Token) }
func (n *EmptyStatement) Pos() Position        { return posOf(n.Token) }
func (n *WithStatement) Pos() Position         { return posOf(n.Token) }
func (n *Identifier) Pos() Position            { return posOf(n.Token) }
func (n *NumberLiteral) Pos() Position         { return posOf(n.Token) }
func (n *StringLiteral) Pos() Position         { return posOf(n.Token) }
func (n *BooleanLiteral) Pos() Position        { return posOf(n.Token) }
func (n *NullLiteral) Pos() Position           { return posOf(n.Token) }
func (n *RegExpLiteral) Pos() Position         { return posOf(n.Token) }
func (n *ArrayLiteral) Pos() Position          { return posOf(n.Token) }
func (n *ObjectLiteral) Pos() Position         { return posOf(n.Token) }
func (n *Property) Pos() Position              { return posOf(n.Token) }
func (n *FunctionExpression) Pos() Position    { return posOf(n.Token) }
func (n *UnaryExpression) Pos() Position       { return posOf(n.Token) }
func (n *UpdateExpression) Pos() Position      { return posOf(n.Token) }
func (n *BinaryExpression) Pos() Position      { return posOf(n.Token) }
func (n *LogicalExpression) Pos() Position     { return posOf(n.Token) }
func (n *AssignmentExpression) Pos() Position  { return posOf(n.Token) }
func (n *ConditionalExpression) Pos() Position { return posOf(n.Token) }
func (n *CallExpression) Pos() Position        { return posOf(n.Token) }
func (n *MemberExpression) Pos() Position      { return posOf(n.Token) }
func (n *NewExpression) Pos() Position         { return posOf(n.Token) }
func (n *SequenceExpression) Pos() Position    { return posOf(n.Token) }
func (n *ThisExpression) Pos() Position        { return posOf(n.Token) }

// Start returns the position of the first token of n. Infix nodes carry
// their operator token, so Start walks down to the leftmost operand.
func Start(n Node) Position {
	switch n := n.(type) {
	case *BinaryExpression:
		return Start(n.Left)
	case *LogicalExpression:
		return Start(n.Left)
	case *AssignmentExpression:
		return Start(n.Left)
	case *ConditionalExpression:
		return Start(n.Test)
	case *CallExpression:
		return Start(n.Callee)
	case *MemberExpression:
		return Start(n.Object)
	case *SequenceExpression:
		if len(n.Expressions) > 0 {
			return Start(n.Expressions[0])
		}
	case *UpdateExpression:
		if !n.Prefix {
			return Start(n.Operand)
		}
	case *ExpressionStatement:
		if n.Expression != nil {
			return Start(n.Expression)
		}
	}
	return n.Pos()
}
