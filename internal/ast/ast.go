// Package ast defines the abstract syntax tree for lox-lang.
//
// Expressions and statements are closed sets: the marker methods are
// unexported, so only the node types declared here satisfy Expr and Stmt.
// Consumers switch over the concrete types.
package ast

import (
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Program (top-level AST root)
// ============================================================

// Program is an ordered sequence of statements. A program produced from
// source with any parse error has no statements.
type Program struct {
	NodeBase
	Stmts []Stmt
}

// ============================================================
// Expressions
// ============================================================

// LiteralExpr is a NUMBER, STRING, true, false or nil token used as a value.
type LiteralExpr struct {
	ExprBase
	Token token.Token
}

// GroupingExpr is a parenthesized expression. It is never an assignment target.
type GroupingExpr struct {
	ExprBase
	Inner Expr
}

// UnaryExpr represents a prefix operation: !x, -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Token
	Operand Expr
}

// BinaryExpr represents an infix operation, including the comma operator.
type BinaryExpr struct {
	ExprBase
	Op    token.Token
	Left  Expr
	Right Expr
}

// AssignExpr stores Value into the variable named by Name.
type AssignExpr struct {
	ExprBase
	Name  token.Token
	Value Expr
}

// VariableExpr reads the variable named by Name.
type VariableExpr struct {
	ExprBase
	Name token.Token
}

// AssignTarget returns the identifier an expression can be assigned through.
// Only a bare variable reference qualifies.
func AssignTarget(e Expr) (token.Token, bool) {
	if v, ok := e.(*VariableExpr); ok {
		return v.Name, true
	}
	return token.Token{}, false
}

// ============================================================
// Statements
// ============================================================

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// PrintStmt evaluates an expression and writes its rendering.
type PrintStmt struct {
	StmtBase
	Expr Expr
}

// VarDeclStmt declares a variable in the current scope: var x = expr;
type VarDeclStmt struct {
	StmtBase
	Name token.Token
	Init Expr // may be nil if no initializer
}

// BlockStmt represents a block of statements: { ... }.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents if/else.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt // may be nil
}

// WhileStmt represents a while loop. for loops are desugared into WhileStmt
// by the parser.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      Stmt
}
