// Package parser implements the syntax analysis for lox-lang.
// It uses recursive descent with one function per precedence level, and
// panic-mode recovery at statement boundaries.
package parser

import (
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// Diagnostic codes reported by the parser.
const (
	codeExpectedToken = "E2001"
	codeExpectedExpr  = "E2002"
	codeInvalidTarget = "E2003"
	codeUnsupported   = "E2004"
)

// State is the parser's recovery state.
type State int

const (
	StateScanning  State = iota // nothing consumed yet
	StateDeclaring              // at the start of a declaration
	StateStatement              // inside a statement
	StateExpression             // inside an expression
	StatePanic                  // error seen; discarding to the next boundary
	StateDone                   // end of input reached
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateDeclaring:
		return "declaring"
	case StateStatement:
		return "statement"
	case StateExpression:
		return "expression"
	case StatePanic:
		return "panic"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic

	state    State
	hadError bool
	depth    int // block nesting, used when resynchronizing
}

// New creates a new parser from a token slice. The slice should end with EOF,
// as produced by the lexer.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// Parse is a convenience wrapper for New(tokens).ParseProgram().
func Parse(tokens []token.Token) (*ast.Program, []diag.Diagnostic) {
	return New(tokens).ParseProgram()
}

// ParseProgram parses every declaration up to EOF. Errors are recovered per
// statement so that all of them are reported, but if any occurred the
// returned program has no statements.
func (p *Parser) ParseProgram() (*ast.Program, []diag.Diagnostic) {
	prog := &ast.Program{}
	startPos := p.peek().Span.Start

	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
	}
	p.state = StateDone

	prog.Span = span.Span{Start: startPos, End: p.peek().Span.End}
	if p.hadError {
		prog.Stmts = nil
	}
	return prog, p.diags
}

// ParseExpression parses a single expression that must span all tokens.
// It returns nil if there was any error.
func (p *Parser) ParseExpression() (ast.Expr, []diag.Diagnostic) {
	expr := p.expression()
	if expr != nil && !p.isAtEnd() {
		p.errorAtCurrent(codeExpectedToken, "expected end of expression")
	}
	p.state = StateDone
	if p.hadError {
		return nil, p.diags
	}
	return expr, p.diags
}

// State returns the current recovery state.
func (p *Parser) State() State {
	return p.state
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		if n := len(p.tokens); n > 0 {
			return token.Token{Kind: token.EOF, Span: span.Span{Start: p.tokens[n-1].Span.End, End: p.tokens[n-1].Span.End}}
		}
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

// match consumes the current token if it is one of kinds.
func (p *Parser) match(kinds ...token.Kind) (token.Token, bool) {
	for _, k := range kinds {
		if p.check(k) {
			return p.advance(), true
		}
	}
	return token.Token{}, false
}

func (p *Parser) expect(kind token.Kind, context string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	p.errorAtCurrent(codeExpectedToken, fmt.Sprintf("expected %s %s, got %s", kindName(kind), context, describe(p.peek())))
	return p.peek(), false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func kindName(kind token.Kind) string {
	if kind == token.IDENT {
		return "identifier"
	}
	return fmt.Sprintf("'%s'", kind)
}

func describe(tok token.Token) string {
	switch {
	case tok.Kind == token.EOF:
		return "end of input"
	case tok.Kind.IsKeyword():
		return fmt.Sprintf("keyword '%s'", tok.Lexeme)
	case tok.Kind == token.STRING:
		return fmt.Sprintf("string %q", tok.Lexeme)
	default:
		return fmt.Sprintf("'%s'", tok.Lexeme)
	}
}

// ============================================================
// Error recovery
// ============================================================

// errorAt records a diagnostic and enters panic mode. While already
// panicking, further errors are counted but not reported; they are almost
// always consequences of the first one.
func (p *Parser) errorAt(code string, tok token.Token, msg string) {
	p.hadError = true
	if p.state == StatePanic {
		return
	}
	p.state = StatePanic
	if tok.Kind == token.ILLEGAL {
		return // the lexer already reported it
	}
	p.diags = append(p.diags, diag.Errorf(code, tok.Span, "%s", msg))
}

func (p *Parser) errorAtCurrent(code, msg string) {
	p.errorAt(code, p.peek(), msg)
}

func (p *Parser) failed() bool {
	return p.state == StatePanic
}

// synchronize discards tokens until a statement boundary: just past a ';',
// or before a token that starts a statement. Inside a block it also stops
// before '}', so the block can still be closed.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(token.SEMICOLON) {
			p.advance()
			return
		}
		if p.depth > 0 && p.check(token.RBRACE) {
			return
		}
		if p.peekKind().StartsStatement() {
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations and statements
// ============================================================

func (p *Parser) declaration() ast.Stmt {
	start := p.pos
	p.state = StateDeclaring

	var stmt ast.Stmt
	switch p.peekKind() {
	case token.KW_VAR:
		stmt = p.varDecl()
	case token.KW_FUN, token.KW_CLASS, token.KW_RETURN:
		tok := p.advance()
		p.errorAt(codeUnsupported, tok, fmt.Sprintf("'%s' is not supported", tok.Lexeme))
	default:
		stmt = p.statement()
	}

	if p.failed() {
		p.synchronize()
		if p.pos == start {
			p.advance() // always make progress
		}
		p.state = StateDeclaring
		return nil
	}
	return stmt
}

// varDecl parses: var IDENT [ = expression ] ;
func (p *Parser) varDecl() ast.Stmt {
	start := p.advance() // consume 'var'

	name, ok := p.expect(token.IDENT, "after 'var'")
	if !ok {
		return nil
	}

	var init ast.Expr
	if _, ok := p.match(token.ASSIGN); ok {
		if init = p.expression(); init == nil {
			return nil
		}
	}

	if _, ok := p.expect(token.SEMICOLON, "after variable declaration"); !ok {
		return nil
	}
	return &ast.VarDeclStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Name:     name,
		Init:     init,
	}
}

func (p *Parser) statement() ast.Stmt {
	p.state = StateStatement

	switch p.peekKind() {
	case token.LBRACE:
		return p.blockStmt()
	case token.KW_IF:
		return p.ifStmt()
	case token.KW_WHILE:
		return p.whileStmt()
	case token.KW_FOR:
		return p.forStmt()
	case token.KW_PRINT:
		return p.printStmt()
	default:
		return p.exprStmt()
	}
}

// blockStmt parses: { declaration* }
func (p *Parser) blockStmt() ast.Stmt {
	start := p.advance() // consume '{'
	stmts, ok := p.block()
	if !ok {
		return nil
	}
	return &ast.BlockStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Stmts:    stmts,
	}
}

// block parses declarations up to and including the closing '}'. The
// opening '{' has already been consumed.
func (p *Parser) block() ([]ast.Stmt, bool) {
	p.depth++
	defer func() { p.depth-- }()

	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	if _, ok := p.expect(token.RBRACE, "after block"); !ok {
		return nil, false
	}
	return stmts, true
}

// ifStmt parses: if ( expression ) statement [ else statement ]
func (p *Parser) ifStmt() ast.Stmt {
	start := p.advance() // consume 'if'

	cond := p.parenCondition("if")
	if cond == nil {
		return nil
	}
	then := p.statement()
	if then == nil {
		return nil
	}

	stmt := &ast.IfStmt{Condition: cond, Then: then}
	if _, ok := p.match(token.KW_ELSE); ok {
		if stmt.Else = p.statement(); stmt.Else == nil {
			return nil
		}
	}
	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// whileStmt parses: while ( expression ) statement
func (p *Parser) whileStmt() ast.Stmt {
	start := p.advance() // consume 'while'

	cond := p.parenCondition("while")
	if cond == nil {
		return nil
	}
	body := p.statement()
	if body == nil {
		return nil
	}
	return &ast.WhileStmt{
		StmtBase:  makeStmtBase(start.Span.Start, p.prevEnd()),
		Condition: cond,
		Body:      body,
	}
}

func (p *Parser) parenCondition(keyword string) ast.Expr {
	if _, ok := p.expect(token.LPAREN, fmt.Sprintf("after '%s'", keyword)); !ok {
		return nil
	}
	cond := p.expression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN, "after condition"); !ok {
		return nil
	}
	return cond
}

// forStmt parses: for ( [init] ; [cond] ; [incr] ) statement
//
// The loop is desugared into
//
//	{ init; while (cond) { body; incr; } }
//
// with a literal true condition when cond is omitted.
func (p *Parser) forStmt() ast.Stmt {
	start := p.advance() // consume 'for'

	if _, ok := p.expect(token.LPAREN, "after 'for'"); !ok {
		return nil
	}

	var init ast.Stmt
	switch p.peekKind() {
	case token.SEMICOLON:
		p.advance()
	case token.KW_VAR:
		if init = p.varDecl(); init == nil {
			return nil
		}
	default:
		if init = p.exprStmt(); init == nil {
			return nil
		}
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		if cond = p.expression(); cond == nil {
			return nil
		}
	}
	semi, ok := p.expect(token.SEMICOLON, "after loop condition")
	if !ok {
		return nil
	}

	var incr ast.Expr
	if !p.check(token.RPAREN) {
		if incr = p.expression(); incr == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.RPAREN, "after for clauses"); !ok {
		return nil
	}

	body := p.statement()
	if body == nil {
		return nil
	}
	whole := makeStmtBase(start.Span.Start, p.prevEnd())

	loopBody := []ast.Stmt{body}
	if incr != nil {
		loopBody = append(loopBody, &ast.ExprStmt{
			StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: incr.GetSpan()}},
			Expr:     incr,
		})
	}
	if cond == nil {
		cond = &ast.LiteralExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: semi.Span}},
			Token:    token.Token{Kind: token.KW_TRUE, Lexeme: "true", Span: semi.Span},
		}
	}
	loop := &ast.WhileStmt{
		StmtBase:  whole,
		Condition: cond,
		Body:      &ast.BlockStmt{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: body.GetSpan()}}, Stmts: loopBody},
	}

	var outer []ast.Stmt
	if init != nil {
		outer = append(outer, init)
	}
	outer = append(outer, loop)
	return &ast.BlockStmt{StmtBase: whole, Stmts: outer}
}

// printStmt parses: print expression ;
func (p *Parser) printStmt() ast.Stmt {
	start := p.advance() // consume 'print'

	expr := p.expression()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(token.SEMICOLON, "after value"); !ok {
		return nil
	}
	return &ast.PrintStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Expr:     expr,
	}
}

// exprStmt parses: expression ;
func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(token.SEMICOLON, "after expression"); !ok {
		return nil
	}
	return &ast.ExprStmt{
		StmtBase: makeStmtBase(expr.GetSpan().Start, p.prevEnd()),
		Expr:     expr,
	}
}

// ============================================================
// Expressions, lowest to highest precedence
// ============================================================

// expression parses: assignment ( ',' assignment )*
func (p *Parser) expression() ast.Expr {
	p.state = StateExpression
	return p.binaryLevel(p.assignment, token.COMMA)
}

// assignment parses: equality [ '=' equality ]
//
// The right-hand side is parsed at equality level, so a = b = c is not a
// chained assignment; the second '=' is left for the caller to reject.
func (p *Parser) assignment() ast.Expr {
	expr := p.equality()
	if expr == nil {
		return nil
	}

	equals, ok := p.match(token.ASSIGN)
	if !ok {
		return expr
	}
	value := p.equality()
	if value == nil {
		return nil
	}

	name, ok := ast.AssignTarget(expr)
	if !ok {
		p.errorAt(codeInvalidTarget, equals, "invalid assignment target")
		return nil
	}
	return &ast.AssignExpr{
		ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: expr.GetSpan().Cover(value.GetSpan())}},
		Name:     name,
		Value:    value,
	}
}

func (p *Parser) equality() ast.Expr {
	return p.binaryLevel(p.comparison, token.EQ, token.NEQ)
}

func (p *Parser) comparison() ast.Expr {
	return p.binaryLevel(p.term, token.GT, token.GTE, token.LT, token.LTE)
}

func (p *Parser) term() ast.Expr {
	return p.binaryLevel(p.factor, token.PLUS, token.MINUS)
}

func (p *Parser) factor() ast.Expr {
	return p.binaryLevel(p.unary, token.STAR, token.SLASH)
}

// binaryLevel parses operand ( op operand )* for one precedence level,
// folding left so that every operator is left-associative.
func (p *Parser) binaryLevel(operand func() ast.Expr, ops ...token.Kind) ast.Expr {
	left := operand()
	if left == nil {
		return nil
	}

	for {
		op, ok := p.match(ops...)
		if !ok {
			return left
		}
		right := operand()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: left.GetSpan().Cover(right.GetSpan())}},
			Op:       op,
			Left:     left,
			Right:    right,
		}
	}
}

// unary parses: ( '!' | '-' ) unary | primary
func (p *Parser) unary() ast.Expr {
	op, ok := p.match(token.BANG, token.MINUS)
	if !ok {
		return p.primary()
	}
	operand := p.unary()
	if operand == nil {
		return nil
	}
	return &ast.UnaryExpr{
		ExprBase: makeExprBase(op.Span.Start, operand.GetSpan().End),
		Op:       op,
		Operand:  operand,
	}
}

// primary parses literals, identifiers and parenthesized expressions.
func (p *Parser) primary() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER, token.STRING, token.KW_TRUE, token.KW_FALSE, token.KW_NIL:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Token:    tok,
		}

	case token.IDENT:
		p.advance()
		return &ast.VariableExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok,
		}

	case token.LPAREN:
		p.advance() // consume '('
		inner := p.expression()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(token.RPAREN, "after expression"); !ok {
			return nil
		}
		return &ast.GroupingExpr{
			ExprBase: makeExprBase(tok.Span.Start, p.prevEnd()),
			Inner:    inner,
		}

	default:
		p.errorAt(codeExpectedExpr, tok, fmt.Sprintf("expected expression, got %s", describe(tok)))
		return nil
	}
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
