package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
	"strconv"
)

// defaultValue is bound by a declaration without an initializer and by the
// nil literal.
var defaultValue Value = NumberVal(0)

// Diagnostic codes reported by the interpreter.
const (
	codeRedeclared = "W3001"
	codeUndeclared = "W3002"
)

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents a failure of the host while interpreting, such as
// an output write error. Language-level failures are ErrorVal values instead.
type RuntimeError struct {
	Message string
	Span    span.Span
	Err     error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func runtimeErr(s span.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Span: s}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it. The root scope persists across
// calls to Run, so a REPL can feed one program per input.
type Interpreter struct {
	env    *Environment
	output io.Writer
	report func(diag.Diagnostic)
	logger *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithDiagnostics sets the function that receives runtime warnings such as
// redeclarations. By default they are dropped.
func WithDiagnostics(report func(diag.Diagnostic)) Option {
	return func(i *Interpreter) {
		i.report = report
	}
}

// WithLogger sets the logger used for debug tracing of scopes and runtime
// diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewInterpreter creates a new interpreter that prints to output.
func NewInterpreter(output io.Writer, opts ...Option) *Interpreter {
	i := &Interpreter{
		env:    NewEnvironment(),
		output: output,
		report: func(diag.Diagnostic) {},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run executes every statement of prog in the root scope.
func (i *Interpreter) Run(prog *ast.Program) error {
	root := i.env.Root()
	for _, stmt := range prog.Stmts {
		if err := i.exec(stmt, root); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate evaluates a single expression in the root scope.
func (i *Interpreter) Evaluate(expr ast.Expr) Value {
	return i.eval(expr, i.env.Root())
}

// Env returns the interpreter's scope arena (useful for REPL and tests).
func (i *Interpreter) Env() *Environment {
	return i.env
}

func (i *Interpreter) warn(d diag.Diagnostic) {
	i.logger.Debug("runtime diagnostic", "code", d.Code, "message", d.Message, "line", d.Span.Start.Line)
	i.report(d)
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) exec(stmt ast.Stmt, scope ScopeID) error {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		i.eval(s.Expr, scope)
		return nil

	case *ast.PrintStmt:
		v := i.eval(s.Expr, scope)
		if _, err := fmt.Fprintln(i.output, v.String()); err != nil {
			return &RuntimeError{Message: "write failed", Span: s.Span, Err: err}
		}
		return nil

	case *ast.VarDeclStmt:
		i.execVarDecl(s, scope)
		return nil

	case *ast.BlockStmt:
		return i.execBlock(s, scope)

	case *ast.IfStmt:
		if IsTruthy(i.eval(s.Condition, scope)) {
			return i.exec(s.Then, scope)
		}
		if s.Else != nil {
			return i.exec(s.Else, scope)
		}
		return nil

	case *ast.WhileStmt:
		for IsTruthy(i.eval(s.Condition, scope)) {
			if err := i.exec(s.Body, scope); err != nil {
				return err
			}
		}
		return nil

	default:
		return runtimeErr(stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

// execVarDecl binds a new variable. A redeclaration in the same scope is
// reported and has no effect; its initializer is not evaluated.
func (i *Interpreter) execVarDecl(s *ast.VarDeclStmt, scope ScopeID) {
	name := s.Name.Lexeme
	if i.env.Has(scope, name) {
		i.warn(diag.Warningf(codeRedeclared, s.Name.Span, "%s %s", name, ErrRedeclared))
		return
	}

	var val Value = defaultValue
	if s.Init != nil {
		val = i.eval(s.Init, scope)
	}
	if err := i.env.Declare(scope, name, val); err != nil {
		i.warn(diag.Warningf(codeRedeclared, s.Name.Span, "%s", err))
	}
}

func (i *Interpreter) execBlock(s *ast.BlockStmt, parent ScopeID) error {
	scope := i.env.Push(parent)
	i.logger.Debug("scope push", "scope", scope, "parent", parent)
	defer func() {
		i.env.Pop()
		i.logger.Debug("scope pop", "scope", scope)
	}()

	for _, stmt := range s.Stmts {
		if err := i.exec(stmt, scope); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) eval(expr ast.Expr, scope ScopeID) Value {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return literalValue(e.Token)

	case *ast.GroupingExpr:
		return i.eval(e.Inner, scope)

	case *ast.VariableExpr:
		if v, ok := i.env.Lookup(scope, e.Name.Lexeme); ok {
			return v
		}
		return ErrorVal(UndefinedIdentifier)

	case *ast.AssignExpr:
		// the value is only evaluated once the target is known to exist
		owner, err := i.env.Resolve(scope, e.Name.Lexeme)
		if err != nil {
			i.warn(diag.Warningf(codeUndeclared, e.Name.Span, "%s", err))
			return ErrorVal(UndefinedIdentifier)
		}
		v := i.eval(e.Value, scope)
		if err := i.env.Assign(owner, e.Name.Lexeme, v); err != nil {
			return ErrorVal(UndefinedIdentifier)
		}
		return v

	case *ast.UnaryExpr:
		return evalUnary(e.Op, i.eval(e.Operand, scope))

	case *ast.BinaryExpr:
		left := i.eval(e.Left, scope)
		right := i.eval(e.Right, scope)
		return evalBinary(e.Op, left, right)

	default:
		i.logger.Error("unhandled expression type", "type", fmt.Sprintf("%T", expr))
		return ErrorVal(InvalidOperands)
	}
}

func literalValue(tok token.Token) Value {
	switch tok.Kind {
	case token.NUMBER:
		// out-of-range literals saturate to ±Inf
		f, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return NumberVal(f)
	case token.STRING:
		return StringVal(tok.Lexeme)
	case token.KW_TRUE:
		return BoolVal(true)
	case token.KW_FALSE:
		return BoolVal(false)
	default: // nil
		return defaultValue
	}
}

func evalUnary(op token.Token, operand Value) Value {
	switch op.Kind {
	case token.BANG:
		switch operand.(type) {
		case NumberVal, BoolVal:
			return BoolVal(!IsTruthy(operand))
		}
	case token.MINUS:
		if n, ok := operand.(NumberVal); ok {
			return -n
		}
	}
	return ErrorVal(InvalidOperands)
}

func evalBinary(op token.Token, left, right Value) Value {
	switch op.Kind {
	case token.COMMA:
		return right

	case token.PLUS:
		switch l := left.(type) {
		case NumberVal:
			if r, ok := right.(NumberVal); ok {
				return l + r
			}
		case StringVal:
			if r, ok := right.(StringVal); ok {
				return l + r
			}
		}
		return ErrorVal(InvalidOperands)

	case token.MINUS, token.STAR, token.SLASH:
		l, lok := left.(NumberVal)
		r, rok := right.(NumberVal)
		if !lok || !rok {
			return ErrorVal(InvalidOperands)
		}
		switch op.Kind {
		case token.MINUS:
			return l - r
		case token.STAR:
			return l * r
		default:
			return l / r
		}

	case token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
		return compareValues(op.Lexeme, left, right)

	default:
		return ErrorVal(InvalidOperands)
	}
}
