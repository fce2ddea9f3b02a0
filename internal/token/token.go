// Package token defines the token types produced by the lexer.
package token

import (
	"fmt"
	"lox-lang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENT  // identifiers: x, foo, my_var
	NUMBER // number literals: 123, 3.14
	STRING // string literals: "hello"

	// Operators
	ASSIGN // =
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	BANG   // !

	EQ  // ==
	NEQ // !=
	LT  // <
	LTE // <=
	GT  // >
	GTE // >=

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	DOT       // .
	SEMICOLON // ;

	// Keywords
	KW_VAR
	KW_IF
	KW_ELSE
	KW_FOR
	KW_WHILE
	KW_RETURN
	KW_FUN
	KW_CLASS
	KW_TRUE
	KW_FALSE
	KW_NIL
	KW_PRINT
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	ASSIGN: "=",
	PLUS:   "+",
	MINUS:  "-",
	STAR:   "*",
	SLASH:  "/",
	BANG:   "!",
	EQ:     "==",
	NEQ:    "!=",
	LT:     "<",
	LTE:    "<=",
	GT:     ">",
	GTE:    ">=",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	COMMA:     ",",
	DOT:       ".",
	SEMICOLON: ";",

	KW_VAR:    "var",
	KW_IF:     "if",
	KW_ELSE:   "else",
	KW_FOR:    "for",
	KW_WHILE:  "while",
	KW_RETURN: "return",
	KW_FUN:    "fun",
	KW_CLASS:  "class",
	KW_TRUE:   "true",
	KW_FALSE:  "false",
	KW_NIL:    "nil",
	KW_PRINT:  "print",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_VAR && k <= KW_PRINT
}

// StartsStatement reports whether a token of this kind begins a new
// statement. The parser resynchronizes on these after an error.
func (k Kind) StartsStatement() bool {
	switch k {
	case KW_VAR, KW_IF, KW_FOR, KW_WHILE, KW_PRINT, KW_RETURN, KW_FUN, KW_CLASS:
		return true
	}
	return false
}

var keywords = map[string]Kind{
	"var":    KW_VAR,
	"if":     KW_IF,
	"else":   KW_ELSE,
	"for":    KW_FOR,
	"while":  KW_WHILE,
	"return": KW_RETURN,
	"fun":    KW_FUN,
	"class":  KW_CLASS,
	"true":   KW_TRUE,
	"false":  KW_FALSE,
	"nil":    KW_NIL,
	"print":  KW_PRINT,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
// Matching is case-sensitive.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token represents a lexical token with its kind, text, and source location.
// Tokens are values and are never mutated after the lexer produces them.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

// Line returns the 1-based source line the token starts on.
func (t Token) Line() int {
	return t.Span.Start.Line
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
