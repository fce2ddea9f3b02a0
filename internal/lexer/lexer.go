// Package lexer implements the lexical analysis (tokenization) for lox-lang.
package lexer

import (
	"fmt"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source string

	pos  int // current read position in source (bytes)
	line int // current line (1-based)
	col  int // current column (1-based, runes)

	diags []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		pos:    0,
		line:   1,
		col:    1,
	}
}

// Scan tokenizes source in one call. The token slice always ends with EOF.
func Scan(source string) ([]token.Token, []diag.Diagnostic) {
	return New(source).Tokenize()
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// Malformed input is reported as a diagnostic plus an ILLEGAL token; scanning
// always continues to the end of the source.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

// peek returns the current rune without advancing, or 0 if at end.
func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

// peekNext returns the rune after current, or 0 if at end.
func (l *Lexer) peekNext() rune {
	if l.isAtEnd() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if l.pos+size >= len(l.source) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+size:])
	return r
}

// advance consumes the current rune and returns it.
func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// match consumes the current rune if it equals want.
func (l *Lexer) match(want rune) bool {
	if l.isAtEnd() || l.peek() != want {
		return false
	}
	l.advance()
	return true
}

// curPos returns the current position as a span.Position.
func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// makeSpan returns a span from start to current position.
func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

// skipWhitespace skips spaces, tabs, carriage returns and newlines.
func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// skipLineComment skips from // to end of line.
func (l *Lexer) skipLineComment() {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) addError(code string, s span.Span, msg string) {
	l.diags = append(l.diags, diag.Errorf(code, s, "%s", msg))
}

func (l *Lexer) emit(kind token.Kind, start span.Position) token.Token {
	return token.Token{Kind: kind, Lexeme: l.source[start.Offset:l.pos], Span: l.makeSpan(start)}
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	for {
		l.skipWhitespace()
		if l.peek() == '/' && l.peekNext() == '/' {
			l.skipLineComment()
			continue
		}
		break
	}

	start := l.curPos()
	if l.isAtEnd() {
		return token.Token{Kind: token.EOF, Lexeme: "", Span: l.makeSpan(start)}
	}

	ch := l.peek()
	switch {
	case ch == '"':
		return l.readString(start)
	case isDigit(ch):
		return l.readNumber(start)
	case isIdentStart(ch):
		return l.readIdentifier(start)
	default:
		return l.readOperator(start)
	}
}

// readString reads a double-quoted string literal. The lexeme excludes the
// quotes. Strings may span lines and have no escape sequences.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // skip opening "
	contentStart := l.pos

	for !l.isAtEnd() && l.peek() != '"' {
		l.advance()
	}

	if l.isAtEnd() {
		s := l.makeSpan(start)
		l.diags = append(l.diags, diag.Errorf("E1001", s, "unterminated string literal").
			WithHint(fmt.Sprintf("add a closing '\"' for the string opened at %s", start)))
		return token.Token{Kind: token.ILLEGAL, Lexeme: l.source[start.Offset:l.pos], Span: s}
	}

	value := l.source[contentStart:l.pos]
	l.advance() // skip closing "
	return token.Token{Kind: token.STRING, Lexeme: value, Span: l.makeSpan(start)}
}

// readNumber reads a number literal: digits, optionally followed by '.' and
// more digits. A trailing '.' without digits is left for the next token.
func (l *Lexer) readNumber(start span.Position) token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // skip '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	return l.emit(token.NUMBER, start)
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(start span.Position) token.Token {
	for isIdentPart(l.peek()) {
		l.advance()
	}

	lexeme := l.source[start.Offset:l.pos]
	return token.Token{Kind: token.LookupIdent(lexeme), Lexeme: lexeme, Span: l.makeSpan(start)}
}

// readOperator reads an operator or delimiter token.
func (l *Lexer) readOperator(start span.Position) token.Token {
	ch := l.advance()

	switch ch {
	case '(':
		return l.emit(token.LPAREN, start)
	case ')':
		return l.emit(token.RPAREN, start)
	case '{':
		return l.emit(token.LBRACE, start)
	case '}':
		return l.emit(token.RBRACE, start)
	case ',':
		return l.emit(token.COMMA, start)
	case '.':
		return l.emit(token.DOT, start)
	case ';':
		return l.emit(token.SEMICOLON, start)
	case '+':
		return l.emit(token.PLUS, start)
	case '-':
		return l.emit(token.MINUS, start)
	case '*':
		return l.emit(token.STAR, start)
	case '/':
		return l.emit(token.SLASH, start)
	case '!':
		if l.match('=') {
			return l.emit(token.NEQ, start)
		}
		return l.emit(token.BANG, start)
	case '=':
		if l.match('=') {
			return l.emit(token.EQ, start)
		}
		return l.emit(token.ASSIGN, start)
	case '<':
		if l.match('=') {
			return l.emit(token.LTE, start)
		}
		return l.emit(token.LT, start)
	case '>':
		if l.match('=') {
			return l.emit(token.GTE, start)
		}
		return l.emit(token.GT, start)
	default:
		l.addError("E1003", l.makeSpan(start), fmt.Sprintf("unexpected character: '%c'", ch))
		return l.emit(token.ILLEGAL, start)
	}
}

// ---- character classification ----

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	if ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
		return true
	}
	return ch >= utf8.RuneSelf && unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
