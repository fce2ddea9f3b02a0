package lexer

import (
	"lox-lang/internal/token"
	"testing"
)

func expectKinds(t *testing.T, source string, expected []token.Kind) []token.Token {
	t.Helper()
	tokens, diags := Scan(source)

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
	return tokens
}

func TestTokenizeSimple(t *testing.T) {
	expectKinds(t, `var x = 1 + 2;`, []token.Kind{
		token.KW_VAR, token.IDENT, token.ASSIGN,
		token.NUMBER, token.PLUS, token.NUMBER, token.SEMICOLON, token.EOF,
	})
}

func TestTokenizeEmpty(t *testing.T) {
	tokens := expectKinds(t, "", []token.Kind{token.EOF})
	if tokens[0].Line() != 1 {
		t.Errorf("expected EOF on line 1, got %d", tokens[0].Line())
	}
}

func TestTokenizeKeywords(t *testing.T) {
	expectKinds(t, `var if else for while return fun class true false nil print`, []token.Kind{
		token.KW_VAR, token.KW_IF, token.KW_ELSE, token.KW_FOR, token.KW_WHILE,
		token.KW_RETURN, token.KW_FUN, token.KW_CLASS,
		token.KW_TRUE, token.KW_FALSE, token.KW_NIL, token.KW_PRINT,
		token.EOF,
	})
}

func TestKeywordsAreCaseSensitive(t *testing.T) {
	tokens := expectKinds(t, `Var PRINT True`, []token.Kind{
		token.IDENT, token.IDENT, token.IDENT, token.EOF,
	})
	if tokens[1].Lexeme != "PRINT" {
		t.Errorf("expected lexeme PRINT, got %q", tokens[1].Lexeme)
	}
}

func TestTokenizeOperators(t *testing.T) {
	expectKinds(t, `= == ! != < <= > >= + - * /`, []token.Kind{
		token.ASSIGN, token.EQ, token.BANG, token.NEQ,
		token.LT, token.LTE, token.GT, token.GTE,
		token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.EOF,
	})
}

func TestTokenizeOperatorsWithoutSpaces(t *testing.T) {
	expectKinds(t, `a!=b==c<=d>=e`, []token.Kind{
		token.IDENT, token.NEQ, token.IDENT, token.EQ, token.IDENT,
		token.LTE, token.IDENT, token.GTE, token.IDENT, token.EOF,
	})
}

func TestTokenizeDelimiters(t *testing.T) {
	expectKinds(t, `( ) { } , . ;`, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.COMMA, token.DOT, token.SEMICOLON,
		token.EOF,
	})
}

func TestTokenizeString(t *testing.T) {
	tokens := expectKinds(t, `"hello" ""`, []token.Kind{token.STRING, token.STRING, token.EOF})
	if tokens[0].Lexeme != "hello" {
		t.Errorf("expected lexeme without quotes, got %q", tokens[0].Lexeme)
	}
	if tokens[1].Lexeme != "" {
		t.Errorf("expected empty lexeme, got %q", tokens[1].Lexeme)
	}
}

func TestTokenizeMultilineString(t *testing.T) {
	tokens := expectKinds(t, "\"a\nb\" x", []token.Kind{token.STRING, token.IDENT, token.EOF})
	if tokens[0].Lexeme != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", tokens[0].Lexeme)
	}
	if tokens[1].Line() != 2 {
		t.Errorf("expected identifier on line 2, got %d", tokens[1].Line())
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tokens := expectKinds(t, `123 3.14 7.`, []token.Kind{
		token.NUMBER, token.NUMBER, token.NUMBER, token.DOT, token.EOF,
	})
	want := []string{"123", "3.14", "7"}
	for i, w := range want {
		if tokens[i].Lexeme != w {
			t.Errorf("token[%d]: expected %q, got %q", i, w, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeIdentifiers(t *testing.T) {
	tokens := expectKinds(t, `foo _bar baz42 变量`, []token.Kind{
		token.IDENT, token.IDENT, token.IDENT, token.IDENT, token.EOF,
	})
	if tokens[2].Lexeme != "baz42" {
		t.Errorf("expected baz42, got %q", tokens[2].Lexeme)
	}
	if tokens[3].Lexeme != "变量" {
		t.Errorf("expected 变量, got %q", tokens[3].Lexeme)
	}
}

func TestTokenizeComments(t *testing.T) {
	expectKinds(t, "print 1; // trailing comment\n// full line\nprint 2;", []token.Kind{
		token.KW_PRINT, token.NUMBER, token.SEMICOLON,
		token.KW_PRINT, token.NUMBER, token.SEMICOLON,
		token.EOF,
	})
}

func TestLineTracking(t *testing.T) {
	source := "var a = 1;\n\nvar b = 2;\n"
	tokens, _ := Scan(source)

	if tokens[0].Line() != 1 {
		t.Errorf("expected line 1, got %d", tokens[0].Line())
	}
	// tokens[5] is the second 'var'
	if tokens[5].Kind != token.KW_VAR || tokens[5].Line() != 3 {
		t.Errorf("expected 'var' on line 3, got %s on line %d", tokens[5].Kind, tokens[5].Line())
	}
	if tokens[5].Span.Start.Column != 1 {
		t.Errorf("expected column 1, got %d", tokens[5].Span.Start.Column)
	}
}

func TestUnterminatedString(t *testing.T) {
	tokens, diags := Scan(`print "abc`)

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	if diags[0].Code != "E1001" {
		t.Errorf("expected E1001, got %s", diags[0].Code)
	}
	if diags[0].Hint == "" {
		t.Error("expected a hint on the unterminated string diagnostic")
	}
	if len(tokens) != 3 || tokens[1].Kind != token.ILLEGAL || tokens[2].Kind != token.EOF {
		t.Fatalf("expected [print ILLEGAL EOF], got %v", tokens)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	tokens, diags := Scan(`var a = 1 @ 2; #`)

	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", len(diags), diags)
	}
	for _, d := range diags {
		if d.Code != "E1003" {
			t.Errorf("expected E1003, got %s", d.Code)
		}
	}
	if diags[0].Span.Start.Column != 11 {
		t.Errorf("expected column 11, got %d", diags[0].Span.Start.Column)
	}

	// scanning continues after the bad character
	last := tokens[len(tokens)-1]
	if last.Kind != token.EOF {
		t.Errorf("expected EOF at end, got %s", last.Kind)
	}
	illegal := 0
	for _, tok := range tokens {
		if tok.Kind == token.ILLEGAL {
			illegal++
		}
	}
	if illegal != 2 {
		t.Errorf("expected 2 ILLEGAL tokens, got %d", illegal)
	}
}

func TestSpans(t *testing.T) {
	tokens, _ := Scan(`x >= 10`)
	gte := tokens[1]
	if gte.Span.Start.Offset != 2 || gte.Span.End.Offset != 4 {
		t.Errorf("expected span 2..4, got %d..%d", gte.Span.Start.Offset, gte.Span.End.Offset)
	}
	if gte.Span.Len() != 2 {
		t.Errorf("expected len 2, got %d", gte.Span.Len())
	}
}
