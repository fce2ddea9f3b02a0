// Package diag provides diagnostic (error/warning) types shared by the lexer,
// parser and interpreter.
package diag

import (
	"fmt"
	"io"
	"lox-lang/internal/span"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single message about the program being run.
//
// Codes are stable: E1xxx come from the lexer, E2xxx from the parser and
// W3xxx from the interpreter.
type Diagnostic struct {
	Code     string    `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Span     span.Span `json:"span"`
	Hint     string    `json:"hint,omitempty"`
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	loc := fmt.Sprintf("%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	msg := fmt.Sprintf("[%s] %s at %s: %s", d.Code, d.Severity, loc, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

// WithHint returns a copy of d carrying the given hint.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// Errorf creates an error diagnostic at the given span.
func Errorf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// Warningf creates a warning diagnostic at the given span.
func Warningf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// HasErrors reports whether any diagnostic in diags has Error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

// Printer writes diagnostics line by line to an output stream.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer writing to w. When color is set, errors are
// printed red and warnings yellow.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

// Print writes a single diagnostic.
func (p *Printer) Print(d Diagnostic) {
	if !p.color {
		fmt.Fprintln(p.w, d.String())
		return
	}
	c := colorRed
	if d.Severity == Warning {
		c = colorYellow
	}
	fmt.Fprintf(p.w, "%s%s%s\n", c, d.String(), colorReset)
}

// PrintAll writes every diagnostic in order.
func (p *Printer) PrintAll(diags []Diagnostic) {
	for _, d := range diags {
		p.Print(d)
	}
}
