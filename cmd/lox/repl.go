package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"lox-lang/internal/config"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/runtime"
	"lox-lang/internal/token"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

func colorize(s, color string, enabled bool) string {
	if !enabled {
		return s
	}
	return color + s + colorReset
}

// ---- repl command ----

func cmdRepl(cfg *config.Config, logger *slog.Logger) int {
	prompt := colorize(cfg.Prompt, colorGreen, cfg.Color)
	continuePrompt := colorize(cfg.ContinuePrompt, colorGray, cfg.Color)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       cfg.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		return exitIOErr
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s %s\n\n",
		colorize("lox-lang REPL", colorBold+colorCyan, cfg.Color),
		colorize("(type 'exit' or Ctrl+D to quit)", colorGray, cfg.Color))

	sess := newSession(cfg, logger, rl.Stdout(), rl.Stderr())
	for {
		if sess.continuing() {
			rl.SetPrompt(continuePrompt)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if !sess.cancel() {
					fmt.Fprintln(rl.Stdout(), colorize("(use 'exit' or Ctrl+D to quit)", colorGray, cfg.Color))
				}
				continue
			}
			// EOF (Ctrl+D) or other error → exit
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if !sess.feed(line) {
			break
		}
	}
	return exitOK
}

// ---- session ----

// session holds REPL state between lines: the interpreter, whose root scope
// carries over from one input to the next, and any unfinished multi-line
// input.
type session struct {
	interp *runtime.Interpreter
	out    io.Writer
	errOut io.Writer
	diags  *diag.Printer
	echo   bool

	pending strings.Builder
	depth   int // unclosed '{' count
}

func newSession(cfg *config.Config, logger *slog.Logger, out, errOut io.Writer) *session {
	s := &session{
		out:    out,
		errOut: errOut,
		diags:  diag.NewPrinter(errOut, cfg.Color),
		echo:   cfg.EchoExpressions,
	}
	s.interp = runtime.NewInterpreter(out,
		runtime.WithDiagnostics(s.diags.Print),
		runtime.WithLogger(logger))
	return s
}

// continuing reports whether a multi-line input is still open.
func (s *session) continuing() bool {
	return s.depth > 0
}

// cancel drops unfinished input. It reports whether there was any.
func (s *session) cancel() bool {
	had := s.pending.Len() > 0
	s.pending.Reset()
	s.depth = 0
	return had
}

// feed adds a line of input, running it once braces balance. It returns
// false when the user asked to quit.
func (s *session) feed(line string) bool {
	if s.depth == 0 && strings.TrimSpace(line) == "exit" {
		return false
	}

	s.depth += braceDelta(line)
	s.pending.WriteString(line)
	s.pending.WriteString("\n")
	if s.depth > 0 {
		return true
	}
	s.depth = 0

	source := s.pending.String()
	s.pending.Reset()
	if strings.TrimSpace(source) != "" {
		s.eval(source)
	}
	return true
}

// eval runs one complete input as its own program. A bare expression
// without a trailing ';' has its value printed when echo is enabled.
func (s *session) eval(source string) {
	tokens, lexDiags := lexer.Scan(source)
	if diag.HasErrors(lexDiags) {
		s.diags.PrintAll(lexDiags)
		return
	}

	if s.echo && isBareExpression(source) {
		if expr, diags := parser.New(tokens).ParseExpression(); len(diags) == 0 {
			fmt.Fprintln(s.out, s.interp.Evaluate(expr))
			return
		}
	}

	prog, parseDiags := parser.Parse(tokens)
	if len(parseDiags) > 0 {
		s.diags.PrintAll(parseDiags)
		return
	}
	if err := s.interp.Run(prog); err != nil {
		fmt.Fprintf(s.errOut, "error: %s\n", err)
	}
}

// braceDelta counts opened minus closed braces on a line, ignoring any
// inside strings or comments.
func braceDelta(line string) int {
	tokens, _ := lexer.Scan(line)
	delta := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LBRACE:
			delta++
		case token.RBRACE:
			delta--
		}
	}
	return delta
}

func isBareExpression(source string) bool {
	trimmed := strings.TrimSpace(source)
	return !strings.HasSuffix(trimmed, ";") && !strings.HasSuffix(trimmed, "}")
}
