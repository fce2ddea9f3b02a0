// Command lox runs lox-lang programs.
//
// Usage:
//
//	lox                          Start the interactive REPL
//	lox <file>                   Run a source file
//	lox -tokens [-json] <file>   Print tokens
//	lox -ast <file>              Print the AST as JSON
//
// Settings are read from -config, $LOX_CONFIG or ~/.loxrc.yaml.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"lox-lang/internal/ast"
	"lox-lang/internal/config"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/runtime"
	"os"
)

// Exit codes, following sysexits.h.
const (
	exitOK      = 0
	exitUsage   = 64
	exitDataErr = 65
	exitNoInput = 66
	exitIOErr   = 74
	exitConfig  = 78
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lox", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tokensMode := fs.Bool("tokens", false, "print tokens instead of running")
	astMode := fs.Bool("ast", false, "print the AST as JSON instead of running")
	jsonMode := fs.Bool("json", false, "with -tokens, print tokens as JSON")
	configPath := fs.String("config", "", "path to a YAML config file")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.Usage = func() {
		usage(stderr)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 1 {
		usage(stderr)
		return exitUsage
	}

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitConfig
	}
	if *logLevel != "" {
		if _, err := config.ParseLevel(*logLevel); err != nil {
			fmt.Fprintf(stderr, "error: -log-level: %v\n", err)
			return exitConfig
		}
		cfg.LogLevel = *logLevel
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}

	if fs.NArg() == 0 {
		if *tokensMode || *astMode {
			fmt.Fprintln(stderr, "error: -tokens and -ast need a file argument")
			return exitUsage
		}
		return cmdRepl(cfg, logger)
	}

	filename := fs.Arg(0)
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(stderr, "error: cannot read file %s: %v\n", filename, err)
		return exitNoInput
	}

	switch {
	case *tokensMode:
		return cmdTokens(string(source), *jsonMode, stdout, stderr)
	case *astMode:
		return cmdParse(string(source), stdout, stderr)
	default:
		return cmdRun(string(source), logger, stdout, stderr)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lox [flags] [file]")
}

// ---- tokens mode ----

func cmdTokens(source string, jsonMode bool, stdout, stderr io.Writer) int {
	tokens, diags := lexer.Scan(source)

	var err error
	if jsonMode {
		err = printTokensJSON(stdout, tokens, diags)
	} else {
		err = printTokensText(stdout, tokens)
		printDiagsText(stderr, diags)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitIOErr
	}

	if diag.HasErrors(diags) {
		return exitDataErr
	}
	return exitOK
}

// ---- ast mode ----

func cmdParse(source string, stdout, stderr io.Writer) int {
	tokens, lexDiags := lexer.Scan(source)
	prog, parseDiags := parser.Parse(tokens)

	allDiags := append(lexDiags, parseDiags...)

	output := map[string]interface{}{
		"ast":         ast.NodeToMap(prog),
		"diagnostics": diagsToSlice(allDiags),
	}
	if err := printJSON(stdout, output); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitIOErr
	}

	if diag.HasErrors(allDiags) {
		return exitDataErr
	}
	return exitOK
}

// ---- run mode ----

// cmdRun executes a whole file. Any lex or parse error means nothing runs.
func cmdRun(source string, logger *slog.Logger, stdout, stderr io.Writer) int {
	tokens, lexDiags := lexer.Scan(source)
	prog, parseDiags := parser.Parse(tokens)

	allDiags := append(lexDiags, parseDiags...)
	if diag.HasErrors(allDiags) {
		printDiagsText(stderr, allDiags)
		logger.Debug("program rejected", "diagnostics", len(allDiags))
		return exitDataErr
	}

	printer := diag.NewPrinter(stderr, false)
	interp := runtime.NewInterpreter(stdout,
		runtime.WithDiagnostics(printer.Print),
		runtime.WithLogger(logger))
	if err := interp.Run(prog); err != nil {
		fmt.Fprintln(stderr, err)
		return exitIOErr
	}
	return exitOK
}
