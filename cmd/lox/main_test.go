package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI runs the command with a clean config environment and captures its
// output streams.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOX_CONFIG", "")

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeSource(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.lox")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestRunFile(t *testing.T) {
	path := writeSource(t, "var x = 1;\n{ var x = 2; print x; }\nprint x;\n")
	code, stdout, stderr := runCLI(t, path)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	if stdout != "2\n1\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRunFileWarningsGoToStderr(t *testing.T) {
	path := writeSource(t, "x = 5;\nprint 1;\n")
	code, stdout, stderr := runCLI(t, path)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if stdout != "1\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if !strings.Contains(stderr, "W3002") || !strings.Contains(stderr, "undefined identifier x") {
		t.Errorf("expected W3002 on stderr, got %q", stderr)
	}
}

func TestRunFileParseError(t *testing.T) {
	path := writeSource(t, "print 1;\nprint ;\n")
	code, stdout, stderr := runCLI(t, path)
	if code != exitDataErr {
		t.Errorf("expected exit %d, got %d", exitDataErr, code)
	}
	if stdout != "" {
		t.Errorf("expected nothing to run, got %q", stdout)
	}
	if !strings.Contains(stderr, "E2002") {
		t.Errorf("expected E2002 on stderr, got %q", stderr)
	}
}

func TestRunFileLexError(t *testing.T) {
	path := writeSource(t, "print \"open;\n")
	code, _, stderr := runCLI(t, path)
	if code != exitDataErr {
		t.Errorf("expected exit %d, got %d", exitDataErr, code)
	}
	if !strings.Contains(stderr, "E1001") {
		t.Errorf("expected E1001 on stderr, got %q", stderr)
	}
}

func TestTooManyArguments(t *testing.T) {
	code, _, stderr := runCLI(t, "a.lox", "b.lox")
	if code != exitUsage {
		t.Errorf("expected exit %d, got %d", exitUsage, code)
	}
	if !strings.Contains(stderr, "Usage: lox") {
		t.Errorf("expected usage message, got %q", stderr)
	}
}

func TestUnknownFlag(t *testing.T) {
	code, _, _ := runCLI(t, "-bogus")
	if code != exitUsage {
		t.Errorf("expected exit %d, got %d", exitUsage, code)
	}
}

func TestMissingFile(t *testing.T) {
	code, _, stderr := runCLI(t, filepath.Join(t.TempDir(), "missing.lox"))
	if code != exitNoInput {
		t.Errorf("expected exit %d, got %d", exitNoInput, code)
	}
	if !strings.Contains(stderr, "cannot read file") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("nonsense_key: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, _ := runCLI(t, "-config", cfgPath, writeSource(t, "print 1;"))
	if code != exitConfig {
		t.Errorf("expected exit %d, got %d", exitConfig, code)
	}
}

func TestBadLogLevelFlag(t *testing.T) {
	code, _, stderr := runCLI(t, "-log-level", "chatty", writeSource(t, "print 1;"))
	if code != exitConfig {
		t.Errorf("expected exit %d, got %d", exitConfig, code)
	}
	if !strings.Contains(stderr, "invalid log level") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDebugLogging(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-log-level", "debug", writeSource(t, "{ print 1; }"))
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if stdout != "1\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if !strings.Contains(stderr, "scope push") {
		t.Errorf("expected debug log on stderr, got %q", stderr)
	}
}

func TestTokensMode(t *testing.T) {
	code, stdout, _ := runCLI(t, "-tokens", writeSource(t, "var a = 1;"))
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 token lines, got %d: %q", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "var") || !strings.HasPrefix(lines[5], "EOF") {
		t.Errorf("unexpected token dump %q", stdout)
	}
}

func TestTokensJSONMode(t *testing.T) {
	code, stdout, _ := runCLI(t, "-tokens", "-json", writeSource(t, "print @;"))
	if code != exitDataErr {
		t.Errorf("expected exit %d, got %d", exitDataErr, code)
	}

	var out struct {
		Tokens []struct {
			Kind   string `json:"kind"`
			Lexeme string `json:"lexeme"`
		} `json:"tokens"`
		Diagnostics []map[string]interface{} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if len(out.Tokens) != 4 || out.Tokens[1].Kind != "ILLEGAL" {
		t.Errorf("unexpected tokens %+v", out.Tokens)
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0]["code"] != "E1003" {
		t.Errorf("unexpected diagnostics %v", out.Diagnostics)
	}
}

func TestASTMode(t *testing.T) {
	code, stdout, _ := runCLI(t, "-ast", writeSource(t, "for (;;) print 1;"))
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	prog, ok := out["ast"].(map[string]interface{})
	if !ok || prog["kind"] != "Program" {
		t.Fatalf("expected Program root, got %v", out["ast"])
	}
	if !strings.Contains(stdout, `"WhileStmt"`) {
		t.Errorf("expected desugared while loop in %s", stdout)
	}
}

func TestModeFlagsNeedFile(t *testing.T) {
	code, _, _ := runCLI(t, "-ast")
	if code != exitUsage {
		t.Errorf("expected exit %d, got %d", exitUsage, code)
	}
}
