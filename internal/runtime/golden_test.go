package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// goldenTest runs a .lox file and compares its output to a .expected file.
// Diagnostics are appended to the output as "! <code> <message>" lines so
// that error scenarios can be pinned down as well.
func goldenTest(t *testing.T, name string) {
	t.Helper()

	loxPath := filepath.Join("..", "..", "testdata", name+".lox")
	expectedPath := filepath.Join("..", "..", "testdata", name+".expected")

	source, err := os.ReadFile(loxPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", loxPath, err)
	}

	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", expectedPath, err)
	}

	got, diags, err := runSource(string(source))
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	for _, d := range diags {
		got += "! " + d.Code + " " + d.Message + "\n"
	}

	expectedStr := strings.TrimRight(string(expected), "\n")
	gotStr := strings.TrimRight(got, "\n")

	if gotStr != expectedStr {
		expectedLines := strings.Split(expectedStr, "\n")
		gotLines := strings.Split(gotStr, "\n")

		t.Errorf("output mismatch for %s", name)
		maxLines := max(len(expectedLines), len(gotLines))
		for i := 0; i < maxLines; i++ {
			exp, g := "<missing>", "<missing>"
			if i < len(expectedLines) {
				exp = expectedLines[i]
			}
			if i < len(gotLines) {
				g = gotLines[i]
			}
			prefix := "  "
			if exp != g {
				prefix = "! "
			}
			t.Logf("%sline %d: expected=%q got=%q", prefix, i+1, exp, g)
		}
	}
}

func TestGoldenScenarios(t *testing.T) {
	goldenTest(t, "golden_scenarios")
}

func TestGoldenScopes(t *testing.T) {
	goldenTest(t, "golden_scopes")
}

func TestGoldenLoops(t *testing.T) {
	goldenTest(t, "golden_loops")
}

func TestGoldenOperators(t *testing.T) {
	goldenTest(t, "golden_operators")
}

func TestGoldenParseError(t *testing.T) {
	goldenTest(t, "golden_parse_error")
}
