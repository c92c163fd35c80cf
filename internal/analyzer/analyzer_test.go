package analyzer

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"
	"time"

	"golang.org/x/tools/go/analysis"
)

const src = `package legacy

//bestbefore:03.2024
func Warned() {}

//bestbefore:01.2023 expires=12.2023
func Expired() {}

//bestbefore:01.2023 until=12.2023
func Typo() {}

//bestbefore:01.2030
func Fresh() {}
`

func runPass(t *testing.T, cfg *Config) []analysis.Diagnostic {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "legacy.go", src, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}
	var got []analysis.Diagnostic
	pass := &analysis.Pass{
		Analyzer: New(cfg),
		Fset:     fset,
		Files:    []*ast.File{f},
		Report:   func(d analysis.Diagnostic) { got = append(got, d) },
		ReadFile: func(name string) ([]byte, error) { return []byte(src), nil },
	}
	if _, err := pass.Analyzer.Run(pass); err != nil {
		t.Fatalf("run: %v", err)
	}
	return got
}

func noEnv(string) (string, bool) { return "", false }

func categories(diags []analysis.Diagnostic) string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Category
	}
	return strings.Join(out, ",")
}

func TestAnalyzer_DefaultReportsFailuresOnly(t *testing.T) {
	got := runPass(t, &Config{Now: "04.2024", Lookup: noEnv})
	if c := categories(got); c != "expired,config" {
		t.Fatalf("categories = %s", c)
	}
	if !strings.Contains(got[0].Message, "'function Expired' has expired (after 12.2023)") {
		t.Errorf("message = %q", got[0].Message)
	}
	if !strings.Contains(got[1].Message, "until") {
		t.Errorf("config message = %q", got[1].Message)
	}
}

func TestAnalyzer_Warnings(t *testing.T) {
	got := runPass(t, &Config{Now: "04.2024", Warnings: true, Lookup: noEnv})
	if c := categories(got); c != "review,expired,config" {
		t.Fatalf("categories = %s", c)
	}
}

func TestAnalyzer_EnvOverride(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == "RELEASE_DATE" {
			return "06.2023", true
		}
		return "", false
	}
	got := runPass(t, &Config{Env: "RELEASE_DATE", Warnings: true, Lookup: lookup})
	// 06.2023 is past the review date of Expired only.
	if c := categories(got); c != "review,config" {
		t.Fatalf("categories = %s", c)
	}
}

func TestAnalyzer_Clock(t *testing.T) {
	clock := func() time.Time { return time.Date(2031, time.January, 15, 0, 0, 0, 0, time.UTC) }
	got := runPass(t, &Config{Lookup: noEnv, Clock: clock})
	if c := categories(got); c != "expired,config" {
		t.Fatalf("categories = %s", c)
	}
}

func TestAnalyzer_MalformedOverride(t *testing.T) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "legacy.go", src, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}
	a := New(&Config{Now: "2024-04", Lookup: noEnv})
	pass := &analysis.Pass{
		Analyzer: a,
		Fset:     fset,
		Files:    []*ast.File{f},
		Report:   func(analysis.Diagnostic) { t.Error("nothing should be reported") },
	}
	if _, err := a.Run(pass); err == nil || !strings.Contains(err.Error(), "-now") {
		t.Errorf("expected override error, got %v", err)
	}
}

func TestAnalyzer_Flags(t *testing.T) {
	cfg := &Config{}
	a := New(cfg)
	if err := a.Flags.Parse([]string{"-now=05.2025", "-warnings", "-env=X"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Now != "05.2025" || !cfg.Warnings || cfg.Env != "X" {
		t.Errorf("flags not bound: %+v", cfg)
	}
	if err := analysis.Validate([]*analysis.Analyzer{Analyzer}); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
