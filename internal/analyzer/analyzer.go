// Package analyzer exposes bestbefore as a go/analysis pass so it can run
// under go vet -vettool and in any multichecker.
//
// Vet has a single severity, so by default only expired code and malformed
// annotations are reported. Pass -warnings to report code past its review
// date as well.
package analyzer

import (
	"fmt"
	"go/ast"
	"os"
	"strings"
	"time"

	"golang.org/x/tools/go/analysis"

	"bestbefore/internal/calendar"
	"bestbefore/internal/diag"
	"bestbefore/internal/directive"
	"bestbefore/internal/policy"
)

const doc = `report code past its bestbefore date

Code annotated with a //bestbefore:MM.YYYY directive is reported once the
current month is after the review date (with -warnings) or after the
expires= date. Malformed annotations are always reported.`

// Diagnostic categories.
const (
	CategoryExpired = "expired"
	CategoryReview  = "review"
	CategoryConfig  = "config"
)

// Config holds the analyzer flags.
type Config struct {
	// Now pins the effective date (MM.YYYY). Takes precedence over Env.
	Now string
	// Env names the override variable, BESTBEFORE_DATE when empty.
	Env string
	// Warnings also reports code past its review date.
	Warnings bool
	// Clock replaces time.Now in tests.
	Clock func() time.Time
	// Lookup replaces os.LookupEnv in tests.
	Lookup func(string) (string, bool)
}

// Analyzer is the bestbefore pass with its flags bound to a package-level
// Config.
var Analyzer = New(&Config{})

// New returns an analyzer reading its settings from cfg.
func New(cfg *Config) *analysis.Analyzer {
	a := &analysis.Analyzer{
		Name: "bestbefore",
		Doc:  doc,
		Run: func(pass *analysis.Pass) (any, error) {
			return run(pass, cfg)
		},
	}
	a.Flags.StringVar(&cfg.Now, "now", cfg.Now, "effective date as MM.YYYY (default: $BESTBEFORE_DATE or the current month)")
	a.Flags.StringVar(&cfg.Env, "env", cfg.Env, "environment variable holding the date override")
	a.Flags.BoolVar(&cfg.Warnings, "warnings", cfg.Warnings, "also report code past its review date")
	return a
}

func (c *Config) resolveNow() (calendar.CalendarDate, error) {
	src := policy.EnvSource(c.Env, c.Lookup, c.Clock)
	if c.Now != "" {
		src = src.Prepend(policy.Override{Source: "-now", Value: c.Now})
	}
	return policy.ResolveNow(src)
}

func run(pass *analysis.Pass, cfg *Config) (any, error) {
	now, err := cfg.resolveNow()
	if err != nil {
		return nil, err
	}

	for _, file := range pass.Files {
		if !hasDirective(file.Comments) {
			continue
		}
		tf := pass.Fset.File(file.Pos())
		if tf == nil {
			continue
		}
		src, err := readSource(pass, tf.Name())
		if err != nil {
			return nil, fmt.Errorf("bestbefore: %w", err)
		}

		annotations, problems := directive.Scan(pass.Fset, file, src)
		for _, p := range problems {
			pass.Report(analysis.Diagnostic{
				Pos:      p.Pos,
				Category: CategoryConfig,
				Message:  p.Message,
			})
		}
		for _, a := range annotations {
			f, ok := directive.Check(a, now)
			if !ok || (!f.Fatal() && !cfg.Warnings) {
				continue
			}
			pass.Report(analysis.Diagnostic{
				Pos:      a.Pos,
				End:      a.End,
				Category: category(f),
				Message:  f.Message,
			})
		}
	}
	return nil, nil
}

func category(f directive.Finding) string {
	switch {
	case f.Code.IsConfig():
		return CategoryConfig
	case f.Code == diag.ExpExpired:
		return CategoryExpired
	}
	return CategoryReview
}

func hasDirective(groups []*ast.CommentGroup) bool {
	for _, g := range groups {
		for _, c := range g.List {
			if strings.HasPrefix(c.Text, directive.Prefix) {
				return true
			}
		}
	}
	return false
}

// readSource prefers the pass's reader so that overlays are honoured.
func readSource(pass *analysis.Pass, name string) ([]byte, error) {
	if pass.ReadFile != nil {
		return pass.ReadFile(name)
	}
	return os.ReadFile(name)
}
