package diag

import (
	"go/token"
	"testing"
)

func loc(path string, line, col uint32) Location {
	return Location{Path: path, Line: line, Column: col}
}

func TestBag_Limit(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 3; i++ {
		b.Add(NewWarning(ExpPastReview, loc("a.go", uint32(i+1), 1), "w"))
	}
	if b.Len() != 2 {
		t.Errorf("expected 2 items, got %d", b.Len())
	}
	if b.Dropped() != 1 {
		t.Errorf("expected 1 dropped, got %d", b.Dropped())
	}

	unlimited := NewBag(0)
	for i := 0; i < 100; i++ {
		unlimited.Add(NewWarning(ExpPastReview, loc("a.go", 1, 1), "w"))
	}
	if unlimited.Len() != 100 {
		t.Errorf("unlimited bag holds %d", unlimited.Len())
	}
}

func TestBag_HasErrorsAndCount(t *testing.T) {
	b := NewBag(10)
	b.Add(NewWarning(ExpPastReview, loc("a.go", 1, 1), "w"))
	if b.HasErrors() {
		t.Errorf("warnings only must not report errors")
	}
	if !b.HasWarnings() {
		t.Errorf("expected warnings")
	}
	b.Add(NewError(ExpExpired, loc("a.go", 2, 1), "e"))
	if !b.HasErrors() {
		t.Errorf("expected errors")
	}
	if b.Count(SevError) != 1 || b.Count(SevWarning) != 1 {
		t.Errorf("counts: errors=%d warnings=%d", b.Count(SevError), b.Count(SevWarning))
	}
}

func TestBag_SortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(NewWarning(ExpPastReview, loc("b.go", 1, 1), "w"))
	b.Add(NewWarning(ExpPastReview, loc("a.go", 9, 1), "w"))
	b.Add(NewError(CfgMalformedDate, loc("a.go", 9, 1), "e"))
	b.Add(NewWarning(ExpPastReview, loc("a.go", 9, 1), "w"))
	b.Sort()

	items := b.Items()
	if items[0].Code != CfgMalformedDate {
		t.Errorf("errors sort before warnings at the same location, got %v", items[0].Code)
	}
	if items[len(items)-1].Primary.Path != "b.go" {
		t.Errorf("expected b.go last")
	}

	b.Dedup()
	if b.Len() != 3 {
		t.Errorf("expected 3 after dedup, got %d", b.Len())
	}
}

func TestBag_MergeAndFilter(t *testing.T) {
	a := NewBag(1)
	a.Add(NewWarning(ExpPastReview, loc("a.go", 1, 1), "w"))
	other := NewBag(5)
	other.Add(NewError(ExpExpired, loc("b.go", 1, 1), "e"))
	other.Add(NewWarning(ExpPastReview, loc("b.go", 2, 1), "w"))
	a.Merge(other)
	if a.Len() != 3 {
		t.Fatalf("merge should grow the limit, got %d", a.Len())
	}
	a.Filter(func(d Diagnostic) bool { return d.Severity == SevError })
	if a.Len() != 1 || a.Items()[0].Code != ExpExpired {
		t.Errorf("filter kept %v", a.Items())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	d := NewError(ExpExpired, loc("a.go", 3, 2), "gone")
	r.Report(d)
	r.Report(d)
	r.Report(d.WithSubject("function X"))
	ReportWarning(r, ExpPastReview, loc("a.go", 3, 2), "late").WithSubject("function X").Emit()
	if bag.Len() != 2 {
		t.Errorf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestReportBuilder_EmitOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, CfgUnattached, loc("a.go", 1, 1), "stray").
		WithNote(loc("a.go", 2, 1), "next declaration here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected a single emission, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Errorf("note lost")
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		CfgMalformedDate: "CFG1001",
		ExpExpired:       "EXP2002",
		IOParseError:     "IO3002",
		UnknownCode:      "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if !CfgInvalidOverride.IsConfig() || ExpExpired.IsConfig() {
		t.Errorf("IsConfig misclassifies codes")
	}
}

func TestLocationOf(t *testing.T) {
	l := LocationOf(token.Position{Filename: "/src/./pkg/a.go", Line: 4, Column: 7, Offset: 30})
	if l.String() != "/src/pkg/a.go:4:7" {
		t.Errorf("String() = %q", l.String())
	}
	if rel := l.Relative("/src"); rel.Path != "pkg/a.go" {
		t.Errorf("Relative = %q", rel.Path)
	}
	if rel := l.Relative("/elsewhere"); rel.Path != "/src/pkg/a.go" {
		t.Errorf("outside base should stay absolute, got %q", rel.Path)
	}
	if LocationOf(token.Position{}).IsValid() {
		t.Errorf("zero position must be invalid")
	}
}

func TestFormatShortDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		NewWarning(ExpPastReview, loc("/w/b.go", 2, 1), "another"),
		NewError(ExpExpired, loc("/w/a.go", 1, 1), "first line\nsecond").
			WithNote(loc("/w/a.go", 3, 1), "note line"),
	}
	expected := "error EXP2002 a.go:1:1 first line second\n" +
		"note EXP2002 a.go:3:1 note line\n" +
		"warning EXP2001 b.go:2:1 another"
	if got := FormatShortDiagnostics(diags, "/w", true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
	if got := FormatShortDiagnostics(nil, "/w", true); got != "" {
		t.Errorf("empty input should render empty, got %q", got)
	}
}
