package checker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"bestbefore/internal/calendar"
	"bestbefore/internal/diag"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

const legacySrc = `package legacy

//bestbefore:03.2024
func Warned() {}

//bestbefore:01.2023 expires=12.2023
func Expired() {}

//bestbefore:01.2030
func Fresh() {}
`

func codes(bag *diag.Bag) []string {
	out := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Severity.Label()+" "+d.Code.ID())
	}
	return out
}

func TestRun_Outcomes(t *testing.T) {
	root := writeTree(t, map[string]string{"legacy.go": legacySrc})

	res, err := Run(context.Background(), Options{
		Paths: []string{root + "/..."},
		Now:   calendar.MustParse("04.2024"),
	})
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(codes(res.Bag), ",")
	want := "warning EXP2001,error EXP2002"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if !res.Failed() {
		t.Error("expired code must fail the run")
	}
	if res.Registry.Len() != 3 {
		t.Errorf("expected 3 annotations, got %d", res.Registry.Len())
	}
	d := res.Bag.Items()[0]
	if d.Subject != "function Warned" || d.Primary.Line != 3 {
		t.Errorf("unexpected primary diagnostic: %+v", d)
	}
}

func TestRun_WarningsOnlySucceeds(t *testing.T) {
	root := writeTree(t, map[string]string{"legacy.go": legacySrc})
	res, err := Run(context.Background(), Options{
		Paths: []string{root},
		Now:   calendar.MustParse("06.2023"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed() {
		t.Errorf("warnings alone must not fail: %v", codes(res.Bag))
	}
	if res.Bag.Count(diag.SevWarning) != 1 {
		t.Errorf("expected one warning, got %v", codes(res.Bag))
	}
}

func TestRun_SeverityPolicy(t *testing.T) {
	root := writeTree(t, map[string]string{"legacy.go": legacySrc})
	now := calendar.MustParse("06.2023")

	res, err := Run(context.Background(), Options{Paths: []string{root}, Now: now, WarningsAsErrors: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Failed() || res.Bag.Items()[0].Code != diag.ExpPastReview {
		t.Errorf("warning should be promoted, got %v", codes(res.Bag))
	}
	if len(res.Bag.Items()[0].Notes) == 0 {
		t.Error("promoted warning should carry a note")
	}

	res, err = Run(context.Background(), Options{Paths: []string{root}, Now: now, NoWarnings: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Len() != 0 {
		t.Errorf("warnings should be dropped, got %v", codes(res.Bag))
	}
}

func TestRun_ConfigErrorsAndParseFailures(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bad.go": `package p

//bestbefore:05.2023 expires=04.2023
func Inverted() {}

//bestbefore:13.2023
type T struct{}
`,
		"broken.go": "package p\n\nfunc {\n",
	})
	res, err := Run(context.Background(), Options{Paths: []string{root}, Now: calendar.MustParse("01.2000")})
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(codes(res.Bag), ",")
	want := "error CFG1003,error CFG1002,error IO3002"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	for _, d := range res.Bag.Items()[:2] {
		if !strings.HasPrefix(d.Message, "malformed bestbefore annotation: ") {
			t.Errorf("config error should be recognisable: %q", d.Message)
		}
	}
}

func TestRun_CustomMessageNote(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": `package a

//bestbefore:02.2023 message="Please use NewType instead"
type Old struct{}
`})
	res, err := Run(context.Background(), Options{Paths: []string{root}, Now: calendar.MustParse("03.2023")})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %v", codes(res.Bag))
	}
	d := res.Bag.Items()[0]
	if d.Message != "Please use NewType instead" {
		t.Errorf("message = %q", d.Message)
	}
	if len(d.Notes) != 1 || !strings.Contains(d.Notes[0].Msg, "02.2023") {
		t.Errorf("expected threshold note, got %+v", d.Notes)
	}
}

func TestRun_MaxDiagnostics(t *testing.T) {
	root := writeTree(t, map[string]string{"legacy.go": legacySrc})
	res, err := Run(context.Background(), Options{Paths: []string{root}, Now: calendar.MustParse("04.2024"), MaxDiagnostics: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Len() != 1 || res.Bag.Dropped() != 1 {
		t.Errorf("len=%d dropped=%d", res.Bag.Len(), res.Bag.Dropped())
	}
}

func TestRun_MaxDiagnosticsKeepsErrors(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		limit int
		want  string
	}{
		{
			name: "expired after warnings",
			files: map[string]string{
				"a.go": "package legacy\n\n//bestbefore:01.2020\nfunc A() {}\n\n//bestbefore:02.2020\nfunc B() {}\n",
				"b.go": "package legacy\n\n//bestbefore:01.2020 expires=02.2020\nfunc C() {}\n",
			},
			limit: 1,
			want:  "error EXP2002",
		},
		{
			name: "config error after warnings",
			files: map[string]string{
				"a.go": "package legacy\n\n//bestbefore:01.2020\nfunc A() {}\n",
				"b.go": "package legacy\n\n//bestbefore:05.2023 expires=04.2023\nfunc C() {}\n",
			},
			limit: 1,
			want:  "error CFG1003",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := writeTree(t, tc.files)
			res, err := Run(context.Background(), Options{Paths: []string{root}, Now: calendar.MustParse("01.2024"), MaxDiagnostics: tc.limit})
			if err != nil {
				t.Fatal(err)
			}
			if !res.Failed() {
				t.Fatal("an error past the diagnostic limit must still fail the run")
			}
			if got := strings.Join(codes(res.Bag), ","); got != tc.want {
				t.Errorf("kept %q, want %q", got, tc.want)
			}
			if res.Bag.Dropped() == 0 {
				t.Error("truncation must be counted")
			}
		})
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func TestRun_Progress(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": "package a\n", "b.go": "package a\n"})
	sink := &recordingSink{}
	if _, err := Run(context.Background(), Options{Paths: []string{root}, Progress: sink, Jobs: 2}); err != nil {
		t.Fatal(err)
	}
	done := 0
	for _, ev := range sink.events {
		if ev.File != "" && ev.Status == StatusDone {
			done++
		}
	}
	if done != 2 {
		t.Errorf("expected 2 done events, got %d (%+v)", done, sink.events)
	}
}

func TestRun_Canceled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": "package a\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Options{Paths: []string{root}}); err == nil {
		t.Error("expected cancellation error")
	}
}
