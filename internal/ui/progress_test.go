package ui

import (
	"fmt"
	"strings"
	"testing"

	"bestbefore/internal/checker"
)

func TestProgressModel_AppliesEvents(t *testing.T) {
	events := make(chan checker.Event)
	m := NewProgressModel("checking", []string{"a.go", "b.go"}, events).(*progressModel)

	m.applyEvent(checker.Event{File: "a.go", Stage: checker.StageParse, Status: checker.StatusWorking})
	if m.items[0].status != "parsing" {
		t.Errorf("status = %q", m.items[0].status)
	}
	m.applyEvent(checker.Event{File: "a.go", Stage: checker.StageEvaluate, Status: checker.StatusDone})
	m.applyEvent(checker.Event{File: "b.go", Stage: checker.StageParse, Status: checker.StatusError})
	m.applyEvent(checker.Event{File: "b.go", Stage: checker.StageParse, Status: checker.StatusError})
	m.applyEvent(checker.Event{File: "unknown.go", Status: checker.StatusDone})

	if m.finished != 2 || m.failed != 1 {
		t.Errorf("finished=%d failed=%d", m.finished, m.failed)
	}
	view := m.View()
	if !strings.Contains(view, "checking (2/2 files, 1 with errors)") {
		t.Errorf("unexpected header:\n%s", view)
	}
}

func TestProgressModel_VisibleRows(t *testing.T) {
	files := make([]string, 30)
	for i := range files {
		files[i] = fmt.Sprintf("f%02d.go", i)
	}
	m := NewProgressModel("checking", files, nil).(*progressModel)
	m.applyEvent(checker.Event{File: "f05.go", Stage: checker.StageRead, Status: checker.StatusWorking})
	m.applyEvent(checker.Event{File: "f01.go", Status: checker.StatusDone})
	m.applyEvent(checker.Event{File: "f02.go", Status: checker.StatusDone})

	rows := m.visibleRows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].path != "f05.go" || rows[1].path != "f02.go" || rows[2].path != "f01.go" {
		t.Errorf("unexpected order: %v", rows)
	}
	if !strings.Contains(m.View(), "27 more") {
		t.Errorf("hidden rows not summarised:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short.go", 20, "short.go"},
		{"internal/checker/checker.go", 12, "internal/..."},
		{"abcdef", 3, "abc"},
		{"日本語ファイル.go", 8, "日本..."},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
