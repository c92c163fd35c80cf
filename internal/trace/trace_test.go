package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug"} {
		l, err := ParseLevel(s)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
		if l.String() != s {
			t.Errorf("round trip %q -> %q", s, l.String())
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopeFile) {
		t.Error("phase level must skip file events")
	}
	if !LevelDetail.ShouldEmit(ScopeFile) || !LevelPhase.ShouldEmit(ScopePass) {
		t.Error("expected events to be emitted")
	}
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Error("off emits nothing")
	}
}

func TestStreamTracer_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)

	root := Begin(tr, ScopeDriver, "check", 0)
	child := Begin(tr, ScopeFile, "file", root.ID()).WithExtra("path", "a.go")
	child.End("ok")
	root.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events, got %d:\n%s", len(lines), buf.String())
	}
	var ev jsonEvent
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Kind != "end" || ev.Scope != "file" || ev.ParentID != root.ID() || ev.Extra["path"] != "a.go" || ev.Detail != "ok" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestStreamTracer_TextFiltersScope(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	Begin(tr, ScopeFile, "hidden", 0).End("")
	Begin(tr, ScopePass, "scan", 0).End("")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("file scope leaked at phase level:\n%s", out)
	}
	if !strings.Contains(out, "-> scan") || !strings.Contains(out, "<- scan") {
		t.Errorf("missing pass span:\n%s", out)
	}
}

func TestRingTracer_Wraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(r, ScopeFile, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Name != "b" || snap[2].Name != "d" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestNew_ErrorLevelBuffers(t *testing.T) {
	var out bytes.Buffer
	tr, err := New(Config{Level: LevelError, Output: &out})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeFile, "parse", 0).End("")
	if out.Len() != 0 {
		t.Errorf("error level must not stream")
	}
	d, ok := tr.(Dumper)
	if !ok {
		t.Fatal("error level tracer should be dumpable")
	}
	var dump bytes.Buffer
	if err := d.Dump(&dump, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dump.String(), "parse") {
		t.Errorf("dump missing event:\n%s", dump.String())
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Error("expected Nop by default")
	}
	tr := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Error("tracer not propagated")
	}
	span := Begin(tr, ScopeDriver, "root", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() {
		t.Error("span not propagated")
	}
}
