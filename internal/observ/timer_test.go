package observ

import (
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(5 * time.Millisecond)
	return c.t
}

func TestTimer(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	timer := NewTimerWithClock(clock.now)

	discover := timer.Begin("discover")
	timer.End(discover, "3 files")
	check := timer.Begin("check")
	timer.End(check, "")
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].DurationMS != 5 || report.TotalMS != 10 {
		t.Errorf("unexpected durations %+v", report)
	}

	summary := timer.Summary()
	for _, want := range []string{"discover", "// 3 files", "total", "10.00 ms"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestTimer_Empty(t *testing.T) {
	if r := NewTimer().Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Errorf("empty timer report = %+v", r)
	}
}
