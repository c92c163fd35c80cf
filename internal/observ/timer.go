// Package observ records wall-clock timings of the phases of one run.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase records the duration and metadata of one phase.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the phases of a run. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	now    func() time.Time
	phases []Phase
}

// NewTimer creates an empty Timer using the wall clock.
func NewTimer() *Timer { return NewTimerWithClock(time.Now) }

// NewTimerWithClock creates an empty Timer reading time from now.
func NewTimerWithClock(now func() time.Time) *Timer {
	return &Timer{now: now, phases: make([]Phase, 0, 4)}
}

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End finishes the phase idx.
func (t *Timer) End(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
}

// PhaseReport is the serialized form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates all phases.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report returns the phases in start order and their total duration.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		report.Phases[i] = PhaseReport{Name: p.Name, DurationMS: toMillis(p.Dur), Note: p.Note}
	}
	report.TotalMS = toMillis(total)
	return report
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-10s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-10s %8.2f ms\n", "total", report.TotalMS)
	return b.String()
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
