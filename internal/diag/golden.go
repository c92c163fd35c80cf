package diag

import (
	"fmt"
	"sort"
	"strings"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShortDiagnostics renders diagnostics one per line as
// "<severity> <CODE> <path>:<line>:<col> <message>", sorted deterministically.
// Paths are made relative to base when possible. Returns "" when empty.
func FormatShortDiagnostics(diags []Diagnostic, base string, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		rendered = appendDiagnostic(rendered, &diags[i], base, includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []goldenDiagnostic, d *Diagnostic, base string, includeNotes bool) []goldenDiagnostic {
	loc := d.Primary.Relative(base)
	out = append(out, goldenDiagnostic{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Path:     loc.Path,
		Line:     loc.Line,
		Column:   loc.Column,
		Message:  SanitizeMessage(d.Message),
	})

	if includeNotes {
		for _, note := range d.Notes {
			nloc := note.Loc.Relative(base)
			out = append(out, goldenDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Path:     nloc.Path,
				Line:     nloc.Line,
				Column:   nloc.Column,
				Message:  SanitizeMessage(note.Msg),
			})
		}
	}

	return out
}

// SanitizeMessage folds a message onto a single line.
func SanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
