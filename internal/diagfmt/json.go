package diagfmt

import (
	"encoding/json"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"bestbefore/internal/diag"
)

// LocationJSON is a source position in machine output.
type LocationJSON struct {
	File   string `json:"file" msgpack:"file"`
	Line   uint32 `json:"line,omitempty" msgpack:"line,omitempty"`
	Column uint32 `json:"column,omitempty" msgpack:"column,omitempty"`
	Offset uint32 `json:"offset,omitempty" msgpack:"offset,omitempty"`
}

// NoteJSON is an auxiliary message attached to a diagnostic.
type NoteJSON struct {
	Message  string        `json:"message" msgpack:"message"`
	Location *LocationJSON `json:"location,omitempty" msgpack:"location,omitempty"`
}

// DiagnosticJSON is one diagnostic in machine output.
type DiagnosticJSON struct {
	Severity string       `json:"severity" msgpack:"severity"`
	Code     string       `json:"code" msgpack:"code"`
	Title    string       `json:"title" msgpack:"title"`
	Message  string       `json:"message" msgpack:"message"`
	Subject  string       `json:"subject,omitempty" msgpack:"subject,omitempty"`
	Location LocationJSON `json:"location" msgpack:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty" msgpack:"notes,omitempty"`
}

// SummaryJSON counts the outcome of a run.
type SummaryJSON struct {
	Files       int  `json:"files" msgpack:"files"`
	Annotations int  `json:"annotations" msgpack:"annotations"`
	Errors      int  `json:"errors" msgpack:"errors"`
	Warnings    int  `json:"warnings" msgpack:"warnings"`
	Dropped     int  `json:"dropped,omitempty" msgpack:"dropped,omitempty"`
	Failed      bool `json:"failed" msgpack:"failed"`
}

// Report is the root object of json and msgpack output.
type Report struct {
	RunID       string           `json:"run_id,omitempty" msgpack:"run_id,omitempty"`
	Tool        string           `json:"tool,omitempty" msgpack:"tool,omitempty"`
	Version     string           `json:"version,omitempty" msgpack:"version,omitempty"`
	Now         string           `json:"now" msgpack:"now"`
	Summary     SummaryJSON      `json:"summary" msgpack:"summary"`
	Diagnostics []DiagnosticJSON `json:"diagnostics" msgpack:"diagnostics"`
}

func makeLocation(loc diag.Location, mode PathMode, base string) LocationJSON {
	return LocationJSON{
		File:   displayPath(loc.Path, mode, base),
		Line:   loc.Line,
		Column: loc.Column,
		Offset: loc.Offset,
	}
}

// BuildReport converts bag into a Report without serializing it.
func BuildReport(bag *diag.Bag, meta RunMeta, opts JSONOpts) Report {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, n)
	for _, d := range items[:n] {
		dj := DiagnosticJSON{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Subject:  d.Subject,
			Location: makeLocation(d.Primary, opts.PathMode, opts.BaseDir),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: note.Msg}
				if note.Loc.Path != "" {
					loc := makeLocation(note.Loc, opts.PathMode, opts.BaseDir)
					dj.Notes[j].Location = &loc
				}
			}
		}
		diagnostics = append(diagnostics, dj)
	}

	return Report{
		RunID:   meta.RunID,
		Tool:    meta.ToolName,
		Version: meta.ToolVersion,
		Now:     meta.Now,
		Summary: SummaryJSON{
			Files:       meta.Files,
			Annotations: meta.Annotations,
			Errors:      bag.Count(diag.SevError),
			Warnings:    bag.Count(diag.SevWarning),
			Dropped:     bag.Dropped() + len(items) - n,
			Failed:      bag.HasErrors(),
		},
		Diagnostics: diagnostics,
	}
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, bag *diag.Bag, meta RunMeta, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(bag, meta, opts))
}

// Msgpack writes the report as a single MessagePack document.
func Msgpack(w io.Writer, bag *diag.Bag, meta RunMeta, opts JSONOpts) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(BuildReport(bag, meta, opts))
}
