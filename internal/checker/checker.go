// Package checker runs bestbefore over a set of Go files.
//
// Files are read, parsed and evaluated in parallel. Each worker owns the
// diag.Bag of its file; bags are merged in file order once all workers are
// done, so the output does not depend on scheduling.
package checker

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"bestbefore/internal/calendar"
	"bestbefore/internal/diag"
	"bestbefore/internal/directive"
	"bestbefore/internal/policy"
	"bestbefore/internal/trace"
)

// Options configures one run.
type Options struct {
	Paths   []string
	Exclude []string
	Tests   bool
	// Now is the effective date, resolved once by the caller.
	Now  calendar.CalendarDate
	Jobs int
	// WarningsAsErrors turns past-review warnings into errors.
	WarningsAsErrors bool
	// NoWarnings drops warnings from the result.
	NoWarnings     bool
	MaxDiagnostics int
	Progress       ProgressSink
}

// FileResult is the outcome for a single file.
type FileResult struct {
	Path        string
	Bag         *diag.Bag
	Annotations []directive.Annotation
	Source      []byte
	Elapsed     time.Duration
}

// Result is the outcome of a run.
type Result struct {
	Now      calendar.CalendarDate
	Files    []FileResult
	Bag      *diag.Bag
	Registry *directive.Registry

	// failed is decided before MaxDiagnostics truncates Bag.
	failed bool
}

// Failed reports whether the run must exit with a non-zero status. Errors
// dropped by the diagnostic limit still count.
func (r *Result) Failed() bool {
	return r != nil && (r.failed || r.Bag.HasErrors())
}

// Source returns the contents of a checked file, nil if unknown.
func (r *Result) Source(path string) []byte {
	for i := range r.Files {
		if r.Files[i].Path == path {
			return r.Files[i].Source
		}
	}
	return nil
}

// Run lists the files described by opts and checks them.
func Run(ctx context.Context, opts Options) (*Result, error) {
	tr := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)

	span := trace.Begin(tr, trace.ScopePass, "discover", parent)
	files, err := ListFiles(opts.Paths, opts.Tests, opts.Exclude)
	span.WithExtra("files", fmt.Sprint(len(files))).End("")
	if err != nil {
		return nil, err
	}
	return CheckFiles(ctx, files, opts)
}

// CheckFiles checks the given files in parallel, bounded by opts.Jobs.
func CheckFiles(ctx context.Context, files []string, opts Options) (*Result, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, "scan", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	for _, f := range files {
		emit(opts.Progress, Event{File: f, Stage: StageRead, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(files))
	registry := directive.NewRegistry()

	if len(files) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(files)))
		for i, path := range files {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				// index i is owned by this goroutine
				results[i] = checkFile(gctx, path, opts)
				registry.Add(path, results[i].Annotations)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			span.End("canceled")
			return nil, err
		}
	}
	span.WithExtra("annotations", fmt.Sprint(registry.Len())).End("")

	rspan := trace.Begin(tr, trace.ScopePass, "report", trace.CurrentSpan(ctx))
	defer rspan.End("")

	merged := diag.NewBag(0)
	for i := range results {
		merged.Merge(results[i].Bag)
	}
	applySeverityPolicy(merged, opts)
	merged.Sort()
	merged.Dedup()

	emit(opts.Progress, Event{Stage: StageEvaluate, Status: StatusDone})
	return &Result{
		Now:      opts.Now,
		Files:    results,
		Bag:      limit(merged, opts.MaxDiagnostics),
		Registry: registry,
		failed:   merged.HasErrors(),
	}, nil
}

// limit copies at most max diagnostics of sorted into a new bag. Errors are
// kept before warnings so truncation never hides what fails the run.
func limit(sorted *diag.Bag, max int) *diag.Bag {
	bag := diag.NewBag(max)
	items := sorted.Items()
	for _, d := range items {
		if d.Severity >= diag.SevError {
			bag.Add(d)
		}
	}
	for _, d := range items {
		if d.Severity < diag.SevError {
			bag.Add(d)
		}
	}
	bag.Sort()
	return bag
}

func checkFile(ctx context.Context, path string, opts Options) FileResult {
	start := time.Now()
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeFile, "file", trace.CurrentSpan(ctx)).WithExtra("path", path)

	res := FileResult{Path: path, Bag: diag.NewBag(0)}
	finish := func(status Status, stage Stage, err error) FileResult {
		res.Elapsed = time.Since(start)
		emit(opts.Progress, Event{File: path, Stage: stage, Status: status, Err: err, Elapsed: res.Elapsed})
		span.End(string(status))
		return res
	}

	emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusWorking})
	src, err := os.ReadFile(path)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, diag.Location{Path: path}, "failed to load file: "+err.Error()))
		return finish(StatusError, StageRead, err)
	}
	res.Source = src

	emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusWorking})
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		res.Bag.Add(parseDiagnostic(path, err))
		return finish(StatusError, StageParse, err)
	}

	emit(opts.Progress, Event{File: path, Stage: StageEvaluate, Status: StatusWorking})
	annotations, problems := directive.Scan(fset, file, src)
	res.Annotations = annotations
	rep := diag.BagReporter{Bag: res.Bag}

	for _, p := range problems {
		diag.ReportError(rep, diag.CfgUnattached, diag.LocationOf(p.Position), p.Message).Emit()
	}
	for _, a := range annotations {
		f, ok := directive.Check(a, opts.Now)
		if !ok {
			trace.Point(tr, trace.ScopeFile, "ok", a.Subject, span.ID())
			continue
		}
		trace.Point(tr, trace.ScopeFile, f.Code.ID(), a.Subject, span.ID())
		b := diag.NewReportBuilder(rep, f.Severity, f.Code, diag.LocationOf(a.Position), f.Message).
			WithSubject(a.Subject)
		if note := thresholdNote(f); note != "" {
			b.WithNote(diag.LocationOf(fset.Position(a.UnitPos)), note)
		}
		b.Emit()
	}

	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	return finish(status, StageEvaluate, nil)
}

// thresholdNote explains a custom message with the date that triggered it.
func thresholdNote(f directive.Finding) string {
	if _, custom := f.Policy.Message(); !custom || f.Err != nil {
		return ""
	}
	switch f.Decision.Action {
	case policy.Warn:
		return fmt.Sprintf("review date %s has passed (now %s)", f.Decision.Threshold, f.Decision.Now)
	case policy.Fail:
		return fmt.Sprintf("expired after %s (now %s)", f.Decision.Threshold, f.Decision.Now)
	}
	return ""
}

func parseDiagnostic(path string, err error) diag.Diagnostic {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		msg := "failed to parse Go source: " + first.Msg
		if len(list) > 1 {
			msg += fmt.Sprintf(" (and %d more errors)", len(list)-1)
		}
		return diag.NewError(diag.IOParseError, diag.LocationOf(first.Pos), msg)
	}
	return diag.NewError(diag.IOParseError, diag.Location{Path: path}, "failed to parse Go source: "+err.Error())
}

func applySeverityPolicy(bag *diag.Bag, opts Options) {
	switch {
	case opts.NoWarnings:
		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
	case opts.WarningsAsErrors:
		bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity != diag.SevWarning {
				return d
			}
			d.Severity = diag.SevError
			return d.WithNote(diag.Location{}, "warning treated as error (warnings_as_errors)")
		})
	}
}
