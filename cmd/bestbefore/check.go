package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bestbefore/internal/checker"
	"bestbefore/internal/config"
	"bestbefore/internal/diagfmt"
	"bestbefore/internal/observ"
	"bestbefore/internal/trace"
	"bestbefore/internal/version"
)

type checkOptions struct {
	format           string
	now              string
	warningsAsErrors bool
	noWarnings       bool
	jobs             int
	tests            bool
	exclude          []string
	ui               string
	output           string
	withNotes        bool
	fullPath         bool
	timings          bool
	maxDiagnostics   int
}

func newCheckCmd(a *app) *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check annotated code against the current date",
		Long: `Check scans Go files for //bestbefore: annotations and reports code past
its review date (warning) or past its expiry date (error).

Paths are files, directories, or dir/... patterns; the default is ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "pretty", "output format ("+strings.Join(config.Formats, "|")+")")
	f.StringVar(&opts.now, "now", "", "effective date as MM.YYYY (overrides $BESTBEFORE_DATE)")
	f.BoolVar(&opts.warningsAsErrors, "warnings-as-errors", false, "treat code past its review date as an error")
	f.BoolVar(&opts.noWarnings, "no-warnings", false, "do not report code past its review date")
	f.IntVar(&opts.jobs, "jobs", 0, "max parallel workers (0=auto)")
	f.BoolVar(&opts.tests, "tests", false, "include _test.go files")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "glob of files or directories to skip (repeatable)")
	f.StringVar(&opts.ui, "ui", "auto", "progress view (auto|on|off)")
	f.StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	f.BoolVar(&opts.withNotes, "with-notes", true, "include diagnostic notes in output")
	f.BoolVar(&opts.fullPath, "fullpath", false, "emit absolute file paths in output")
	f.BoolVar(&opts.timings, "timings", false, "print phase timings to stderr")
	return cmd
}

// merge fills options the user did not set from the config file.
func (o *checkOptions) merge(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	c := cfg.Check
	if !f.Changed("format") && c.Format != "" {
		o.format = c.Format
	}
	if !f.Changed("jobs") && c.Jobs != nil {
		o.jobs = *c.Jobs
	}
	if !f.Changed("tests") && c.Tests != nil {
		o.tests = *c.Tests
	}
	if !f.Changed("warnings-as-errors") && !f.Changed("no-warnings") {
		if c.WarningsAsErrors != nil {
			o.warningsAsErrors = *c.WarningsAsErrors
		}
		if c.NoWarnings != nil {
			o.noWarnings = *c.NoWarnings
		}
	}
	o.exclude = append(slices.Clone(c.Exclude), o.exclude...)

	limit, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !cmd.Root().PersistentFlags().Changed("max-diagnostics") && c.MaxDiagnostics != nil {
		limit = *c.MaxDiagnostics
	}
	o.maxDiagnostics = limit

	if o.noWarnings && o.warningsAsErrors {
		return fmt.Errorf("--no-warnings and --warnings-as-errors cannot be used together")
	}
	if !slices.Contains(config.Formats, o.format) {
		return fmt.Errorf("unknown format %q (expected %s)", o.format, strings.Join(config.Formats, "|"))
	}
	if o.jobs < 0 {
		return fmt.Errorf("--jobs must be >= 0")
	}
	return nil
}

func (a *app) runCheck(cmd *cobra.Command, args []string, opts checkOptions) error {
	if err := opts.merge(cmd, a.cfg); err != nil {
		return err
	}
	mode, err := readUIMode(opts.ui)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "check", 0)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	timer := observ.NewTimer()
	if opts.timings {
		defer func() { fmt.Fprint(a.stderr, timer.Summary()) }()
	}

	// A bad override is not tied to any file: stop before checking anything.
	now, err := a.resolveNow(opts.now)
	if err != nil {
		return a.reportConfigError(err)
	}
	span.WithExtra("now", now.String())

	phase := timer.Begin("discover")
	files, err := checker.ListFiles(args, opts.tests, opts.exclude)
	if err != nil {
		return err
	}
	timer.End(phase, fmt.Sprintf("%d files", len(files)))

	copts := checker.Options{
		Now:              now,
		Jobs:             opts.jobs,
		WarningsAsErrors: opts.warningsAsErrors,
		NoWarnings:       opts.noWarnings,
		MaxDiagnostics:   opts.maxDiagnostics,
	}

	out := a.stdout
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer file.Close()
		out = file
	}

	var res *checker.Result
	phase = timer.Begin("check")
	if len(files) > 0 && shouldUseTUI(mode, a.stdout, opts.format) {
		res, err = runCheckWithUI(ctx, a.stdout, fmt.Sprintf("checking at %s", now), files, copts)
	} else {
		res, err = checker.CheckFiles(ctx, files, copts)
	}
	if err != nil {
		return err
	}
	timer.End(phase, fmt.Sprintf("%d annotations", res.Registry.Len()))

	phase = timer.Begin("report")
	if err := a.writeReport(cmd, out, res, opts); err != nil {
		return err
	}
	timer.End(phase, opts.format)
	if res.Failed() {
		a.dumpTrace()
		return &exitError{code: 1}
	}
	return nil
}

func (a *app) writeReport(cmd *cobra.Command, out io.Writer, res *checker.Result, opts checkOptions) error {
	base := a.baseDir()
	pathMode := diagfmt.PathModeAuto
	if opts.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	meta := diagfmt.RunMeta{
		RunID:       uuid.NewString(),
		ToolName:    "bestbefore",
		ToolVersion: version.Current().Version,
		Now:         res.Now.String(),
		Files:       len(res.Files),
		Annotations: res.Registry.Len(),
		Args:        os.Args,
	}

	switch opts.format {
	case "pretty":
		color, err := a.useColor(cmd, out)
		if err != nil {
			return err
		}
		diagfmt.Pretty(out, res.Bag, diagfmt.PrettyOpts{
			Color:     color,
			PathMode:  pathMode,
			BaseDir:   base,
			ShowNotes: opts.withNotes,
			Source:    res.Source,
		})
		if res.Bag.Len() > 0 {
			fmt.Fprintln(out)
		}
		diagfmt.Summary(out, res.Bag, len(res.Files), color)
		return nil
	case "short":
		if opts.fullPath {
			base = ""
		}
		return diagfmt.Short(out, res.Bag, base, opts.withNotes)
	case "json":
		return diagfmt.JSON(out, res.Bag, meta, diagfmt.JSONOpts{PathMode: pathMode, BaseDir: base, IncludeNotes: opts.withNotes})
	case "msgpack":
		return diagfmt.Msgpack(out, res.Bag, meta, diagfmt.JSONOpts{PathMode: pathMode, BaseDir: base, IncludeNotes: opts.withNotes})
	case "sarif":
		return diagfmt.Sarif(out, res.Bag, meta, base)
	}
	return fmt.Errorf("unknown format %q", opts.format)
}

