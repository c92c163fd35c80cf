package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"bestbefore/internal/calendar"
	"bestbefore/internal/checker"
	"bestbefore/internal/diag"
	"bestbefore/internal/directive"
)

// Annotation states shown by list.
const (
	statusOK      = "ok"
	statusReview  = "review"
	statusExpired = "expired"
	statusInvalid = "invalid"
)

type listOptions struct {
	now     string
	tests   bool
	exclude []string
	format  string
}

type listEntry struct {
	Location string `json:"location"`
	Subject  string `json:"subject"`
	Kind     string `json:"kind"`
	Review   string `json:"review,omitempty"`
	Expires  string `json:"expires,omitempty"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List annotations and their state at the current date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.now, "now", "", "effective date as MM.YYYY (overrides $BESTBEFORE_DATE)")
	f.BoolVar(&opts.tests, "tests", false, "include _test.go files")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "glob of files or directories to skip (repeatable)")
	f.StringVar(&opts.format, "format", "table", "output format (table|json)")
	return cmd
}

func (a *app) runList(cmd *cobra.Command, args []string, opts listOptions) error {
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q (must be table or json)", opts.format)
	}
	now, err := a.resolveNow(opts.now)
	if err != nil {
		return a.reportConfigError(err)
	}

	tests := opts.tests
	if !cmd.Flags().Changed("tests") && a.cfg.Check.Tests != nil {
		tests = *a.cfg.Check.Tests
	}
	exclude := append(append([]string(nil), a.cfg.Check.Exclude...), opts.exclude...)
	files, err := checker.ListFiles(args, tests, exclude)
	if err != nil {
		return err
	}
	res, err := checker.CheckFiles(cmd.Context(), files, checker.Options{Now: now})
	if err != nil {
		return err
	}

	base := a.baseDir()
	entries := make([]listEntry, 0, res.Registry.Len())
	for _, e := range res.Registry.All() {
		entries = append(entries, describe(e, now, base))
	}

	if opts.format == "json" {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	colored, err := a.useColor(cmd, a.stdout)
	if err != nil {
		return err
	}
	renderListTable(a.stdout, entries, colored)
	if len(entries) > 0 {
		fmt.Fprintln(a.stdout, kindSummary(res.Registry))
	}
	return nil
}

// kindSummary reads like "4 annotations: 3 function, 1 type".
func kindSummary(r *directive.Registry) string {
	var parts []string
	for k := directive.UnitPackage; k <= directive.UnitStatement; k++ {
		if n := r.CountByKind(k); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	noun := "annotations"
	if r.Len() == 1 {
		noun = "annotation"
	}
	return fmt.Sprintf("%d %s: %s", r.Len(), noun, strings.Join(parts, ", "))
}

func describe(e directive.Entry, now calendar.CalendarDate, base string) listEntry {
	loc := diag.LocationOf(e.Annotation.Position).Relative(base)
	if loc.Path == "" {
		loc.Path = filepath.ToSlash(e.File)
	}
	out := listEntry{
		Location: loc.String(),
		Subject:  e.Annotation.Subject,
		Kind:     e.Annotation.Kind.String(),
	}
	f, report := directive.Check(e.Annotation, now)
	switch {
	case !report:
		out.Status = statusOK
	case f.Err != nil:
		out.Status = statusInvalid
		out.Message = f.Message
		return out
	case f.Fatal():
		out.Status = statusExpired
		out.Message = f.Message
	default:
		out.Status = statusReview
		out.Message = f.Message
	}
	if !f.Policy.ReviewImplied() {
		out.Review = f.Policy.Review().String()
	}
	if expiry, ok := f.Policy.Expiry(); ok {
		out.Expires = expiry.String()
	}
	return out
}

func renderListTable(w io.Writer, entries []listEntry, colored bool) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no annotations found")
		return
	}
	statusStyle := map[string]lipgloss.Style{
		statusOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		statusReview:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		statusExpired: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		statusInvalid: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Location, e.Subject, orDash(e.Review), orDash(e.Expires), e.Status})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("LOCATION", "SUBJECT", "REVIEW", "EXPIRES", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(colored)
			}
			if colored && col == 4 && row >= 1 && row <= len(rows) {
				return statusStyle[rows[row-1][4]].Padding(0, 1)
			}
			return style
		})
	fmt.Fprintln(w, t.Render())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
