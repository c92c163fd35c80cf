package diagfmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bestbefore/internal/diag"
)

const tabWidth = 4

type palette struct {
	err, warn, info, code, path, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.FgWhite, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty writes each diagnostic as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	  3 | //bestbefore:03.2024
//	    | ^^^^^^^^^^^^^^^^^^^^
//
// followed by its notes. The bag is expected to be sorted.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	cache := make(map[string][][]byte)
	lines := func(path string) [][]byte {
		if opts.Source == nil || path == "" {
			return nil
		}
		if l, ok := cache[path]; ok {
			return l
		}
		src := opts.Source(path)
		var l [][]byte
		if src != nil {
			l = bytes.Split(src, []byte("\n"))
		}
		cache[path] = l
		return l
	}

	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		loc := d.Primary
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			pal.path.Sprint(locationString(loc, opts)),
			pal.severity(d.Severity).Sprint(d.Severity.String()),
			pal.code.Sprint(d.Code.ID()),
			d.Message)
		writeSnippet(w, pal, loc, lines(loc.Path), opts.Context)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if n.Loc.IsValid() {
				fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), locationString(n.Loc, opts), n.Msg)
			} else {
				fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), n.Msg)
			}
		}
	}
}

func locationString(loc diag.Location, opts PrettyOpts) string {
	loc.Path = displayPath(loc.Path, opts.PathMode, opts.BaseDir)
	return loc.String()
}

func writeSnippet(w io.Writer, pal palette, loc diag.Location, lines [][]byte, context int) {
	if !loc.IsValid() || int(loc.Line) > len(lines) {
		return
	}
	first := int(loc.Line)
	last := min(first+max(context, 0), len(lines))
	gutter := len(fmt.Sprint(last))

	for n := first; n <= last; n++ {
		text := expandTabs(strings.TrimRight(string(lines[n-1]), "\r"))
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutter+2, n), text)
		if n != first {
			continue
		}
		raw := strings.TrimRight(string(lines[n-1]), "\r")
		col := max(min(int(loc.Column), len(raw)+1), 1)
		pad := runewidth.StringWidth(expandTabs(raw[:col-1]))
		width := max(runewidth.StringWidth(expandTabs(raw))-pad, 1)
		fmt.Fprintf(w, "%s %s%s\n",
			pal.gutter.Sprintf("%*s |", gutter+2, ""),
			strings.Repeat(" ", pad),
			pal.caret.Sprint(strings.Repeat("^", width)))
	}
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

// Summary writes the closing "N errors, M warnings" line. It writes nothing
// for an empty bag.
func Summary(w io.Writer, bag *diag.Bag, files int, colored bool) {
	pal := newPalette(colored)
	errs, warns := bag.Count(diag.SevError), bag.Count(diag.SevWarning)
	if errs == 0 && warns == 0 {
		return
	}
	parts := make([]string, 0, 3)
	if errs > 0 {
		parts = append(parts, pal.err.Sprint(plural(errs, "error")))
	}
	if warns > 0 {
		parts = append(parts, pal.warn.Sprint(plural(warns, "warning")))
	}
	if dropped := bag.Dropped(); dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d not shown", dropped))
	}
	fmt.Fprintf(w, "%s in %s\n", strings.Join(parts, ", "), plural(files, "file"))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
