// Package diagfmt renders diagnostic bags for people and machines.
package diagfmt

import (
	"path/filepath"

	"bestbefore/internal/diag"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths relative to BaseDir when they live inside it.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// SourceFunc returns the contents of a file, or nil if it is unavailable.
type SourceFunc func(path string) []byte

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color     bool
	Context   int // extra source lines shown after the annotation
	PathMode  PathMode
	BaseDir   string
	ShowNotes bool
	Source    SourceFunc
}

// JSONOpts configures machine-readable output.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // truncates the output, not the bag
	IncludeNotes bool
}

// RunMeta describes the run a report belongs to.
type RunMeta struct {
	RunID       string
	ToolName    string
	ToolVersion string
	Now         string
	Files       int
	Annotations int
	Args        []string
}

func displayPath(path string, mode PathMode, base string) string {
	if path == "" {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(filepath.FromSlash(path)); err == nil {
			return filepath.ToSlash(abs)
		}
		return path
	case PathModeBasename:
		return filepath.Base(filepath.FromSlash(path))
	case PathModeRelative:
		if abs, err := filepath.Abs(filepath.FromSlash(path)); err == nil {
			return diag.Location{Path: filepath.ToSlash(abs)}.Relative(base).Path
		}
		return path
	}
	return diag.Location{Path: path}.Relative(base).Path
}
