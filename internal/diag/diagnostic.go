package diag

import (
	"fmt"
	"go/token"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
)

// Location is a resolved, 1-based source position.
type Location struct {
	Path   string
	Line   uint32
	Column uint32
	Offset uint32
}

// LocationOf converts a go/token position. Invalid positions yield the zero
// Location.
func LocationOf(pos token.Position) Location {
	if !pos.IsValid() {
		return Location{Path: normalizePath(pos.Filename)}
	}
	return Location{
		Path:   normalizePath(pos.Filename),
		Line:   mustUint32(pos.Line, "line"),
		Column: mustUint32(pos.Column, "column"),
		Offset: mustUint32(pos.Offset, "offset"),
	}
}

// IsValid reports whether the location points into a file.
func (l Location) IsValid() bool {
	return l.Line > 0
}

func (l Location) String() string {
	if !l.IsValid() {
		if l.Path == "" {
			return "-"
		}
		return l.Path
	}
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
}

// Relative rewrites Path relative to base when it lies inside base.
func (l Location) Relative(base string) Location {
	if base == "" || l.Path == "" || !filepath.IsAbs(filepath.FromSlash(l.Path)) {
		return l
	}
	rel, err := filepath.Rel(base, filepath.FromSlash(l.Path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return l
	}
	l.Path = normalizePath(rel)
	return l
}

type Note struct {
	Loc Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
	Subject  string
	Notes    []Note
}

func mustUint32(v int, what string) uint32 {
	out, err := safecast.Conv[uint32](v)
	if err != nil {
		panic(fmt.Errorf("%s overflow: %w", what, err))
	}
	return out
}

func normalizePath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(p))
}
