package directive

import (
	"sort"
	"sync"
)

// Entry is an annotation together with the file it was found in.
type Entry struct {
	File       string
	Annotation Annotation
}

// Registry collects annotations found across files. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries []Entry
	byFile  map[string][]int // file -> indices into entries
	byKind  map[UnitKind]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make([]Entry, 0),
		byFile:  make(map[string][]int),
		byKind:  make(map[UnitKind]int),
	}
}

// Add registers the annotations of one file.
func (r *Registry) Add(file string, annotations []Annotation) {
	if r == nil || len(annotations) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range annotations {
		idx := len(r.entries)
		r.entries = append(r.entries, Entry{File: file, Annotation: a})
		r.byFile[file] = append(r.byFile[file], idx)
		r.byKind[a.Kind]++
	}
}

// All returns every entry ordered by file and position.
func (r *Registry) All() []Entry {
	r.mu.Lock()
	out := append([]Entry(nil), r.entries...)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Annotation.Pos < out[j].Annotation.Pos
	})
	return out
}

// InFile returns the entries registered for file.
func (r *Registry) InFile(file string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.byFile[file]
	out := make([]Entry, 0, len(idx))
	for _, i := range idx {
		out = append(out, r.entries[i])
	}
	return out
}

// CountByKind returns how many annotations target units of kind.
func (r *Registry) CountByKind(kind UnitKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byKind[kind]
}

// Len returns the total number of annotations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
