package checker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListFiles expands paths into a sorted, de-duplicated list of Go files.
//
// A directory contributes its own .go files; a "dir/..." pattern walks the
// whole tree below dir, skipping vendor, testdata and directories whose name
// starts with "." or "_". Explicit file arguments are taken as given.
// Exclude patterns are matched against the base name and the slash path.
func ListFiles(paths []string, tests bool, exclude []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"./..."}
	}
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if seen[path] || !wantFile(path, tests, exclude) {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, arg := range paths {
		root, recursive := splitPattern(arg)
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if !info.IsDir() {
			if recursive {
				return nil, fmt.Errorf("%s: not a directory", arg)
			}
			if filepath.Ext(root) != ".go" {
				return nil, fmt.Errorf("%s: not a Go file", arg)
			}
			seen[filepath.Clean(root)] = true
			files = append(files, filepath.Clean(root))
			continue
		}
		if !recursive {
			entries, err := os.ReadDir(root)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", arg, err)
			}
			for _, e := range entries {
				if !e.IsDir() {
					add(filepath.Join(root, e.Name()))
				}
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				if path != root && excluded(path, exclude) {
					return filepath.SkipDir
				}
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func splitPattern(arg string) (string, bool) {
	switch {
	case arg == "...":
		return ".", true
	case strings.HasSuffix(arg, "/..."):
		root := strings.TrimSuffix(arg, "/...")
		if root == "" {
			root = "/"
		}
		return root, true
	}
	return arg, false
}

func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func wantFile(path string, tests bool, exclude []string) bool {
	name := filepath.Base(path)
	if filepath.Ext(name) != ".go" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return false
	}
	if !tests && strings.HasSuffix(name, "_test.go") {
		return false
	}
	return !excluded(path, exclude)
}

func excluded(path string, exclude []string) bool {
	slash := filepath.ToSlash(filepath.Clean(path))
	name := filepath.Base(path)
	for _, pattern := range exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, slash); ok {
			return true
		}
	}
	return false
}
