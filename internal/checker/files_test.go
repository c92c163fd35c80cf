package checker

import (
	"path/filepath"
	"testing"
)

func rel(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestListFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go":               "package a\n",
		"a_test.go":          "package a\n",
		"gen_types.go":       "package a\n",
		"notes.txt":          "",
		"sub/b.go":           "package sub\n",
		"sub/deep/c.go":      "package deep\n",
		"vendor/v/v.go":      "package v\n",
		"testdata/t.go":      "package t\n",
		".hidden/h.go":       "package h\n",
		"_scratch/s.go":      "package s\n",
		"skipme/internal.go": "package skipme\n",
	})

	cases := []struct {
		name    string
		paths   []string
		tests   bool
		exclude []string
		want    []string
	}{
		{"dir only", []string{root}, false, nil, []string{"a.go", "gen_types.go"}},
		{"recursive", []string{root + "/..."}, false, nil, []string{"a.go", "gen_types.go", "skipme/internal.go", "sub/b.go", "sub/deep/c.go"}},
		{"tests", []string{root}, true, nil, []string{"a.go", "a_test.go", "gen_types.go"}},
		{"exclude", []string{root + "/..."}, false, []string{"gen_*.go", "skipme"}, []string{"a.go", "sub/b.go", "sub/deep/c.go"}},
		{"explicit file", []string{filepath.Join(root, "sub", "b.go"), root}, false, nil, []string{"a.go", "gen_types.go", "sub/b.go"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			files, err := ListFiles(tc.paths, tc.tests, tc.exclude)
			if err != nil {
				t.Fatal(err)
			}
			got := rel(t, root, files)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestListFiles_Errors(t *testing.T) {
	root := writeTree(t, map[string]string{"notes.txt": ""})
	for _, p := range []string{filepath.Join(root, "missing"), filepath.Join(root, "notes.txt"), filepath.Join(root, "notes.txt") + "/..."} {
		if _, err := ListFiles([]string{p}, false, nil); err == nil {
			t.Errorf("ListFiles(%q): expected error", p)
		}
	}
}
