package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{name: "basename pattern matches anywhere", patterns: []string{"*.tmp"}, path: "deep/nested/file.tmp", want: true},
		{name: "basename pattern misses other names", patterns: []string{"*.tmp"}, path: "file.txt", want: false},
		{name: "path pattern matches relative path", patterns: []string{"build/*"}, path: "build/out.o", want: true},
		{name: "path pattern does not match elsewhere", patterns: []string{"build/*"}, path: "src/build.go", want: false},
		{name: "doublestar spans directories", patterns: []string{".git/**"}, path: ".git/objects/ab/cdef", want: true},
		{name: "blank lines are skipped", patterns: []string{"", "  ", "*.log"}, path: "app.log", want: true},
		{name: "comments are skipped", patterns: []string{"# a comment", "*.log"}, path: "app.log", want: true},
		{name: "comment text is not a pattern", patterns: []string{"# *.txt"}, path: "file.txt", want: false},
		{name: "default ignore file is always excluded", patterns: nil, path: ".arkignore", want: true},
		{name: "no patterns match nothing else", patterns: nil, path: "anything.txt", want: false},
		{name: "windows separators are normalized", patterns: []string{"build/*"}, path: filepath.Join("build", "out.o"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("reads patterns line by line", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".arkignore")
		if err := os.WriteFile(path, []byte("*.tmp\n# comment\nbuild/**\n"), 0644); err != nil {
			t.Fatalf("writing ignore file: %v", err)
		}

		patterns, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if len(patterns) != 3 {
			t.Fatalf("ParseIgnoreFile() len = %d, want 3", len(patterns))
		}
		if patterns[0] != "*.tmp" || patterns[2] != "build/**" {
			t.Errorf("patterns = %v", patterns)
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		patterns, err := ParseIgnoreFile(filepath.Join(t.TempDir(), "nope"))
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if patterns != nil {
			t.Errorf("patterns = %v, want nil", patterns)
		}
	})
}
