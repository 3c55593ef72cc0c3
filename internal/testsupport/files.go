package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile creates path (and its parents) with a single placeholder byte.
func WriteFile(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte{0}, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ImageTree maps class directory names to the file names inside them. A
// class with no files is still created as an empty directory.
type ImageTree map[string][]string

// WriteImageTree materializes tree under dir, creating classes in the order
// given by order (remaining classes follow in map order). Creation order
// lets tests show that label indices do not depend on it.
func WriteImageTree(t testing.TB, dir string, tree ImageTree, order ...string) {
	t.Helper()
	seen := make(map[string]struct{}, len(tree))
	write := func(class string) {
		if _, ok := seen[class]; ok {
			return
		}
		seen[class] = struct{}{}
		classDir := filepath.Join(dir, class)
		if err := os.MkdirAll(classDir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", classDir, err)
		}
		for _, name := range tree[class] {
			WriteFile(t, filepath.Join(classDir, name))
		}
	}
	for _, class := range order {
		write(class)
	}
	for class := range tree {
		write(class)
	}
}

// ReadLines returns the non-empty lines of path.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
