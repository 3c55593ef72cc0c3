package manifest_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"udalist/internal/logging"
	"udalist/internal/manifest"
	"udalist/internal/testsupport"
)

func build(t *testing.T, dir string, opts manifest.Options) (manifest.Result, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "list.txt")
	result, err := manifest.NewBuilder(opts, nil).Build(context.Background(), dir, out)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return result, out
}

func TestBuildAssignsLabelsBySortedClassName(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImageTree(t, dir, testsupport.ImageTree{
		"banana": {"b1.jpg"},
		"apple":  {"a1.png"},
	}, "banana", "apple")

	result, out := build(t, dir, manifest.Options{SortFiles: true})

	if got := strings.Join(result.Discovered, ","); got != "apple,banana" {
		t.Fatalf("unexpected vocabulary %s", got)
	}
	lines := testsupport.ReadLines(t, out)
	want := []string{
		filepath.Join(dir, "apple", "a1.png") + " 0",
		filepath.Join(dir, "banana", "b1.jpg") + " 1",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected manifest:\n%s", strings.Join(lines, "\n"))
	}
}

func TestBuildFiltersExtensionsCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImageTree(t, dir, testsupport.ImageTree{
		"apple": {"a.PNG", "b.Jpg", "c.jpeg", "d.BMP", "notes.txt", "e.gif", "f.png.bak", "noext"},
	})

	result, out := build(t, dir, manifest.Options{SortFiles: true})

	lines := testsupport.ReadLines(t, out)
	if len(lines) != 4 || result.Lines != 4 {
		t.Fatalf("expected 4 accepted images, got %d lines (result %d): %v", len(lines), result.Lines, lines)
	}
	for _, line := range lines {
		for _, rejected := range []string{"notes.txt", "e.gif", "f.png.bak", "noext"} {
			if strings.Contains(line, rejected) {
				t.Fatalf("rejected file %s listed: %q", rejected, line)
			}
		}
	}
}

func TestBuildLineCountMatchesImageCount(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImageTree(t, dir, testsupport.ImageTree{
		"a": {"1.jpg", "2.jpg", "3.png"},
		"b": {"1.bmp"},
		"c": {},
		"d": {"x.txt", "y.jpeg"},
	})

	result, out := build(t, dir, manifest.Options{})

	if got := len(testsupport.ReadLines(t, out)); got != 5 || result.Lines != 5 {
		t.Fatalf("expected 5 lines, file has %d, result reports %d", got, result.Lines)
	}
	if len(result.PerClass) != 4 {
		t.Fatalf("empty class must still occupy an index: %+v", result.PerClass)
	}
	if result.PerClass[2].Name != "c" || result.PerClass[2].Label != 2 || result.PerClass[2].Images != 0 {
		t.Fatalf("unexpected entry for empty class: %+v", result.PerClass[2])
	}
	if result.PerClass[3].Label != 3 || result.PerClass[3].Images != 1 {
		t.Fatalf("unexpected entry for class d: %+v", result.PerClass[3])
	}
}

func TestBuildSortsFilesWithinClass(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImageTree(t, dir, testsupport.ImageTree{
		"apple": {"c.jpg", "a.jpg", "B.jpg"},
	})

	_, out := build(t, dir, manifest.Options{SortFiles: true})

	lines := testsupport.ReadLines(t, out)
	var names []string
	for _, line := range lines {
		names = append(names, filepath.Base(strings.Fields(line)[0]))
	}
	if got := strings.Join(names, ","); got != "B.jpg,a.jpg,c.jpg" {
		t.Fatalf("expected byte-order sorted files, got %s", got)
	}
}

func TestBuildIgnoresNestedDirectoriesInsideClass(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImageTree(t, dir, testsupport.ImageTree{"apple": {"a.jpg"}})
	if err := os.MkdirAll(filepath.Join(dir, "apple", "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteFile(t, filepath.Join(dir, "stray.jpg"))

	result, _ := build(t, dir, manifest.Options{SortFiles: true})
	if result.Lines != 1 {
		t.Fatalf("expected only a.jpg, got %d lines", result.Lines)
	}
	if len(result.Discovered) != 1 {
		t.Fatalf("files at the domain root are not classes: %v", result.Discovered)
	}
}

func TestBuildOverwritesExistingManifest(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImageTree(t, dir, testsupport.ImageTree{"apple": {"a.jpg"}})
	out := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(out, []byte("stale 9\nstale 9\nstale 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := manifest.NewBuilder(manifest.Options{}, nil).Build(context.Background(), dir, out); err != nil {
		t.Fatalf("Build: %v", err)
	}
	lines := testsupport.ReadLines(t, out)
	if len(lines) != 1 || strings.Contains(lines[0], "stale") {
		t.Fatalf("expected manifest to be replaced, got %v", lines)
	}
}

func TestBuildMissingDirectoryIsNotAnError(t *testing.T) {
	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &logs})
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "list.txt")

	result, err := manifest.NewBuilder(manifest.Options{}, logger).
		Build(context.Background(), filepath.Join(t.TempDir(), "absent"), out)
	if err != nil {
		t.Fatalf("missing directory must not fail: %v", err)
	}
	if !result.Missing || len(result.Discovered) != 0 {
		t.Fatalf("expected empty vocabulary and Missing, got %+v", result)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("no manifest should be written for a missing directory (stat err=%v)", err)
	}
	if !strings.Contains(logs.String(), "directory not found") {
		t.Fatalf("expected a diagnostic, got %q", logs.String())
	}
}

func TestBuildMissingDirectoryReportsStaleOutput(t *testing.T) {
	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &logs})
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(out, []byte("old/apple/a.jpg 0\n"), 0o644); err != nil {
		t.Fatalf("write previous manifest: %v", err)
	}

	result, err := manifest.NewBuilder(manifest.Options{}, logger).
		Build(context.Background(), filepath.Join(t.TempDir(), "absent"), out)
	if err != nil {
		t.Fatalf("missing directory must not fail: %v", err)
	}
	if !result.Missing {
		t.Fatalf("expected Missing, got %+v", result)
	}
	if lines := testsupport.ReadLines(t, out); len(lines) != 1 {
		t.Fatalf("previous manifest must be left untouched, got %q", lines)
	}
	if !strings.Contains(logs.String(), `"stale_output"`) || !strings.Contains(logs.String(), "left in place") {
		t.Fatalf("expected stale output diagnostic, got %q", logs.String())
	}
}

func TestBuildWithExplicitVocabulary(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImageTree(t, dir, testsupport.ImageTree{
		"apple":  {"a.jpg"},
		"banana": {"b.jpg"},
		"durian": {"d.jpg"},
	})

	opts := manifest.Options{
		SortFiles:  true,
		Vocabulary: manifest.Vocabulary{"banana", "apple", "cherry"},
	}
	result, out := build(t, dir, opts)

	if got := strings.Join(result.Applied, ","); got != "banana,apple,cherry" {
		t.Fatalf("unexpected applied vocabulary %s", got)
	}
	if got := strings.Join(result.Discovered, ","); got != "apple,banana,durian" {
		t.Fatalf("discovered vocabulary should remain directory-derived, got %s", got)
	}
	if got := strings.Join(result.Skipped, ","); got != "durian" {
		t.Fatalf("unexpected skipped classes %s", got)
	}
	lines := testsupport.ReadLines(t, out)
	want := []string{
		filepath.Join(dir, "banana", "b.jpg") + " 0",
		filepath.Join(dir, "apple", "a.jpg") + " 1",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected manifest:\n%s", strings.Join(lines, "\n"))
	}
	if result.PerClass[2].Present {
		t.Fatalf("cherry has no directory: %+v", result.PerClass[2])
	}
}

func TestBuildCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImageTree(t, dir, testsupport.ImageTree{"apple": {"a.tif", "b.jpg"}})

	result, _ := build(t, dir, manifest.Options{Extensions: []string{"TIF"}})
	if result.Lines != 1 {
		t.Fatalf("expected only the tif file, got %d", result.Lines)
	}
}

func TestBuildReportsProgressPerClass(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImageTree(t, dir, testsupport.ImageTree{"a": {"1.jpg"}, "b": {"1.jpg", "2.jpg"}})

	var seen []string
	opts := manifest.Options{Progress: func(class string, images int) {
		seen = append(seen, class+"="+string(rune('0'+images)))
	}}
	build(t, dir, opts)
	if got := strings.Join(seen, ","); got != "a=1,b=2" {
		t.Fatalf("unexpected progress calls %s", got)
	}
}
