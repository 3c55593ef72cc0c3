package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Entry is one manifest record.
type Entry struct {
	Path  string
	Label int
}

// String renders the entry as a manifest line without the trailing newline.
func (e Entry) String() string {
	return e.Path + " " + strconv.Itoa(e.Label)
}

// Parse reads manifest records from r. Blank lines are skipped. The label is
// the last space-separated field; everything before it is the path.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cut := strings.LastIndexByte(line, ' ')
		if cut <= 0 {
			return nil, fmt.Errorf("line %d: expected \"<path> <label>\", got %q", lineNo, line)
		}
		path := strings.TrimSpace(line[:cut])
		label, err := strconv.Atoi(strings.TrimSpace(line[cut+1:]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid label %q", lineNo, line[cut+1:])
		}
		if label < 0 {
			return nil, fmt.Errorf("line %d: negative label %d", lineNo, label)
		}
		if path == "" {
			return nil, fmt.Errorf("line %d: empty path", lineNo)
		}
		entries = append(entries, Entry{Path: path, Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return entries, nil
}

// ReadFile parses the manifest at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// LabelCount is the number of records carrying one label.
type LabelCount struct {
	Label int
	Count int
}

// Stats summarises a parsed manifest.
type Stats struct {
	Lines    int
	MaxLabel int
	Labels   []LabelCount
}

// Summarize counts records per label, ordered by label.
func Summarize(entries []Entry) Stats {
	stats := Stats{Lines: len(entries), MaxLabel: -1}
	counts := make(map[int]int)
	for _, e := range entries {
		counts[e.Label]++
		if e.Label > stats.MaxLabel {
			stats.MaxLabel = e.Label
		}
	}
	for label, count := range counts {
		stats.Labels = append(stats.Labels, LabelCount{Label: label, Count: count})
	}
	sort.Slice(stats.Labels, func(i, j int) bool { return stats.Labels[i].Label < stats.Labels[j].Label })
	return stats
}
