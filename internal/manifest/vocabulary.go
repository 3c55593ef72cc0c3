package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrMissingDirectory reports a domain or split directory that does not exist.
var ErrMissingDirectory = errors.New("directory does not exist")

// Vocabulary is an ordered class list. A class's label index is its position.
type Vocabulary []string

// Index returns the label index of name, or -1 when absent.
func (v Vocabulary) Index(name string) int {
	for i, class := range v {
		if class == name {
			return i
		}
	}
	return -1
}

// Contains reports whether name is part of the vocabulary.
func (v Vocabulary) Contains(name string) bool {
	return v.Index(name) >= 0
}

// Equal reports ordered-sequence equality.
func (v Vocabulary) Equal(other Vocabulary) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (v Vocabulary) Clone() Vocabulary {
	if v == nil {
		return nil
	}
	out := make(Vocabulary, len(v))
	copy(out, v)
	return out
}

// Discover lists the immediate subdirectories of dir sorted by byte order.
// Symlinks that resolve to directories count as classes. A missing dir
// returns ErrMissingDirectory.
func Discover(dir string) (Vocabulary, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrMissingDirectory)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	classes := make(Vocabulary, 0, len(entries))
	for _, entry := range entries {
		if isDirEntry(dir, entry) {
			classes = append(classes, entry.Name())
		}
	}
	sort.Strings(classes)
	return classes, nil
}

func isDirEntry(parent string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	return err == nil && info.IsDir()
}
