package imagelist

import (
	"fmt"
	"path/filepath"

	"udalist/internal/manifest"
)

// Sample is one (image, label) pair. Input and Target hold the results of the
// transform hooks, or the raw path and label when no hook is set.
type Sample struct {
	Path   string
	Label  int
	Input  any
	Target any
}

// LabeledImageList is any dataset exposing labeled images with a class vocabulary.
type LabeledImageList interface {
	Len() int
	Sample(i int) (Sample, error)
	Classes() []string
	NumClasses() int
}

// Transform maps an image path to the value handed to consumers.
type Transform func(path string) (any, error)

// TargetTransform maps a label to the value handed to consumers.
type TargetTransform func(label int) (any, error)

// Option configures a List.
type Option func(*List)

// WithTransform sets the input hook.
func WithTransform(fn Transform) Option {
	return func(l *List) { l.transform = fn }
}

// WithTargetTransform sets the label hook.
func WithTargetTransform(fn TargetTransform) Option {
	return func(l *List) { l.targetTransform = fn }
}

// List is a manifest-backed LabeledImageList.
type List struct {
	root            string
	manifestPath    string
	classes         []string
	entries         []manifest.Entry
	transform       Transform
	targetTransform TargetTransform
}

var _ LabeledImageList = (*List)(nil)

// New reads manifestPath and binds it to classes. Relative image paths are
// resolved against root. Every label must index into classes.
func New(root, manifestPath string, classes []string, opts ...Option) (*List, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("image list %s: empty class vocabulary", manifestPath)
	}
	entries, err := manifest.ReadFile(manifestPath)
	if err != nil {
		return nil, err
	}
	for i, entry := range entries {
		if entry.Label >= len(classes) {
			return nil, fmt.Errorf("%s: record %d: label %d out of range for %d classes", manifestPath, i+1, entry.Label, len(classes))
		}
		if !filepath.IsAbs(entry.Path) && root != "" {
			entries[i].Path = filepath.Join(root, entry.Path)
		}
	}
	l := &List{
		root:         root,
		manifestPath: manifestPath,
		classes:      append([]string(nil), classes...),
		entries:      entries,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

func (l *List) Len() int { return len(l.entries) }

func (l *List) Classes() []string { return append([]string(nil), l.classes...) }

func (l *List) NumClasses() int { return len(l.classes) }

// ManifestPath returns the manifest the list was read from.
func (l *List) ManifestPath() string { return l.manifestPath }

// Sample returns the i-th record with hooks applied.
func (l *List) Sample(i int) (Sample, error) {
	if i < 0 || i >= len(l.entries) {
		return Sample{}, fmt.Errorf("sample index %d out of range [0,%d)", i, len(l.entries))
	}
	entry := l.entries[i]
	sample := Sample{Path: entry.Path, Label: entry.Label, Input: entry.Path, Target: entry.Label}
	if l.transform != nil {
		input, err := l.transform(entry.Path)
		if err != nil {
			return Sample{}, fmt.Errorf("transform %s: %w", entry.Path, err)
		}
		sample.Input = input
	}
	if l.targetTransform != nil {
		target, err := l.targetTransform(entry.Label)
		if err != nil {
			return Sample{}, fmt.Errorf("target transform %d: %w", entry.Label, err)
		}
		sample.Target = target
	}
	return sample, nil
}

// ClassCounts returns the number of samples per class index.
func (l *List) ClassCounts() []int {
	counts := make([]int, len(l.classes))
	for _, entry := range l.entries {
		counts[entry.Label]++
	}
	return counts
}
