package datasets

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sort"

	"udalist/internal/imagelist"
)

var (
	// ErrUnrecognizedTask reports a domain outside a dataset's registry.
	ErrUnrecognizedTask = errors.New("not recognized task")
	// ErrUnrecognizedSplit reports a split the domain does not provide.
	ErrUnrecognizedSplit = errors.New("not recognized split")
	// ErrUnknownDataset reports a Lookup miss.
	ErrUnknownDataset = errors.New("unknown dataset")
)

// Domain is one task of a dataset with the splits it ships.
type Domain struct {
	Name   string
	Splits []string
}

// Dataset is a registry of domains sharing one class vocabulary.
type Dataset struct {
	Name    string
	Classes []string
	domains []Domain
}

// NeuroDomainVegFru pairs the NeuroDomain capture set with the VegFru test
// subset over five produce classes.
var NeuroDomainVegFru = &Dataset{
	Name:    "neurodomain-vegfru",
	Classes: []string{"apple", "banana", "pineapple", "pomegranate", "pumpkin"},
	domains: []Domain{
		{Name: "neurodomain", Splits: []string{"train", "val"}},
		{Name: "vegfru-test", Splits: []string{"train", "val", "test"}},
	},
}

var registry = map[string]*Dataset{
	NeuroDomainVegFru.Name: NeuroDomainVegFru,
}

// Lookup returns a registered dataset by name.
func Lookup(name string) (*Dataset, error) {
	ds, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return ds, nil
}

// Names lists registered datasets in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ManifestName is the file name a manifest for task (and optional split) uses.
func ManifestName(task, split string) string {
	if split == "" {
		return task + "_list.txt"
	}
	return task + "_" + split + "_list.txt"
}

// Domains lists the dataset's domain names in declaration order.
func (d *Dataset) Domains() []string {
	out := make([]string, 0, len(d.domains))
	for _, dom := range d.domains {
		out = append(out, dom.Name)
	}
	return out
}

// Splits returns the splits task supports.
func (d *Dataset) Splits(task string) ([]string, error) {
	dom, err := d.domain(task)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), dom.Splits...), nil
}

// NumClasses returns the size of the fixed vocabulary.
func (d *Dataset) NumClasses() int { return len(d.Classes) }

// ManifestPath validates task and split and returns the manifest location
// under root. An empty split selects the flat naming.
func (d *Dataset) ManifestPath(root, task, split string) (string, error) {
	dom, err := d.domain(task)
	if err != nil {
		return "", err
	}
	if split != "" && !slices.Contains(dom.Splits, split) {
		return "", fmt.Errorf("%w: %q for task %q (allowed: %v)", ErrUnrecognizedSplit, split, task, dom.Splits)
	}
	return filepath.Join(root, ManifestName(task, split)), nil
}

// New loads the flat manifest {task}_list.txt under root.
func (d *Dataset) New(root, task string, opts ...imagelist.Option) (*imagelist.List, error) {
	path, err := d.ManifestPath(root, task, "")
	if err != nil {
		return nil, err
	}
	return imagelist.New(root, path, d.Classes, opts...)
}

// NewSplit loads {task}_{split}_list.txt under root.
func (d *Dataset) NewSplit(root, task, split string, opts ...imagelist.Option) (*imagelist.List, error) {
	if split == "" {
		return nil, fmt.Errorf("%w: empty split for task %q", ErrUnrecognizedSplit, task)
	}
	path, err := d.ManifestPath(root, task, split)
	if err != nil {
		return nil, err
	}
	return imagelist.New(root, path, d.Classes, opts...)
}

func (d *Dataset) domain(task string) (Domain, error) {
	for _, dom := range d.domains {
		if dom.Name == task {
			return dom, nil
		}
	}
	return Domain{}, fmt.Errorf("%w: %q (known: %v)", ErrUnrecognizedTask, task, d.Domains())
}
