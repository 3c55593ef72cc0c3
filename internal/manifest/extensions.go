package manifest

import (
	"strings"

	"udalist/internal/config"
)

// ExtensionSet matches file names by suffix, ignoring case.
type ExtensionSet struct {
	exts []string
}

// NewExtensionSet builds a matcher. Entries may omit the leading dot and may
// span several dots, such as ".nii.gz". An empty list falls back to
// config.DefaultExtensions.
func NewExtensionSet(exts []string) ExtensionSet {
	if len(exts) == 0 {
		exts = config.DefaultExtensions
	}
	seen := make(map[string]struct{}, len(exts))
	set := ExtensionSet{exts: make([]string, 0, len(exts))}
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		set.exts = append(set.exts, ext)
	}
	return set
}

// Match reports whether name ends in an accepted extension.
func (s ExtensionSet) Match(name string) bool {
	name = strings.ToLower(name)
	for _, ext := range s.exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
