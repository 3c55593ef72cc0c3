package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"udalist/internal/fileutil"
	"udalist/internal/logging"
)

// Options controls a Builder.
type Options struct {
	// Vocabulary, when non-empty, fixes class order and label indices.
	// Discovered directories missing from it are skipped.
	Vocabulary Vocabulary
	// Extensions overrides config.DefaultExtensions.
	Extensions []string
	// SortFiles orders image names within each class by byte order. When
	// false, files are written in directory enumeration order.
	SortFiles bool
	// Progress, when set, is called once per class after its records are written.
	Progress func(class string, images int)
}

// ClassCount records how many images were written for one class.
type ClassCount struct {
	Name   string `json:"name"`
	Label  int    `json:"label"`
	Images int    `json:"images"`
	// Present is false when the class came from an explicit vocabulary and
	// has no directory.
	Present bool `json:"present"`
}

// Result describes one Build call.
type Result struct {
	Dir        string       `json:"dir"`
	Output     string       `json:"output"`
	Discovered Vocabulary   `json:"discovered"`
	Applied    Vocabulary   `json:"applied"`
	Lines      int          `json:"lines"`
	PerClass   []ClassCount `json:"per_class"`
	Skipped    []string     `json:"skipped,omitempty"`
	// Missing is true when Dir does not exist. Nothing is written in that case.
	Missing bool `json:"missing"`
}

// Builder writes manifests for class-per-directory image trees.
type Builder struct {
	opts   Options
	exts   ExtensionSet
	logger *slog.Logger
}

// NewBuilder constructs a Builder. A nil logger discards diagnostics.
func NewBuilder(opts Options, logger *slog.Logger) *Builder {
	return &Builder{
		opts:   opts,
		exts:   NewExtensionSet(opts.Extensions),
		logger: logging.NewComponentLogger(logger, "manifest"),
	}
}

// Build walks dir and writes the manifest to outPath, replacing any existing
// file. A missing dir is not an error: it is logged and reported through
// Result.Missing with an empty vocabulary.
func (b *Builder) Build(ctx context.Context, dir, outPath string) (Result, error) {
	logger := logging.WithContext(ctx, b.logger)
	result := Result{Dir: dir, Output: outPath}

	discovered, err := Discover(dir)
	if err != nil {
		if errors.Is(err, ErrMissingDirectory) {
			impact := "no manifest written for this directory"
			attrs := []logging.Attr{logging.String("dir", dir)}
			if _, statErr := os.Stat(outPath); statErr == nil {
				impact = "previous manifest left in place and not refreshed"
				attrs = append(attrs, logging.String("stale_output", outPath))
			}
			attrs = append(attrs,
				logging.String(logging.FieldErrorHint, "check root_dir and domain folder names in the config"),
				logging.String(logging.FieldImpact, impact))
			logging.WarnWithContext(logger, "directory not found, skipping", "manifest_dir_missing", attrs...)
			result.Missing = true
			return result, nil
		}
		return result, err
	}
	result.Discovered = discovered

	applied := discovered
	if len(b.opts.Vocabulary) > 0 {
		applied = b.opts.Vocabulary.Clone()
		for _, class := range discovered {
			if !applied.Contains(class) {
				result.Skipped = append(result.Skipped, class)
			}
		}
		if len(result.Skipped) > 0 {
			logging.WarnWithContext(logger, "class directories outside the configured vocabulary were skipped",
				"manifest_classes_skipped",
				logging.String("dir", dir),
				logging.Strings("classes", result.Skipped),
				logging.String(logging.FieldErrorHint, "add the classes to the config or remove the directories"),
				logging.String(logging.FieldImpact, "images in skipped classes are not listed"))
		}
	}
	result.Applied = applied

	err = fileutil.WriteFileAtomic(outPath, 0o644, func(w io.Writer) error {
		for label, class := range applied {
			if err := ctx.Err(); err != nil {
				return err
			}
			count := ClassCount{Name: class, Label: label, Present: discovered.Contains(class)}
			if count.Present {
				n, err := b.writeClass(w, dir, class, label)
				if err != nil {
					return err
				}
				count.Images = n
			}
			result.Lines += count.Images
			result.PerClass = append(result.PerClass, count)
			if b.opts.Progress != nil {
				b.opts.Progress(class, count.Images)
			}
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("write manifest %s: %w", outPath, err)
	}

	logger.Info("generated manifest",
		logging.String("output", outPath),
		logging.Int("classes", len(applied)),
		logging.Int("lines", result.Lines))
	return result, nil
}

func (b *Builder) writeClass(w io.Writer, dir, class string, label int) (int, error) {
	classDir := filepath.Join(dir, class)
	names, err := b.listFiles(classDir)
	if err != nil {
		return 0, err
	}
	written := 0
	for _, name := range names {
		if !b.exts.Match(name) {
			continue
		}
		entry := Entry{Path: filepath.Join(classDir, name), Label: label}
		if _, err := io.WriteString(w, entry.String()+"\n"); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// listFiles returns the non-directory entries of dir. os.ReadDir always
// sorts, so the unsorted path reads through File.ReadDir instead.
func (b *Builder) listFiles(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open class dir: %w", err)
	}
	defer f.Close()
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if isDirEntry(dir, entry) {
			continue
		}
		names = append(names, entry.Name())
	}
	if b.opts.SortFiles {
		sort.Strings(names)
	}
	return names, nil
}
