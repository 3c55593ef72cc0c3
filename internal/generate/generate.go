package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"udalist/internal/classcheck"
	"udalist/internal/config"
	"udalist/internal/datasets"
	"udalist/internal/fileutil"
	"udalist/internal/history"
	"udalist/internal/logging"
	"udalist/internal/manifest"
)

// ErrLocked reports another run holding the output directory lock.
var ErrLocked = errors.New("output directory is locked by another run")

// Options tunes a Run.
type Options struct {
	Logger *slog.Logger
	// Progress receives a progress bar when it is a terminal.
	Progress io.Writer
}

// ManifestSummary is the outcome for one (domain, split).
type ManifestSummary struct {
	Domain string          `json:"domain"`
	Split  string          `json:"split,omitempty"`
	Bytes  int64           `json:"bytes"`
	Result manifest.Result `json:"result"`
}

// Summary describes a completed run.
type Summary struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Manifests  []ManifestSummary `json:"manifests"`
	Check      classcheck.Report `json:"check"`
	Recorded   bool              `json:"recorded"`
}

// Lines totals the records written across manifests.
func (s *Summary) Lines() int {
	total := 0
	for _, m := range s.Manifests {
		total += m.Result.Lines
	}
	return total
}

// CheckSplit is the split whose vocabularies are compared in split-aware runs.
const CheckSplit = config.SplitTrain

// ManifestPath returns where a run writes the manifest for domain and split.
func ManifestPath(cfg *config.Config, domain, split string) string {
	return filepath.Join(cfg.OutputDir, datasets.ManifestName(domain, split))
}

// Run generates every manifest described by cfg.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	logger := logging.NewComponentLogger(opts.Logger, "generate")

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	summary := &Summary{RunID: uuid.NewString(), StartedAt: time.Now()}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logging.WithContext(ctx, logger).Info("generation started",
		logging.String("root_dir", cfg.RootDir),
		logging.String("output_dir", cfg.OutputDir),
		logging.Bool("split_aware", cfg.SplitAware))

	bar := newProgressBar(opts.Progress)
	builder := manifest.NewBuilder(manifest.Options{
		Vocabulary: manifest.Vocabulary(cfg.Classes),
		Extensions: cfg.Extensions,
		SortFiles:  cfg.SortFiles,
		Progress: func(_ string, images int) {
			if bar != nil {
				_ = bar.Add(images)
			}
		},
	}, opts.Logger)

	vocab := make(map[string]manifest.Vocabulary, 2)
	for _, domain := range cfg.Domains() {
		for _, split := range cfg.SplitNames() {
			if bar != nil {
				bar.Describe(describe(domain, split))
			}
			stepCtx := logging.WithSplit(logging.WithDomain(ctx, domain), split)
			out := ManifestPath(cfg, domain, split)
			result, err := builder.Build(stepCtx, cfg.DomainDir(domain, split), out)
			if err != nil {
				if bar != nil {
					_ = bar.Exit()
				}
				logging.ErrorWithContext(logging.WithContext(stepCtx, logger), "manifest build failed",
					"manifest_build_failed",
					logging.Error(err),
					logging.String("output", out),
					logging.String(logging.FieldErrorHint, "check read access to the domain directory and write access to output_dir"))
				return nil, fmt.Errorf("build %s: %w", describe(domain, split), err)
			}
			entry := ManifestSummary{Domain: domain, Split: split, Result: result}
			if !result.Missing {
				entry.Bytes = fileutil.FileSize(out)
			}
			summary.Manifests = append(summary.Manifests, entry)
			if split == "" || split == CheckSplit {
				vocab[domain] = result.Discovered
			}
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	summary.Check = classcheck.Compare(cfg.Source, cfg.Target, vocab[cfg.Source], vocab[cfg.Target])
	summary.Check.Log(logging.WithContext(ctx, opts.Logger))
	summary.FinishedAt = time.Now()

	if cfg.History.Enabled {
		if err := record(ctx, cfg, summary); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, logger), "failed to record run history",
				"history_record_failed",
				logging.Error(err),
				logging.String("path", cfg.History.Path),
				logging.String(logging.FieldErrorHint, "run udalist doctor to check the history database"),
				logging.String(logging.FieldImpact, "run is missing from udalist history"))
		} else {
			summary.Recorded = true
		}
	}

	logging.WithContext(ctx, logger).Info("generation finished",
		logging.Int("manifests", len(summary.Manifests)),
		logging.Int("lines", summary.Lines()),
		logging.String("check", string(summary.Check.Status)),
		logging.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)))
	return summary, nil
}

// Check compares the source and target vocabularies without writing anything.
func Check(cfg *config.Config) (classcheck.Report, error) {
	split := ""
	if cfg.SplitAware {
		split = CheckSplit
	}
	vocab := make([]manifest.Vocabulary, 0, 2)
	for _, domain := range cfg.Domains() {
		v, err := manifest.Discover(cfg.DomainDir(domain, split))
		if err != nil && !errors.Is(err, manifest.ErrMissingDirectory) {
			return classcheck.Report{}, err
		}
		vocab = append(vocab, v)
	}
	return classcheck.Compare(cfg.Source, cfg.Target, vocab[0], vocab[1]), nil
}

func record(ctx context.Context, cfg *config.Config, summary *Summary) error {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	run := &history.Run{
		ID:              summary.RunID,
		StartedAt:       summary.StartedAt,
		FinishedAt:      summary.FinishedAt,
		RootDir:         cfg.RootDir,
		OutputDir:       cfg.OutputDir,
		Source:          cfg.Source,
		Target:          cfg.Target,
		SplitAware:      cfg.SplitAware,
		CheckStatus:     string(summary.Check.Status),
		CheckDifference: summary.Check.SymmetricDifference(),
	}
	for _, m := range summary.Manifests {
		run.Manifests = append(run.Manifests, history.Manifest{
			Domain:  m.Domain,
			Split:   m.Split,
			Path:    m.Result.Output,
			Lines:   m.Result.Lines,
			Classes: len(m.Result.Applied),
			Bytes:   m.Bytes,
			Missing: m.Result.Missing,
		})
	}
	return store.RecordRun(ctx, run)
}

func describe(domain, split string) string {
	if split == "" {
		return domain
	}
	return domain + "/" + split
}

func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return nil
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(f),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}
