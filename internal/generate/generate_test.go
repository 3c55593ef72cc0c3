package generate_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"udalist/internal/classcheck"
	"udalist/internal/config"
	"udalist/internal/datasets"
	"udalist/internal/generate"
	"udalist/internal/logging"
	"udalist/internal/testsupport"
)

func newLogger(t *testing.T, buf *bytes.Buffer) *slog.Logger {
	t.Helper()
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return logger
}

func TestRunEndToEndFlat(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteImageTree(t, cfg.DomainDir("neurodomain", ""), testsupport.ImageTree{
		"apple":  {"a1.jpg", "a2.png"},
		"banana": {"b1.jpeg"},
	}, "banana", "apple")
	testsupport.WriteImageTree(t, cfg.DomainDir("vegfru", ""), testsupport.ImageTree{
		"apple":  {"1.jpg", "2.jpg", "3.bmp"},
		"banana": {"x.png", "y.PNG", "notes.txt"},
	})

	var buf bytes.Buffer
	summary, err := generate.Run(context.Background(), cfg, generate.Options{Logger: newLogger(t, &buf)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	source := testsupport.ReadLines(t, filepath.Join(cfg.RootDir, "neurodomain_list.txt"))
	target := testsupport.ReadLines(t, filepath.Join(cfg.RootDir, "vegfru_list.txt"))
	if len(source) != 3 || len(target) != 5 {
		t.Fatalf("expected 3 and 5 lines, got %d and %d", len(source), len(target))
	}
	for _, lines := range [][]string{source, target} {
		for _, line := range lines {
			switch {
			case strings.Contains(line, "/apple/") && strings.HasSuffix(line, " 0"):
			case strings.Contains(line, "/banana/") && strings.HasSuffix(line, " 1"):
			default:
				t.Fatalf("unexpected mapping in line %q", line)
			}
		}
	}

	if summary.Check.Status != classcheck.StatusMatch {
		t.Fatalf("expected match, got %s", summary.Check.Status)
	}
	if !strings.Contains(buf.String(), "classes match") {
		t.Fatalf("expected success diagnostic, got %q", buf.String())
	}
	if summary.Lines() != 8 || len(summary.Manifests) != 2 || summary.RunID == "" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Manifests[0].Bytes == 0 {
		t.Fatal("expected manifest size to be recorded")
	}
	if !summary.Recorded {
		t.Fatal("expected run to be recorded in history")
	}

	store := testsupport.MustOpenHistory(t, cfg)
	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.CheckStatus != "match" || len(run.Manifests) != 2 || run.Manifests[1].Lines != 5 {
		t.Fatalf("unexpected recorded run %#v", run)
	}
}

func TestRunMissingTargetSkipsCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	testsupport.WriteImageTree(t, cfg.DomainDir("neurodomain", ""), testsupport.ImageTree{"apple": {"a.jpg"}})

	var buf bytes.Buffer
	summary, err := generate.Run(context.Background(), cfg, generate.Options{Logger: newLogger(t, &buf)})
	if err != nil {
		t.Fatalf("missing target must not fail the run: %v", err)
	}
	if summary.Check.Status != classcheck.StatusSkipped {
		t.Fatalf("expected skipped check, got %s", summary.Check.Status)
	}
	if !summary.Manifests[1].Result.Missing {
		t.Fatal("expected target result to be marked missing")
	}
	if _, err := os.Stat(filepath.Join(cfg.RootDir, "vegfru_list.txt")); !os.IsNotExist(err) {
		t.Fatalf("no manifest should be written for a missing dir: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "class mismatch") {
		t.Fatalf("unexpected mismatch warning: %q", out)
	}
	if !strings.Contains(out, "directory not found") {
		t.Fatalf("expected missing-directory diagnostic: %q", out)
	}
	if summary.Recorded {
		t.Fatal("history disabled, run must not be recorded")
	}
}

func TestRunRemovedDomainReportsNoBytes(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	testsupport.WriteImageTree(t, cfg.DomainDir("neurodomain", ""), testsupport.ImageTree{"apple": {"a.jpg"}})
	testsupport.WriteImageTree(t, cfg.DomainDir("vegfru", ""), testsupport.ImageTree{"apple": {"1.jpg", "2.jpg"}})

	first, err := generate.Run(context.Background(), cfg, generate.Options{})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Manifests[1].Bytes == 0 {
		t.Fatal("expected target manifest size on first run")
	}

	if err := os.RemoveAll(cfg.DomainDir("vegfru", "")); err != nil {
		t.Fatalf("remove target: %v", err)
	}
	var buf bytes.Buffer
	second, err := generate.Run(context.Background(), cfg, generate.Options{Logger: newLogger(t, &buf)})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	target := second.Manifests[1]
	if !target.Result.Missing || target.Bytes != 0 {
		t.Fatalf("missing domain must report zero bytes, got %+v", target)
	}
	if !strings.Contains(buf.String(), "left in place") {
		t.Fatalf("expected stale manifest diagnostic, got %q", buf.String())
	}
}

func TestRunUnusableHistoryStillWrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteImageTree(t, cfg.DomainDir("neurodomain", ""), testsupport.ImageTree{"apple": {"a.jpg"}})
	testsupport.WriteImageTree(t, cfg.DomainDir("vegfru", ""), testsupport.ImageTree{"apple": {"1.jpg"}})
	blocker := filepath.Join(testsupport.BaseDir(cfg), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	cfg.History.Path = filepath.Join(blocker, "history.db")

	var buf bytes.Buffer
	summary, err := generate.Run(context.Background(), cfg, generate.Options{Logger: newLogger(t, &buf)})
	if err != nil {
		t.Fatalf("history failure must not fail the run: %v", err)
	}
	for _, name := range []string{"neurodomain_list.txt", "vegfru_list.txt"} {
		if lines := testsupport.ReadLines(t, filepath.Join(cfg.OutputDir, name)); len(lines) != 1 {
			t.Fatalf("expected one line in %s, got %q", name, lines)
		}
	}
	if summary.Recorded {
		t.Fatal("run must not be marked recorded")
	}
	if !strings.Contains(buf.String(), "failed to record run history") {
		t.Fatalf("expected history warning, got %q", buf.String())
	}
}

func TestRunBuildFailureIsLogged(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	testsupport.WriteImageTree(t, cfg.DomainDir("neurodomain", ""), testsupport.ImageTree{"apple": {"a.jpg"}})
	// A directory in place of the manifest makes the final rename fail.
	if err := os.MkdirAll(filepath.Join(cfg.OutputDir, "neurodomain_list.txt", "x"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var buf bytes.Buffer
	if _, err := generate.Run(context.Background(), cfg, generate.Options{Logger: newLogger(t, &buf)}); err == nil {
		t.Fatal("expected build error")
	}
	if !strings.Contains(buf.String(), "manifest build failed") {
		t.Fatalf("expected build failure diagnostic, got %q", buf.String())
	}
}

func TestRunMismatchStillWrites(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	testsupport.WriteImageTree(t, cfg.DomainDir("neurodomain", ""), testsupport.ImageTree{"apple": {"a.jpg"}, "banana": {"b.jpg"}})
	testsupport.WriteImageTree(t, cfg.DomainDir("vegfru", ""), testsupport.ImageTree{"apple": {"a.jpg"}, "cherry": {"c.jpg"}})

	var buf bytes.Buffer
	summary, err := generate.Run(context.Background(), cfg, generate.Options{Logger: newLogger(t, &buf)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(summary.Check.SymmetricDifference(), ","); got != "banana,cherry" {
		t.Fatalf("unexpected difference %s", got)
	}
	if len(testsupport.ReadLines(t, filepath.Join(cfg.RootDir, "vegfru_list.txt"))) != 2 {
		t.Fatal("manifests must still be written on mismatch")
	}
	if !strings.Contains(buf.String(), "class mismatch") {
		t.Fatalf("expected mismatch warning, got %q", buf.String())
	}
}

func TestRunSplitAwareLoadable(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSplits(), testsupport.WithoutHistory(), testsupport.WithOutputDir("out"))
	cfg.Target = "vegfru-test"
	cfg.Classes = datasets.NeuroDomainVegFru.Classes
	for _, split := range []string{"train", "val"} {
		testsupport.WriteImageTree(t, cfg.DomainDir("neurodomain", split), testsupport.ImageTree{"pumpkin": {"p.jpg"}, "apple": {"a.jpg"}})
		testsupport.WriteImageTree(t, cfg.DomainDir("vegfru-test", split), testsupport.ImageTree{"pumpkin": {"p.jpg"}, "apple": {"a.jpg"}})
	}
	testsupport.WriteImageTree(t, cfg.DomainDir("vegfru-test", "test"), testsupport.ImageTree{"banana": {"b.jpg"}})

	summary, err := generate.Run(context.Background(), cfg, generate.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Manifests) != 6 {
		t.Fatalf("expected 6 manifest attempts, got %d", len(summary.Manifests))
	}
	if summary.Check.Status != classcheck.StatusMatch {
		t.Fatalf("train vocabularies should match, got %s", summary.Check.Status)
	}
	if !summary.Manifests[2].Result.Missing {
		t.Fatal("neurodomain/test should be missing")
	}

	list, err := datasets.NeuroDomainVegFru.NewSplit(cfg.OutputDir, "vegfru-test", "train")
	if err != nil {
		t.Fatalf("NewSplit: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("expected 2 samples, got %d", list.Len())
	}
	sample, err := list.Sample(1)
	if err != nil || sample.Label != 4 {
		t.Fatalf("pumpkin should carry the fixed index 4, got %+v err=%v", sample, err)
	}
	test, err := datasets.NeuroDomainVegFru.NewSplit(cfg.OutputDir, "vegfru-test", "test")
	if err != nil {
		t.Fatalf("NewSplit test: %v", err)
	}
	if first, _ := test.Sample(0); first.Label != 1 {
		t.Fatalf("banana should carry index 1, got %d", first.Label)
	}
}

func TestRunLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	held := flock.New(cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock failed: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	if _, err := generate.Run(context.Background(), cfg, generate.Options{}); !errors.Is(err, generate.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestCheckWithoutWriting(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSplits())
	testsupport.WriteImageTree(t, cfg.DomainDir("neurodomain", config.SplitTrain), testsupport.ImageTree{"apple": {}, "banana": {}})
	testsupport.WriteImageTree(t, cfg.DomainDir("vegfru", config.SplitTrain), testsupport.ImageTree{"banana": {}, "apple": {}})
	testsupport.WriteImageTree(t, cfg.DomainDir("vegfru", config.SplitVal), testsupport.ImageTree{"cherry": {}})

	report, err := generate.Check(cfg)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.Status != classcheck.StatusMatch {
		t.Fatalf("only train vocabularies are compared, got %s", report.Status)
	}
	entries, _ := os.ReadDir(cfg.RootDir)
	for _, e := range entries {
		if !e.IsDir() {
			t.Fatalf("check must not write files, found %s", e.Name())
		}
	}
}
