package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"udalist/internal/config"
	"udalist/internal/datasets"
	"udalist/internal/generate"
	"udalist/internal/history"
	"udalist/internal/testsupport"
)

func TestBuildEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "build")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	requireContains(t, out, "classes match")
	requireContains(t, out, "Neurodomain")
	requireContains(t, out, "Vegfru Test")
	requireNotContains(t, out, "class mismatch")

	source := testsupport.ReadLines(t, filepath.Join(env.cfg.RootDir, "neurodomain_list.txt"))
	target := testsupport.ReadLines(t, filepath.Join(env.cfg.RootDir, "vegfru-test_list.txt"))
	if len(source) != 3 || len(target) != 5 {
		t.Fatalf("expected 3 and 5 lines, got %d and %d", len(source), len(target))
	}
	want := filepath.Join(env.cfg.RootDir, "neurodomain", "apple", "a1.jpg") + " 0"
	if source[0] != want {
		t.Fatalf("first line %q, want %q", source[0], want)
	}
	if !strings.HasSuffix(source[2], "b1.png 1") {
		t.Fatalf("banana should be label 1, got %q", source[2])
	}
}

func TestBuildJSONAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "build", "--json")
	if err != nil {
		t.Fatalf("build --json: %v", err)
	}
	var summary generate.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.RunID == "" || len(summary.Manifests) != 2 || summary.Check.Status != "match" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	out, _, err = runCLI(t, env.configPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, summary.RunID[:8])
	requireContains(t, out, "neurodomain -> vegfru-test")

	out, _, err = runCLI(t, env.configPath, "history", "show", summary.RunID[:8])
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Check:      match")
	requireContains(t, out, "vegfru-test_list.txt")

	out, _, err = runCLI(t, env.configPath, "history", "show", "--json", summary.RunID)
	if err != nil {
		t.Fatalf("history show --json: %v", err)
	}
	var run history.Run
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if len(run.Manifests) != 2 || run.Manifests[1].Lines != 5 {
		t.Fatalf("unexpected run %+v", run)
	}

	if _, _, err := runCLI(t, env.configPath, "history", "show", "ffffffff"); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteImageTree(t, env.cfg.DomainDir("vegfru-test", ""), testsupport.ImageTree{"cherry": {"c.jpg"}})

	out, _, err := runCLI(t, env.configPath, "check")
	if err != nil {
		t.Fatalf("check without --strict must succeed: %v", err)
	}
	requireContains(t, out, "class mismatch")
	requireContains(t, out, "cherry")

	if _, _, err := runCLI(t, env.configPath, "check", "--strict"); err == nil || !strings.Contains(err.Error(), "cherry") {
		t.Fatalf("expected strict failure naming cherry, got %v", err)
	}
}

func TestInspectAfterBuild(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env.configPath, "build"); err != nil {
		t.Fatalf("build: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "inspect", "vegfru-test", "--limit", "2")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "5 samples")
	requireContains(t, out, "pumpkin")

	out, _, err = runCLI(t, "", "inspect", "neurodomain", "--root", env.cfg.RootDir, "--json")
	if err != nil {
		t.Fatalf("inspect --root: %v", err)
	}
	var parsed inspectOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("decode inspect: %v", err)
	}
	if parsed.Samples != 3 || len(parsed.Classes) != 5 || parsed.Classes[0].Count != 2 || parsed.Classes[1].Count != 1 {
		t.Fatalf("unexpected inspect output %+v", parsed)
	}
}

func TestInspectUnrecognized(t *testing.T) {
	root := t.TempDir()
	if _, _, err := runCLI(t, "", "inspect", "office31", "--root", root); !errors.Is(err, datasets.ErrUnrecognizedTask) {
		t.Fatalf("expected ErrUnrecognizedTask, got %v", err)
	}
	if _, _, err := runCLI(t, "", "inspect", "neurodomain", "--split", "test", "--root", root); !errors.Is(err, datasets.ErrUnrecognizedSplit) {
		t.Fatalf("expected ErrUnrecognizedSplit, got %v", err)
	}
}

func TestManifestStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m_list.txt")
	writeText(t, path, "/d/a.jpg 0\n/d/b.jpg 0\n/d/c.jpg 2\n")

	out, _, err := runCLI(t, "", "manifest", "stats", path)
	if err != nil {
		t.Fatalf("manifest stats: %v", err)
	}
	requireContains(t, out, "3 records")
	requireContains(t, out, "66.7%")

	bad := filepath.Join(t.TempDir(), "bad_list.txt")
	writeText(t, bad, "/d/a.jpg zero\n")
	if _, _, err := runCLI(t, "", "manifest", "stats", bad); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected parse error naming line 1, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "neurodomain -> vegfru-test")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, target, "config", "validate"); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}

func TestMalformedConfigIsFatal(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	missing := filepath.Join(dir, "nope.toml")
	if _, _, err := runCLI(t, missing, "build"); !errors.Is(err, config.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}

	path := filepath.Join(dir, "bad.toml")
	writeText(t, path, "source = \"a\"\ntarget = \"b\"\n")
	_, _, err := runCLI(t, path, "build")
	if !errors.Is(err, config.ErrMalformed) || !strings.Contains(err.Error(), "root_dir") {
		t.Fatalf("expected malformed error naming root_dir, got %v", err)
	}
}

func TestDoctor(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSplits())

	out, _, err := runCLI(t, env.configPath, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, out, "== Preflight ==")
	requireContains(t, out, "Root directory:")
	requireContains(t, out, "[WARN]")
	requireContains(t, out, "skipped")
}
