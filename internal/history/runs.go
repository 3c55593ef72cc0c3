package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeLayout has fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "r.id, r.started_at, r.finished_at, r.root_dir, r.output_dir, r.source, r.target, r.split_aware, r.check_status, r.check_difference, (SELECT COUNT(1) FROM manifests m WHERE m.run_id = r.id)"

// RecordRun stores run and its manifests in one transaction.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is empty")
	}
	return retryOnBusy(ctx, func() error {
		return s.insertRun(ctx, run)
	})
}

func (s *Store) insertRun(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, root_dir, output_dir, source, target,
            split_aware, check_status, check_difference
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.RootDir,
		run.OutputDir,
		run.Source,
		run.Target,
		boolToInt(run.SplitAware),
		run.CheckStatus,
		nullableString(strings.Join(run.CheckDifference, ",")),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, m := range run.Manifests {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO manifests (run_id, domain, split, path, lines, classes, bytes, missing)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, m.Domain, m.Split, m.Path, m.Lines, m.Classes, m.Bytes, boolToInt(m.Missing),
		); err != nil {
			return fmt.Errorf("insert manifest %s: %w", m.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first, without manifests. A
// non-positive limit returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs r ORDER BY r.started_at DESC, r.id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run with its manifests. id may be a unique prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r WHERE r.id = ? OR substr(r.id, 1, ?) = ? ORDER BY r.id LIMIT 2`,
		id, len(id), id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, id)
	}

	run := matches[0]
	manifests, err := s.runManifests(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Manifests = manifests
	return run, nil
}

func (s *Store) runManifests(ctx context.Context, runID string) ([]Manifest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT domain, split, path, lines, classes, bytes, missing FROM manifests WHERE run_id = ? ORDER BY id`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("list manifests: %w", err)
	}
	defer rows.Close()

	var out []Manifest
	for rows.Next() {
		var (
			m       Manifest
			missing int
		)
		if err := rows.Scan(&m.Domain, &m.Split, &m.Path, &m.Lines, &m.Classes, &m.Bytes, &missing); err != nil {
			return nil, fmt.Errorf("scan manifest: %w", err)
		}
		m.Missing = missing != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw string
		splitAware  int
		difference  sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&run.RootDir,
		&run.OutputDir,
		&run.Source,
		&run.Target,
		&splitAware,
		&run.CheckStatus,
		&difference,
		&run.ManifestCount,
	); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw)
	run.SplitAware = splitAware != 0
	if difference.Valid && difference.String != "" {
		run.CheckDifference = strings.Split(difference.String, ",")
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
