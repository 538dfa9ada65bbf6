// Package journal is an opt-in sqlite audit log of translation runs. It
// records what each run attempted and how every unit ended; nothing in it
// is ever read back into translation decisions, so the remote platform
// stays the single source of truth.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/locflow/internal/pipeline"
)

type Journal struct {
	db *sql.DB
}

func New(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return j, nil
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		components TEXT,
		languages TEXT,
		service TEXT,
		dry_run BOOLEAN DEFAULT FALSE,
		canceled BOOLEAN DEFAULT FALSE,
		attempted INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);

	-- one row per non-successful unit; successes are only counted
	CREATE TABLE IF NOT EXISTS run_outcomes (
		run_id TEXT NOT NULL,
		component TEXT NOT NULL,
		language TEXT NOT NULL,
		unit_key TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT,
		detail TEXT,
		attempts INTEGER,
		PRIMARY KEY (run_id, component, language, unit_key),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS run_pair_errors (
		run_id TEXT NOT NULL,
		component TEXT NOT NULL,
		language TEXT NOT NULL,
		error TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON run_outcomes(run_id);
	CREATE INDEX IF NOT EXISTS idx_pair_errors_run ON run_pair_errors(run_id);
	`

	_, err := j.db.Exec(schema)
	return err
}

// Meta describes the run being journaled.
type Meta struct {
	Project    string
	Components []string
	Languages  []string
	Service    string
	DryRun     bool
}

// SaveReport persists one finished run and returns its generated ID.
func (j *Journal) SaveReport(ctx context.Context, meta Meta, report *pipeline.RunReport) (string, error) {
	runID := uuid.New().String()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, project, components, languages, service, dry_run, canceled, attempted, succeeded, skipped, failed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, meta.Project,
		strings.Join(meta.Components, ","), strings.Join(meta.Languages, ","),
		meta.Service, meta.DryRun, report.Canceled,
		report.Attempted, report.Succeeded, report.Skipped, report.Failed,
		report.StartedAt, report.FinishedAt)
	if err != nil {
		return "", err
	}

	for _, o := range report.Problems() {
		_, err := j.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO run_outcomes (run_id, component, language, unit_key, outcome, reason, detail, attempts)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, o.Component, o.Language, normalizeKey(o.Key),
			string(o.Outcome), o.Reason, o.Detail, o.Attempts)
		if err != nil {
			return "", err
		}
	}

	for _, pe := range report.PairErrors {
		_, err := j.db.ExecContext(ctx,
			`INSERT INTO run_pair_errors (run_id, component, language, error) VALUES (?, ?, ?, ?)`,
			runID, pe.Component, pe.Language, pe.Err)
		if err != nil {
			return "", err
		}
	}

	return runID, nil
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID         string
	Project    string
	Components string
	Languages  string
	Service    string
	DryRun     bool
	Canceled   bool
	Attempted  int
	Succeeded  int
	Skipped    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// ListRuns returns runs newest first, capped at limit (0 = all).
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	q := `SELECT id, project, components, languages, service, dry_run, canceled,
	             attempted, succeeded, skipped, failed, started_at, finished_at
	      FROM runs ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Project, &r.Components, &r.Languages, &r.Service,
			&r.DryRun, &r.Canceled, &r.Attempted, &r.Succeeded, &r.Skipped, &r.Failed,
			&r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// OutcomeRow is one problem unit of a journaled run.
type OutcomeRow struct {
	Component string
	Language  string
	UnitKey   string
	Outcome   string
	Reason    string
	Detail    string
	Attempts  int
}

// ListOutcomes returns the problem units recorded for a run.
func (j *Journal) ListOutcomes(ctx context.Context, runID string) ([]OutcomeRow, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT component, language, unit_key, outcome, reason, detail, attempts
		 FROM run_outcomes WHERE run_id = ? ORDER BY component, language, unit_key`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutcomeRow
	for rows.Next() {
		var o OutcomeRow
		if err := rows.Scan(&o.Component, &o.Language, &o.UnitKey, &o.Outcome,
			&o.Reason, &o.Detail, &o.Attempts); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Clear removes all journaled runs and returns how many were deleted.
func (j *Journal) Clear(ctx context.Context) (int64, error) {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM run_outcomes`); err != nil {
		return 0, err
	}
	if _, err := j.db.ExecContext(ctx, `DELETE FROM run_pair_errors`); err != nil {
		return 0, err
	}
	res, err := j.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// normalizeKey trims and NFC-normalizes a unit key so the same key always
// lands on the same row.
func normalizeKey(key string) string {
	return norm.NFC.String(strings.TrimSpace(key))
}
