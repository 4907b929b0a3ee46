package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/soundcheck/internal/report"
)

// RunSummary is one row of a run listing.
type RunSummary struct {
	ID       string    `json:"id"`
	Scenario string    `json:"scenario"`
	Endpoint string    `json:"endpoint"`
	Started  time.Time `json:"started"`
	Passed   bool      `json:"passed"`
	Checks   int       `json:"checks"`
	Failures int       `json:"failures"`
}

// GetRun retrieves a stored run and its verdicts by ID.
// Returns sql.ErrNoRows if the run does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (report.Report, error) {
	var rep report.Report
	var started string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, scenario, endpoint, status_code, latency_ms, started
		FROM runs
		WHERE id = ?
	`, id).Scan(&rep.ID, &rep.Scenario, &rep.Endpoint, &rep.StatusCode, &rep.LatencyMS, &started)
	if err != nil {
		return report.Report{}, err
	}

	rep.Started, err = time.Parse(startedLayout, started)
	if err != nil {
		return report.Report{}, fmt.Errorf("get run: parse started: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT check_name, pass, code, path, detail
		FROM verdicts
		WHERE run_id = ?
		ORDER BY idx ASC
	`, id)
	if err != nil {
		return report.Report{}, fmt.Errorf("get run: query verdicts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v report.Verdict
		var check string
		var pass int
		if err := rows.Scan(&check, &pass, &v.Code, &v.Path, &v.Detail); err != nil {
			return report.Report{}, fmt.Errorf("get run: scan verdict: %w", err)
		}
		v.Check = report.Check(check)
		v.Pass = pass == 1
		rep.Verdicts = append(rep.Verdicts, v)
	}

	if err := rows.Err(); err != nil {
		return report.Report{}, fmt.Errorf("get run: iterate verdicts: %w", err)
	}

	return rep, nil
}

// ListRuns returns run summaries ordered newest first, with ties broken
// by ID for determinism. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unlimited
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.scenario, r.endpoint, r.started, r.passed,
		       COUNT(v.id),
		       COALESCE(SUM(CASE WHEN v.pass = 0 THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN verdicts v ON v.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started DESC, r.id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var sum RunSummary
		var started string
		var passed int
		if err := rows.Scan(&sum.ID, &sum.Scenario, &sum.Endpoint, &started, &passed, &sum.Checks, &sum.Failures); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		sum.Started, err = time.Parse(startedLayout, started)
		if err != nil {
			return nil, fmt.Errorf("list runs: parse started: %w", err)
		}
		sum.Passed = passed == 1
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: iterate: %w", err)
	}

	// Return empty slice instead of nil
	if summaries == nil {
		summaries = []RunSummary{}
	}

	return summaries, nil
}

// ListScenarioRuns returns summaries for a single scenario, newest first.
func (s *Store) ListScenarioRuns(ctx context.Context, scenario string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.scenario, r.endpoint, r.started, r.passed,
		       COUNT(v.id),
		       COALESCE(SUM(CASE WHEN v.pass = 0 THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN verdicts v ON v.run_id = r.id
		WHERE r.scenario = ?
		GROUP BY r.id
		ORDER BY r.started DESC, r.id COLLATE BINARY ASC
		LIMIT ?
	`, scenario, limit)
	if err != nil {
		return nil, fmt.Errorf("list scenario runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var sum RunSummary
		var started string
		var passed int
		if err := rows.Scan(&sum.ID, &sum.Scenario, &sum.Endpoint, &started, &passed, &sum.Checks, &sum.Failures); err != nil {
			return nil, fmt.Errorf("list scenario runs: scan: %w", err)
		}
		sum.Started, err = time.Parse(startedLayout, started)
		if err != nil {
			return nil, fmt.Errorf("list scenario runs: parse started: %w", err)
		}
		sum.Passed = passed == 1
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenario runs: iterate: %w", err)
	}

	if summaries == nil {
		summaries = []RunSummary{}
	}

	return summaries, nil
}
