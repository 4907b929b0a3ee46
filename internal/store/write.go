package store

import (
	"context"
	"fmt"

	"github.com/roach88/soundcheck/internal/report"
)

// startedLayout is fixed-width (nanoseconds always 9 digits) so stored
// timestamps sort lexicographically in chronological order.
const startedLayout = "2006-01-02T15:04:05.000000000Z"

// WriteReport inserts a run and its verdicts in a single transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same run
// ID twice leaves the first write untouched and returns inserted=false.
// Verdicts are stored with their position so reads reproduce report order.
func (s *Store) WriteReport(ctx context.Context, rep report.Report) (inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write report: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, endpoint, status_code, latency_ms, started, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rep.ID,
		rep.Scenario,
		rep.Endpoint,
		rep.StatusCode,
		rep.LatencyMS,
		rep.Started.UTC().Format(startedLayout),
		boolToInt(rep.Pass()),
	)
	if err != nil {
		return false, fmt.Errorf("write report: insert run: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write report: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Run already recorded - its verdicts were written with it.
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("write report: commit (existing): %w", err)
		}
		return false, nil
	}

	for i, v := range rep.Verdicts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO verdicts
			(run_id, idx, check_name, pass, code, path, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			rep.ID,
			i,
			string(v.Check),
			boolToInt(v.Pass),
			v.Code,
			v.Path,
			v.Detail,
		)
		if err != nil {
			return false, fmt.Errorf("write report: insert verdict %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write report: commit: %w", err)
	}

	return true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
