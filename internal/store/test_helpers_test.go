package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/soundcheck/internal/report"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestReport creates a report with a fixed ID and start time plus
// the given verdicts.
func createTestReport(id, scenario string, started time.Time, verdicts ...report.Verdict) report.Report {
	return report.Report{
		ID:         id,
		Scenario:   scenario,
		Endpoint:   "http://127.0.0.1:0/festivals",
		StatusCode: 200,
		LatencyMS:  12,
		Started:    started,
		Verdicts:   verdicts,
	}
}

func passVerdict(check report.Check) report.Verdict {
	return report.Verdict{Check: check, Pass: true}
}

func failVerdict(check report.Check, detail string) report.Verdict {
	return report.Verdict{Check: check, Pass: false, Detail: detail}
}
