package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares the normalized report
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files hold the normalized report: run ID, start time, and
// measured latency are pinned, everything contractual stays. Scenarios
// whose failure details carry non-deterministic text stay out of the
// golden suite and are asserted directly instead.
func RunWithGolden(t *testing.T, r *Runner, sc *Scenario) error {
	t.Helper()

	res, err := r.Run(context.Background(), sc)
	if err != nil {
		return err
	}
	AssertGolden(t, sc.Name, res)
	return nil
}

// AssertGolden compares an already-obtained result's report against the
// golden file named after the scenario.
func AssertGolden(t *testing.T, scenarioName string, res *Result) {
	t.Helper()

	data, err := res.Report.GoldenJSON()
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	// Golden files are committed with a trailing newline.
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
}
