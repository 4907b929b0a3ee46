// Package report defines the structured verdict model shared by the
// harness, the run store, and the CLI.
//
// A Report aggregates the independent verdicts of one verification run.
// Every check point contributes its own verdict, so a single run surfaces
// multiple simultaneous violations instead of aborting at the first.
package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Check names one verification performed during a run.
type Check string

const (
	CheckSchema    Check = "schema"
	CheckContract  Check = "contract_cue"
	CheckOrdering  Check = "ordering"
	CheckPageState Check = "page_state"
	CheckHealthy   Check = "healthy"
	CheckThrottle  Check = "throttle"
	CheckLatency   Check = "latency"
	CheckNotFound  Check = "not_found"
)

// Verdict is the outcome of a single check point. Code and Path qualify
// failures where the check has a taxonomy (schema codes, element paths).
type Verdict struct {
	Check  Check  `json:"check"`
	Pass   bool   `json:"pass"`
	Code   string `json:"code,omitempty"`
	Path   string `json:"path,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Report aggregates one verification run.
type Report struct {
	ID         string    `json:"id"`
	Scenario   string    `json:"scenario"`
	Endpoint   string    `json:"endpoint,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	LatencyMS  int64     `json:"latency_ms"`
	Started    time.Time `json:"started"`
	Verdicts   []Verdict `json:"verdicts"`
}

// New starts a report for one run. IDs are UUIDs; Started is recorded in
// UTC.
func New(scenario, endpoint string) Report {
	return Report{
		ID:       uuid.NewString(),
		Scenario: scenario,
		Endpoint: endpoint,
		Started:  time.Now().UTC(),
	}
}

// Add appends verdicts to the report.
func (r *Report) Add(vs ...Verdict) {
	r.Verdicts = append(r.Verdicts, vs...)
}

// Pass reports whether every verdict passed.
func (r Report) Pass() bool {
	for _, v := range r.Verdicts {
		if !v.Pass {
			return false
		}
	}
	return true
}

// Failures returns the failing verdicts in report order.
func (r Report) Failures() []Verdict {
	var out []Verdict
	for _, v := range r.Verdicts {
		if !v.Pass {
			out = append(out, v)
		}
	}
	return out
}

// Normalize returns a copy with the volatile fields pinned. Run IDs,
// start times, and latencies differ per execution and would break golden
// comparison; everything contractual stays.
func (r Report) Normalize() Report {
	r.ID = "run-fixed"
	r.Started = time.Time{}
	r.LatencyMS = 0
	return r
}

// GoldenJSON marshals the normalized report as indented JSON for golden
// file comparison. Struct field order makes the output deterministic.
func (r Report) GoldenJSON() ([]byte, error) {
	return json.MarshalIndent(r.Normalize(), "", "  ")
}
