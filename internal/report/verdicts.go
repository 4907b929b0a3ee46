package report

import (
	"fmt"
	"time"

	"github.com/roach88/soundcheck/internal/gate"
	"github.com/roach88/soundcheck/internal/order"
	"github.com/roach88/soundcheck/internal/page"
	"github.com/roach88/soundcheck/internal/schema"
)

// SchemaVerdicts expands a schema result: one passing verdict when valid,
// otherwise one failing verdict per violation.
func SchemaVerdicts(res schema.Result) []Verdict {
	if res.Valid {
		return []Verdict{{Check: CheckSchema, Pass: true}}
	}
	out := make([]Verdict, len(res.Errors))
	for i, e := range res.Errors {
		out[i] = Verdict{
			Check:  CheckSchema,
			Pass:   false,
			Code:   e.Code,
			Path:   joinPath(e.Path, e.Field),
			Detail: e.Message,
		}
	}
	return out
}

// CUEVerdict wraps the CUE cross-check outcome.
func CUEVerdict(err error) Verdict {
	if err == nil {
		return Verdict{Check: CheckContract, Pass: true}
	}
	return Verdict{Check: CheckContract, Pass: false, Detail: err.Error()}
}

// OrderingVerdict wraps a non-decreasing check over the named sequence.
func OrderingVerdict(path string, v *order.Violation) Verdict {
	if v == nil {
		return Verdict{Check: CheckOrdering, Pass: true, Path: path}
	}
	return Verdict{
		Check:  CheckOrdering,
		Pass:   false,
		Path:   fmt.Sprintf("%s[%d]", path, v.Index),
		Detail: fmt.Sprintf("%q before %q", v.Prev, v.Next),
	}
}

// PageVerdicts expands oracle mismatches: one passing verdict when the
// snapshot conforms, otherwise one failing verdict per mismatch.
func PageVerdicts(ms []page.Mismatch) []Verdict {
	if len(ms) == 0 {
		return []Verdict{{Check: CheckPageState, Pass: true}}
	}
	out := make([]Verdict, len(ms))
	for i, m := range ms {
		detail := fmt.Sprintf("expected %s, observed %s", m.Expected, m.Observed)
		if m.Diff != "" {
			detail += "\n" + m.Diff
		}
		out[i] = Verdict{
			Check:  CheckPageState,
			Pass:   false,
			Path:   m.Path,
			Detail: detail,
		}
	}
	return out
}

// HealthyVerdict wraps the healthy-path predicate.
func HealthyVerdict(r gate.Response) Verdict {
	if gate.Healthy(r) {
		return Verdict{Check: CheckHealthy, Pass: true}
	}
	detail := fmt.Sprintf("status %d with non-conforming body", r.StatusCode)
	if r.Err != nil {
		detail = "request failed"
	}
	return Verdict{Check: CheckHealthy, Pass: false, Detail: detail}
}

// ThrottleVerdict records whether the exchange was throttled. Throttling
// is observation only, so this verdict always passes.
func ThrottleVerdict(r gate.Response) Verdict {
	detail := "not throttled"
	if gate.Throttled(r) {
		detail = "throttled (observed, not a violation)"
	}
	return Verdict{Check: CheckThrottle, Pass: true, Detail: detail}
}

// LatencyVerdict wraps the latency budget predicate. Detail names only the
// budget: measured latency lives in Report.LatencyMS, which golden
// comparison normalizes away.
func LatencyVerdict(r gate.Response, budget time.Duration) Verdict {
	if gate.WithinBudget(r, budget) {
		return Verdict{Check: CheckLatency, Pass: true, Detail: fmt.Sprintf("within %s budget", budget)}
	}
	return Verdict{Check: CheckLatency, Pass: false, Detail: fmt.Sprintf("exceeded %s budget", budget)}
}

// NotFoundVerdict wraps the negative-path predicate: an unknown sub-path
// must answer 404.
func NotFoundVerdict(r gate.Response) Verdict {
	if gate.NotFound(r) {
		return Verdict{Check: CheckNotFound, Pass: true}
	}
	detail := fmt.Sprintf("status %d, want 404", r.StatusCode)
	if r.Err != nil {
		detail = "request failed"
	}
	return Verdict{Check: CheckNotFound, Pass: false, Detail: detail}
}

func joinPath(path, field string) string {
	switch {
	case path == "":
		return field
	case field == "":
		return path
	default:
		return path + "." + field
	}
}
