// Package gate holds the latency/availability boundary predicates.
//
// Every predicate is a pure, stateless function over a response descriptor.
// No retries, no side effects; metric observation is a separate, optional
// concern (Metrics) that the predicates themselves never touch.
package gate

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"
)

// DefaultBudget is the latency budget applied when the caller does not
// supply one.
const DefaultBudget = 800 * time.Millisecond

// Response describes one upstream exchange: status, wall-clock duration,
// raw body, and any request-level failure. A non-nil Err means no usable
// response was received; StatusCode and Body are zero in that case.
type Response struct {
	StatusCode int           `json:"status_code"`
	Duration   time.Duration `json:"duration"`
	Body       []byte        `json:"-"`
	Err        error         `json:"-"`
}

// Healthy reports whether the exchange satisfies the healthy-path contract:
// status 200 with a body that is a JSON array holding at least one element.
// Element contents are not inspected here; that is the schema's job.
func Healthy(r Response) bool {
	if r.Err != nil || r.StatusCode != http.StatusOK {
		return false
	}
	elems, ok := arrayElems(r.Body)
	return ok && len(elems) > 0
}

// Throttled reports whether the upstream answered 429. Throttling is an
// observation, never a contract violation.
func Throttled(r Response) bool {
	return r.Err == nil && r.StatusCode == http.StatusTooManyRequests
}

// WithinBudget reports whether the exchange completed strictly under the
// given latency budget.
func WithinBudget(r Response, budget time.Duration) bool {
	return r.Duration < budget
}

// NotFound reports whether the upstream answered 404. Used for
// negative-path checks against unknown sub-paths.
func NotFound(r Response) bool {
	return r.Err == nil && r.StatusCode == http.StatusNotFound
}

// arrayElems decodes the body as a JSON array without inspecting elements.
func arrayElems(body []byte) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, false
	}
	return elems, true
}
