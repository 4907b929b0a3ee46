package harness

import (
	"context"
	"fmt"
	"net/http/httptest"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/soundcheck/internal/contract"
	"github.com/roach88/soundcheck/internal/gate"
	"github.com/roach88/soundcheck/internal/log"
	"github.com/roach88/soundcheck/internal/page"
	"github.com/roach88/soundcheck/internal/probe"
	"github.com/roach88/soundcheck/internal/report"
	"github.com/roach88/soundcheck/internal/schema"
	"github.com/roach88/soundcheck/internal/store"
	"github.com/roach88/soundcheck/internal/upstream"
)

// Runner executes scenarios against in-process upstream doubles.
type Runner struct {
	store   *store.Store
	metrics *gate.Metrics
	log     zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore persists every run's report.
func WithStore(st *store.Store) Option {
	return func(r *Runner) { r.store = st }
}

// WithMetrics attaches probe metrics to the runner's probes.
func WithMetrics(m *gate.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// NewRunner builds a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{log: log.WithComponent("harness")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of one scenario execution. Pass reflects the
// scenario's expectations, not the report: a scenario that expects a
// failing check passes when that check fails.
type Result struct {
	Scenario string        `json:"scenario"`
	Pass     bool          `json:"pass"`
	Errors   []string      `json:"errors,omitempty"`
	Report   report.Report `json:"report"`
}

// AddError records an expectation mismatch and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// outcome collects the computed check results a scenario's expectations
// are compared against. The ran flags distinguish "check passed" from
// "check not applicable to this exchange".
type outcome struct {
	phase        page.Phase
	schemaValid  bool
	schemaRan    bool
	contractOK   bool
	contractRan  bool
	ordered      bool
	orderingRan  bool
	pageOK       bool
	healthy      bool
	throttled    bool
	withinBudget bool
	notFound     bool
}

// Run executes one scenario: stands up the upstream double, probes it,
// runs every applicable check, injects the scenario's snapshot defects,
// and compares expectations against the computed verdicts.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	payload, err := sc.PayloadBytes()
	if err != nil {
		return nil, err
	}

	us, err := upstream.New(upstream.Config{
		Mode:    sc.UpstreamMode(),
		Fixture: payload,
		Delay:   sc.Delay.Std(),
	})
	if err != nil {
		return nil, fmt.Errorf("build upstream: %w", err)
	}
	srv := httptest.NewServer(us.Handler())
	defer srv.Close()

	// The throttle double allows one request per window; consuming it here
	// guarantees the probe observes 429.
	if sc.UpstreamMode() == upstream.ModeThrottle {
		prime, err := srv.Client().Get(srv.URL + sc.ProbePath())
		if err != nil {
			return nil, fmt.Errorf("prime throttle limiter: %w", err)
		}
		prime.Body.Close()
	}

	prober := probe.New(
		probe.WithClient(srv.Client()),
		probe.WithMetrics(r.metrics),
		probe.WithLogger(r.log),
	)
	resp := prober.Fetch(ctx, srv.URL+sc.ProbePath())

	budget := sc.Budget.Std()
	if budget == 0 {
		budget = gate.DefaultBudget
	}

	res := &Result{Scenario: sc.Name, Pass: true}
	res.Report = report.New(sc.Name, sc.ProbePath())
	res.Report.StatusCode = resp.StatusCode
	res.Report.LatencyMS = resp.Duration.Milliseconds()

	oc, err := r.check(sc, resp, budget, &res.Report)
	if err != nil {
		return nil, err
	}
	for _, v := range res.Report.Verdicts {
		r.metrics.CountVerdict(string(v.Check), v.Pass)
	}

	evaluateExpect(sc.Expect, oc, res)

	r.log.Info().
		Str("scenario", sc.Name).
		Bool("pass", res.Pass).
		Int("verdicts", len(res.Report.Verdicts)).
		Int("mismatches", len(res.Errors)).
		Msg("scenario complete")

	if r.store != nil {
		if _, err := r.store.WriteReport(ctx, res.Report); err != nil {
			return nil, fmt.Errorf("persist report: %w", err)
		}
	}

	return res, nil
}

// RunFile loads and runs a scenario file.
func (r *Runner) RunFile(ctx context.Context, path string) (*Result, error) {
	sc, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, sc)
}

// check runs every applicable check against the exchange and appends the
// verdicts in a fixed emission order, so stored and golden reports are
// position-stable.
func (r *Runner) check(sc *Scenario, resp gate.Response, budget time.Duration, rep *report.Report) (outcome, error) {
	oc := outcome{
		healthy:      gate.Healthy(resp),
		throttled:    gate.Throttled(resp),
		withinBudget: gate.WithinBudget(resp, budget),
		notFound:     gate.NotFound(resp),
	}

	rep.Add(
		report.HealthyVerdict(resp),
		report.ThrottleVerdict(resp),
		report.LatencyVerdict(resp, budget),
	)

	// The 404 probe is a scenario-selected check: emitting it for routine
	// 200 exchanges would fail every healthy report.
	if sc.Expect.NotFound != nil {
		rep.Add(report.NotFoundVerdict(resp))
	}

	// Payload checks need a body to inspect.
	bodyChecked := resp.Err == nil && resp.StatusCode == 200

	var payload contract.Payload
	var decoded bool
	if bodyChecked {
		schemaRes := schema.Validate(resp.Body, schema.AllowEmpty)
		oc.schemaRan = true
		oc.schemaValid = schemaRes.Valid
		rep.Add(report.SchemaVerdicts(schemaRes)...)

		if sc.Strict {
			cueErr := schema.ValidateCUE(resp.Body)
			oc.contractRan = true
			oc.contractOK = cueErr == nil
			rep.Add(report.CUEVerdict(cueErr))
		}

		var decodeErr error
		payload, decodeErr = contract.DecodePayload(resp.Body)
		decoded = decodeErr == nil
		if decoded {
			path, v := page.ServedOrder(payload)
			oc.orderingRan = true
			oc.ordered = v == nil
			rep.Add(report.OrderingVerdict(path, v))
		}
	}

	st := page.Transition(resp)
	oc.phase = st.Phase

	for i, idx := range sc.Toggles {
		if err := st.Toggle(idx); err != nil {
			return outcome{}, fmt.Errorf("toggles[%d]: %w", i, err)
		}
	}

	snap := page.Render(payload, st)
	if err := applyMutations(&snap, sc.Mutations); err != nil {
		return outcome{}, err
	}

	ms := page.Verify(st, payload, snap)
	oc.pageOK = len(ms) == 0
	rep.Add(report.PageVerdicts(ms)...)

	return oc, nil
}

// evaluateExpect compares declared expectations against computed
// outcomes, recording one error per mismatch.
func evaluateExpect(e Expect, oc outcome, res *Result) {
	if e.State != "" && string(oc.phase) != e.State {
		res.AddError(fmt.Sprintf("state: expected %s, observed %s", e.State, oc.phase))
	}

	checkBool := func(name string, want *bool, got, ran bool) {
		if want == nil {
			return
		}
		if !ran {
			res.AddError(fmt.Sprintf("%s: expectation declared but check did not run", name))
			return
		}
		if *want != got {
			res.AddError(fmt.Sprintf("%s: expected %t, observed %t", name, *want, got))
		}
	}

	checkBool("schema", e.Schema, oc.schemaValid, oc.schemaRan)
	checkBool("contract", e.Contract, oc.contractOK, oc.contractRan)
	checkBool("ordered", e.Ordered, oc.ordered, oc.orderingRan)
	checkBool("page", e.Page, oc.pageOK, true)
	checkBool("healthy", e.Healthy, oc.healthy, true)
	checkBool("throttled", e.Throttled, oc.throttled, true)
	checkBool("within_budget", e.WithinBudget, oc.withinBudget, true)
	checkBool("not_found", e.NotFound, oc.notFound, true)
}
