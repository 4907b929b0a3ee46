// Package probe issues timed GET requests against a festivals endpoint.
//
// The prober is the only piece that talks HTTP on the verification path.
// It returns a gate.Response describing the exchange; deciding what the
// exchange means is left entirely to the gate predicates and the oracle.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/soundcheck/internal/gate"
	"github.com/roach88/soundcheck/internal/log"
)

// Prober fetches the festivals endpoint and reports timing, status, and
// body for the gate predicates.
type Prober struct {
	client  *http.Client
	metrics *gate.Metrics
	log     zerolog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithClient overrides the HTTP client. Tests pass the httptest server's
// client so connections are torn down with the server.
func WithClient(c *http.Client) Option {
	return func(p *Prober) { p.client = c }
}

// WithMetrics attaches probe metrics. Every fetch is observed.
func WithMetrics(m *gate.Metrics) Option {
	return func(p *Prober) { p.metrics = m }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Prober) { p.log = l }
}

// New builds a Prober. The default client timeout sits well above the
// default latency budget: slow responses must be measured as over budget,
// not cut off into transport errors.
func New(opts ...Option) *Prober {
	p := &Prober{
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.WithComponent("probe"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch issues GET url with the upstream accept header and returns the
// timed exchange. Transport failures are folded into Response.Err; ctx
// governs cancellation.
func (p *Prober) Fetch(ctx context.Context, url string) gate.Response {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gate.Response{Err: fmt.Errorf("build request: %w", err)}
	}
	// The upstream contract asks for text/plain even though the body is
	// JSON-shaped.
	req.Header.Set("Accept", "text/plain")

	start := time.Now()
	resp, err := p.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		r := gate.Response{Duration: duration, Err: err}
		p.metrics.Observe(r)
		p.log.Warn().Err(err).Str("url", url).Dur("duration", duration).Msg("probe failed")
		return r
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r := gate.Response{Duration: duration, Err: fmt.Errorf("read body: %w", err)}
		p.metrics.Observe(r)
		p.log.Warn().Err(err).Str("url", url).Msg("probe body read failed")
		return r
	}

	r := gate.Response{StatusCode: resp.StatusCode, Duration: duration, Body: body}
	p.metrics.Observe(r)
	p.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Int("bytes", len(body)).
		Msg("probe complete")
	return r
}
