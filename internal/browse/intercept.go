package browse

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/roach88/soundcheck/internal/gate"
)

// ErrStubbedFailure marks an exchange a stub failed at the network layer.
// It is the Err recorded for the capture, so gate predicates treat the
// stubbed abort like a real transport failure.
var ErrStubbedFailure = errors.New("festivals request aborted by stub")

// Stub pins how the festivals request resolves instead of letting it
// reach the upstream: either a substituted status/body or a request-level
// failure.
type Stub struct {
	// StatusCode of the substituted response. 0 means 200.
	StatusCode int

	// Body is served verbatim as application/json.
	Body []byte

	// Fail aborts the request at the network layer instead of answering.
	// Excludes StatusCode and Body.
	Fail bool

	// Delay holds the resolution for this long, to exercise the loading
	// phase and the latency gate.
	Delay time.Duration
}

func (s Stub) validate() error {
	if s.Fail && (s.StatusCode != 0 || len(s.Body) != 0) {
		return errors.New("stub: Fail excludes StatusCode and Body")
	}
	return nil
}

// resolveFestivals is the hijack handler for the festivals endpoint. A
// stubbed request resolves from the stub alone; otherwise the live
// response is loaded and passed through. The resolved exchange is
// recorded either way.
func (d *Driver) resolveFestivals(stub *Stub) func(*rod.Hijack) {
	return func(h *rod.Hijack) {
		start := time.Now()

		if stub != nil {
			if stub.Delay > 0 {
				time.Sleep(stub.Delay)
			}
			if stub.Fail {
				h.Response.Fail(proto.NetworkErrorReasonConnectionRefused)
				d.record(&gate.Response{Duration: time.Since(start), Err: ErrStubbedFailure})
				return
			}
			code := stub.StatusCode
			if code == 0 {
				code = http.StatusOK
			}
			h.Response.Payload().ResponseCode = code
			h.Response.SetHeader("Content-Type", "application/json")
			h.Response.SetBody(stub.Body)
			d.record(&gate.Response{
				StatusCode: code,
				Duration:   time.Since(start),
				Body:       stub.Body,
			})
			return
		}

		if err := h.LoadResponse(d.client, true); err != nil {
			h.Response.Fail(proto.NetworkErrorReasonConnectionFailed)
			d.record(&gate.Response{Duration: time.Since(start), Err: err})
			return
		}
		d.record(&gate.Response{
			StatusCode: h.Response.Payload().ResponseCode,
			Duration:   time.Since(start),
			Body:       []byte(h.Response.Body()),
		})
	}
}
