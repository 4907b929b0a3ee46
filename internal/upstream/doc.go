// Package upstream implements the mock festival endpoint.
//
// The engine never talks to a production service; scenarios, CLI probes,
// and integration tests run against this double instead. One Server
// instance serves one behavior mode:
//
//	ok        200 with the configured fixture payload
//	empty     200 with []
//	error     500
//	throttle  fixture payload behind a global rate limit; requests over
//	          the limit answer 429
//	slow      fixture payload after a configurable delay
//
// Unknown sub-paths answer 404 in every mode. /metrics exposes request
// counts per mode; /healthz answers 200 for liveness checks.
//
// A fixture can come from bytes, from a file, or fall back to the built-in
// sample. File fixtures support live reload (Watch), so a long-running
// mock can be steered while a page is open against it. Fixtures are served
// verbatim and deliberately unvalidated: serving a broken payload is how
// data-level defects are injected.
package upstream
