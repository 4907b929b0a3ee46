// Package browse captures snapshots of the real festival page.
//
// The driver runs a headless Chromium through rod. A capture navigates to
// the page under test, waits for the render to settle, and reads the
// festival, band, and notice nodes into a page.Snapshot using a
// data-testid selector convention (overridable for pages that mark their
// nodes differently).
//
// Every capture hijacks the festivals request before the page loads. With
// a stub the request never reaches the network: the stubbed status/body -
// or a request-level failure - is what the page sees. Without one the
// request is loaded live and passed through untouched. Either way the
// resolved exchange is recorded in gate-checkable form, so the same
// capture that yields a snapshot also yields the Response the gate
// predicates and the state oracle run on.
//
// The driver is the real-page counterpart of page.Render: Render
// synthesizes the snapshot a correct page would show, Capture reads what
// an actual page does show, and page.Verify judges both the same way.
package browse
