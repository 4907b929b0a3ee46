// Package page implements the page-state oracle.
//
// The oracle decides what a correctly behaving festival page must show for
// any upstream outcome, and verifies a captured snapshot against that.
//
// STATE MACHINE:
//
//	Loading -> Normal      200 with a decodable, non-empty payload
//	Loading -> Empty       200 with an empty array
//	Loading -> ErrorState  any failure: 4xx/5xx, transport error, or a
//	                       success body that does not decode as a payload
//
// A Normal page additionally carries one card per displayed festival,
// each Collapsed or Expanded (initial Collapsed, toggled independently).
//
// VERIFICATION:
//
// Verify compares a snapshot against the expected rendering, accumulating
// every mismatch instead of stopping at the first:
//   - Normal: one container per payload festival, sentinel-resolved text,
//     non-decreasing locale-aware ordering at both levels, band visibility
//     matching each card's state.
//   - Empty: zero festival containers and the fixed empty notice.
//   - ErrorState: the fixed error notice; containers are not asserted.
//
// Festivals whose resolved names are equal may appear in any mutual order
// (a stable and an unstable sort are both correct), so equal-name runs are
// compared as multisets, never positionally.
//
// The oracle is pure: it performs no I/O and owns no state between calls.
// Snapshots come from collaborators - the rod driver for a real page, or
// Render for the simulated path.
package page
