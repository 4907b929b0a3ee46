// Package harness executes verification scenarios end to end: it stands up
// an in-process upstream double, probes it over real HTTP, runs every
// check, and compares the outcomes against the scenario's declared
// expectations.
//
// # What a scenario run does and does not prove
//
// IMPORTANT: the snapshot verified by a scenario run comes from the
// reference renderer (page.Render), not from a browser. A run therefore
// exercises the full pipeline below the page - probe timing, gate
// predicates, schema walk, CUE cross-check, ordering, state transitions -
// but the page half of the oracle is only as honest as the injected
// mutations. An unmutated scenario asserting page: true confirms the
// oracle accepts its own reference rendering, nothing more.
//
// Two things keep this from being circular:
//
//  1. Verify builds its expectations from the display projection directly
//     and never calls Render, so the renderer and the oracle can disagree.
//  2. Mutation scenarios inject known defects (swapped containers, blanked
//     names, dropped cards, forced visibility) and expect the oracle to
//     catch each one.
//
// Capturing a real page lives in the browse package; snapshots taken there
// feed the same page.Verify.
//
// # Expectations, not assertions
//
// Verdicts record what the engine observed; the scenario's expect block
// declares which way each check must come out. A defect-injection scenario
// PASSES when the engine catches the defect. Result.Pass is agreement
// between expectation and outcome, so the suite stays meaningful for
// failure paths without inverted assertions in test code.
package harness
