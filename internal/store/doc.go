// Package store provides SQLite-backed durable storage for verification
// run history.
//
// The store keeps an append-only record of runs and their verdicts:
//   - Runs: one row per verification run (scenario, endpoint, timing, outcome)
//   - Verdicts: one row per check verdict, ordered within its run
//
// # Write Semantics
//
// A report and its verdicts are written in a single transaction, keyed by
// the run's UUID with ON CONFLICT(id) DO NOTHING. Re-writing a run is a
// silent no-op, so retried harness invocations never duplicate history.
//
// # Read Semantics
//
// Verdicts read back in emission order (ORDER BY idx ASC), so a stored
// report reconstructs exactly as the engine produced it. Run listings
// order newest first; the started column is fixed-width UTC text, so its
// lexicographic order is chronological.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
