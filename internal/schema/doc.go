// Package schema validates raw festival payloads against the structural
// contract.
//
// Two validators cover the same contract:
//   - Validate walks the untyped JSON decoding and produces path-precise
//     verdicts (festivals[i].bands[j].field) with stable error codes.
//   - ValidateCUE unifies the payload with the embedded CUE definition,
//     used as a second opinion on strict runs.
//
// Emptiness is never a schema error: a present-but-empty string is valid
// here and resolves through the fallback rule at render time. Absence of a
// required key, or a value of the wrong type, is an error.
package schema
