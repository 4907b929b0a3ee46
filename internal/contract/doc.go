// Package contract provides the festival data model and the display
// fallback rule.
//
// This package contains type definitions and pure functions only. All other
// internal packages that touch payloads import contract; contract imports
// nothing internal. This keeps the data model the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Text fields are pointers: an absent or null JSON key decodes to nil,
//     an empty string decodes to a non-nil pointer. The schema layer cares
//     about the first, the fallback rule about both.
//   - Festival.Bands is a pointer slice for the same reason: a missing
//     "bands" key (nil) is a schema violation, an empty array is not.
//   - Exactly one fallback rule exists (Display). Festival names, band names
//     and record labels all resolve through it.
package contract
