package contract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Sentinel is the fixed fallback text substituted for any absent or empty
// display field when rendered.
const Sentinel = "Unknown"

// Display resolves the text to show for an optional field.
//
// If v is nil, empty, or whitespace-only it returns (Sentinel, true).
// Otherwise it returns the NFC-normalized, whitespace-trimmed value and
// false. The returned text is stable under re-application.
//
// This is the only fallback rule in the system. Payload-level "missing
// field" annotation and page-level "must display sentinel" checks both go
// through it, so the two layers can never disagree on what renders.
func Display(v *string) (text string, fallback bool) {
	if v == nil {
		return Sentinel, true
	}
	trimmed := strings.TrimSpace(norm.NFC.String(*v))
	if trimmed == "" {
		return Sentinel, true
	}
	return trimmed, false
}
