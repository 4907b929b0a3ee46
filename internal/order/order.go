// Package order verifies the canonical display ordering: non-decreasing by
// resolved display name under an explicit, locale-aware comparator.
//
// Comparison always goes through a Comparator so behavior is deterministic
// and specified, never ambient byte ordering (which would misplace "apple"
// after "Banana").
package order

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator wraps a collation for a fixed locale.
type Comparator struct {
	c *collate.Collator
}

// New returns a comparator collating under the given locale.
func New(tag language.Tag) *Comparator {
	return &Comparator{c: collate.New(tag)}
}

// Default returns the comparator the contract is defined against: English
// collation, case- and diacritic-sensitive.
func Default() *Comparator {
	return New(language.English)
}

// Compare returns -1, 0, or +1 depending on whether a sorts before, equal
// to, or after b.
func (c *Comparator) Compare(a, b string) int {
	return c.c.CompareString(a, b)
}

// Violation identifies the adjacent pair (Index, Index+1) that breaks
// non-decreasing order.
type Violation struct {
	Index int    `json:"index"`
	Prev  string `json:"prev"`
	Next  string `json:"next"`
}

// NonDecreasing checks that keys never decrease. Sequences of length 0 or 1
// are trivially ordered. Returns nil when ordered, otherwise the first
// offending adjacent pair.
//
// Keys are expected to be resolved display names: sentinel-substituted
// entries compare with their substituted text, so a run of equal sentinels
// is ordered.
func NonDecreasing(cmp *Comparator, keys []string) *Violation {
	for i := 0; i+1 < len(keys); i++ {
		if cmp.Compare(keys[i], keys[i+1]) > 0 {
			return &Violation{Index: i, Prev: keys[i], Next: keys[i+1]}
		}
	}
	return nil
}
