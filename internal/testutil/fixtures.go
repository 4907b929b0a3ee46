// Package testutil provides deterministic fixture builders for tests.
//
// Payload types use pointer fields to distinguish absent keys from empty
// strings, which makes literals noisy; these builders keep test bodies
// readable.
package testutil

import "github.com/roach88/soundcheck/internal/contract"

// Str returns a pointer to s.
func Str(s string) *string { return &s }

// NewBand builds a band with both fields present.
func NewBand(name, label string) contract.Band {
	return contract.Band{Name: Str(name), RecordLabel: Str(label)}
}

// NewFestival builds a festival with a present name and a present bands
// key. Zero bands still yields an explicit empty list, never a missing key.
func NewFestival(name string, bands ...contract.Band) contract.Festival {
	if bands == nil {
		bands = []contract.Band{}
	}
	return contract.Festival{Name: Str(name), Bands: &bands}
}

// NewFestivalNoName builds a festival whose name key is absent.
func NewFestivalNoName(bands ...contract.Band) contract.Festival {
	if bands == nil {
		bands = []contract.Band{}
	}
	return contract.Festival{Bands: &bands}
}
