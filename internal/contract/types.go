package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Band is one act on a festival bill.
type Band struct {
	Name        *string `json:"name"`
	RecordLabel *string `json:"recordLabel"`
}

// Festival groups an ordered bill of bands under a festival name.
type Festival struct {
	Name  *string `json:"name"`
	Bands *[]Band `json:"bands"`
}

// Payload is the decoded body of the festivals endpoint: an ordered sequence
// of festivals.
type Payload []Festival

// BandList returns the festival's bands, or nil when the bands key was absent
// or null in the source JSON.
func (f Festival) BandList() []Band {
	if f.Bands == nil {
		return nil
	}
	return *f.Bands
}

// DecodePayload decodes a raw response body into a Payload.
//
// The body must be a single JSON array with nothing after it; any other
// top-level shape (object, null, scalar, trailing data) is an error. Field
// type mismatches inside elements also fail here - callers that need
// path-precise verdicts for malformed payloads use the schema package, which
// walks the untyped decoding instead.
func DecodePayload(raw []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("decode payload: body is not a JSON array")
	}

	var p Payload
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode payload: trailing data after array")
	}

	return p, nil
}
