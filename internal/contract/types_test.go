package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	raw := []byte(`[{"name":"Glasto","bands":[{"name":"Echo","recordLabel":"EMI"}]}]`)

	p, err := DecodePayload(raw)
	require.NoError(t, err)
	require.Len(t, p, 1)

	require.NotNil(t, p[0].Name)
	assert.Equal(t, "Glasto", *p[0].Name)

	bands := p[0].BandList()
	require.Len(t, bands, 1)
	require.NotNil(t, bands[0].Name)
	assert.Equal(t, "Echo", *bands[0].Name)
	require.NotNil(t, bands[0].RecordLabel)
	assert.Equal(t, "EMI", *bands[0].RecordLabel)
}

func TestDecodePayloadDistinguishesAbsentFromEmpty(t *testing.T) {
	raw := []byte(`[
		{"bands": []},
		{"name": "", "bands": [{"name": null, "recordLabel": ""}]},
		{"name": "NoBandsKey"}
	]`)

	p, err := DecodePayload(raw)
	require.NoError(t, err)
	require.Len(t, p, 3)

	// Absent name key decodes to nil.
	assert.Nil(t, p[0].Name)
	// Explicit empty array is present but empty.
	require.NotNil(t, p[0].Bands)
	assert.Empty(t, p[0].BandList())

	// Empty string is a non-nil pointer; null is nil.
	require.NotNil(t, p[1].Name)
	assert.Equal(t, "", *p[1].Name)
	bands := p[1].BandList()
	require.Len(t, bands, 1)
	assert.Nil(t, bands[0].Name)
	require.NotNil(t, bands[0].RecordLabel)
	assert.Equal(t, "", *bands[0].RecordLabel)

	// Missing bands key decodes to a nil pointer.
	assert.Nil(t, p[2].Bands)
}

func TestDecodePayloadRejectsNonArrays(t *testing.T) {
	for _, raw := range []string{`null`, `{}`, `"festivals"`, `42`, ``, `   `} {
		_, err := DecodePayload([]byte(raw))
		assert.Error(t, err, "input %q", raw)
	}
}

func TestDecodePayloadRejectsTrailingData(t *testing.T) {
	_, err := DecodePayload([]byte(`[] []`))
	assert.Error(t, err)
}

func TestDecodePayloadToleratesUnknownFields(t *testing.T) {
	// The contract names required fields; it does not forbid extras.
	raw := []byte(`[{"name":"Glasto","bands":[],"city":"Pilton"}]`)

	p, err := DecodePayload(raw)
	require.NoError(t, err)
	require.Len(t, p, 1)
	assert.Equal(t, "Glasto", *p[0].Name)
}
