package browse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/soundcheck/internal/gate"
)

func TestNewDefaults(t *testing.T) {
	d := New()

	assert.Equal(t, DefaultEndpoint, d.endpoint)
	assert.Equal(t, DefaultSettle, d.settle)
	assert.Equal(t, DefaultNavigationTimeout, d.navTimeout)
	assert.Equal(t, DefaultSelectors(), d.sel)
	assert.Equal(t, 10*time.Second, d.client.Timeout)
}

func TestOptionsOverrideDefaults(t *testing.T) {
	d := New(
		WithEndpoint("/api/listings"),
		WithSettle(50*time.Millisecond),
		WithNavigationTimeout(5*time.Second),
		WithBrowserURL("ws://127.0.0.1:9222/devtools"),
	)

	assert.Equal(t, "/api/listings", d.endpoint)
	assert.Equal(t, 50*time.Millisecond, d.settle)
	assert.Equal(t, 5*time.Second, d.navTimeout)
	assert.Equal(t, "ws://127.0.0.1:9222/devtools", d.browserURL)
}

func TestWithSelectorsOverlaysNonZeroFields(t *testing.T) {
	d := New(WithSelectors(Selectors{
		Notice: `[role="alert"]`,
		Name:   "h2.festival",
	}))

	assert.Equal(t, `[role="alert"]`, d.sel.Notice)
	assert.Equal(t, "h2.festival", d.sel.Name)
	// Untouched fields keep the data-testid defaults.
	assert.Equal(t, DefaultSelectors().Festival, d.sel.Festival)
	assert.Equal(t, DefaultSelectors().Band, d.sel.Band)
}

func TestCaptureRequiresStart(t *testing.T) {
	d := New()

	_, err := d.Capture(context.Background(), "http://127.0.0.1:1/", CaptureOptions{})
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestCaptureRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    CaptureOptions
		wantErr string
	}{
		{
			"fail with body",
			CaptureOptions{Stub: &Stub{Fail: true, Body: []byte(`[]`)}},
			"Fail excludes StatusCode and Body",
		},
		{
			"fail with status",
			CaptureOptions{Stub: &Stub{Fail: true, StatusCode: 503}},
			"Fail excludes StatusCode and Body",
		},
		{
			"negative toggle",
			CaptureOptions{Toggles: []int{-1}},
			"index out of range",
		},
	}

	d := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Options are validated before the browser is touched, so a
			// stopped driver reaches the validation errors.
			_, err := d.Capture(context.Background(), "http://127.0.0.1:1/", tt.opts)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestExchangeTracksLastRecord(t *testing.T) {
	d := New()

	_, ok := d.Exchange()
	assert.False(t, ok)

	d.record(&gate.Response{StatusCode: 200, Duration: 12 * time.Millisecond, Body: []byte(`[]`)})
	resp, ok := d.Exchange()
	require.True(t, ok)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []byte(`[]`), resp.Body)

	// A new capture clears the previous exchange.
	d.record(nil)
	_, ok = d.Exchange()
	assert.False(t, ok)
}

func TestCloseBeforeStart(t *testing.T) {
	assert.NoError(t, New().Close())
}

func TestStubValidate(t *testing.T) {
	assert.NoError(t, Stub{Fail: true}.validate())
	assert.NoError(t, Stub{StatusCode: 500, Body: []byte(`oops`)}.validate())
	assert.Error(t, Stub{Fail: true, Body: []byte(`[]`)}.validate())
}
