package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (int, []byte) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestModeOKServesFixture(t *testing.T) {
	srv := startServer(t, Config{Mode: ModeOK, Fixture: []byte(`[{"name":"Glasto","bands":[]}]`)})

	status, body := get(t, srv, "/festivals")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"name":"Glasto","bands":[]}]`, string(body))
}

func TestModeOKDefaultFixture(t *testing.T) {
	srv := startServer(t, Config{Mode: ModeOK})

	status, body := get(t, srv, "/festivals")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, string(DefaultFixture), string(body))
}

func TestModeEmpty(t *testing.T) {
	srv := startServer(t, Config{Mode: ModeEmpty})

	status, body := get(t, srv, "/festivals")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(body))
}

func TestModeError(t *testing.T) {
	srv := startServer(t, Config{Mode: ModeError})

	status, _ := get(t, srv, "/festivals")
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestUnknownPathIs404(t *testing.T) {
	srv := startServer(t, Config{Mode: ModeOK})

	status, _ := get(t, srv, "/festivalz")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = get(t, srv, "/festivals/extra")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestModeThrottleLimitsSecondRequest(t *testing.T) {
	srv := startServer(t, Config{Mode: ModeThrottle})

	status, _ := get(t, srv, "/festivals")
	assert.Equal(t, http.StatusOK, status)

	status, _ = get(t, srv, "/festivals")
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestModeSlowDelaysResponse(t *testing.T) {
	srv := startServer(t, Config{Mode: ModeSlow, Delay: 80 * time.Millisecond})

	start := time.Now()
	status, _ := get(t, srv, "/festivals")
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusOK, status)
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv := startServer(t, Config{Mode: ModeOK})

	status, body := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))

	get(t, srv, "/festivals")
	status, metrics := get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(metrics), `soundcheck_upstream_requests_total{mode="ok"}`)
}

func TestRejectsUnknownMode(t *testing.T) {
	_, err := New(Config{Mode: "chaos"})
	assert.Error(t, err)
}

func TestFixtureFromFileAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "festivals.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Before","bands":[]}]`), 0o644))

	s, err := New(Config{Mode: ModeOK, FixturePath: path})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	status, body := get(t, srv, "/festivals")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"name":"Before","bands":[]}]`, string(body))

	ctx, cancel := context.WithCancel(context.Background())
	watchDone := make(chan error, 1)
	go func() { watchDone <- s.Watch(ctx) }()

	// Rewrite on every attempt: once the watcher is up, the next write
	// triggers a reload.
	updated := `[{"name":"After","bands":[]}]`
	require.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
			return false
		}
		resp, err := srv.Client().Get(srv.URL + "/festivals")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		return err == nil && string(body) == updated
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-watchDone)
}

func TestWatchRequiresFixturePath(t *testing.T) {
	s, err := New(Config{Mode: ModeOK})
	require.NoError(t, err)
	assert.Error(t, s.Watch(context.Background()))
}
