package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/soundcheck/internal/report"
	"github.com/roach88/soundcheck/internal/store"
)

func festivalServer(t *testing.T, status int, body string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe_HealthyEndpoint(t *testing.T) {
	srv := festivalServer(t, http.StatusOK, `[{"name": "Glasto", "bands": []}]`, 0)

	out, err := executeCommand("probe", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+srv.URL)
	assert.Contains(t, out, "✓ healthy")
	assert.Contains(t, out, "✓ schema")
	assert.Contains(t, out, "✓ ordering")
}

func TestProbe_ServerError(t *testing.T) {
	srv := festivalServer(t, http.StatusInternalServerError, "internal server error", 0)

	out, err := executeCommand("probe", srv.URL)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ healthy: status 500 with non-conforming body")
	assert.Contains(t, err.Error(), "1 check(s) failed")
}

func TestProbe_SchemaViolations(t *testing.T) {
	srv := festivalServer(t, http.StatusOK, `[{"bands": []}]`, 0)

	out, err := executeCommand("probe", srv.URL)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	// Healthy only checks the array shape; the missing field is the schema's
	assert.Contains(t, out, "✓ healthy")
	assert.Contains(t, out, "✗ schema [E102] festivals[0].name")
}

func TestProbe_BudgetExceeded(t *testing.T) {
	srv := festivalServer(t, http.StatusOK, `[]`, 30*time.Millisecond)

	out, err := executeCommand("probe", srv.URL, "--budget", "1ms")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ latency: exceeded 1ms budget")
}

func TestProbe_StrictAddsContractCheck(t *testing.T) {
	srv := festivalServer(t, http.StatusOK, `[{"name": "Glasto", "bands": []}]`, 0)

	out, err := executeCommand("probe", srv.URL, "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ contract_cue")
}

func TestProbe_RequestError(t *testing.T) {
	// Nothing listens on the probed port
	out, err := executeCommand("probe", "http://127.0.0.1:1/festivals")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "request failed")
	assert.Contains(t, out, "✗ healthy")
}

func TestProbe_JSONFormat(t *testing.T) {
	srv := festivalServer(t, http.StatusOK, `[{"name": "Glasto", "bands": []}]`, 0)

	out, err := executeCommand("probe", srv.URL, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   report.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "probe", resp.Data.Scenario)
	assert.Equal(t, srv.URL, resp.Data.Endpoint)
	assert.Equal(t, http.StatusOK, resp.Data.StatusCode)
	assert.True(t, resp.Data.Pass())
}

func TestProbe_PersistsReport(t *testing.T) {
	srv := festivalServer(t, http.StatusOK, `[{"name": "Glasto", "bands": []}]`, 0)
	dbPath := filepath.Join(t.TempDir(), "probe.db")

	_, err := executeCommand("probe", srv.URL, "--db", dbPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "probe", runs[0].Scenario)
	assert.Equal(t, srv.URL, runs[0].Endpoint)
	assert.True(t, runs[0].Passed)
}

func TestProbe_BadDatabasePath(t *testing.T) {
	srv := festivalServer(t, http.StatusOK, `[]`, 0)

	_, err := executeCommand("probe", srv.URL, "--db", filepath.Join(t.TempDir(), "missing", "probe.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to open database")
}
