package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePayload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_ValidPayload(t *testing.T) {
	path := writePayload(t, `[
		{"name": "Glasto", "bands": [{"name": "Echo", "recordLabel": "EMI"}]},
		{"name": "Reading", "bands": []}
	]`)

	out, err := executeCommand("validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "2 festivals")
	assert.Contains(t, out, "0 fallback fields")
}

func TestValidate_CountsFallbacks(t *testing.T) {
	path := writePayload(t, `[
		{"name": "Glasto", "bands": [{"name": "Echo"}]}
	]`)

	out, err := executeCommand("validate", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// recordLabel missing: one schema error, one field on fallback
	var resp struct {
		Data ValidateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.Fallbacks)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "E102", resp.Data.Errors[0].Code)
	assert.Equal(t, "festivals[0].bands[0]", resp.Data.Errors[0].Path)
}

func TestValidate_MissingName(t *testing.T) {
	path := writePayload(t, `[{"bands": []}]`)

	out, err := executeCommand("validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "[E102] festivals[0].name: name is required")
}

func TestValidate_NotArray(t *testing.T) {
	path := writePayload(t, `{"name": "Glasto"}`)

	out, err := executeCommand("validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[E100]")
}

func TestValidate_RequireFestivals(t *testing.T) {
	path := writePayload(t, `[]`)

	// Empty is fine under the base contract
	out, err := executeCommand("validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0 festivals")

	// ...but rejected when festivals are required
	out, err = executeCommand("validate", path, "--require-festivals")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[E101]")
}

func TestValidate_Unsorted(t *testing.T) {
	path := writePayload(t, `[
		{"name": "Reading", "bands": []},
		{"name": "Leeds", "bands": []}
	]`)

	out, err := executeCommand("validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `ordering at festivals[0]: "Reading" before "Leeds"`)
}

func TestValidate_StrictContract(t *testing.T) {
	path := writePayload(t, `[{"name": 7, "bands": []}]`)

	out, err := executeCommand("validate", path, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "contract: payload does not satisfy contract")
}

func TestValidate_FileNotFound(t *testing.T) {
	_, err := executeCommand("validate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to read payload")
}

func TestValidate_JSONFormat(t *testing.T) {
	path := writePayload(t, `[{"name": "Glasto", "bands": []}]`)

	out, err := executeCommand("validate", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   ValidateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 1, resp.Data.Festivals)
}

func TestValidate_JSONFormatInvalid(t *testing.T) {
	path := writePayload(t, `[{"bands": []}]`)

	out, err := executeCommand("validate", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string         `json:"status"`
		Data   ValidateResult `json:"data"`
		Error  *CLIError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E102", resp.Error.Code)
}
