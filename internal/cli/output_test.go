package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/soundcheck/internal/report"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E100", "payload is not an array", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E100", resp.Error.Code)
	assert.Equal(t, "payload is not an array", resp.Error.Message)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("Payload valid")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Payload valid")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E100", "payload is not an array", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E100]")
	assert.Contains(t, buf.String(), "payload is not an array")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"file": "payload.json"}
	err := formatter.Error("E100", "payload is not an array", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E100]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Probing %s", "http://localhost:8080/festivals")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Probing http://localhost:8080/festivals")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestOutputFormatter_VerboseLogPrefersErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("diagnostic")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "diagnostic")
}

func TestExitError_Error(t *testing.T) {
	plain := NewExitError(ExitCommandError, "database not found")
	assert.Equal(t, "database not found", plain.Error())

	wrapped := WrapExitError(ExitCommandError, "failed to open database", errors.New("permission denied"))
	assert.Equal(t, "failed to open database: permission denied", wrapped.Error())
	assert.EqualError(t, wrapped.Unwrap(), "permission denied")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "checks failed")))

	// Non-ExitError defaults to failure
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))

	// Wrapped ExitErrors still surface their code
	wrapped := fmt.Errorf("context: %w", NewExitError(ExitCommandError, "bad path"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestRenderVerdicts(t *testing.T) {
	rep := report.Report{
		Verdicts: []report.Verdict{
			{Check: report.CheckHealthy, Pass: true},
			{Check: report.CheckSchema, Pass: false, Code: "E102", Path: "festivals[0].name", Detail: "name is required"},
			{Check: report.CheckThrottle, Pass: true, Detail: "not throttled"},
		},
	}

	buf := &bytes.Buffer{}
	renderVerdicts(buf, rep)

	out := buf.String()
	assert.Contains(t, out, "✓ healthy")
	assert.Contains(t, out, "✗ schema [E102] festivals[0].name: name is required")
	assert.Contains(t, out, "✓ throttle: not throttled")
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}
