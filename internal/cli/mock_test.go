package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCommand_InvalidMode(t *testing.T) {
	_, err := executeCommand("mock", "--mode", "chaos")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown upstream mode "chaos"`)
}

func TestMockCommand_MissingFixture(t *testing.T) {
	_, err := executeCommand("mock", "--fixture", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to build upstream")
}

func TestMockCommand_RejectsArgs(t *testing.T) {
	_, err := executeCommand("mock", "extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
