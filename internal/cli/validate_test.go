package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/renderplan/internal/compiler"
)

func TestValidateValidFixture(t *testing.T) {
	stdout, _, code := runCLI(t, "validate", playoutFixture)
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "✓ playout")
	assert.Contains(t, stdout, "1 fixture(s) valid")
}

func TestValidateDirectoryJSON(t *testing.T) {
	stdout, _, code := runCLI(t, "validate", filepath.Join("testdata", "multi"), "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)

	var out ValidationResult
	resp := decodeResponse(t, stdout, &out)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, out.Valid)
	require.Len(t, out.Fixtures, 2)
	assert.Equal(t, "first", out.Fixtures[0].Name)
	assert.Equal(t, "second", out.Fixtures[1].Name)
}

func TestValidateReportsErrors(t *testing.T) {
	stdout, stderr, code := runCLI(t, "validate", filepath.Join("testdata", "invalid"))
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Error [E007]: validation failed")
	assert.Contains(t, stdout, "✗ dangling")
	assert.Contains(t, stdout, compiler.ErrUnknownPrerequisite)
	assert.Contains(t, stderr, "validation failed")
}

func TestValidateCompileError(t *testing.T) {
	stdout, _, code := runCLI(t, "validate", filepath.Join("testdata", "broken"), "--format", "json")
	assert.Equal(t, ExitCommandError, code)
	resp := decodeResponse(t, stdout, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCompileFailed, resp.Error.Code)
}

func TestValidateNonExistentPath(t *testing.T) {
	stdout, stderr, code := runCLI(t, "validate", "/nonexistent/fixtures")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "not found")
	assert.Contains(t, stderr, ErrCodeNotFound)
}
