package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")

func TestTestCommandPassesHarnessScenarios(t *testing.T) {
	stdout, _, code := runCLI(t, "test", harnessScenarios)
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "✓ splice_insert (7 jobs)")
	assert.Contains(t, stdout, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	stdout, _, code := runCLI(t, "test", harnessScenarios, "--filter", "asap_*", "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)

	var out TestResult
	decodeResponse(t, stdout, &out)
	require.Len(t, out.Scenarios, 1)
	assert.Equal(t, "asap_top_level", out.Scenarios[0].Name)
	assert.Equal(t, 3, out.Scenarios[0].Jobs)
}

func TestTestCommandUpdateWritesGoldenFiles(t *testing.T) {
	golden := filepath.Join(t.TempDir(), "golden")
	stdout, _, code := runCLI(t, "test", harnessScenarios, "--update", "--golden", golden)
	require.Equal(t, ExitSuccess, code, stdout)

	got, err := os.ReadFile(filepath.Join(golden, "asap_top_level.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "golden", "asap_top_level.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	golden := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(golden, "asap_top_level.golden"), []byte("{}"), 0o644))

	stdout, _, code := runCLI(t, "test", harnessScenarios, "--filter", "asap_*", "--golden", golden, "--format", "json")
	assert.Equal(t, ExitFailure, code)

	var out TestResult
	resp := decodeResponse(t, stdout, &out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, out.Failed)
	assert.Contains(t, out.Scenarios[0].Errors[0], "does not match golden file")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	fixture, err := filepath.Abs(playoutFixture)
	require.NoError(t, err)
	scenario := `name: wrong_count
description: "Expects one job too many"
fixture: ` + fixture + `
plan:
  from: 0s
  to: 120ms
assertions:
  - type: job_count
    count: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_count.yaml"), []byte(scenario), 0o644))

	stdout, _, code := runCLI(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ wrong_count")
	assert.Contains(t, stdout, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandEmptyDirectory(t *testing.T) {
	stdout, _, code := runCLI(t, "test", t.TempDir())
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestTestCommandMissingDirectory(t *testing.T) {
	_, stderr, code := runCLI(t, "test", "/nonexistent/scenarios")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, ErrCodeNotFound)
}
