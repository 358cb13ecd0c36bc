package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario file referencing the playout fixture.
func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	fixture, err := filepath.Abs(filepath.Join("testdata", "fixtures", "playout.cue"))
	require.NoError(t, err)
	path := filepath.Join(dir, "scenario.yaml")
	content := "fixture: " + fixture + "\n" + body
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "playout_timebound.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "playout_timebound", s.Name)
	assert.Equal(t, filepath.Join("testdata", "fixtures", "playout.cue"), s.Fixture, "resolved against scenario dir")
	assert.Equal(t, PlanStep{Port: "main", From: "200ms", To: "300ms", Expand: true, BreakPoint: "40ms"}, s.Plan)
	assert.True(t, s.Execute)
	require.NotEmpty(t, s.Assertions)
	assert.Equal(t, AssertSegmentation, s.Assertions[0].Type)
}

func TestLoadScenario_OptionalFilters(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "splice_insert.yaml"))
	require.NoError(t, err)

	require.Len(t, s.Splices, 1)
	assert.Equal(t, SpliceStep{Start: "240ms", After: "280ms", Exits: map[string]string{"main": "decode"}}, s.Splices[0])

	last := s.Assertions[len(s.Assertions)-1]
	require.NotNil(t, last.Frame)
	require.NotNil(t, last.Depth)
	assert.Equal(t, int64(6), *last.Frame)
	assert.Equal(t, 0, *last.Depth)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "misspelled key"
plan: {from: 0s, to: 40ms}
assertion:
  - type: job_count
`)
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no name", `
description: d
plan: {from: 0s, to: 40ms}
assertions: [{type: job_count}]
`, "name is required"},
		{"no description", `
name: n
plan: {from: 0s, to: 40ms}
assertions: [{type: job_count}]
`, "description is required"},
		{"no assertions", `
name: n
description: d
plan: {from: 0s, to: 40ms}
`, "assertions list is required"},
		{"no range", `
name: n
description: d
plan: {from: 0s}
assertions: [{type: job_count}]
`, "plan: from and to are required"},
		{"bad time", `
name: n
description: d
plan: {from: 0s, to: soon}
assertions: [{type: job_count}]
`, "plan.to"},
		{"open end", `
name: n
description: d
plan: {from: 0s, to: "+inf"}
assertions: [{type: job_count}]
`, "plan.to must be finite"},
		{"open start", `
name: n
description: d
plan: {from: "-inf", to: 40ms}
assertions: [{type: job_count}]
`, "plan.from must be finite"},
		{"negative chunk limit", `
name: n
description: d
plan: {from: 0s, to: 40ms, chunk_limit: -1}
assertions: [{type: job_count}]
`, "chunk_limit must be non-negative"},
		{"splice without exits", `
name: n
description: d
splices: [{start: 1s}]
plan: {from: 0s, to: 40ms}
assertions: [{type: job_count}]
`, "splices[0]: exits are required"},
		{"unknown assertion", `
name: n
description: d
plan: {from: 0s, to: 40ms}
assertions: [{type: state}]
`, `unknown assertion type "state"`},
		{"order without nodes", `
name: n
description: d
plan: {from: 0s, to: 40ms}
assertions: [{type: job_order}]
`, "nodes list is required"},
		{"deadline without node", `
name: n
description: d
plan: {from: 0s, to: 40ms}
assertions: [{type: deadline, deadline: 1s}]
`, "node is required for deadline"},
		{"segmentation without render", `
name: n
description: d
plan: {from: 0s, to: 40ms}
assertions: [{type: segmentation}]
`, "render is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: n
description: d
fixture: gone.cue
plan: {from: 0s, to: 40ms}
assertions: [{type: job_count}]
`), 0644))

	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "fixture file not found")
}

func TestFindScenarios(t *testing.T) {
	paths, err := FindScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"asap_top_level.yaml", "playout_timebound.yaml", "splice_insert.yaml"}, names)
}
