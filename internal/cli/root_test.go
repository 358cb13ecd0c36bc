package cli

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandListsSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"plan", "segments", "validate", "test", "verify", "streams"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommandRejectsUnknownFormat(t *testing.T) {
	_, stderr, code := runCLI(t, "segments", playoutFixture, "--format", "yaml")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, `invalid format "yaml"`)
}

func TestRootCommandUnknownCommand(t *testing.T) {
	_, stderr, code := runCLI(t, "render")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestRootOptionsLogger(t *testing.T) {
	var buf bytes.Buffer

	quiet := (&RootOptions{LogLevel: "warn"}).Logger(&buf)
	quiet.Info("hidden")
	assert.Empty(t, buf.String())

	verbose := (&RootOptions{LogLevel: "warn", Verbose: true, LogFormat: "json"}).Logger(&buf)
	require.True(t, verbose.Enabled(t.Context(), slog.LevelDebug))
	verbose.Debug("shown", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
