package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentsJSON(t *testing.T) {
	stdout, _, code := runCLI(t, "segments", playoutFixture, "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)

	var out SegmentsOutput
	decodeResponse(t, stdout, &out)
	assert.Equal(t, "playout", out.Fixture)
	assert.Equal(t, "├[-∞_80ms[[80ms_+∞[┤", out.Render)
	assert.Empty(t, out.Problems)
	assert.Equal(t, []SegmentInfo{
		{Start: "-∞", After: "80ms", Exits: map[string]string{"main": "out", "aux": "∅"}},
		{Start: "80ms", After: "+∞", Exits: map[string]string{"main": "mix", "aux": "out"}},
	}, out.Segments)
}

func TestSegmentsText(t *testing.T) {
	stdout, _, code := runCLI(t, "segments", playoutFixture)
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "playout ├[-∞_80ms[[80ms_+∞[┤\n")
	assert.Contains(t, stdout, "  [-∞, 80ms)  aux=∅ main=out\n")
	assert.Contains(t, stdout, "  [80ms, +∞)  aux=out main=mix\n")
}
