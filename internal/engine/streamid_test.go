package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_Version(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)
}

func TestUUIDv7Generator_SortsByCreation(t *testing.T) {
	gen := UUIDv7Generator{}
	seen := make(map[string]bool)
	prev := ""
	for range 200 {
		id := gen.Generate()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.GreaterOrEqual(t, id, prev)
		prev = id
	}
}

func TestFixedGenerator_Sequence(t *testing.T) {
	gen := NewFixedGenerator("stream-a", "stream-b")
	assert.Equal(t, "stream-a", gen.Generate())
	assert.Equal(t, "stream-b", gen.Generate())
	assert.PanicsWithValue(t, "FixedGenerator: all ids exhausted", func() { gen.Generate() })
}

func TestForCalcStream_UsesGenerator(t *testing.T) {
	gen := NewFixedGenerator("s-1", "s-2")
	d := newMockDispatcher()
	tm := MustTimings(testRate)

	assert.Equal(t, "s-1", ForCalcStream(d, tm, WithStreamIDs(gen)).ID())
	assert.Equal(t, "s-2", ForCalcStream(d, tm, WithStreamIDs(gen)).ID())
}
