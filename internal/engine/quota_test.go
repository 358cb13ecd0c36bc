package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkQuota_Limit(t *testing.T) {
	q := NewChunkQuota(3)
	assert.True(t, q.Allow())
	assert.True(t, q.Allow())
	assert.Equal(t, 1, q.Remaining())
	assert.True(t, q.Allow())
	assert.False(t, q.Allow())
	assert.Equal(t, 3, q.Used())
	assert.Equal(t, 0, q.Remaining())
}

func TestChunkQuota_Unlimited(t *testing.T) {
	q := NewChunkQuota(0)
	for range 10_000 {
		assert.True(t, q.Allow())
	}
	assert.Equal(t, -1, q.Remaining())
}
