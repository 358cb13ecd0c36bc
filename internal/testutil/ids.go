package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates "<prefix>-1", "<prefix>-2", ... without limit.
//
// Unlike engine.FixedGenerator it never runs out, which suits harness runs
// where the number of streams depends on the scenario.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix means "stream".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "stream"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate implements engine.StreamIDGenerator.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
