package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates "<prefix>-1", "<prefix>-2", ... in order.
//
// It satisfies harness.IDGenerator and replaces UUIDv7 run IDs in tests
// that need stable journal contents across several runs.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs returns a generator for prefix. An empty prefix becomes
// "run".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
