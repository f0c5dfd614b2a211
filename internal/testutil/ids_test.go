package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceIDs_InOrder(t *testing.T) {
	gen := NewSequenceIDs("counter")

	assert.Equal(t, "counter-1", gen.Generate())
	assert.Equal(t, "counter-2", gen.Generate())
	assert.Equal(t, "counter-3", gen.Generate())
}

func TestSequenceIDs_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "run-1", NewSequenceIDs("").Generate())
}

func TestSequenceIDs_ThreadSafe(t *testing.T) {
	gen := NewSequenceIDs("x")

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := gen.Generate()
				mu.Lock()
				assert.False(t, seen[id], "duplicate id %s", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}
