package engine

import (
	"sync"

	"github.com/gcbaptista/go-natex/natex"
)

// patternCache keeps compiled patterns keyed by source and flags. Once full it
// stops admitting new patterns; compiled patterns never go stale.
type patternCache struct {
	mu      sync.RWMutex
	entries map[patternKey]*natex.Pattern
	maxSize int

	hits   int64
	misses int64
}

type patternKey struct {
	source string
	flags  natex.Flag
}

func newPatternCache(maxSize int) *patternCache {
	return &patternCache{
		entries: make(map[patternKey]*natex.Pattern),
		maxSize: maxSize,
	}
}

// compile returns the cached pattern or compiles and caches it.
func (c *patternCache) compile(source string, flags natex.Flag) (*natex.Pattern, error) {
	key := patternKey{source: source, flags: flags}

	c.mu.RLock()
	p, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return p, nil
	}

	p, err := natex.Compile(source, flags)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.misses++
	if len(c.entries) < c.maxSize {
		c.entries[key] = p
	}
	c.mu.Unlock()
	return p, nil
}

func (c *patternCache) stats() (size int, hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), c.hits, c.misses
}
