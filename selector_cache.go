package store

import "sync"

// ProgramCache stores compiled expression programs keyed by expression
// strings. Implementations are shared across selector engines.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// ProgramMapCache is a mutex-guarded map cache, the default choice when a
// process-local cache is enough.
type ProgramMapCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewProgramMapCache constructs an empty map-backed cache.
func NewProgramMapCache() *ProgramMapCache {
	return &ProgramMapCache{programs: map[string]any{}}
}

// Get returns the cached program for key when present.
func (c *ProgramMapCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

// Set stores value under key, replacing any previous entry.
func (c *ProgramMapCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.programs == nil {
		c.programs = map[string]any{}
	}
	c.programs[key] = value
}
