package topology

import (
	"slices"
	"sync"
)

// Cache maps module names to the supervisors last advertised for them.
// Implementations must be safe for concurrent use, and Update must replace
// the whole list atomically with respect to Lookup.
type Cache interface {
	// Lookup returns the cached endpoints for a module. The returned slice
	// is the caller's to keep. ok is false when nothing is cached.
	Lookup(module string) (eps []Endpoint, ok bool)

	// Update replaces the cached endpoints for a module. An empty or nil
	// list removes the entry; absent and empty are equivalent.
	Update(module string, eps []Endpoint)

	// Forget removes the entry for a module.
	Forget(module string)
}

// Map is the default Cache: an unbounded RWMutex-guarded map that lives for
// the lifetime of the process.
type Map struct {
	mu sync.RWMutex
	m  map[string][]Endpoint
}

func NewMap() *Map {
	return &Map{m: make(map[string][]Endpoint)}
}

func (c *Map) Lookup(module string) ([]Endpoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	eps, ok := c.m[module]
	if !ok {
		return nil, false
	}
	return slices.Clone(eps), true
}

func (c *Map) Update(module string, eps []Endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(eps) == 0 {
		delete(c.m, module)
		return
	}
	c.m[module] = slices.Clone(eps)
}

func (c *Map) Forget(module string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, module)
}

var _ Cache = (*Map)(nil)
