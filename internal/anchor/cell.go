package anchor

import "sync"

// Cell is a shared mutable value slot. Anchor values are read and written
// both by the node that owns them and by outside callers holding the cell,
// so every access is locked.
type Cell struct {
	mu sync.RWMutex
	v  any
}

// NewCell returns a cell holding v.
func NewCell(v any) *Cell {
	return &Cell{v: v}
}

// Get returns the current value.
func (c *Cell) Get() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Set replaces the current value.
func (c *Cell) Set(v any) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}
