package cards

import (
	"sync"

	"github.com/vk/nodegrid/internal/node"
	"github.com/vk/nodegrid/internal/nodeid"
)

// Card is the runtime object of one CardConfig.
type Card struct {
	id nodeid.ID
	// typeKey is the registry key the card resolved to. For custom cards
	// it is the manifest path.
	typeKey    string
	controller *node.Controller

	mu       sync.RWMutex
	title    string
	position Position
}

func (c *Card) ID() nodeid.ID { return c.id }
func (c *Card) TypeKey() string { return c.typeKey }

// Controller returns the node of the card, or nil when the card is
// unsupported.
func (c *Card) Controller() *node.Controller { return c.controller }

// Unsupported reports whether the card has no node.
func (c *Card) Unsupported() bool { return c.controller == nil }

func (c *Card) Title() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.title
}

func (c *Card) Position() Position {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *Card) update(title string, pos Position) {
	c.mu.Lock()
	c.title = title
	c.position = pos
	c.mu.Unlock()
}
