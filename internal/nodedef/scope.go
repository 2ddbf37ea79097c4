package nodedef

import (
	"context"
	"sync/atomic"
)

// Component is the surface of the component backing a node: the properties
// it accepts and the events it emits.
//
// Props may be a []string, a []PropSpec, a map[string]PropSpec or a
// map[string]any whose values are type declarations. Emits lists event
// names such as "update:result".
type Component struct {
	Name  string
	Props any
	Emits []string
}

// Scope is what a loader hands out for one (component URL, card) pair.
type Scope struct {
	URL        string
	CardID     string
	Definition *Definition
	// DefaultInput is a scope-level provider consulted after the
	// definition's own provider.
	DefaultInput func() map[string]any

	loaded atomic.Bool
}

// NewScope creates an unloaded scope.
func NewScope(url, cardID string, def *Definition) *Scope {
	return &Scope{URL: url, CardID: cardID, Definition: def}
}

// MarkLoaded flips the scope to loaded. It fails with ErrScopeAlreadyLoaded
// if the scope was loaded before.
func (s *Scope) MarkLoaded() error {
	if !s.loaded.CompareAndSwap(false, true) {
		return ErrScopeAlreadyLoaded
	}
	return nil
}

// IsLoaded reports whether a node was already built from this scope.
func (s *Scope) IsLoaded() bool {
	return s.loaded.Load()
}

// Loader resolves component URLs to node scopes and component surfaces.
type Loader interface {
	// NodeDefineScope returns the scope for a card. Repeated calls with the
	// same arguments return the same scope.
	NodeDefineScope(ctx context.Context, componentURL, cardID string) (*Scope, error)
	// Component returns the component surface backing a scope.
	Component(ctx context.Context, scope *Scope) (*Component, error)
}

// ScopeReleaser is implemented by loaders that can forget a scope, so the
// card can be instantiated again later.
type ScopeReleaser interface {
	ReleaseScope(componentURL, cardID string)
}
