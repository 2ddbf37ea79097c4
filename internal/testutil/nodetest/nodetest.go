// Package nodetest builds live nodes from registered modules for tests.
package nodetest

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/nodegrid/internal/manifest"
	"github.com/vk/nodegrid/internal/node"
	"github.com/vk/nodegrid/internal/registry"
)

// Harness holds a registry populated with modules and a loader over it.
type Harness struct {
	Registry *registry.Registry
	Loader   *manifest.Loader
	cards    atomic.Int64
}

// New registers mods and fails the test unless every built-in manifest
// parses and names a registered process.
func New(ctx context.Context, t *testing.T, mods ...registry.Module) *Harness {
	t.Helper()
	reg := registry.New()
	for _, m := range mods {
		m.Register(reg)
	}
	h := &Harness{Registry: reg, Loader: manifest.NewLoader(reg)}
	require.NoError(t, h.Loader.ValidateBuiltins(ctx))
	return h
}

// Parse builds a node of the built-in type typeName under a fresh card id.
func (h *Harness) Parse(ctx context.Context, t *testing.T, typeName string, opts ...node.Option) *node.Controller {
	t.Helper()
	d, ok := h.Registry.Lookup(typeName)
	require.True(t, ok, "type %q is not registered", typeName)

	id := strconv.FormatInt(h.cards.Add(1), 10)
	c, err := node.Parse(ctx, h.Loader, d.URL, id, opts...)
	require.NoError(t, err)
	require.Empty(t, c.SchemaIssues(), "type %q has schema issues", typeName)
	return c
}
