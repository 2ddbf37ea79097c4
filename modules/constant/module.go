package constant

import (
	"context"
	_ "embed"

	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct{}

// Constant passes its "value" input through to the "value" output. As a
// start node it has no input anchors, so the value comes from the card's
// saved inputs, the caller's global inputs, or the manifest default.
func Constant(_ context.Context, in map[string]any, _ nodedef.Runtime) (map[string]any, error) {
	return map[string]any{"value": in["value"]}, nil
}

// Register registers the node type and its process with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("constant", registry.Builtin("constant", manifest))
	r.RegisterProcess("Constant", Constant)
}
