package env_vars

import (
	"context"
	_ "embed"
	"os"
	"strings"

	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct{}

// EnvVars returns {all: name -> value} for every environment variable whose
// name starts with the "prefix" input.
func EnvVars(_ context.Context, in map[string]any, _ nodedef.Runtime) (map[string]any, error) {
	prefix, _ := in["prefix"].(string)

	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			envMap[pair[0]] = pair[1]
		}
	}
	return map[string]any{"all": envMap}, nil
}

// Register registers the node type and its process with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("env_vars", registry.Builtin("env_vars", manifest))
	r.RegisterProcess("EnvVars", EnvVars)
}
