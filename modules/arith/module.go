// Package arith provides the numeric node types "double" and "sum".
package arith

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/porttype"
	"github.com/vk/nodegrid/internal/registry"
)

var (
	//go:embed double.hcl
	doubleManifest []byte
	//go:embed sum.hcl
	sumManifest []byte
)

// Module implements the registry.Module interface for this package.
type Module struct{}

func number(in map[string]any, name string) (float64, error) {
	v, ok := in[name]
	if !ok || v == nil {
		return 0, nil
	}
	f, ok := porttype.ToFloat(v)
	if !ok {
		return 0, fmt.Errorf("input %q is not a number: %v", name, v)
	}
	return f, nil
}

// Double returns {y: 2x}.
func Double(_ context.Context, in map[string]any, _ nodedef.Runtime) (map[string]any, error) {
	x, err := number(in, "x")
	if err != nil {
		return nil, err
	}
	return map[string]any{"y": x * 2}, nil
}

// Sum returns {sum: a + b}. Missing inputs count as zero.
func Sum(_ context.Context, in map[string]any, _ nodedef.Runtime) (map[string]any, error) {
	a, err := number(in, "a")
	if err != nil {
		return nil, err
	}
	b, err := number(in, "b")
	if err != nil {
		return nil, err
	}
	return map[string]any{"sum": a + b}, nil
}

// Register registers the node types and their processes with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("double", registry.Builtin("double", doubleManifest))
	r.RegisterType("sum", registry.Builtin("sum", sumManifest))
	r.RegisterProcess("ArithDouble", Double)
	r.RegisterProcess("ArithSum", Sum)
}
