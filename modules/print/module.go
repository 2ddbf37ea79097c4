package print

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed text. Nil means standard output.
	Out io.Writer
}

func (m *Module) out() io.Writer {
	if m.Out == nil {
		return os.Stdout
	}
	return m.Out
}

// Print writes the "value" input and emits the printed text on the
// "printed" event. Maps are printed one sorted key per line.
func (m *Module) Print(ctx context.Context, in map[string]any, rt nodedef.Runtime) (map[string]any, error) {
	ctxlog.FromContext(ctx).Info("Printing input")

	text := format(in["value"])
	if _, err := io.WriteString(m.out(), text); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	rt.Emit(ctx, "printed", text)
	return nil, nil
}

func format(v any) string {
	var b strings.Builder
	switch val := v.(type) {
	case nil:
		b.WriteString("      (null)\n")
	case map[string]any:
		// Sort keys for consistent output
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "      %s = %v\n", k, val[k])
		}
	case string:
		fmt.Fprintf(&b, "      %q\n", val)
	default:
		fmt.Fprintf(&b, "      %v\n", val)
	}
	return b.String()
}

// Register registers the node type and its process with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("print", registry.Builtin("print", manifest))
	r.RegisterProcess("Print", m.Print)
}
