package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/nodegrid/internal/ctxlog"
)

// ValidateProcessRefs performs a strict parity check between manifests and
// Go code. refs maps every node type to the process name its manifest
// names. A reference to an unregistered process is an error; a registered
// process that no manifest uses is only worth a warning.
func (r *Registry) ValidateProcessRefs(ctx context.Context, refs map[string]string) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	used := make(map[string]struct{}, len(refs))
	types := make([]string, 0, len(refs))
	for typeName := range refs {
		types = append(types, typeName)
	}
	sort.Strings(types)

	for _, typeName := range types {
		name := refs[typeName]
		used[name] = struct{}{}
		if name == "" {
			errs = append(errs, fmt.Sprintf("node type '%s': manifest does not name a process", typeName))
			continue
		}
		if _, ok := r.Process(name); !ok {
			errs = append(errs, fmt.Sprintf("node type '%s': manifest names process '%s' which is not registered", typeName, name))
		}
	}

	for _, name := range r.Processes() {
		if _, ok := used[name]; !ok {
			logger.Warn("Process handler is not referenced by any built-in manifest.", "process", name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
