package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/vk/nodegrid/internal/nodedef"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Kind tells built-in descriptors from custom ones.
type Kind string

const (
	// KindBuiltin descriptors carry their manifest source in memory.
	KindBuiltin Kind = "builtin"
	// KindCustom descriptors point at a manifest file on disk.
	KindCustom Kind = "custom"
)

// BuiltinScheme prefixes the URL of every built-in descriptor.
const BuiltinScheme = "builtin://"

// Descriptor tells the loader where a node type's manifest lives.
type Descriptor struct {
	Kind Kind
	// URL identifies the component: builtin://<type> or a file path.
	URL string
	// File is the manifest path of a custom descriptor.
	File string
	// Source is the manifest text of a built-in descriptor.
	Source []byte
}

// Builtin describes a built-in type whose manifest is src.
func Builtin(typeName string, src []byte) Descriptor {
	return Descriptor{Kind: KindBuiltin, URL: BuiltinScheme + typeName, Source: src}
}

// Custom describes a type backed by the manifest file at path.
func Custom(path string) Descriptor {
	return Descriptor{Kind: KindCustom, URL: path, File: path}
}

// Registry holds the type and process tables of one application instance.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	types     map[string]Descriptor
	processes map[string]nodedef.ProcessFunc
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		types:     make(map[string]Descriptor),
		processes: make(map[string]nodedef.ProcessFunc),
	}
}

// RegisterType adds a node type. Registering the same name twice is a
// programming error and panics.
func (r *Registry) RegisterType(name string, d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[name]; exists {
		panic(fmt.Sprintf("node type '%s' already registered", name))
	}
	slog.Debug("Registering node type.", "type", name, "url", d.URL)
	r.types[name] = d
}

// Ensure adds d under name unless the name is taken. It returns the
// descriptor now registered under name and whether d was added.
func (r *Registry) Ensure(name string, d Descriptor) (Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[name]; ok {
		return existing, false
	}
	slog.Debug("Registering dynamic node type.", "type", name, "kind", d.Kind, "url", d.URL)
	r.types[name] = d
	return d, true
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[name]
	return d, ok
}

// LookupURL finds the descriptor whose URL is url.
func (r *Registry) LookupURL(url string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.types {
		if d.URL == url {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Types returns every registered type name, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins returns the built-in descriptors keyed by type name.
func (r *Registry) Builtins() map[string]Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Descriptor)
	for name, d := range r.types {
		if d.Kind == KindBuiltin {
			out[name] = d
		}
	}
	return out
}

// RegisterProcess binds a manifest process name to Go code. Registering
// the same name twice panics.
func (r *Registry) RegisterProcess(name string, fn nodedef.ProcessFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.processes[name]; exists {
		panic(fmt.Sprintf("process handler with name '%s' already registered", name))
	}
	slog.Debug("Registering process handler.", "name", name)
	r.processes[name] = fn
}

// Process returns the process function registered under name.
func (r *Registry) Process(name string) (nodedef.ProcessFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.processes[name]
	return fn, ok
}

// Processes returns every registered process name, sorted.
func (r *Registry) Processes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.processes))
	for name := range r.processes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
