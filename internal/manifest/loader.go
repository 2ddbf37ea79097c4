package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/registry"
)

var (
	// ErrUnknownComponent is returned for a URL no descriptor points at.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrUnknownProcess is returned when a manifest names an unregistered process.
	ErrUnknownProcess = errors.New("unknown process")
)

// Loader implements nodedef.Loader and nodedef.ScopeReleaser on top of a
// registry. Parsed manifests are cached per URL and scopes per
// (URL, card id) pair.
type Loader struct {
	reg *registry.Registry

	mu        sync.Mutex
	manifests map[string]*Manifest
	scopes    map[scopeKey]*nodedef.Scope
}

type scopeKey struct {
	url    string
	cardID string
}

var (
	_ nodedef.Loader        = (*Loader)(nil)
	_ nodedef.ScopeReleaser = (*Loader)(nil)
)

// NewLoader creates a loader resolving URLs through reg.
func NewLoader(reg *registry.Registry) *Loader {
	return &Loader{
		reg:       reg,
		manifests: make(map[string]*Manifest),
		scopes:    make(map[scopeKey]*nodedef.Scope),
	}
}

// NodeDefineScope returns the scope of one card. Repeated calls return the
// same scope until ReleaseScope forgets it.
func (l *Loader) NodeDefineScope(ctx context.Context, componentURL, cardID string) (*nodedef.Scope, error) {
	key := scopeKey{url: componentURL, cardID: cardID}

	l.mu.Lock()
	if s, ok := l.scopes[key]; ok {
		l.mu.Unlock()
		return s, nil
	}
	l.mu.Unlock()

	m, err := l.manifest(ctx, componentURL)
	if err != nil {
		return nil, err
	}
	fn, ok := l.reg.Process(m.Process)
	if !ok {
		return nil, fmt.Errorf("%w %q named by %s", ErrUnknownProcess, m.Process, componentURL)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.scopes[key]; ok {
		return s, nil
	}
	s := nodedef.NewScope(componentURL, cardID, m.Definition(fn))
	l.scopes[key] = s
	ctxlog.FromContext(ctx).Debug("Node scope created.", "component_url", componentURL, "card_id", cardID)
	return s, nil
}

// Component returns the component surface declared by the scope's manifest.
func (l *Loader) Component(ctx context.Context, scope *nodedef.Scope) (*nodedef.Component, error) {
	m, err := l.manifest(ctx, scope.URL)
	if err != nil {
		return nil, err
	}
	c := m.Component
	c.Emits = append([]string(nil), m.Component.Emits...)
	return &c, nil
}

// ReleaseScope forgets the scope of one card.
func (l *Loader) ReleaseScope(componentURL, cardID string) {
	l.mu.Lock()
	delete(l.scopes, scopeKey{url: componentURL, cardID: cardID})
	l.mu.Unlock()
}

// Manifest returns the parsed manifest behind a component URL.
func (l *Loader) Manifest(ctx context.Context, componentURL string) (*Manifest, error) {
	return l.manifest(ctx, componentURL)
}

func (l *Loader) manifest(ctx context.Context, componentURL string) (*Manifest, error) {
	l.mu.Lock()
	if m, ok := l.manifests[componentURL]; ok {
		l.mu.Unlock()
		return m, nil
	}
	l.mu.Unlock()

	base, nodeName, _ := strings.Cut(componentURL, "#")
	src, err := l.source(base)
	if err != nil {
		return nil, err
	}
	all, err := Parse(ctx, base, src)
	if err != nil {
		return nil, err
	}

	m := all[0]
	if nodeName != "" {
		m = nil
		for _, candidate := range all {
			if candidate.Name == nodeName {
				m = candidate
				break
			}
		}
		if m == nil {
			return nil, fmt.Errorf("%w: %s has no node %q", ErrUnknownComponent, base, nodeName)
		}
	} else if len(all) > 1 {
		ctxlog.FromContext(ctx).Debug("Manifest declares several nodes, using the first.",
			"component_url", componentURL, "node", m.Name, "nodes", len(all))
	}

	l.mu.Lock()
	l.manifests[componentURL] = m
	l.mu.Unlock()
	return m, nil
}

func (l *Loader) source(url string) ([]byte, error) {
	if d, ok := l.reg.LookupURL(url); ok && d.Kind == registry.KindBuiltin {
		return d.Source, nil
	}
	if strings.HasPrefix(url, registry.BuiltinScheme) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, url)
	}
	src, err := os.ReadFile(url)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, url)
		}
		return nil, fmt.Errorf("reading manifest %s: %w", url, err)
	}
	return src, nil
}

// ValidateBuiltins parses every built-in manifest and checks that each
// names a registered process.
func (l *Loader) ValidateBuiltins(ctx context.Context) error {
	refs := make(map[string]string)
	var errs []error
	for name, d := range l.reg.Builtins() {
		m, err := l.manifest(ctx, d.URL)
		if err != nil {
			errs = append(errs, fmt.Errorf("built-in type %q: %w", name, err))
			continue
		}
		refs[name] = m.Process
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return l.reg.ValidateProcessRefs(ctx, refs)
}
