package cards

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/node"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/nodeid"
	"github.com/vk/nodegrid/internal/registry"
)

// AddOptions tunes a single AddCard call.
type AddOptions struct {
	// SkipExisting returns an existing card with the same id unchanged.
	SkipExisting bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithNodeOptions passes opts to every node the manager parses.
func WithNodeOptions(opts ...node.Option) Option {
	return func(m *Manager) {
		m.nodeOpts = append(m.nodeOpts, opts...)
	}
}

// Manager owns the cards of one graph.
type Manager struct {
	reg      *registry.Registry
	loader   nodedef.Loader
	nodeOpts []node.Option

	mu      sync.Mutex
	cards   []*Card
	configs []CardConfig
}

// NewManager creates a manager resolving card types through reg and
// loading nodes through loader.
func NewManager(reg *registry.Registry, loader nodedef.Loader, opts ...Option) *Manager {
	m := &Manager{reg: reg, loader: loader}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddCard materializes cfg. When a card with the same id exists it is
// returned unchanged under SkipExisting, otherwise its title and position
// are updated and its stored config replaced. A card whose type cannot be
// resolved is stored as unsupported without a node. A node that fails to
// parse leaves the manager unchanged and the error is returned.
func (m *Manager) AddCard(ctx context.Context, cfg CardConfig, opts AddOptions) (*Card, error) {
	logger := ctxlog.FromContext(ctx)

	cfg, err := normalize(cfg)
	if err != nil {
		logger.Error("Rejected card config.", "error", err)
		return nil, err
	}
	logger = logger.With("card_id", cfg.ID.String())

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(cfg.ID); i >= 0 {
		existing := m.cards[i]
		if opts.SkipExisting {
			logger.Debug("Card already exists, skipping.")
			return existing, nil
		}
		existing.update(cfg.Title, cfg.Position)
		m.configs[i] = cfg
		logger.Debug("Card updated in place.", "title", cfg.Title)
		return existing, nil
	}

	typeKey, desc, ok := m.resolve(ctx, cfg)
	if !ok {
		msg := fmt.Sprintf("unknown card type %q", cfg.Type)
		logger.Warn("Card type is not registered, marking it unsupported.", "type", cfg.Type)
		if cfg.RuntimeErrors == nil {
			cfg.RuntimeErrors = make(map[string]string)
		}
		cfg.RuntimeErrors[RuntimeErrorOnLoading] = msg
		cfg.Type = TypeUnsupported
		return m.insert(cfg, &Card{id: cfg.ID, typeKey: TypeUnsupported}), nil
	}

	nodeOpts := append([]node.Option(nil), m.nodeOpts...)
	if cfg.SavedInputs != nil {
		nodeOpts = append(nodeOpts, node.WithSavedInputs(cfg.SavedInputs))
	}
	ctrl, err := node.Parse(ctx, m.loader, desc.URL, cfg.ID.String(), nodeOpts...)
	if err != nil {
		logger.Error("Failed to add card.", "type", typeKey, "error", err)
		return nil, fmt.Errorf("adding card %s: %w", cfg.ID, err)
	}

	card := &Card{id: cfg.ID, typeKey: typeKey, controller: ctrl}
	logger.Info("Card added.", "type", typeKey, "component", ctrl.ComponentName())
	return m.insert(cfg, card), nil
}

// resolve finds the registry key and descriptor of cfg. A custom card with
// a node file registers the file on first use.
func (m *Manager) resolve(ctx context.Context, cfg CardConfig) (string, registry.Descriptor, bool) {
	if cfg.Type == TypeCustom && cfg.NodeFile != "" {
		d, added := m.reg.Ensure(cfg.NodeFile, registry.Custom(cfg.NodeFile))
		if added {
			ctxlog.FromContext(ctx).Debug("Registered custom card type.", "node_file", cfg.NodeFile)
		}
		return cfg.NodeFile, d, true
	}
	if cfg.Type == TypeUnsupported {
		return "", registry.Descriptor{}, false
	}
	d, ok := m.reg.Lookup(cfg.Type)
	return cfg.Type, d, ok
}

func (m *Manager) insert(cfg CardConfig, card *Card) *Card {
	card.title = cfg.Title
	card.position = cfg.Position
	m.cards = append(m.cards, card)
	m.configs = append(m.configs, cfg)
	return card
}

func (m *Manager) index(id nodeid.ID) int {
	for i, c := range m.cards {
		if c.id.Equal(id) {
			return i
		}
	}
	return -1
}

// RemoveCard resets the card's node, releases its scope when the loader
// supports it, and drops the card and its config.
func (m *Manager) RemoveCard(ctx context.Context, id nodeid.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	card := m.cards[i]
	if ctrl := card.controller; ctrl != nil {
		ctrl.Reset()
		if r, ok := m.loader.(nodedef.ScopeReleaser); ok {
			r.ReleaseScope(ctrl.URL(), ctrl.CardID())
		}
	}
	m.cards = append(m.cards[:i], m.cards[i+1:]...)
	m.configs = append(m.configs[:i], m.configs[i+1:]...)
	ctxlog.FromContext(ctx).Info("Card removed.", "card_id", id.String())
	return nil
}

// Card returns the card with the given id.
func (m *Manager) Card(id nodeid.ID) (*Card, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(id); i >= 0 {
		return m.cards[i], true
	}
	return nil, false
}

// Cards returns the cards in insertion order.
func (m *Manager) Cards() []*Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Card(nil), m.cards...)
}

// Configs returns a snapshot of the stored configs, index-aligned with
// Cards. Each config carries its node's current saved inputs.
func (m *Manager) Configs() []CardConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CardConfig, len(m.configs))
	for i, cfg := range m.configs {
		cfg = cfg.Clone()
		if ctrl := m.cards[i].controller; ctrl != nil {
			if saved := ctrl.SavedInputs(); len(saved) > 0 {
				cfg.SavedInputs = saved
			}
		}
		out[i] = cfg
	}
	return out
}

// Len returns the number of cards.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cards)
}
