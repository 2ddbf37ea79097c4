package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/nodegrid/internal/cards"
	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/eventbridge"
	"github.com/vk/nodegrid/internal/manifest"
	"github.com/vk/nodegrid/internal/node"
	"github.com/vk/nodegrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	ctx      context.Context
	logger   *slog.Logger
	config   *Config
	modules  []registry.Module
	registry *registry.Registry
	loader   *manifest.Loader
	cards    *cards.Manager

	publisher  eventbridge.Publisher
	mqtt       *eventbridge.MQTTPublisher
	globals    node.GlobalInputs
	httpServer *http.Server
}

// Option customizes an App.
type Option func(*App)

// WithModules replaces the core modules.
func WithModules(mods ...registry.Module) Option {
	return func(a *App) { a.modules = mods }
}

// WithPublisher makes the app bridge events through p instead of dialing
// the configured MQTT broker.
func WithPublisher(p eventbridge.Publisher) Option {
	return func(a *App) { a.publisher = p }
}

// WithGlobalInputs sets the per-card inputs passed to every run.
func WithGlobalInputs(g node.GlobalInputs) Option {
	return func(a *App) { a.globals = g }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{outW: outW, ctx: ctx, logger: logger, config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.modules == nil {
		a.modules = coreModules(outW)
	}

	a.registry = registry.New()
	for _, mod := range a.modules {
		mod.Register(a.registry)
	}
	logger.Debug("All Go modules registered.", "count", len(a.modules))

	a.loader = manifest.NewLoader(a.registry)
	if err := a.loader.ValidateBuiltins(ctx); err != nil {
		return nil, fmt.Errorf("validating built-in manifests: %w", err)
	}
	logger.Debug("Registry validation passed.", "types", len(a.registry.Types()))

	if err := a.loadManifests(ctx); err != nil {
		return nil, err
	}

	policy, err := node.ParseProcessErrorPolicy(cfg.ProcessErrors)
	if err != nil {
		return nil, err
	}
	a.cards = cards.NewManager(a.registry, a.loader, cards.WithNodeOptions(node.WithProcessErrors(policy)))
	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Cards returns the application's card manager.
func (a *App) Cards() *cards.Manager {
	return a.cards
}

// Close releases module resources such as pooled connections, and the
// MQTT connection if Run opened one.
func (a *App) Close() {
	if a.mqtt != nil {
		a.mqtt.Disconnect()
		a.mqtt = nil
	}
	for _, mod := range a.modules {
		if c, ok := mod.(interface{ Close() }); ok {
			c.Close()
		}
	}
	a.logger.Debug("Modules closed.")
}
