package app

import (
	"context"
	"fmt"

	"github.com/vk/nodegrid/internal/cards"
	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/graphfile"
)

// loadManifests registers the custom manifests directory, if any.
func (a *App) loadManifests(ctx context.Context) error {
	if a.config.ManifestsPath == "" {
		return nil
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading manifests...", "manifests_path", a.config.ManifestsPath)

	n, err := a.registry.LoadManifestDir(ctx, a.config.ManifestsPath)
	if err != nil {
		return fmt.Errorf("failed to load manifests: %w", err)
	}
	logger.Debug("Manifests loaded.", "files", n)
	return nil
}

// loadGraph reads the graph document and adds every card it lists.
func (a *App) loadGraph(ctx context.Context) (*graphfile.Document, error) {
	ctx = ctxlog.With(ctx, "graph_path", a.config.GraphPath)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading graph...")

	doc, err := graphfile.Load(ctx, a.config.GraphPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	for _, cfg := range doc.Cards {
		if _, err := a.cards.AddCard(ctx, cfg, cards.AddOptions{}); err != nil {
			return nil, err
		}
	}

	logger.Info("Graph loaded successfully.", "cards", a.cards.Len(), "connections", len(doc.Connections))
	return doc, nil
}

// saveGraph writes the current cards and the document's connections to
// the configured save path.
func (a *App) saveGraph(ctx context.Context, doc *graphfile.Document) error {
	if a.config.SavePath == "" {
		return nil
	}
	out := &graphfile.Document{
		Cards:       a.cards.Configs(),
		Relations:   doc.Relations,
		Connections: doc.Connections,
	}
	if err := graphfile.SaveFile(a.config.SavePath, out); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	ctxlog.FromContext(ctx).Info("Graph saved.", "path", a.config.SavePath)
	return nil
}
