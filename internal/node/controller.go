package node

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vk/nodegrid/internal/anchor"
	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/schema"
)

// Controller is a live graph node.
type Controller struct {
	cardID        string
	url           string
	componentName string

	def       *nodedef.Definition
	scope     *nodedef.Scope
	component *nodedef.Component
	process   nodedef.ProcessFunc
	issues    []schema.Issue
	policy    ProcessErrorPolicy

	anchors []*anchor.Controller
	inputs  []*anchor.Controller
	outputs []*anchor.Controller
	events  []*anchor.EventController

	state atomic.Int32
	// slot serializes Exec calls.
	slot chan struct{}

	mu           sync.Mutex
	savedInputs  map[string]any
	recentInput  map[string]any
	recentOutput map[string]any
}

// Parse builds the controller for card cardID backed by componentURL.
// Failures are logged and returned as a *NodeError.
func Parse(ctx context.Context, loader nodedef.Loader, componentURL, cardID string, opts ...Option) (*Controller, error) {
	logger := ctxlog.FromContext(ctx).With("card_id", cardID, "component_url", componentURL)

	c, err := parse(ctx, loader, componentURL, cardID, opts)
	if err != nil {
		logger.Error("Failed to parse node definition.", "error", err)
		return nil, &NodeError{
			NodeID:  cardID,
			Op:      "parse",
			Details: map[string]any{"component_url": componentURL},
			Err:     err,
		}
	}
	logger.Debug("Node parsed.",
		"inputs", len(c.inputs),
		"outputs", len(c.outputs),
		"events", len(c.events),
		"schema_issues", len(c.issues),
	)
	return c, nil
}

func parse(ctx context.Context, loader nodedef.Loader, componentURL, cardID string, opts []Option) (*Controller, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Controller{
		cardID:      cardID,
		url:         componentURL,
		policy:      o.processErrors,
		slot:        make(chan struct{}, 1),
		savedInputs: o.savedInputs,
	}
	c.state.Store(int32(Unloaded))

	scope, err := loader.NodeDefineScope(ctx, componentURL, cardID)
	if err != nil {
		return nil, fmt.Errorf("loading scope: %w", err)
	}
	if scope == nil || scope.Definition == nil {
		return nil, nodedef.ErrNoNodeDefine
	}
	if scope.IsLoaded() {
		return nil, nodedef.ErrScopeAlreadyLoaded
	}
	if err := scope.Definition.Validate(); err != nil {
		return nil, err
	}

	component, err := loader.Component(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("loading component: %w", err)
	}
	if component == nil {
		component = &nodedef.Component{}
	}
	c.state.Store(int32(Loaded))

	c.scope = scope
	c.component = component
	c.def = scope.Definition.Clone()
	c.process = c.def.Process
	c.componentName = component.Name
	if c.componentName == "" {
		c.componentName = componentURL
	}

	inReport, err := schema.CheckInputs(ctx, component.Props, c.def.Inputs, c.componentName)
	if err != nil {
		return nil, err
	}
	outReport, err := schema.CheckOutputs(ctx, component.Emits, c.def.Outputs, c.componentName)
	if err != nil {
		return nil, err
	}
	c.issues = append(append([]schema.Issue(nil), inReport.Errors...), outReport.Warnings...)

	anchorOpts := []anchor.ControllerOption{anchor.WithFoldPolicy(o.foldPolicy), anchor.WithTheme(o.theme)}
	c.inputs = anchor.BuildInputs(inReport.Inputs, c.def.FlowType, anchorOpts...)
	c.outputs = anchor.BuildOutputs(outReport.Outputs, anchorOpts...)
	c.events = anchor.BuildEvents(c.def.Events, anchorOpts...)

	c.anchors = append(c.anchors, c.inputs...)
	c.anchors = append(c.anchors, c.outputs...)
	for _, ev := range c.events {
		c.anchors = append(c.anchors, ev.Controller)
	}

	// The scope is claimed last so a parse that fails above can be retried.
	if err := scope.MarkLoaded(); err != nil {
		return nil, err
	}
	c.state.Store(int32(Ready))
	return c, nil
}

func (c *Controller) CardID() string { return c.cardID }
func (c *Controller) URL() string { return c.url }
func (c *Controller) ComponentName() string { return c.componentName }
func (c *Controller) Component() *nodedef.Component { return c.component }
func (c *Controller) Scope() *nodedef.Scope { return c.scope }
func (c *Controller) FlowType() nodedef.FlowType { return c.def.FlowType }
func (c *Controller) State() State { return State(c.state.Load()) }
func (c *Controller) ProcessErrors() ProcessErrorPolicy { return c.policy }

// SchemaIssues returns the advisory findings recorded while parsing.
func (c *Controller) SchemaIssues() []schema.Issue {
	return append([]schema.Issue(nil), c.issues...)
}

// Anchors returns every anchor: inputs, then outputs, then events.
func (c *Controller) Anchors() []*anchor.Controller {
	return append([]*anchor.Controller(nil), c.anchors...)
}

func (c *Controller) InputAnchors() []*anchor.Controller {
	return append([]*anchor.Controller(nil), c.inputs...)
}

func (c *Controller) OutputAnchors() []*anchor.Controller {
	return append([]*anchor.Controller(nil), c.outputs...)
}

func (c *Controller) EventAnchors() []*anchor.EventController {
	return append([]*anchor.EventController(nil), c.events...)
}

// GetAnchor returns the first anchor named id, searching inputs, outputs
// and events in that order.
func (c *Controller) GetAnchor(id string) *anchor.Controller {
	for _, a := range c.anchors {
		if a.ID() == id {
			return a
		}
	}
	return nil
}

func (c *Controller) input(name string) *anchor.Controller {
	for _, a := range c.inputs {
		if a.ID() == name {
			return a
		}
	}
	return nil
}

func (c *Controller) output(name string) *anchor.Controller {
	for _, a := range c.outputs {
		if a.ID() == name {
			return a
		}
	}
	return nil
}

// EventAnchor returns the event anchor named id, or nil.
func (c *Controller) EventAnchor(id string) *anchor.EventController {
	for _, ev := range c.events {
		if ev.ID() == id {
			return ev
		}
	}
	return nil
}

// ComponentProps maps every input name to its value cell, so the backing
// component and the node share the same values.
func (c *Controller) ComponentProps() map[string]*anchor.Cell {
	props := make(map[string]*anchor.Cell, len(c.inputs))
	for _, a := range c.inputs {
		props[a.ID()] = a.Cell()
	}
	return props
}

// SavedInputs returns the explicitly supplied input cached by Exec.
func (c *Controller) SavedInputs() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.savedInputs)
}

// RecentInput returns the runtime input of the last run.
func (c *Controller) RecentInput() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.recentInput)
}

// RecentOutput returns the process result of the last run.
func (c *Controller) RecentOutput() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.recentOutput)
}

// Reset puts every anchor back to its initial value and detaches all event
// subscribers.
func (c *Controller) Reset() {
	for _, a := range c.anchors {
		a.Reset()
	}
	for _, ev := range c.events {
		ev.Cleanup()
	}
	if s := c.State(); s == Idle || s == Errored {
		c.state.Store(int32(Ready))
	}
}

func (c *Controller) resetOutputs() {
	for _, a := range c.outputs {
		a.Reset()
	}
}

func (c *Controller) logger(ctx context.Context) *slog.Logger {
	return ctxlog.FromContext(ctx).With("card_id", c.cardID, "component", c.componentName)
}
