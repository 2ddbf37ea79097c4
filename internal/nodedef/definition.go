// Package nodedef holds the contracts between the node runtime and the
// components that back graph nodes: the node definition a component
// declares, the component surface it exposes, the scope a loader hands out
// per card, and the loader interface itself.
package nodedef

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrMalformedDefinition is returned when a definition fails its load-time checks.
	ErrMalformedDefinition = errors.New("malformed node definition")
	// ErrNoNodeDefine is returned when a scope does not expose a definition.
	ErrNoNodeDefine = errors.New("component does not expose a node definition")
	// ErrScopeAlreadyLoaded is returned when the same (component, card) scope is parsed twice.
	ErrScopeAlreadyLoaded = errors.New("scope already loaded")
)

// FlowType tags a node with the structural role it plays in a graph.
type FlowType string

const (
	// FlowStart nodes are graph sources and never expose input ports.
	FlowStart FlowType = "start"
	// FlowProcess is the default flow type.
	FlowProcess FlowType = "process"
)

// ProcessFunc is the user-supplied processing function of a node. A nil
// result map means "no outputs".
type ProcessFunc func(ctx context.Context, inputs map[string]any, rt Runtime) (map[string]any, error)

// Runtime is what a ProcessFunc can reach while it runs.
type Runtime interface {
	// Input returns the current value of the named input anchor.
	Input(name string) any
	// Inputs returns the resolved runtime input of the current run.
	Inputs() map[string]any
	// SetOutput writes the named output anchor.
	SetOutput(name string, value any)
	// Emit fires the named event anchor.
	Emit(ctx context.Context, event string, value any)
	// Logger returns a logger scoped to the node.
	Logger() *slog.Logger
}

// Definition is the declarative contract a component exposes to become a
// graph node. Validate is called once when a scope is loaded; the runtime
// never mutates a Definition.
type Definition struct {
	Name     string
	FlowType FlowType
	Inputs   []InputSpec
	Outputs  []OutputSpec
	Events   []EventSpec
	Process  ProcessFunc
	// DefaultInput, when set, supplies runtime input for nodes without
	// input anchors that were given nothing else.
	DefaultInput func() map[string]any
}

// IsStart reports whether the node is a graph source.
func (d *Definition) IsStart() bool {
	return d.FlowType == FlowStart
}

// Validate rejects definitions the runtime cannot work with: a missing
// process function, unnamed ports, or duplicate port names within a group.
func (d *Definition) Validate() error {
	if d == nil {
		return ErrNoNodeDefine
	}
	if d.Process == nil {
		return fmt.Errorf("%w: %q has no process function", ErrMalformedDefinition, d.Name)
	}

	seen := make(map[string]struct{})
	check := func(group, name string) error {
		if name == "" {
			return fmt.Errorf("%w: %q declares an unnamed %s", ErrMalformedDefinition, d.Name, group)
		}
		key := group + "/" + name
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q declares %s %q twice", ErrMalformedDefinition, d.Name, group, name)
		}
		seen[key] = struct{}{}
		return nil
	}
	for _, in := range d.Inputs {
		if err := check("input", in.Name); err != nil {
			return err
		}
	}
	for _, out := range d.Outputs {
		if err := check("output", out.Name); err != nil {
			return err
		}
	}
	for _, ev := range d.Events {
		if err := check("event", ev.Name); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a copy whose port slices are independent of d.
func (d *Definition) Clone() *Definition {
	c := *d
	c.Inputs = append([]InputSpec(nil), d.Inputs...)
	c.Outputs = append([]OutputSpec(nil), d.Outputs...)
	c.Events = append([]EventSpec(nil), d.Events...)
	return &c
}
