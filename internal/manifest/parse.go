package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/schema"
)

// ErrNoNodes is returned for a manifest without node blocks.
var ErrNoNodes = errors.New("manifest declares no node blocks")

// Manifest is one parsed node block.
type Manifest struct {
	Name        string
	Description string
	FlowType    nodedef.FlowType
	// Process names the registered Go process function.
	Process      string
	Inputs       []nodedef.InputSpec
	Outputs      []nodedef.OutputSpec
	Events       []nodedef.EventSpec
	Component    nodedef.Component
	DefaultInput map[string]any
}

// Definition builds a fresh node definition bound to fn.
func (m *Manifest) Definition(fn nodedef.ProcessFunc) *nodedef.Definition {
	def := &nodedef.Definition{
		Name:     m.Name,
		FlowType: m.FlowType,
		Inputs:   append([]nodedef.InputSpec(nil), m.Inputs...),
		Outputs:  append([]nodedef.OutputSpec(nil), m.Outputs...),
		Events:   append([]nodedef.EventSpec(nil), m.Events...),
		Process:  fn,
	}
	if m.DefaultInput != nil {
		def.DefaultInput = func() map[string]any {
			out := make(map[string]any, len(m.DefaultInput))
			for k, v := range m.DefaultInput {
				out[k] = v
			}
			return out
		}
	}
	return def
}

// Parse decodes every node block of a manifest, in file order.
func Parse(ctx context.Context, filename string, src []byte) ([]*Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}
	if len(root.Nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoNodes)
	}

	out := make([]*Manifest, 0, len(root.Nodes))
	for _, block := range root.Nodes {
		m, err := translateNode(ctx, block)
		if err != nil {
			return nil, fmt.Errorf("%s: node %q: %w", filename, block.Name, err)
		}
		out = append(out, m)
	}
	logger.Debug("Manifest parsed.", "file", filename, "nodes", len(out))
	return out, nil
}

func translateNode(ctx context.Context, b *nodeBlock) (*Manifest, error) {
	m := &Manifest{
		Name:        b.Name,
		Description: deref(b.Description),
		FlowType:    nodedef.FlowType(deref(b.FlowType)),
		Process:     b.Process,
	}
	if m.FlowType == "" {
		m.FlowType = nodedef.FlowProcess
	}

	for _, in := range b.Inputs {
		spec, err := translateInput(ctx, in)
		if err != nil {
			return nil, err
		}
		m.Inputs = append(m.Inputs, spec)
	}
	for _, out := range b.Outputs {
		decl, err := typeExprToDecl(ctx, out.Type)
		if err != nil {
			return nil, fmt.Errorf("output '%s': %w", out.Name, err)
		}
		side, err := parseSide(out.Side)
		if err != nil {
			return nil, fmt.Errorf("output '%s': %w", out.Name, err)
		}
		m.Outputs = append(m.Outputs, nodedef.OutputSpec{
			Name:        out.Name,
			Type:        decl,
			Label:       deref(out.Label),
			Description: deref(out.Description),
			Side:        side,
		})
	}
	for _, ev := range b.Events {
		decl, err := typeExprToDecl(ctx, ev.Type)
		if err != nil {
			return nil, fmt.Errorf("event '%s': %w", ev.Name, err)
		}
		side, err := parseSide(ev.Side)
		if err != nil {
			return nil, fmt.Errorf("event '%s': %w", ev.Name, err)
		}
		m.Events = append(m.Events, nodedef.EventSpec{
			Name:  ev.Name,
			Type:  decl,
			Label: deref(ev.Label),
			Side:  side,
		})
	}

	if isExprDefined(b.DefaultInput) {
		v, err := evalValue(b.DefaultInput, nil)
		if err != nil {
			return nil, fmt.Errorf("default_input: %w", err)
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("default_input must be an object, got %T", v)
		}
		m.DefaultInput = obj
	}

	component, err := translateComponent(ctx, b, m)
	if err != nil {
		return nil, err
	}
	m.Component = component
	return m, nil
}

func translateInput(ctx context.Context, in *inputBlock) (nodedef.InputSpec, error) {
	decl, err := typeExprToDecl(ctx, in.Type)
	if err != nil {
		return nodedef.InputSpec{}, fmt.Errorf("input '%s': %w", in.Name, err)
	}
	def, err := evalValue(in.Default, decl)
	if err != nil {
		return nodedef.InputSpec{}, fmt.Errorf("invalid default value for input '%s': %w", in.Name, err)
	}
	side, err := parseSide(in.Side)
	if err != nil {
		return nodedef.InputSpec{}, fmt.Errorf("input '%s': %w", in.Name, err)
	}
	return nodedef.InputSpec{
		Name:        in.Name,
		Type:        decl,
		Required:    in.Required != nil && *in.Required,
		Default:     def,
		Label:       deref(in.Label),
		Description: deref(in.Description),
		Side:        side,
	}, nil
}

// translateComponent builds the component surface. Without a component
// block the surface mirrors the ports: one prop per input and one update
// event per output.
func translateComponent(ctx context.Context, b *nodeBlock, m *Manifest) (nodedef.Component, error) {
	if b.Component == nil {
		props := make(map[string]any, len(m.Inputs))
		for _, in := range m.Inputs {
			props[in.Name] = in.Type
		}
		emits := make([]string, 0, len(m.Outputs))
		for _, out := range m.Outputs {
			emits = append(emits, schema.UpdateEvent(out.Name))
		}
		return nodedef.Component{Name: m.Name, Props: props, Emits: emits}, nil
	}

	c := b.Component
	props := make(map[string]any, len(c.Props)+len(c.Prop))
	for _, name := range c.Props {
		props[name] = "any"
	}
	for _, p := range c.Prop {
		decl, err := typeExprToDecl(ctx, p.Type)
		if err != nil {
			return nodedef.Component{}, fmt.Errorf("component prop '%s': %w", p.Name, err)
		}
		if decl == nil {
			decl = "any"
		}
		props[p.Name] = decl
	}

	name := deref(c.Name)
	if name == "" {
		name = m.Name
	}
	return nodedef.Component{Name: name, Props: props, Emits: append([]string(nil), c.Emits...)}, nil
}

func parseSide(s *string) (nodedef.Side, error) {
	if s == nil || *s == "" {
		return "", nil
	}
	switch side := nodedef.Side(*s); side {
	case nodedef.SideLeft, nodedef.SideRight, nodedef.SideTop, nodedef.SideBottom:
		return side, nil
	default:
		return "", fmt.Errorf("unknown side %q (want left, right, top or bottom)", *s)
	}
}

