package schema

import (
	"fmt"
	"sort"

	"github.com/vk/nodegrid/internal/nodedef"
)

// NormalizeInputs turns any supported input declaration into an ordered
// list of specs. Supported shapes are a []string of names, a
// []nodedef.InputSpec, a []any or []map[string]any of names and spec maps,
// and keyed maps (map[string]nodedef.InputSpec or map[string]any). Keyed
// maps are ordered by key. Entries without a name are dropped.
func NormalizeInputs(raw any) ([]nodedef.InputSpec, error) {
	var out []nodedef.InputSpec
	add := func(s nodedef.InputSpec) {
		if s.Name != "" {
			out = append(out, s)
		}
	}

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []nodedef.InputSpec:
		for _, s := range v {
			add(s)
		}
	case []string:
		for _, name := range v {
			add(nodedef.InputSpec{Name: name, Type: "any"})
		}
	case []map[string]any:
		for _, m := range v {
			add(inputFromMap("", m))
		}
	case []any:
		for i, item := range v {
			switch it := item.(type) {
			case string:
				add(nodedef.InputSpec{Name: it, Type: "any"})
			case nodedef.InputSpec:
				add(it)
			case map[string]any:
				add(inputFromMap("", it))
			case nil:
			default:
				return nil, fmt.Errorf("input #%d: unsupported declaration %T", i, item)
			}
		}
	case map[string]nodedef.InputSpec:
		for _, name := range sortedKeys(v) {
			s := v[name]
			s.Name = name
			add(s)
		}
	case map[string]any:
		for _, name := range sortedKeys(v) {
			switch it := v[name].(type) {
			case nodedef.InputSpec:
				it.Name = name
				add(it)
			case map[string]any:
				add(inputFromMap(name, it))
			default:
				add(nodedef.InputSpec{Name: name, Type: it})
			}
		}
	default:
		return nil, fmt.Errorf("unsupported input declaration %T", raw)
	}
	return out, nil
}

// NormalizeOutputs is the output counterpart of NormalizeInputs.
func NormalizeOutputs(raw any) ([]nodedef.OutputSpec, error) {
	var out []nodedef.OutputSpec
	add := func(s nodedef.OutputSpec) {
		if s.Name != "" {
			out = append(out, s)
		}
	}

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []nodedef.OutputSpec:
		for _, s := range v {
			add(s)
		}
	case []string:
		for _, name := range v {
			add(nodedef.OutputSpec{Name: name, Type: "any"})
		}
	case []map[string]any:
		for _, m := range v {
			add(outputFromMap("", m))
		}
	case []any:
		for i, item := range v {
			switch it := item.(type) {
			case string:
				add(nodedef.OutputSpec{Name: it, Type: "any"})
			case nodedef.OutputSpec:
				add(it)
			case map[string]any:
				add(outputFromMap("", it))
			case nil:
			default:
				return nil, fmt.Errorf("output #%d: unsupported declaration %T", i, item)
			}
		}
	case map[string]nodedef.OutputSpec:
		for _, name := range sortedKeys(v) {
			s := v[name]
			s.Name = name
			add(s)
		}
	case map[string]any:
		for _, name := range sortedKeys(v) {
			switch it := v[name].(type) {
			case nodedef.OutputSpec:
				it.Name = name
				add(it)
			case map[string]any:
				add(outputFromMap(name, it))
			default:
				add(nodedef.OutputSpec{Name: name, Type: it})
			}
		}
	default:
		return nil, fmt.Errorf("unsupported output declaration %T", raw)
	}
	return out, nil
}

// NormalizeProps keys a component's property declarations by name.
func NormalizeProps(raw any) (map[string]nodedef.PropSpec, error) {
	props := make(map[string]nodedef.PropSpec)
	switch v := raw.(type) {
	case nil:
	case []string:
		for _, name := range v {
			props[name] = nodedef.PropSpec{Name: name, Type: "any"}
		}
	case []nodedef.PropSpec:
		for _, p := range v {
			props[p.Name] = p
		}
	case []any:
		for _, item := range v {
			switch it := item.(type) {
			case string:
				props[it] = nodedef.PropSpec{Name: it, Type: "any"}
			case nodedef.PropSpec:
				props[it.Name] = it
			}
		}
	case map[string]nodedef.PropSpec:
		for name, p := range v {
			p.Name = name
			props[name] = p
		}
	case map[string]any:
		for name, decl := range v {
			props[name] = nodedef.PropSpec{Name: name, Type: decl}
		}
	default:
		return nil, fmt.Errorf("unsupported component props declaration %T", raw)
	}
	delete(props, "")
	return props, nil
}

// NormalizeEmits returns the emitted event names of a component.
func NormalizeEmits(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		var names []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return names
	case map[string]any:
		return sortedKeys(v)
	default:
		return nil
	}
}

func inputFromMap(name string, m map[string]any) nodedef.InputSpec {
	s := nodedef.InputSpec{
		Name:        firstString(name, m["name"], m["id"]),
		Type:        m["type"],
		Default:     m["default"],
		Description: firstString("", m["description"]),
		Label:       firstString("", m["label"]),
		Side:        nodedef.Side(firstString("", m["side"])),
	}
	if s.Type == nil {
		s.Type = "any"
	}
	s.Required, _ = m["required"].(bool)
	switch fn := m["validator"].(type) {
	case nodedef.Validator:
		s.Validator = fn
	case func(any) bool:
		s.Validator = fn
	}
	return s
}

func outputFromMap(name string, m map[string]any) nodedef.OutputSpec {
	s := nodedef.OutputSpec{
		Name:        firstString(name, m["name"], m["id"]),
		Type:        m["type"],
		Description: firstString("", m["description"]),
		Label:       firstString("", m["label"]),
		Side:        nodedef.Side(firstString("", m["side"])),
	}
	if s.Type == nil {
		s.Type = "any"
	}
	return s
}

// firstString returns the first non-empty string among the candidates.
func firstString(def string, candidates ...any) string {
	if def != "" {
		return def
	}
	for _, c := range candidates {
		if s, ok := c.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
