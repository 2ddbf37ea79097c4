package manifest

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all top-level blocks of a manifest.
type fileRoot struct {
	Nodes  []*nodeBlock `hcl:"node,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type nodeBlock struct {
	Name         string          `hcl:"name,label"`
	FlowType     *string         `hcl:"flow_type,optional"`
	Process      string          `hcl:"process,optional"`
	Description  *string         `hcl:"description,optional"`
	Component    *componentBlock `hcl:"component,block"`
	Inputs       []*inputBlock   `hcl:"input,block"`
	Outputs      []*outputBlock  `hcl:"output,block"`
	Events       []*eventBlock   `hcl:"event,block"`
	DefaultInput hcl.Expression  `hcl:"default_input,optional"`
}

type componentBlock struct {
	Name  *string      `hcl:"name,optional"`
	Props []string     `hcl:"props,optional"`
	Prop  []*propBlock `hcl:"prop,block"`
	Emits []string     `hcl:"emits,optional"`
}

type propBlock struct {
	Name string         `hcl:"name,label"`
	Type hcl.Expression `hcl:"type,optional"`
}

type inputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	Required    *bool          `hcl:"required,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Label       *string        `hcl:"label,optional"`
	Description *string        `hcl:"description,optional"`
	Side        *string        `hcl:"side,optional"`
}

type outputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	Label       *string        `hcl:"label,optional"`
	Description *string        `hcl:"description,optional"`
	Side        *string        `hcl:"side,optional"`
}

type eventBlock struct {
	Name  string         `hcl:"name,label"`
	Type  hcl.Expression `hcl:"type,optional"`
	Label *string        `hcl:"label,optional"`
	Side  *string        `hcl:"side,optional"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
