package nodedef

// Side is the edge of the visual node an anchor is attached to.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// Validator is an optional per-input value check.
type Validator func(value any) bool

// InputSpec declares one input port.
type InputSpec struct {
	Name        string
	Type        any
	Required    bool
	Default     any
	Validator   Validator
	Description string
	Label       string
	Side        Side
}

// DeclaredType implements porttype.Declared.
func (s InputSpec) DeclaredType() any { return s.Type }

// OutputSpec declares one output port.
type OutputSpec struct {
	Name        string
	Type        any
	Description string
	Label       string
	Side        Side
}

// DeclaredType implements porttype.Declared.
func (s OutputSpec) DeclaredType() any { return s.Type }

// EventSpec declares one event port.
type EventSpec struct {
	Name  string
	Type  any
	Label string
	Side  Side
}

// DeclaredType implements porttype.Declared.
func (s EventSpec) DeclaredType() any { return s.Type }

// PropSpec describes one property of a backing component.
type PropSpec struct {
	Name string
	Type any
}

// DeclaredType implements porttype.Declared.
func (s PropSpec) DeclaredType() any { return s.Type }
