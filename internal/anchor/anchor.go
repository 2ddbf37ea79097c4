package anchor

import (
	"sync"

	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/porttype"
)

// Direction tells inputs, outputs and events apart.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
	Event  Direction = "event"
)

// DefaultSide is where anchors of a direction go when the port spec does not say.
func DefaultSide(d Direction) nodedef.Side {
	switch d {
	case Input:
		return nodedef.SideLeft
	case Output:
		return nodedef.SideRight
	default:
		return nodedef.SideTop
	}
}

// Anchor is a typed port of one node.
type Anchor struct {
	ID        string
	Label     string
	Direction Direction
	Side      nodedef.Side
	// Position is the fraction along Side, strictly between 0 and 1.
	Position float64
	// Define is the declared spec: a nodedef.InputSpec, OutputSpec or
	// EventSpec depending on Direction. It may be nil for ad hoc anchors.
	Define any
	Value  *Cell
}

// Controller wraps an Anchor with its visual state.
type Controller struct {
	anchor *Anchor

	mu         sync.RWMutex
	connected  bool
	visible    bool
	foldPolicy bool
	theme      string
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithFoldPolicy sets the "fold while unconnected" policy.
func WithFoldPolicy(fold bool) ControllerOption {
	return func(c *Controller) { c.foldPolicy = fold }
}

// WithTheme sets the controller theme.
func WithTheme(theme string) ControllerOption {
	return func(c *Controller) { c.theme = theme }
}

// NewController wraps a. A nil Value cell is replaced by an empty one.
func NewController(a *Anchor, opts ...ControllerOption) *Controller {
	if a.Value == nil {
		a.Value = NewCell(nil)
	}
	if a.Side == "" {
		a.Side = DefaultSide(a.Direction)
	}
	if a.Label == "" {
		a.Label = a.ID
	}
	c := &Controller{anchor: a, visible: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Anchor() *Anchor { return c.anchor }
func (c *Controller) ID() string { return c.anchor.ID }
func (c *Controller) Label() string { return c.anchor.Label }
func (c *Controller) Direction() Direction { return c.anchor.Direction }
func (c *Controller) Side() nodedef.Side { return c.anchor.Side }
func (c *Controller) Position() float64 { return c.anchor.Position }

// Define returns the port spec the anchor was built from.
func (c *Controller) Define() any { return c.anchor.Define }

// Cell returns the cell backing the anchor value.
func (c *Controller) Cell() *Cell { return c.anchor.Value }

// Value reads the current value of the anchor's cell.
func (c *Controller) Value() any { return c.anchor.Value.Get() }

// SetValue overwrites the cell value as is.
func (c *Controller) SetValue(v any) { c.anchor.Value.Set(v) }

// Kind is the normalized port type of the declared type.
func (c *Controller) Kind() porttype.Kind { return porttype.Normalize(c.DeclaredType()) }

func (c *Controller) IsInput() bool { return c.anchor.Direction == Input }
func (c *Controller) IsOutput() bool { return c.anchor.Direction == Output }
func (c *Controller) IsEvent() bool { return c.anchor.Direction == Event }
func (c *Controller) String() string { return string(c.anchor.Direction) + ":" + c.anchor.ID }

func (c *Controller) inputSpec() (nodedef.InputSpec, bool) {
	spec, ok := c.anchor.Define.(nodedef.InputSpec)
	return spec, ok
}

// DeclaredType implements porttype.Declared. It is nil when the anchor has
// no declared spec.
func (c *Controller) DeclaredType() any {
	if c == nil || c.anchor == nil {
		return nil
	}
	if d, ok := c.anchor.Define.(porttype.Declared); ok {
		return d.DeclaredType()
	}
	return nil
}

// Required reports whether the anchor is an input declared as required.
func (c *Controller) Required() bool {
	spec, ok := c.inputSpec()
	return ok && spec.Required
}

// Default is the declared default of an input anchor, nil otherwise.
func (c *Controller) Default() any {
	if spec, ok := c.inputSpec(); ok {
		return spec.Default
	}
	return nil
}

// Reset puts the value back to its initial state: the declared default
// for inputs, the empty value of the declared type otherwise.
func (c *Controller) Reset() {
	if c.IsInput() {
		c.SetValue(c.Default())
		return
	}
	c.SetValue(c.Kind().Zero())
}

// SetConnected records whether a link touches this anchor.
func (c *Controller) SetConnected(connected bool) {
	c.mu.Lock()
	c.connected = connected
	c.mu.Unlock()
}

func (c *Controller) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SetFoldPolicy changes the "fold while unconnected" policy.
func (c *Controller) SetFoldPolicy(fold bool) {
	c.mu.Lock()
	c.foldPolicy = fold
	c.mu.Unlock()
}

func (c *Controller) FoldPolicy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.foldPolicy
}

// Folded is derived: a connected anchor is folded exactly when the policy
// is off, an unconnected one exactly when it is on.
func (c *Controller) Folded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.connected {
		return !c.foldPolicy
	}
	return c.foldPolicy
}

func (c *Controller) SetVisible(visible bool) {
	c.mu.Lock()
	c.visible = visible
	c.mu.Unlock()
}

func (c *Controller) Visible() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visible
}

func (c *Controller) SetTheme(theme string) {
	c.mu.Lock()
	c.theme = theme
	c.mu.Unlock()
}

func (c *Controller) Theme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme
}

// Snapshot is a point-in-time view of a controller for renderers.
type Snapshot struct {
	ID        string       `json:"id"`
	Label     string       `json:"label"`
	Direction Direction    `json:"type"`
	Side      nodedef.Side `json:"side"`
	Position  float64      `json:"position"`
	Value     any          `json:"value"`
	Connected bool         `json:"connected"`
	Visible   bool         `json:"isVisible"`
	Folded    bool         `json:"isFolded"`
	Theme     string       `json:"theme,omitempty"`
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		ID:        c.ID(),
		Label:     c.Label(),
		Direction: c.Direction(),
		Side:      c.Side(),
		Position:  c.Position(),
		Value:     c.Value(),
		Connected: c.Connected(),
		Visible:   c.Visible(),
		Folded:    c.Folded(),
		Theme:     c.Theme(),
	}
}
