package cards

import (
	"errors"

	"github.com/vk/nodegrid/internal/nodeid"
)

// TypeUnsupported marks a card whose type could not be resolved.
const TypeUnsupported = "unsupported"

// TypeCustom marks a card backed by its own manifest file (NodeFile).
const TypeCustom = "custom"

// RuntimeErrorOnLoading is the RuntimeErrors key set when a card's type
// cannot be resolved.
const RuntimeErrorOnLoading = "onloading"

var (
	// ErrMissingID is returned for a config without an id.
	ErrMissingID = errors.New("card config requires an id")
	// ErrCardNotFound is returned when no card has the requested id.
	ErrCardNotFound = errors.New("card not found")
)

// Position is the location of a card on the canvas.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// CardConfig is the persisted description of one card.
type CardConfig struct {
	ID       nodeid.ID `json:"id" yaml:"id"`
	Type     string    `json:"type" yaml:"type"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Position Position  `json:"position" yaml:"position"`
	// NodeFile is the manifest path of a custom card.
	NodeFile      string            `json:"nodeFile,omitempty" yaml:"nodeFile,omitempty"`
	RuntimeErrors map[string]string `json:"runtimeErrors,omitempty" yaml:"runtimeErrors,omitempty"`
	SavedInputs   map[string]any    `json:"savedInputs,omitempty" yaml:"savedInputs,omitempty"`
}

// Clone returns a copy that shares no maps with c.
func (c CardConfig) Clone() CardConfig {
	out := c
	if c.RuntimeErrors != nil {
		out.RuntimeErrors = make(map[string]string, len(c.RuntimeErrors))
		for k, v := range c.RuntimeErrors {
			out.RuntimeErrors[k] = v
		}
	}
	if c.SavedInputs != nil {
		out.SavedInputs = make(map[string]any, len(c.SavedInputs))
		for k, v := range c.SavedInputs {
			out.SavedInputs[k] = v
		}
	}
	return out
}

// normalize fills in the defaults of a config.
func normalize(c CardConfig) (CardConfig, error) {
	if c.ID.IsZero() {
		return c, ErrMissingID
	}
	c = c.Clone()
	if c.Type == "" {
		c.Type = TypeUnsupported
	}
	if c.Title == "" {
		c.Title = c.Type
	}
	return c, nil
}
