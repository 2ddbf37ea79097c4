package anchor

import (
	"context"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodeid"
	"github.com/vk/nodegrid/internal/porttype"
)

// Endpoint names one anchor of one card.
type Endpoint struct {
	CardID   nodeid.ID `json:"cardId" yaml:"cardId"`
	AnchorID string    `json:"anchorId" yaml:"anchorId"`
}

// Connection is a directed link from an output to an input.
type Connection struct {
	From Endpoint `json:"from" yaml:"from"`
	To   Endpoint `json:"to" yaml:"to"`
}

// Touches reports whether either endpoint is (cardID, anchorID).
func (c Connection) Touches(cardID nodeid.ID, anchorID string) bool {
	return (c.From.CardID.Equal(cardID) && c.From.AnchorID == anchorID) ||
		(c.To.CardID.Equal(cardID) && c.To.AnchorID == anchorID)
}

// HasConnection reports whether any connection touches (cardID, anchorID).
func HasConnection(connections []Connection, cardID nodeid.ID, anchorID string) bool {
	for _, c := range connections {
		if c.Touches(cardID, anchorID) {
			return true
		}
	}
	return false
}

// LinkAble reports whether out may be linked to in. A side without a
// declared type, or whose type is unconstrained, links with anything.
// Otherwise the canonical kinds must be equal; a mismatch is logged.
func LinkAble(ctx context.Context, out, in porttype.Declared) bool {
	outDecl, inDecl := declared(out), declared(in)
	if outDecl == nil || inDecl == nil {
		return true
	}

	outKind, inKind := porttype.Normalize(outDecl), porttype.Normalize(inDecl)
	if outKind == porttype.Any || inKind == porttype.Any {
		return true
	}
	if outKind != inKind {
		ctxlog.FromContext(ctx).Warn("Anchor types are not link compatible.",
			"output_type", outKind.String(),
			"input_type", inKind.String(),
		)
		return false
	}
	return true
}

func declared(d porttype.Declared) any {
	if d == nil {
		return nil
	}
	t := d.DeclaredType()
	if s, ok := t.(string); ok && s == "" {
		return nil
	}
	return t
}
