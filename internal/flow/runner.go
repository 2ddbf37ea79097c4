package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/nodegrid/internal/anchor"
	"github.com/vk/nodegrid/internal/cards"
	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/node"
)

// ErrInvalidConnection is returned for a connection whose endpoints do not
// name an existing output and input.
var ErrInvalidConnection = errors.New("invalid connection")

// Runner executes the cards of a graph in dependency order.
type Runner struct {
	cards map[string]*cards.Card
	conns []anchor.Connection
	order []string
}

// NewRunner validates the connections between cardList, marks the
// connected anchors, and fixes the execution order.
func NewRunner(ctx context.Context, cardList []*cards.Card, conns []anchor.Connection) (*Runner, error) {
	logger := ctxlog.FromContext(ctx)
	r := &Runner{
		cards: make(map[string]*cards.Card, len(cardList)),
		conns: append([]anchor.Connection(nil), conns...),
	}

	g := NewGraph()
	for _, c := range cardList {
		key := c.ID().String()
		r.cards[key] = c
		g.AddNode(key)
	}

	for _, conn := range r.conns {
		if err := r.checkConnection(conn); err != nil {
			return nil, err
		}
		if err := g.AddEdge(conn.From.CardID.String(), conn.To.CardID.String()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConnection, err)
		}
	}
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	r.order = order

	for _, c := range cardList {
		ctrl := c.Controller()
		if ctrl == nil {
			continue
		}
		for _, a := range ctrl.Anchors() {
			a.SetConnected(anchor.HasConnection(r.conns, c.ID(), a.ID()))
		}
	}

	logger.Debug("Flow prepared.", "cards", len(cardList), "connections", len(r.conns), "order", r.order)
	return r, nil
}

// checkConnection requires both cards to exist. When a card has a node the
// endpoint must name one of its anchors in the right direction.
func (r *Runner) checkConnection(conn anchor.Connection) error {
	from, ok := r.cards[conn.From.CardID.String()]
	if !ok {
		return fmt.Errorf("%w: unknown source card %s", ErrInvalidConnection, conn.From.CardID)
	}
	to, ok := r.cards[conn.To.CardID.String()]
	if !ok {
		return fmt.Errorf("%w: unknown target card %s", ErrInvalidConnection, conn.To.CardID)
	}
	if ctrl := from.Controller(); ctrl != nil {
		a := ctrl.GetAnchor(conn.From.AnchorID)
		if a == nil || a.IsInput() {
			return fmt.Errorf("%w: card %s has no output %q", ErrInvalidConnection, conn.From.CardID, conn.From.AnchorID)
		}
	}
	if ctrl := to.Controller(); ctrl != nil {
		a := ctrl.GetAnchor(conn.To.AnchorID)
		if a == nil || !a.IsInput() {
			return fmt.Errorf("%w: card %s has no input %q", ErrInvalidConnection, conn.To.CardID, conn.To.AnchorID)
		}
	}
	return nil
}

// Order returns the card ids in execution order.
func (r *Runner) Order() []string {
	return append([]string(nil), r.order...)
}

// Run executes every supported card once, in order. The first failure
// stops the run.
func (r *Runner) Run(ctx context.Context, globals node.GlobalInputs) error {
	logger := ctxlog.FromContext(ctx)

	for _, id := range r.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		card := r.cards[id]
		ctrl := card.Controller()
		if ctrl == nil {
			logger.Warn("Skipping unsupported card.", "card_id", id)
			continue
		}
		if _, err := ctrl.Exec(ctx, nil, globals); err != nil {
			return fmt.Errorf("running card %s: %w", id, err)
		}
		r.propagate(ctx, card)
	}
	logger.Info("Flow completed.", "cards", len(r.order))
	return nil
}

// propagate copies the outputs of card along its outgoing connections.
func (r *Runner) propagate(ctx context.Context, card *cards.Card) {
	logger := ctxlog.FromContext(ctx)
	src := card.Controller()

	for _, conn := range r.conns {
		if !conn.From.CardID.Equal(card.ID()) {
			continue
		}
		target := r.cards[conn.To.CardID.String()].Controller()
		if target == nil {
			continue
		}
		out := src.GetAnchor(conn.From.AnchorID)
		in := target.GetAnchor(conn.To.AnchorID)
		if !anchor.LinkAble(ctx, out, in) {
			logger.Warn("Copying a value across an incompatible link.",
				"from_card", conn.From.CardID.String(), "from_anchor", out.ID(),
				"to_card", conn.To.CardID.String(), "to_anchor", in.ID())
		}
		in.SetValue(out.Value())
	}
}
