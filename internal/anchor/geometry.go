package anchor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodedef"
)

// Offset is the distance between a card edge and the anchors on it.
const Offset = 8.0

// ErrInvalidGeometry is returned for missing or non-finite card geometry.
var ErrInvalidGeometry = errors.New("invalid card geometry")

// Rect is the on-screen box of a card.
type Rect struct {
	X, Y, Width, Height float64
}

// Point is an absolute screen position.
type Point struct {
	X, Y float64
}

// AbsolutePosition places an anchor at fraction position along side of
// rect. An unknown side falls back to the card origin with a warning.
func AbsolutePosition(ctx context.Context, rect *Rect, side nodedef.Side, position float64) (Point, error) {
	if rect == nil {
		return Point{}, fmt.Errorf("%w: no card rect", ErrInvalidGeometry)
	}
	for _, v := range []float64{rect.X, rect.Y, rect.Width, rect.Height, position} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Point{}, fmt.Errorf("%w: non-finite value in %+v", ErrInvalidGeometry, *rect)
		}
	}

	switch side {
	case nodedef.SideLeft:
		return Point{X: rect.X - Offset, Y: rect.Y + rect.Height*position}, nil
	case nodedef.SideRight:
		return Point{X: rect.X + rect.Width + Offset, Y: rect.Y + rect.Height*position}, nil
	case nodedef.SideTop:
		return Point{X: rect.X + rect.Width*position, Y: rect.Y - Offset}, nil
	case nodedef.SideBottom:
		return Point{X: rect.X + rect.Width*position, Y: rect.Y + rect.Height + Offset}, nil
	default:
		ctxlog.FromContext(ctx).Warn("Unknown anchor side, using card origin.", "side", string(side))
		return Point{X: rect.X, Y: rect.Y}, nil
	}
}
