package arith

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegrid/internal/node"
	"github.com/vk/nodegrid/internal/testutil"
	"github.com/vk/nodegrid/internal/testutil/nodetest"
)

func TestDouble(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	h := nodetest.New(ctx, t, &Module{})

	c := h.Parse(ctx, t, "double")
	_, err := c.Exec(ctx, nil, nil)
	require.ErrorIs(t, err, node.ErrMissingRequiredInput)

	c.GetAnchor("x").SetValue(5.0)
	_, err = c.Exec(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(10), c.GetAnchor("y").Value())
	assert.Equal(t, map[string]any{"y": float64(10)}, c.RecentOutput())
}

func TestSum(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	h := nodetest.New(ctx, t, &Module{})

	c := h.Parse(ctx, t, "sum")
	assert.Equal(t, float64(0), c.GetAnchor("a").Value())

	c.GetAnchor("a").SetValue(2)
	c.GetAnchor("b").SetValue(3.5)
	_, err := c.Exec(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.5, c.GetAnchor("sum").Value())
}

func TestSum_RejectsNonNumbers(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	h := nodetest.New(ctx, t, &Module{})

	c := h.Parse(ctx, t, "sum", node.WithProcessErrors(node.Propagate))
	c.GetAnchor("a").SetValue("two")
	_, err := c.Exec(ctx, nil, nil)
	require.ErrorIs(t, err, node.ErrProcessFailed)
}
