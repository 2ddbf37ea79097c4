package env_vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegrid/internal/node"
	"github.com/vk/nodegrid/internal/testutil"
	"github.com/vk/nodegrid/internal/testutil/nodetest"
)

func TestEnvVars(t *testing.T) {
	t.Setenv("NODEGRID_TEST_A", "1")
	t.Setenv("NODEGRID_TEST_B", "two")
	ctx, _ := testutil.LoggedContext(t)
	h := nodetest.New(ctx, t, &Module{})

	c := h.Parse(ctx, t, "env_vars", node.WithSavedInputs(map[string]any{"prefix": "NODEGRID_TEST_"}))
	_, err := c.Exec(ctx, nil, nil)
	require.NoError(t, err)

	all := c.GetAnchor("all").Value()
	assert.Equal(t, map[string]any{"NODEGRID_TEST_A": "1", "NODEGRID_TEST_B": "two"}, all)

	unfiltered := h.Parse(ctx, t, "env_vars")
	out, err := unfiltered.Exec(ctx, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out["all"], "NODEGRID_TEST_A")
}
