package cards

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegrid/internal/manifest"
	"github.com/vk/nodegrid/internal/node"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/nodeid"
	"github.com/vk/nodegrid/internal/porttype"
	"github.com/vk/nodegrid/internal/registry"
	"github.com/vk/nodegrid/internal/testutil"
)

const doubleHCL = `
node "double" {
  process = "Double"

  input "x" {
    type     = number
    required = true
  }

  output "y" {
    type = number
  }
}
`

func double(_ context.Context, in map[string]any, _ nodedef.Runtime) (map[string]any, error) {
	x, _ := porttype.ToFloat(in["x"])
	return map[string]any{"y": x * 2}, nil
}

func newManager(opts ...Option) (*Manager, *registry.Registry) {
	reg := registry.New()
	reg.RegisterType("double", registry.Builtin("double", []byte(doubleHCL)))
	reg.RegisterProcess("Double", double)
	return NewManager(reg, manifest.NewLoader(reg), opts...), reg
}

func TestAddCard_Builtin(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	m, _ := newManager()

	card, err := m.AddCard(ctx, CardConfig{ID: nodeid.FromString("a"), Type: "double"}, AddOptions{})
	require.NoError(t, err)
	require.NotNil(t, card.Controller())
	assert.Equal(t, "double", card.TypeKey())
	assert.Equal(t, "double", card.Title())
	assert.Equal(t, Position{}, card.Position())

	card.Controller().GetAnchor("x").SetValue(5.0)
	_, err = card.Controller().Exec(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(10), card.Controller().GetAnchor("y").Value())
}

func TestAddCard_MissingID(t *testing.T) {
	ctx, logs := testutil.LoggedContext(t)
	m, _ := newManager()

	_, err := m.AddCard(ctx, CardConfig{Type: "double"}, AddOptions{})
	require.ErrorIs(t, err, ErrMissingID)
	assert.Zero(t, m.Len())
	assert.Contains(t, logs.String(), "Rejected card config.")
}

func TestAddCard_DuplicateIDUpdatesInPlace(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	m, _ := newManager()

	first, err := m.AddCard(ctx, CardConfig{ID: nodeid.FromString("x"), Type: "double", Title: "one"}, AddOptions{})
	require.NoError(t, err)
	second, err := m.AddCard(ctx, CardConfig{
		ID:       nodeid.FromString("x"),
		Type:     "double",
		Title:    "two",
		Position: Position{X: 3, Y: 4},
	}, AddOptions{})
	require.NoError(t, err)

	assert.Same(t, first, second)
	require.Len(t, m.Cards(), 1)
	assert.Equal(t, "two", first.Title())
	assert.Equal(t, Position{X: 3, Y: 4}, first.Position())
	require.Len(t, m.Configs(), 1)
	assert.Equal(t, "two", m.Configs()[0].Title)
}

func TestAddCard_SkipExisting(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	m, _ := newManager()

	first, err := m.AddCard(ctx, CardConfig{ID: nodeid.FromNumber(1), Type: "double", Title: "one"}, AddOptions{})
	require.NoError(t, err)
	again, err := m.AddCard(ctx, CardConfig{ID: nodeid.FromString("1"), Type: "double", Title: "two"}, AddOptions{SkipExisting: true})
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.Equal(t, "one", again.Title())
	assert.Equal(t, "one", m.Configs()[0].Title)
}

func TestAddCard_Unsupported(t *testing.T) {
	ctx, logs := testutil.LoggedContext(t)
	m, _ := newManager()

	card, err := m.AddCard(ctx, CardConfig{ID: nodeid.FromString("u"), Type: "teleport"}, AddOptions{})
	require.NoError(t, err)
	assert.True(t, card.Unsupported())
	assert.Nil(t, card.Controller())

	cfg := m.Configs()[0]
	assert.Equal(t, TypeUnsupported, cfg.Type)
	assert.Contains(t, cfg.RuntimeErrors[RuntimeErrorOnLoading], "teleport")
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestAddCard_CustomNodeFile(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	m, reg := newManager()

	path := filepath.Join(t.TempDir(), "triple.hcl")
	src := `
node "triple" {
  process = "Double"
  input "x" { type = number }
  output "y" { type = number }
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	card, err := m.AddCard(ctx, CardConfig{ID: nodeid.FromString("c1"), Type: TypeCustom, NodeFile: path}, AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, path, card.TypeKey())
	require.NotNil(t, card.Controller())
	assert.Equal(t, path, card.Controller().URL())

	d, ok := reg.Lookup(path)
	require.True(t, ok)
	assert.Equal(t, registry.KindCustom, d.Kind)

	_, err = m.AddCard(ctx, CardConfig{ID: nodeid.FromString("c2"), Type: TypeCustom, NodeFile: path}, AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, TypeCustom, m.Configs()[1].Type)
}

func TestAddCard_ParseFailureLeavesStateUnchanged(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	reg := registry.New()
	reg.RegisterType("ghost", registry.Builtin("ghost", []byte(`node "ghost" { process = "Ghost" }`)))
	m := NewManager(reg, manifest.NewLoader(reg))

	_, err := m.AddCard(ctx, CardConfig{ID: nodeid.FromString("g"), Type: "ghost"}, AddOptions{})
	require.Error(t, err)
	var nodeErr *node.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "g", nodeErr.NodeID)
	assert.Zero(t, m.Len())
}

func TestRemoveCard(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	m, _ := newManager()

	for _, id := range []string{"a", "b", "c"} {
		_, err := m.AddCard(ctx, CardConfig{ID: nodeid.FromString(id), Type: "double"}, AddOptions{})
		require.NoError(t, err)
	}
	require.NoError(t, m.RemoveCard(ctx, nodeid.FromString("b")))

	cards, configs := m.Cards(), m.Configs()
	require.Len(t, cards, 2)
	require.Len(t, configs, 2)
	for i := range cards {
		assert.True(t, cards[i].ID().Equal(configs[i].ID))
	}

	// The released scope can be loaded again.
	_, err := m.AddCard(ctx, CardConfig{ID: nodeid.FromString("b"), Type: "double"}, AddOptions{})
	require.NoError(t, err)

	require.ErrorIs(t, m.RemoveCard(ctx, nodeid.FromString("zzz")), ErrCardNotFound)
}

func TestConfigs_CarrySavedInputs(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	m, _ := newManager(WithNodeOptions(node.WithProcessErrors(node.Propagate)))

	card, err := m.AddCard(ctx, CardConfig{
		ID:          nodeid.FromString("s"),
		Type:        "double",
		SavedInputs: map[string]any{"x": 1.0},
	}, AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, node.Propagate, card.Controller().ProcessErrors())

	card.Controller().GetAnchor("x").SetValue(1.0)
	_, err = card.Controller().Exec(ctx, map[string]any{"x": 4.0}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 4.0}, m.Configs()[0].SavedInputs)

	// Snapshots do not alias the stored config.
	cfg := m.Configs()[0]
	cfg.SavedInputs["x"] = "mutated"
	assert.Equal(t, 4.0, m.Configs()[0].SavedInputs["x"])
}
