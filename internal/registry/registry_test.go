package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/testutil"
)

func noop(context.Context, map[string]any, nodedef.Runtime) (map[string]any, error) { return nil, nil }

type testModule struct{}

func (testModule) Register(r *Registry) {
	r.RegisterType("noop", Builtin("noop", []byte(`node "noop" { process = "Noop" }`)))
	r.RegisterProcess("Noop", noop)
}

func TestRegistry_Types(t *testing.T) {
	r := New()
	testModule{}.Register(r)

	d, ok := r.Lookup("noop")
	require.True(t, ok)
	assert.Equal(t, KindBuiltin, d.Kind)
	assert.Equal(t, "builtin://noop", d.URL)

	byURL, ok := r.LookupURL("builtin://noop")
	require.True(t, ok)
	assert.Equal(t, d.URL, byURL.URL)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	assert.Panics(t, func() { testModule{}.Register(r) })
	assert.Equal(t, []string{"noop"}, r.Types())
	assert.Len(t, r.Builtins(), 1)
}

func TestRegistry_Ensure(t *testing.T) {
	r := New()
	d, added := r.Ensure("nodes/x.hcl", Custom("nodes/x.hcl"))
	require.True(t, added)
	assert.Equal(t, KindCustom, d.Kind)
	assert.Equal(t, "nodes/x.hcl", d.File)

	d, added = r.Ensure("nodes/x.hcl", Custom("other.hcl"))
	assert.False(t, added)
	assert.Equal(t, "nodes/x.hcl", d.URL, "existing descriptor wins")
	assert.Empty(t, r.Builtins())
}

func TestRegistry_Processes(t *testing.T) {
	r := New()
	r.RegisterProcess("A", noop)
	fn, ok := r.Process("A")
	require.True(t, ok)
	assert.NotNil(t, fn)
	assert.Panics(t, func() { r.RegisterProcess("A", noop) })
	assert.Equal(t, []string{"A"}, r.Processes())
}

func TestValidateProcessRefs(t *testing.T) {
	ctx, logs := testutil.LoggedContext(t)
	r := New()
	r.RegisterProcess("Used", noop)
	r.RegisterProcess("Orphan", noop)

	require.NoError(t, r.ValidateProcessRefs(ctx, map[string]string{"a": "Used"}))
	assert.Contains(t, logs.String(), "process=Orphan")

	err := r.ValidateProcessRefs(ctx, map[string]string{"a": "Used", "b": "Ghost", "c": ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node type 'b': manifest names process 'Ghost'")
	assert.Contains(t, err.Error(), "node type 'c': manifest does not name a process")
}

func TestLoadManifestDir(t *testing.T) {
	ctx, logs := testutil.LoggedContext(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scale.hcl"), []byte(`node "scale" {}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "noop.hcl"), []byte(`node "noop" {}`), 0o644))

	r := New()
	testModule{}.Register(r)

	n, err := r.LoadManifestDir(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	scale, ok := r.Lookup("scale")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "scale.hcl"), scale.File)

	_, ok = r.Lookup(filepath.Join(dir, "scale.hcl"))
	assert.True(t, ok)

	noopType, _ := r.Lookup("noop")
	assert.Equal(t, KindBuiltin, noopType.Kind, "built-in keeps its name")
	assert.Contains(t, logs.String(), "shadows an existing type")

	n, err = r.LoadManifestDir(ctx, t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, n)
}
