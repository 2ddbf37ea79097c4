package integrationtests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/nodegrid/internal/app"
	"github.com/vk/nodegrid/internal/testutil"
)

// harnessResult holds the outcomes of an integration test run.
type harnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// runGraph writes files into a temporary directory, runs the app on
// "graph.json" (or "graph.yaml") and returns the outcome. Files below
// "nodes/" are registered as custom manifests.
func runGraph(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config, opts ...app.Option) *harnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg.GraphPath = filepath.Join(dir, "graph.json")
	if _, ok := files["graph.yaml"]; ok {
		cfg.GraphPath = filepath.Join(dir, "graph.yaml")
	}
	if _, err := os.Stat(filepath.Join(dir, "nodes")); err == nil {
		cfg.ManifestsPath = filepath.Join(dir, "nodes")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	testApp, err := app.NewApp(logBuffer, appConfig, opts...)
	if err != nil {
		return &harnessResult{LogOutput: logBuffer.String(), Err: err}
	}
	runErr := testApp.Run(ctx)

	if os.Getenv("NODEGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	return &harnessResult{LogOutput: logBuffer.String(), Err: runErr, App: testApp}
}

// output returns the recent output of one card.
func (r *harnessResult) output(t *testing.T, index int) map[string]any {
	t.Helper()
	require.NotNil(t, r.App)
	list := r.App.Cards().Cards()
	require.Greater(t, len(list), index)
	ctrl := list[index].Controller()
	require.NotNil(t, ctrl, "card %d has no controller", index)
	return ctrl.RecentOutput()
}
