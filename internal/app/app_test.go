package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegrid/internal/graphfile"
	"github.com/vk/nodegrid/internal/node"
	"github.com/vk/nodegrid/internal/testutil"
	"github.com/vk/nodegrid/internal/testutil/nodetest"
)

const chainGraph = `{
  "cards": [
    {"id": 1, "type": "constant", "savedInputs": {"value": 4}},
    {"id": 2, "type": "double"},
    {"id": 3, "type": "print"}
  ],
  "connections": [
    {"from": {"cardId": 1, "anchorId": "value"}, "to": {"cardId": 2, "anchorId": "x"}},
    {"from": {"cardId": 2, "anchorId": "y"}, "to": {"cardId": 3, "anchorId": "value"}}
  ]
}`

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, out io.Writer, cfg Config, opts ...Option) *App {
	t.Helper()
	c, err := NewConfig(cfg)
	require.NoError(t, err)
	a, err := NewApp(out, c, opts...)
	require.NoError(t, err)
	return a
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "missing graph", cfg: Config{}, wantErr: "GraphPath"},
		{name: "bad format", cfg: Config{GraphPath: "g.json", LogFormat: "xml"}, wantErr: "log format"},
		{name: "bad level", cfg: Config{GraphPath: "g.json", LogLevel: "loud"}, wantErr: "log level"},
		{name: "bad policy", cfg: Config{GraphPath: "g.json", ProcessErrors: "explode"}, wantErr: "explode"},
		{name: "bad port", cfg: Config{GraphPath: "g.json", HealthcheckPort: 70000}, wantErr: "port"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	cfg, err := NewConfig(Config{GraphPath: "g.json", LogFormat: "JSON"})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "nodegrid", cfg.MQTTTopicPrefix)
	assert.Equal(t, "nodegrid", cfg.MQTTClientID)
}

func TestRun_Chain(t *testing.T) {
	dir := t.TempDir()
	graph := writeFile(t, dir, "graph.json", chainGraph)
	out := &testutil.SafeBuffer{}

	a := newTestApp(t, out, Config{GraphPath: graph, LogLevel: "debug"})
	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, out.String(), "      8\n")
	assert.Contains(t, out.String(), "Flow finished.")
	assert.Contains(t, out.String(), "Card output.")
	require.Equal(t, 3, a.Cards().Len())
	doubled := a.Cards().Cards()[1]
	assert.Equal(t, float64(8), doubled.Controller().GetAnchor("y").Value())
}

func TestRun_BridgeAndSave(t *testing.T) {
	dir := t.TempDir()
	graph := writeFile(t, dir, "graph.json", chainGraph)
	saved := filepath.Join(dir, "saved.json")
	pub := &recordingPublisher{}

	a := newTestApp(t, io.Discard, Config{GraphPath: graph, SavePath: saved, MQTTTopicPrefix: "lab/"}, WithPublisher(pub))
	require.NoError(t, a.Run(context.Background()))

	pub.mu.Lock()
	assert.Equal(t, []string{"lab/3/printed"}, pub.topics)
	pub.mu.Unlock()

	doc, err := graphfile.Load(context.Background(), saved)
	require.NoError(t, err)
	require.Len(t, doc.Cards, 3)
	assert.Equal(t, map[string]any{"value": float64(4)}, doc.Cards[0].SavedInputs)
	assert.Len(t, doc.Connections, 2)
}

func TestRun_CustomManifestsAndGlobals(t *testing.T) {
	dir := t.TempDir()
	manifests := filepath.Join(dir, "nodes")
	require.NoError(t, os.Mkdir(manifests, 0o755))
	writeFile(t, manifests, "twice.hcl", `
node "twice" {
  process = "ArithDouble"

  input "x" {
    type     = number
    required = true
  }

  output "y" {
    type = number
  }
}
`)
	graph := writeFile(t, dir, "graph.yaml", `
cards:
  - {id: src, type: constant}
  - {id: t, type: twice}
  - {id: p, type: print}
connections:
  - {from: {cardId: src, anchorId: value}, to: {cardId: t, anchorId: x}}
  - {from: {cardId: t, anchorId: y}, to: {cardId: p, anchorId: value}}
`)
	out := &testutil.SafeBuffer{}
	a := newTestApp(t, out, Config{GraphPath: graph, ManifestsPath: manifests},
		WithGlobalInputs(node.GlobalInputs{"src": {"value": 21.0}}))
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "      42\n")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing graph", func(t *testing.T) {
		a := newTestApp(t, io.Discard, Config{GraphPath: filepath.Join(dir, "missing.json")})
		err := a.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load graph")
	})

	t.Run("cycle", func(t *testing.T) {
		graph := writeFile(t, dir, "cycle.json", `{
  "cards": [{"id": 1, "type": "double"}, {"id": 2, "type": "double"}],
  "connections": [
    {"from": {"cardId": 1, "anchorId": "y"}, "to": {"cardId": 2, "anchorId": "x"}},
    {"from": {"cardId": 2, "anchorId": "y"}, "to": {"cardId": 1, "anchorId": "x"}}
  ]
}`)
		a := newTestApp(t, io.Discard, Config{GraphPath: graph})
		err := a.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to build flow")
	})

	t.Run("missing required input", func(t *testing.T) {
		graph := writeFile(t, dir, "missing_input.json", `{"cards": [{"id": 1, "type": "double"}]}`)
		a := newTestApp(t, io.Discard, Config{GraphPath: graph})
		err := a.Run(context.Background())
		require.ErrorIs(t, err, node.ErrMissingRequiredInput)
	})

	requestGraph := writeFile(t, dir, "request.json", `{
  "cards": [
    {"id": "u", "type": "constant", "savedInputs": {"value": "http://127.0.0.1:1/"}},
    {"id": "r", "type": "http_request"}
  ],
  "connections": [{"from": {"cardId": "u", "anchorId": "value"}, "to": {"cardId": "r", "anchorId": "url"}}]
}`)

	t.Run("propagated process error", func(t *testing.T) {
		a := newTestApp(t, io.Discard, Config{GraphPath: requestGraph, ProcessErrors: "propagate"})
		err := a.Run(context.Background())
		require.ErrorIs(t, err, node.ErrProcessFailed)
	})

	t.Run("degraded process error", func(t *testing.T) {
		out := &testutil.SafeBuffer{}
		a := newTestApp(t, out, Config{GraphPath: requestGraph})
		require.NoError(t, a.Run(context.Background()))
		assert.Contains(t, out.String(), "Process failed, continuing with an empty result.")
	})

	t.Run("unreachable broker", func(t *testing.T) {
		graph := writeFile(t, dir, "ok.json", chainGraph)
		a := newTestApp(t, io.Discard, Config{GraphPath: graph, MQTTURL: "tcp://127.0.0.1:1"})
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		err := a.Run(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MQTT")
	})
}

func TestHealthCheck(t *testing.T) {
	graph := writeFile(t, t.TempDir(), "graph.json", `{"cards": []}`)
	a := newTestApp(t, io.Discard, Config{GraphPath: graph, HealthcheckPort: 0})
	a.healthCheckServer()
	assert.Nil(t, a.httpServer)
	require.NoError(t, a.closeHealthCheckServer())

	rec := httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestNewApp_BrokenModule(t *testing.T) {
	cfg, err := NewConfig(Config{GraphPath: "g.json"})
	require.NoError(t, err)
	_, err = NewApp(io.Discard, cfg, WithModules(&nodetest.SimpleModule{
		TypeName: "ghost",
		Manifest: `node "ghost" { process = "Ghost" }`,
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating built-in manifests")
}

