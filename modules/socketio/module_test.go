package socketio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegrid/internal/node"
	"github.com/vk/nodegrid/internal/testutil"
	"github.com/vk/nodegrid/internal/testutil/nodetest"
)

func TestDecodeInput(t *testing.T) {
	ctx, logs := testutil.LoggedContext(t)

	input, err := decodeInput(ctx, map[string]any{
		"url":       "ws://localhost:3000/socket.io/",
		"on_event":  "pong",
		"emit_data": map[string]any{"n": 1.0},
		"timeout":   "250ms",
	})
	require.NoError(t, err)
	assert.Equal(t, "/", input.Namespace)
	assert.Equal(t, 250*time.Millisecond, input.Timeout)
	assert.Equal(t, map[string]any{"n": 1.0}, input.EmitData)

	input, err = decodeInput(ctx, map[string]any{"url": "ws://x", "timeout": "soon"})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, input.Timeout)
	assert.Contains(t, logs.String(), "Failed to parse timeout")

	_, err = decodeInput(ctx, map[string]any{})
	require.Error(t, err)
}

func TestSocketIO_Manifests(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	m := &Module{}
	defer m.Close()
	h := nodetest.New(ctx, t, m)

	c := h.Parse(ctx, t, "socketio")
	assert.Equal(t, "/", c.GetAnchor("namespace").Value())
	assert.Equal(t, "10s", c.GetAnchor("timeout").Value())
	assert.NotNil(t, c.EventAnchor("connected"))

	r := h.Parse(ctx, t, "socketio_request")
	assert.Len(t, r.InputAnchors(), 6)
}

func TestSocketIO_Failures(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	m := &Module{}
	defer m.Close()
	h := nodetest.New(ctx, t, m)

	testCases := []struct {
		name     string
		typeName string
		url      string
	}{
		{name: "one-shot bad url", typeName: "socketio", url: "not a url"},
		{name: "one-shot unreachable", typeName: "socketio", url: "ws://127.0.0.1:1/socket.io/"},
		{name: "request bad url", typeName: "socketio_request", url: "::"},
		{name: "request unreachable", typeName: "socketio_request", url: "ws://127.0.0.1:1/socket.io/"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := h.Parse(ctx, t, tc.typeName, node.WithProcessErrors(node.Propagate))
			c.GetAnchor("url").SetValue(tc.url)
			c.GetAnchor("on_event").SetValue("pong")
			c.GetAnchor("timeout").SetValue("300ms")
			if a := c.GetAnchor("emit_event"); a != nil && a.Required() {
				a.SetValue("ping")
			}

			_, err := c.Exec(ctx, nil, nil)
			require.ErrorIs(t, err, node.ErrProcessFailed)
		})
	}
}
