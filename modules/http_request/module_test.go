package http_request

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegrid/internal/node"
	"github.com/vk/nodegrid/internal/testutil"
	"github.com/vk/nodegrid/internal/testutil/nodetest"
)

func TestHTTPRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer srv.Close()

	ctx, _ := testutil.LoggedContext(t)
	h := nodetest.New(ctx, t, &Module{Client: srv.Client()})

	c := h.Parse(ctx, t, "http_request")
	assert.Equal(t, "GET", c.GetAnchor("method").Value())

	c.GetAnchor("url").SetValue(srv.URL)
	_, err := c.Exec(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(http.StatusMethodNotAllowed), c.GetAnchor("status_code").Value())

	c.GetAnchor("method").SetValue(http.MethodPost)
	_, err = c.Exec(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(http.StatusCreated), c.GetAnchor("status_code").Value())
	assert.Equal(t, "created", c.GetAnchor("body").Value())
}

func TestHTTPRequest_Unreachable(t *testing.T) {
	ctx, _ := testutil.LoggedContext(t)
	h := nodetest.New(ctx, t, &Module{})

	c := h.Parse(ctx, t, "http_request", node.WithProcessErrors(node.Propagate))
	c.GetAnchor("url").SetValue("http://127.0.0.1:1/")
	_, err := c.Exec(ctx, nil, nil)
	require.ErrorIs(t, err, node.ErrProcessFailed)
	assert.Equal(t, float64(0), c.GetAnchor("status_code").Value())
}
