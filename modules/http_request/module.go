package http_request

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client performs the requests. Nil means http.DefaultClient.
	Client *http.Client
}

// HTTPRequest sends a request to the "url" input with the "method" input
// and returns {status_code, body}.
func (m *Module) HTTPRequest(ctx context.Context, in map[string]any, _ nodedef.Runtime) (map[string]any, error) {
	url, _ := in["url"].(string)
	method, _ := in["method"].(string)
	if method == "" {
		method = http.MethodGet
	}
	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request", "method", method, "url", url)

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return map[string]any{
		"status_code": float64(resp.StatusCode),
		"body":        string(bodyBytes),
	}, nil
}

// Register registers the node type and its process with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("http_request", registry.Builtin("http_request", manifest))
	r.RegisterProcess("HTTPRequest", m.HTTPRequest)
}
