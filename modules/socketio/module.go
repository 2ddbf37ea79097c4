// Package socketio provides node types that talk to socket.io servers.
//
// "socketio" opens a connection per run. "socketio_request" reuses one
// connection per (url, namespace) for the lifetime of the Module; call
// Close to disconnect them.
package socketio

import (
	"context"
	"crypto/tls"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

var (
	//go:embed socketio.hcl
	socketioManifest []byte
	//go:embed socketio_request.hcl
	requestManifest []byte
)

const defaultTimeout = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct {
	mu      sync.Mutex
	clients map[string]*socket.Socket
}

// Input holds the decoded inputs of both node types.
type Input struct {
	URL                string
	Namespace          string
	OnEvent            string
	EmitEvent          string
	EmitData           any
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value any
	err   error
}

func decodeInput(ctx context.Context, in map[string]any) (*Input, error) {
	input := &Input{EmitData: in["emit_data"], Timeout: defaultTimeout}
	input.URL, _ = in["url"].(string)
	input.Namespace, _ = in["namespace"].(string)
	input.OnEvent, _ = in["on_event"].(string)
	input.EmitEvent, _ = in["emit_event"].(string)
	input.InsecureSkipVerify, _ = in["insecure_skip_verify"].(bool)

	if input.URL == "" {
		return nil, errors.New("url is required")
	}
	if input.Namespace == "" {
		input.Namespace = "/"
	}
	if s, _ := in["timeout"].(string); s != "" {
		timeout, err := time.ParseDuration(s)
		if err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to parse timeout, using default 10s", "inputTimeout", s, "error", err)
		} else {
			input.Timeout = timeout
		}
	}
	return input, nil
}

// newSocket builds an unconnected websocket-only client for input.
func newSocket(ctx context.Context, input *Input) (*socket.Socket, error) {
	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q needs a scheme and a host", input.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if input.InsecureSkipVerify {
		ctxlog.FromContext(ctx).Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	return manager.Socket(input.Namespace, opts), nil
}

// Register registers the node types and their processes with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("socketio", registry.Builtin("socketio", socketioManifest))
	r.RegisterType("socketio_request", registry.Builtin("socketio_request", requestManifest))
	r.RegisterProcess("SocketIO", m.SocketIO)
	r.RegisterProcess("SocketIORequest", m.SocketIORequest)
}
