package socketio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// connectTimeout bounds the wait for a shared connection. A shorter run
// timeout bounds it further.
const connectTimeout = 15 * time.Second

// SocketIORequest emits emit_event on the shared connection for
// (url, namespace) and returns {response_data} from the next on_event.
func (m *Module) SocketIORequest(ctx context.Context, in map[string]any, _ nodedef.Runtime) (map[string]any, error) {
	input, err := decodeInput(ctx, in)
	if err != nil {
		return nil, err
	}
	client, err := m.client(ctx, input)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx).With("node", "socketio_request", "sid", client.Id())
	logger.Info("Executing request", "emitEvent", input.EmitEvent, "onEvent", input.OnEvent)

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, input.Timeout)
	defer cancel()

	client.Once(types.EventName(input.OnEvent), func(data ...any) {
		logger.Debug("EVENT HANDLER: Success event received", "event", input.OnEvent)
		var responseData any
		if len(data) > 0 {
			responseData = data[0]
		}
		done <- opResult{value: responseData}
	})

	jsonData, _ := json.Marshal(input.EmitData)
	logger.Debug("Emitting event", "event", input.EmitEvent, "data", string(jsonData))
	if err := client.Emit(input.EmitEvent, input.EmitData); err != nil {
		return nil, fmt.Errorf("emitting '%s': %w", input.EmitEvent, err)
	}

	select {
	case <-opCtx.Done():
		return nil, fmt.Errorf("timed out after %v waiting for event '%s'", input.Timeout, input.OnEvent)
	case res := <-done:
		logger.Info("Successfully received response event", "event", input.OnEvent)
		return map[string]any{"response_data": res.value}, nil
	}
}

// client returns the connected socket for input's (url, namespace),
// dialing it on first use or after it dropped.
func (m *Module) client(ctx context.Context, input *Input) (*socket.Socket, error) {
	key := input.URL + "|" + input.Namespace

	m.mu.Lock()
	defer m.mu.Unlock()
	if io, ok := m.clients[key]; ok {
		if io.Connected() {
			return io, nil
		}
		io.Disconnect()
		delete(m.clients, key)
	}

	logger := ctxlog.FromContext(ctx).With("url", input.URL, "namespace", input.Namespace)
	logger.Info("Creating new client instance...")

	io, err := newSocket(ctx, input)
	if err != nil {
		return nil, err
	}
	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("%v", errs[0])
		}
		select {
		case connectChan <- err:
		default:
		}
	})
	io.Connect()

	wait := connectTimeout
	if input.Timeout < wait {
		wait = input.Timeout
	}
	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(wait):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", wait)
	}

	if m.clients == nil {
		m.clients = make(map[string]*socket.Socket)
	}
	m.clients[key] = io
	return io, nil
}

// Close disconnects every shared connection.
func (m *Module) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, io := range m.clients {
		slog.Info("Destroying socket.io client instance", "sid", io.Id())
		io.Disconnect()
		delete(m.clients, key)
	}
}
