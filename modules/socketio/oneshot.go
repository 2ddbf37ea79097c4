package socketio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/zishang520/engine.io/v2/types"
)

// SocketIO connects, emits emit_event with emit_data once connected, and
// returns {response_data} from the first on_event received. The socket id
// is emitted on the "connected" event.
func (m *Module) SocketIO(ctx context.Context, in map[string]any, rt nodedef.Runtime) (map[string]any, error) {
	input, err := decodeInput(ctx, in)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("node", "socketio", "url", input.URL, "onEvent", input.OnEvent, "emitEvent", input.EmitEvent)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, input.Timeout)
	defer cancel()

	io, err := newSocket(ctx, input)
	if err != nil {
		return nil, err
	}
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "namespace", input.Namespace, "sid", io.Id())
		rt.Emit(ctx, "connected", io.Id())
		if input.EmitEvent != "" {
			jsonData, _ := json.Marshal(input.EmitData)
			logger.Info("Emitting event", "event", input.EmitEvent, "data", string(jsonData))
			io.Emit(input.EmitEvent, input.EmitData)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("connect error: %v", errs[0])
		}
		select {
		case done <- opResult{err: err}:
		default:
		}
	})

	io.On(types.EventName(input.OnEvent), func(data ...any) {
		var responseData any
		if len(data) > 0 {
			responseData = data[0]
		}
		select {
		case done <- opResult{value: responseData}:
		default:
		}
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", input.OnEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return map[string]any{"response_data": res.value}, nil
	}
}
