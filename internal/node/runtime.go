package node

import (
	"context"
	"log/slog"

	"github.com/vk/nodegrid/internal/nodedef"
)

// runtime is the nodedef.Runtime handed to process for one run.
type runtime struct {
	c      *Controller
	inputs map[string]any
	logger *slog.Logger
}

var _ nodedef.Runtime = (*runtime)(nil)

func (r *runtime) Input(name string) any {
	if a := r.c.input(name); a != nil {
		return a.Value()
	}
	return r.inputs[name]
}

func (r *runtime) Inputs() map[string]any {
	return copyMap(r.inputs)
}

func (r *runtime) SetOutput(name string, value any) {
	a := r.c.output(name)
	if a == nil {
		r.logger.Warn("Process set an undeclared output.", "output", name)
		return
	}
	a.SetValue(value)
}

func (r *runtime) Emit(ctx context.Context, event string, value any) {
	ev := r.c.EventAnchor(event)
	if ev == nil {
		r.logger.Warn("Process emitted an undeclared event.", "event", event)
		return
	}
	ev.Emit(ctx, value)
}

func (r *runtime) Logger() *slog.Logger {
	return r.logger
}
