package node

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/vk/nodegrid/internal/porttype"
)

// GlobalInputs carries runtime input for nodes without input anchors,
// keyed by card id.
type GlobalInputs map[string]map[string]any

// Exec runs the node once and returns the process result.
//
// A non-nil inputs map always wins and is remembered as the saved input.
// Nodes without input anchors otherwise use, in order, the saved input,
// globals[cardID] (remembered on first use) and the definition or scope
// default-input provider. Nodes with input anchors read their anchors.
//
// A required input holding a falsy value (nil, false, "", 0 or NaN) fails
// the run before process is called. What happens when process itself
// fails depends on the ProcessErrorPolicy. Every failed run resets the
// output anchors.
//
// Concurrent calls on one controller run one at a time; a call waiting
// for its turn gives up when ctx is done.
func (c *Controller) Exec(ctx context.Context, inputs map[string]any, globals GlobalInputs) (map[string]any, error) {
	select {
	case c.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.slot }()

	c.state.Store(int32(Executing))
	logger := c.logger(ctx)

	for _, a := range c.inputs {
		if a.Required() && isFalsy(a.Value()) {
			c.resetOutputs()
			c.state.Store(int32(Errored))
			err := &NodeError{
				NodeID:  c.cardID,
				Op:      "exec",
				Details: map[string]any{"input": a.ID()},
				Err:     fmt.Errorf("%w: %s", ErrMissingRequiredInput, a.Label()),
			}
			logger.Error("Node execution failed.", "error", err)
			return nil, err
		}
	}

	runtimeInput := c.resolveInput(inputs, globals)
	rt := &runtime{c: c, inputs: runtimeInput, logger: logger}

	logger.Debug("Executing node.", "input_keys", len(runtimeInput))
	result, err := c.callProcess(ctx, runtimeInput, rt)
	if err != nil {
		if c.policy == Propagate {
			c.resetOutputs()
			c.state.Store(int32(Errored))
			nodeErr := &NodeError{NodeID: c.cardID, Op: "exec", Err: err}
			logger.Error("Node execution failed.", "error", nodeErr)
			return nil, nodeErr
		}
		logger.Error("Process failed, continuing with an empty result.", "error", err)
		result = map[string]any{}
	}

	for name, value := range result {
		rt.SetOutput(name, value)
	}

	c.mu.Lock()
	c.recentInput = copyMap(runtimeInput)
	c.recentOutput = copyMap(result)
	if c.recentOutput == nil {
		c.recentOutput = map[string]any{}
	}
	c.mu.Unlock()

	c.state.Store(int32(Idle))
	logger.Debug("Node executed.", "outputs", len(result))
	return result, nil
}

func (c *Controller) resolveInput(inputs map[string]any, globals GlobalInputs) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	if inputs != nil {
		c.savedInputs = copyMap(inputs)
		return copyMap(inputs)
	}

	if len(c.inputs) == 0 {
		if c.savedInputs != nil {
			return copyMap(c.savedInputs)
		}
		if g, ok := globals[c.cardID]; ok && g != nil {
			c.savedInputs = copyMap(g)
			return copyMap(g)
		}
		if c.def.DefaultInput != nil {
			return c.def.DefaultInput()
		}
		if c.scope.DefaultInput != nil {
			return c.scope.DefaultInput()
		}
		return map[string]any{}
	}

	aggregated := make(map[string]any, len(c.inputs))
	for _, a := range c.inputs {
		aggregated[a.ID()] = a.Value()
	}
	return aggregated
}

func (c *Controller) callProcess(ctx context.Context, in map[string]any, rt *runtime) (result map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrProcessFailed, r)
		}
	}()
	result, err = c.process(ctx, in, rt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessFailed, err)
	}
	return result, nil
}

// isFalsy reports whether v counts as "not provided" for a required input.
func isFalsy(v any) bool {
	if porttype.IsAbsent(v) {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	}
	if f, ok := porttype.ToFloat(v); ok {
		return f == 0 || math.IsNaN(f)
	}
	return false
}
