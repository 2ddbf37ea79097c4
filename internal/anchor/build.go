package anchor

import "github.com/vk/nodegrid/internal/nodedef"

// Positions returns n evenly spaced fractions: 1/(n+1) ... n/(n+1).
func Positions(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i+1) / float64(n+1)
	}
	return out
}

// BuildInputs creates input controllers seeded with their defaults. Start
// nodes get none.
func BuildInputs(specs []nodedef.InputSpec, flow nodedef.FlowType, opts ...ControllerOption) []*Controller {
	if flow == nodedef.FlowStart {
		return nil
	}
	pos := Positions(len(specs))
	out := make([]*Controller, len(specs))
	for i, s := range specs {
		out[i] = NewController(&Anchor{
			ID:        s.Name,
			Label:     s.Label,
			Direction: Input,
			Side:      s.Side,
			Position:  pos[i],
			Define:    s,
			Value:     NewCell(s.Default),
		}, opts...)
	}
	return out
}

// BuildOutputs creates empty output controllers.
func BuildOutputs(specs []nodedef.OutputSpec, opts ...ControllerOption) []*Controller {
	pos := Positions(len(specs))
	out := make([]*Controller, len(specs))
	for i, s := range specs {
		out[i] = NewController(&Anchor{
			ID:        s.Name,
			Label:     s.Label,
			Direction: Output,
			Side:      s.Side,
			Position:  pos[i],
			Define:    s,
			Value:     NewCell(nil),
		}, opts...)
	}
	return out
}

// BuildEvents creates event controllers.
func BuildEvents(specs []nodedef.EventSpec, opts ...ControllerOption) []*EventController {
	pos := Positions(len(specs))
	out := make([]*EventController, len(specs))
	for i, s := range specs {
		out[i] = NewEventController(&Anchor{
			ID:       s.Name,
			Label:    s.Label,
			Side:     s.Side,
			Position: pos[i],
			Define:   s,
		}, opts...)
	}
	return out
}
