package schema

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/porttype"
)

// InputReport is the result of CheckInputs.
type InputReport struct {
	Inputs  []nodedef.InputSpec
	IsValid bool
	Errors  []Issue
}

// OutputReport is the result of CheckOutputs.
type OutputReport struct {
	Outputs  []nodedef.OutputSpec
	Warnings []Issue
}

// UpdateEvent is the component event an output named name is bound to.
func UpdateEvent(name string) string {
	return "update:" + name
}

// CheckInputs verifies every declared input against the component's props.
// Findings are logged as one batch and returned in the report; they never
// make IsValid false. An error is returned only when either declaration
// cannot be normalized.
func CheckInputs(ctx context.Context, props any, inputs any, componentName string) (*InputReport, error) {
	specs, err := NormalizeInputs(inputs)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", componentName, err)
	}
	propMap, err := NormalizeProps(props)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", componentName, err)
	}

	var issues []Issue
	for _, in := range specs {
		prop, ok := propMap[in.Name]
		if !ok {
			issues = append(issues, Issue{
				Kind:       MissingProp,
				Port:       in.Name,
				Message:    fmt.Sprintf("component has no prop named %q", in.Name),
				Suggestion: fmt.Sprintf("declare prop %q on the component", in.Name),
			})
			continue
		}

		inKind, propKind := porttype.Normalize(in.Type), porttype.Normalize(prop.Type)
		if inKind != porttype.Any && propKind != porttype.Any && inKind != propKind {
			issues = append(issues, Issue{
				Kind:       TypeMismatch,
				Port:       in.Name,
				Message:    fmt.Sprintf("input is %s but prop is %s", inKind, propKind),
				Suggestion: fmt.Sprintf("change the input type to %s", propKind),
			})
		}

		if in.Default != nil {
			if !porttype.ValidateValue(in.Default, in.Type) {
				issues = append(issues, Issue{
					Kind:    InvalidDefault,
					Port:    in.Name,
					Message: fmt.Sprintf("default %v does not conform to %s", in.Default, inKind),
				})
			} else if in.Validator != nil && !in.Validator(in.Default) {
				issues = append(issues, Issue{
					Kind:    InvalidDefault,
					Port:    in.Name,
					Message: fmt.Sprintf("default %v is rejected by the input validator", in.Default),
				})
			}
		}
	}

	if len(issues) > 0 {
		ctxlog.FromContext(ctx).Error("Node inputs do not match component props.",
			"component", componentName,
			"issues", len(issues),
			"error", &ValidationError{Component: componentName, Issues: issues},
		)
	}

	return &InputReport{Inputs: specs, IsValid: true, Errors: issues}, nil
}

// CheckOutputs verifies that the component emits "update:<name>" for every
// declared output. Missing emits are logged as warnings.
func CheckOutputs(ctx context.Context, emits any, outputs any, componentName string) (*OutputReport, error) {
	specs, err := NormalizeOutputs(outputs)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", componentName, err)
	}
	emitted := NormalizeEmits(emits)

	logger := ctxlog.FromContext(ctx)
	var warnings []Issue
	for _, out := range specs {
		event := UpdateEvent(out.Name)
		if slices.Contains(emitted, event) {
			continue
		}
		issue := Issue{
			Kind:       MissingEmit,
			Port:       out.Name,
			Message:    fmt.Sprintf("component does not emit %q", event),
			Suggestion: fmt.Sprintf("add %q to the component emits", event),
		}
		warnings = append(warnings, issue)
		logger.Warn("Node output is not bound to a component event.",
			"component", componentName,
			"output", out.Name,
			"expected_event", event,
		)
	}

	return &OutputReport{Outputs: specs, Warnings: warnings}, nil
}
