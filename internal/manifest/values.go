package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/nodegrid/internal/porttype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// evalValue evaluates a literal expression and converts it into the Go
// value an anchor holds. When decl is an HCL type the value is converted to
// it first, so `default = [1, 2]` on a set(number) input becomes a set.
func evalValue(expr hcl.Expression, decl any) (any, error) {
	if !isExprDefined(expr) {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}

	if t, ok := ctyTypeOf(decl); ok && t != cty.DynamicPseudoType {
		converted, err := convert.Convert(val, t)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), t.FriendlyName(), err)
		}
		val = converted
	}

	native, err := porttype.FromCtyValue(val)
	if err != nil {
		return nil, err
	}
	if porttype.Normalize(decl) == porttype.Set {
		return toSet(native), nil
	}
	return native, nil
}

func ctyTypeOf(decl any) (cty.Type, bool) {
	t, ok := decl.(cty.Type)
	return t, ok
}

// toSet turns a list of hashable values into the Go set representation.
func toSet(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	set := make(map[any]struct{}, len(list))
	for _, item := range list {
		switch item.(type) {
		case []any, map[string]any:
			return v
		}
		set[item] = struct{}{}
	}
	return set
}
