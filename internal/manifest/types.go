// This file parses HCL type expressions (e.g. `string`, `list(number)`,
// `[number]`) into declarations the porttype package understands.

package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/porttype"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. gohcl fills omitted optional expression fields with zero-width
// placeholder expressions, so a nil check is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// typeExprToDecl converts an HCL type expression into a type declaration:
// a cty.Type for HCL's own types, a type name for the rest of the canonical
// kinds, or a one-element []any for the `[T]` list wrapper. An omitted
// expression declares no type.
func typeExprToDecl(ctx context.Context, expr hcl.Expression) (any, error) {
	if !isExprDefined(expr) {
		return nil, nil
	}
	logger := ctxlog.FromContext(ctx)

	switch v := expr.(type) {
	case *hclsyntax.TupleConsExpr:
		if len(v.Exprs) != 1 {
			return nil, fmt.Errorf("the [T] list wrapper takes exactly one element type, got %d", len(v.Exprs))
		}
		elem, err := typeExprToDecl(ctx, v.Exprs[0])
		if err != nil {
			return nil, err
		}
		logger.Debug("Parsed list wrapper type.", "element", fmt.Sprint(elem))
		return []any{elem}, nil

	case *hclsyntax.TemplateExpr:
		if !v.IsStringLiteral() {
			return nil, fmt.Errorf("quoted type names must be plain strings")
		}
		val, diags := v.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		name := val.AsString()
		if _, ok := porttype.ParseKind(name); !ok {
			return nil, fmt.Errorf("unknown type name %q", name)
		}
		return name, nil

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return nil, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch root := v.Traversal.RootName(); root {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool", "boolean":
			return cty.Bool, nil
		case "any":
			return cty.DynamicPseudoType, nil
		default:
			if _, ok := porttype.ParseKind(root); !ok {
				return nil, fmt.Errorf("unknown type %q", root)
			}
			return root, nil
		}

	case *hclsyntax.FunctionCallExpr:
		return constructorToCtyType(ctx, v)

	default:
		return nil, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// constructorToCtyType handles list(T), map(T), set(T) and object({...}).
// Element types must be HCL types themselves.
func constructorToCtyType(ctx context.Context, call *hclsyntax.FunctionCallExpr) (cty.Type, error) {
	if len(call.Args) != 1 {
		return cty.DynamicPseudoType, fmt.Errorf("type constructor %s() requires exactly one argument, got %d", call.Name, len(call.Args))
	}

	if call.Name == "object" {
		objExpr, ok := call.Args[0].(*hclsyntax.ObjectConsExpr)
		if !ok {
			return cty.DynamicPseudoType, fmt.Errorf("the argument to object() must be an object literal like { key = type, ... }, got %T", call.Args[0])
		}
		attrTypes := make(map[string]cty.Type, len(objExpr.Items))
		for _, item := range objExpr.Items {
			key := hcl.ExprAsKeyword(item.KeyExpr)
			if key == "" {
				if kv, diags := item.KeyExpr.Value(nil); !diags.HasErrors() && kv.Type() == cty.String {
					key = kv.AsString()
				}
			}
			if key == "" {
				return cty.DynamicPseudoType, fmt.Errorf("invalid key in object type definition: keys must be simple identifiers or quoted strings")
			}
			attrType, err := elementCtyType(ctx, item.ValueExpr)
			if err != nil {
				return cty.DynamicPseudoType, fmt.Errorf("in object attribute '%s': %w", key, err)
			}
			attrTypes[key] = attrType
		}
		return cty.Object(attrTypes), nil
	}

	elem, err := elementCtyType(ctx, call.Args[0])
	if err != nil {
		return cty.DynamicPseudoType, err
	}
	switch call.Name {
	case "list":
		return cty.List(elem), nil
	case "map":
		return cty.Map(elem), nil
	case "set":
		return cty.Set(elem), nil
	default:
		return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", call.Name)
	}
}

func elementCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	decl, err := typeExprToDecl(ctx, expr)
	if err != nil {
		return cty.DynamicPseudoType, err
	}
	t, ok := decl.(cty.Type)
	if !ok {
		return cty.DynamicPseudoType, fmt.Errorf("collection elements must be HCL types (string, number, bool, any or a constructor), got %v", decl)
	}
	return t, nil
}
