package porttype

import (
	"log/slog"
	"reflect"
	"regexp"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// maxDepth bounds recursion through wrappers so a self-referencing
// declaration cannot exhaust the stack.
const maxDepth = 32

var (
	timeType      = reflect.TypeOf(time.Time{})
	regexpPtrType = reflect.TypeOf((*regexp.Regexp)(nil))
)

// Declared is implemented by port specs that carry their own type
// declaration. Normalize recurses into DeclaredType.
type Declared interface {
	DeclaredType() any
}

// Normalize resolves a type declaration to its canonical Kind.
//
// Any internal failure while inspecting the declaration is recovered and
// reported as Any, so a broken declaration never blocks a node from loading.
func Normalize(decl any) (k Kind) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Type normalization failed, treating as unconstrained.", "declaration", decl, "panic", r)
			k = Any
		}
	}()
	return normalize(decl, 0)
}

func normalize(decl any, depth int) Kind {
	if depth > maxDepth {
		return Any
	}

	switch v := decl.(type) {
	case nil:
		return Any
	case Kind:
		if !v.valid() {
			return Any
		}
		return v
	case string:
		k, _ := ParseKind(v)
		return k
	case reflect.Type:
		return fromReflect(v)
	case cty.Type:
		return fromCty(v)
	case Declared:
		return normalize(v.DeclaredType(), depth+1)
	case map[string]any:
		return normalize(v["type"], depth+1)
	}

	// One-element list wrappers: [T] declares "list of T", which degrades to
	// T for compatibility purposes.
	rv := reflect.ValueOf(decl)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return Any
		}
		return normalize(rv.Index(0).Interface(), depth+1)
	}
	return Any
}

func fromReflect(t reflect.Type) Kind {
	if t == nil {
		return Any
	}
	switch t {
	case timeType, reflect.PointerTo(timeType):
		return Date
	case regexpPtrType, regexpPtrType.Elem():
		return RegExp
	}

	switch t.Kind() {
	case reflect.String:
		return String
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Number
	case reflect.Bool:
		return Boolean
	case reflect.Slice, reflect.Array:
		return Array
	case reflect.Func:
		return Function
	case reflect.Chan:
		return Promise
	case reflect.Map:
		if isSetElem(t.Elem()) {
			return Set
		}
		return Map
	case reflect.Struct, reflect.Pointer:
		return Object
	default:
		return Any
	}
}

func fromCty(t cty.Type) Kind {
	switch {
	case t == cty.NilType, t.Equals(cty.DynamicPseudoType):
		return Any
	case t.Equals(cty.String):
		return String
	case t.Equals(cty.Number):
		return Number
	case t.Equals(cty.Bool):
		return Boolean
	case t.IsListType(), t.IsTupleType():
		return Array
	case t.IsMapType():
		return Map
	case t.IsSetType():
		return Set
	case t.IsObjectType(), t.IsCapsuleType():
		return Object
	default:
		return Any
	}
}

// isSetElem reports whether a map element type marks the map as a set.
func isSetElem(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}
