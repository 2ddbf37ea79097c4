package porttype

import (
	"fmt"
	"strings"
)

// Kind is a canonical port type marker.
type Kind int

const (
	// Any is the unconstrained kind. "any", "null" and every unrecognized
	// declaration normalize to it.
	Any Kind = iota
	String
	Number
	Boolean
	Object
	Array
	Function
	Date
	RegExp
	Promise
	Map
	Set
	WeakMap
	WeakSet
)

var kindNames = [...]string{
	Any:      "any",
	String:   "string",
	Number:   "number",
	Boolean:  "boolean",
	Object:   "object",
	Array:    "array",
	Function: "function",
	Date:     "date",
	RegExp:   "regexp",
	Promise:  "promise",
	Map:      "map",
	Set:      "set",
	WeakMap:  "weakmap",
	WeakSet:  "weakset",
}

// byName maps lowercase type names to kinds. "bool" is accepted as an
// alias because HCL manifests spell the primitive that way.
var byName = map[string]Kind{
	"any":      Any,
	"null":     Any,
	"string":   String,
	"number":   Number,
	"boolean":  Boolean,
	"bool":     Boolean,
	"object":   Object,
	"array":    Array,
	"function": Function,
	"date":     Date,
	"regexp":   RegExp,
	"promise":  Promise,
	"map":      Map,
	"set":      Set,
	"weakmap":  WeakMap,
	"weakset":  WeakSet,
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k.valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) valid() bool {
	return k >= Any && k <= WeakSet
}

// ParseKind resolves a type name. The lookup is case-insensitive. The
// boolean result reports whether the name is known at all; both "any" and
// "null" are known and resolve to Any.
func ParseKind(name string) (Kind, bool) {
	k, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// Zero returns the empty value used when a port of this kind is reset.
func (k Kind) Zero() any {
	switch k {
	case String:
		return ""
	case Number:
		return float64(0)
	case Boolean:
		return false
	case Array:
		return []any{}
	case Object, Map, WeakMap:
		return map[string]any{}
	case Set, WeakSet:
		return map[any]struct{}{}
	default:
		return nil
	}
}
