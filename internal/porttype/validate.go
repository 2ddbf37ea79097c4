package porttype

import (
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// ValidateValue reports whether value conforms to the declared type.
//
// A missing declaration, "any", or anything that normalizes to Any accepts
// every value, including nil. Otherwise nil is rejected.
func ValidateValue(value any, decl any) bool {
	if decl == nil {
		return true
	}
	if s, ok := decl.(string); ok && strings.EqualFold(strings.TrimSpace(s), "any") {
		return true
	}
	return Conforms(value, Normalize(decl))
}

// Conforms checks value against an already normalized kind.
func Conforms(value any, k Kind) bool {
	if k == Any {
		return true
	}
	if cv, ok := value.(cty.Value); ok {
		return conformsCty(cv, k)
	}
	if IsAbsent(value) {
		return false
	}

	rv := reflect.ValueOf(value)
	switch k {
	case String:
		return rv.Kind() == reflect.String
	case Number:
		f, ok := ToFloat(value)
		return ok && !math.IsNaN(f)
	case Boolean:
		return rv.Kind() == reflect.Bool
	case Object:
		return !isPrimitive(rv.Kind())
	case Array:
		return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
	case Function:
		return rv.Kind() == reflect.Func
	case Date:
		switch value.(type) {
		case time.Time, *time.Time:
			return true
		}
		return false
	case RegExp:
		_, ok := value.(*regexp.Regexp)
		return ok
	case Promise:
		return rv.Kind() == reflect.Chan
	case Map, WeakMap:
		return rv.Kind() == reflect.Map && !isSetElem(rv.Type().Elem())
	case Set, WeakSet:
		return rv.Kind() == reflect.Map && isSetElem(rv.Type().Elem())
	default:
		return false
	}
}

// IsAbsent reports whether v carries no value: a nil interface, a nil
// pointer, map, slice, channel or func, or a null cty value.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	if cv, ok := v.(cty.Value); ok {
		return cv.IsNull() || !cv.IsKnown()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ToFloat converts any Go numeric value, or a known cty number, to float64.
func ToFloat(v any) (float64, bool) {
	if cv, ok := v.(cty.Value); ok {
		if cv.IsNull() || !cv.IsKnown() || !cv.Type().Equals(cty.Number) {
			return 0, false
		}
		f, _ := cv.AsBigFloat().Float64()
		return f, true
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func conformsCty(v cty.Value, k Kind) bool {
	if v.IsNull() || !v.IsKnown() {
		return false
	}
	t := v.Type()
	switch k {
	case String:
		return t.Equals(cty.String)
	case Number:
		return t.Equals(cty.Number)
	case Boolean:
		return t.Equals(cty.Bool)
	case Object:
		return !t.IsPrimitiveType()
	case Array:
		return t.IsListType() || t.IsTupleType()
	case Map, WeakMap:
		return t.IsMapType()
	case Set, WeakSet:
		return t.IsSetType()
	default:
		return false
	}
}

func isPrimitive(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
