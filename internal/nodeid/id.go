package nodeid

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ErrInvalidID is returned when a card id is neither a string nor a number.
var ErrInvalidID = errors.New("card id must be a string or a number")

type idKind uint8

const (
	kindNone idKind = iota
	kindString
	kindNumber
)

// ID is a card identifier. The zero value means "no id".
type ID struct {
	kind idKind
	str  string
	num  float64
}

// FromString creates a string id. An empty string yields the zero ID.
func FromString(s string) ID {
	if s == "" {
		return ID{}
	}
	return ID{kind: kindString, str: s}
}

// FromNumber creates a numeric id.
func FromNumber(n float64) ID {
	return ID{kind: kindNumber, num: n}
}

// New creates an id from a primitive Go value. nil yields the zero ID;
// any value other than a string or a finite number is rejected.
func New(v any) (ID, error) {
	switch val := v.(type) {
	case nil:
		return ID{}, nil
	case ID:
		return val, nil
	case string:
		return FromString(val), nil
	}

	rv := reflect.ValueOf(v)
	var n float64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n = float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		n = rv.Float()
	default:
		return ID{}, fmt.Errorf("%w: got %T", ErrInvalidID, v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ID{}, fmt.Errorf("%w: got non-finite number", ErrInvalidID)
	}
	return FromNumber(n), nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(v any) ID {
	id, err := New(v)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the id is missing.
func (id ID) IsZero() bool {
	return id.kind == kindNone
}

// IsNumber reports whether the id was given as a number.
func (id ID) IsNumber() bool {
	return id.kind == kindNumber
}

// String returns the canonical string form of the id.
func (id ID) String() string {
	switch id.kind {
	case kindString:
		return id.str
	case kindNumber:
		return strconv.FormatFloat(id.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Equal compares ids by their canonical string form, so number 1 and string "1"
// name the same card. Scopes and flow lookups key by String() as well.
func (id ID) Equal(other ID) bool {
	if id.IsZero() || other.IsZero() {
		return id.IsZero() == other.IsZero()
	}
	return id.String() == other.String()
}

// Value returns the id as a plain Go value: string, float64, or nil.
func (id ID) Value() any {
	switch id.kind {
	case kindString:
		return id.str
	case kindNumber:
		return id.num
	default:
		return nil
	}
}
