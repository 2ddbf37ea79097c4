package nodeid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalJSON writes string ids as JSON strings and numeric ids as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case kindString:
		return json.Marshal(id.str)
	case kindNumber:
		return []byte(strconv.FormatFloat(id.num, 'f', -1, 64)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		*id = FromString(s)
		return nil
	case '{', '[', 't', 'f':
		return fmt.Errorf("%w: got %s", ErrInvalidID, data)
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	*id = FromNumber(n)
	return nil
}

// MarshalYAML keeps the original scalar kind of the id.
func (id ID) MarshalYAML() (any, error) {
	return id.Value(), nil
}

// UnmarshalYAML accepts string, integer and float scalars, or null.
func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d is not a scalar", ErrInvalidID, node.Line)
	}

	switch node.ShortTag() {
	case "!!null":
		*id = ID{}
	case "!!int", "!!float":
		var n float64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		*id = FromNumber(n)
	case "!!str":
		*id = FromString(node.Value)
	default:
		return fmt.Errorf("%w: line %d has tag %s", ErrInvalidID, node.Line, node.ShortTag())
	}
	return nil
}
