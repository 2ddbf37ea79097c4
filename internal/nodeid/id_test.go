package nodeid

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name      string
		value     any
		expectErr bool
		expected  string
		isZero    bool
	}{
		{name: "string", value: "card-1", expected: "card-1"},
		{name: "int", value: 42, expected: "42"},
		{name: "float", value: 1.5, expected: "1.5"},
		{name: "nil", value: nil, isZero: true},
		{name: "empty string", value: "", isZero: true},
		{name: "error - bool", value: true, expectErr: true},
		{name: "error - map", value: map[string]any{"a": 1}, expectErr: true},
		{name: "error - NaN", value: math.NaN(), expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := New(tc.value)
			if tc.expectErr {
				require.ErrorIs(t, err, ErrInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.isZero, id.IsZero())
			assert.Equal(t, tc.expected, id.String())
		})
	}
}

func TestID_Equal(t *testing.T) {
	assert.True(t, MustNew(1).Equal(MustNew("1")))
	assert.True(t, MustNew("a").Equal(FromString("a")))
	assert.False(t, MustNew("a").Equal(MustNew("b")))
	assert.False(t, MustNew("a").Equal(ID{}))
	assert.True(t, ID{}.Equal(ID{}))
}

func TestID_JSONRoundTrip(t *testing.T) {
	var ids []ID
	require.NoError(t, json.Unmarshal([]byte(`["x", 7, 2.5, null]`), &ids))
	require.Len(t, ids, 4)
	assert.True(t, ids[1].IsNumber())
	assert.True(t, ids[3].IsZero())

	out, err := json.Marshal(ids)
	require.NoError(t, err)
	assert.JSONEq(t, `["x", 7, 2.5, null]`, string(out))
}

func TestID_JSONRejectsNonPrimitive(t *testing.T) {
	for _, raw := range []string{`{"a":1}`, `[1]`, `true`} {
		var id ID
		err := json.Unmarshal([]byte(raw), &id)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}

func TestID_YAML(t *testing.T) {
	var doc struct {
		A ID `yaml:"a"`
		B ID `yaml:"b"`
		C ID `yaml:"c"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 3\nb: card\nc: ~\n"), &doc))
	assert.True(t, doc.A.IsNumber())
	assert.Equal(t, "3", doc.A.String())
	assert.Equal(t, "card", doc.B.String())
	assert.True(t, doc.C.IsZero())

	var bad struct {
		A ID `yaml:"a"`
	}
	err := yaml.Unmarshal([]byte("a: [1, 2]\n"), &bad)
	assert.ErrorIs(t, err, ErrInvalidID)
}
