package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoundTripsObjectsAndNumbers(t *testing.T) {
	v, err := Decode([]byte(`{"a":1,"b":[1.50,"x",null,true]}`))
	require.NoError(t, err)
	obj, ok := asObject(v)
	require.True(t, ok)

	a, ok := obj["a"].(*Decimal)
	require.True(t, ok)
	assert.True(t, a.IsInteger())

	arr, ok := asArray(obj["b"])
	require.True(t, ok)
	require.Len(t, arr, 4)
	n, ok := arr[0].(*Decimal)
	require.True(t, ok)
	assert.Equal(t, "1.50", n.String())
}

func TestTypeName(t *testing.T) {
	intDec, _ := NewDecimalFromString("4")
	fracDec, _ := NewDecimalFromString("4.5")
	assert.Equal(t, "integer", TypeName(intDec))
	assert.Equal(t, "number", TypeName(fracDec))
	assert.Equal(t, "string", TypeName("x"))
	assert.Equal(t, "null", TypeName(nil))
	assert.Equal(t, "array", TypeName([]any{}))
	assert.Equal(t, "object", TypeName(map[string]any{}))
	assert.Equal(t, "boolean", TypeName(true))
}

func TestDeepEqualNumericScale(t *testing.T) {
	one, _ := NewDecimalFromString("1")
	oneDotZero, _ := NewDecimalFromString("1.0")
	assert.True(t, DeepEqual(one, oneDotZero))
}

func TestPointerTokensRoundTrip(t *testing.T) {
	for _, p := range []string{"", "/a/b", "/a~1b/c~0d", "/0/1"} {
		tokens := ParsePointerTokens(p)
		assert.Equal(t, p, tokens.String())
	}
}

func TestPointerTokensHasPrefix(t *testing.T) {
	full := PointerTokens{"a", "b", "c"}
	assert.True(t, full.HasPrefix(PointerTokens{"a", "b"}))
	assert.False(t, full.HasPrefix(PointerTokens{"a", "x"}))
	assert.True(t, full.HasPrefix(nil))
}

func TestLookup(t *testing.T) {
	root := map[string]any{
		"definitions": map[string]any{
			"x": []any{"zero", "one"},
		},
	}
	v, ok := Lookup(root, ParsePointerTokens("/definitions/x/1"))
	require.True(t, ok)
	assert.Equal(t, "one", v)

	_, ok = Lookup(root, ParsePointerTokens("/definitions/missing"))
	assert.False(t, ok)
}
