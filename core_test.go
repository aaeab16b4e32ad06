package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, s string) Value {
	t.Helper()
	v, err := Decode([]byte(s))
	require.NoError(t, err)
	return v
}

func TestRefResolvesAcrossDocuments(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"$ref": "http://example.com/positive.json"
	}`)
	remote := mustDecode(t, `{"type": "integer", "minimum": 0}`)

	knownURLs := map[string]Value{"http://example.com/positive.json": remote}

	valid, err := Validate(schema, mustDecode(t, "5"), "http://example.com/root.json", nil, knownURLs, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = Validate(schema, mustDecode(t, "-1"), "http://example.com/root.json", nil, knownURLs, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestRefJSONPointerFragmentWithinSameDocument(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"definitions": {"positiveInt": {"type": "integer", "minimum": 0}},
		"properties": {"count": {"$ref": "#/definitions/positiveInt"}}
	}`)

	valid, err := Validate(schema, mustDecode(t, `{"count": 3}`), "http://example.com/root.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = Validate(schema, mustDecode(t, `{"count": -3}`), "http://example.com/root.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestRecursiveRefDynamicAnchor(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$id": "http://example.com/tree.json",
		"$recursiveAnchor": true,
		"type": "object",
		"properties": {
			"children": {
				"type": "array",
				"items": {"$recursiveRef": "#"}
			}
		}
	}`)

	valid, err := Validate(schema, mustDecode(t, `{"children": [{"children": []}]}`), "http://example.com/tree.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = Validate(schema, mustDecode(t, `{"children": [{"children": "nope"}]}`), "http://example.com/tree.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCyclicRefLoopIsDetectedNotInfinite(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"definitions": {
			"a": {"$ref": "#/definitions/b"},
			"b": {"$ref": "#/definitions/a"}
		},
		"$ref": "#/definitions/a"
	}`)

	var errs map[string]map[string]string
	_, err := Validate(schema, mustDecode(t, `1`), "http://example.com/root.json", nil, nil, nil, nil, &errs)
	require.Error(t, err)
}
