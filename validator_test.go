package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooleanSchemaTrueAlwaysValidates(t *testing.T) {
	valid, err := Validate(true, mustDecode(t, `{"anything": [1, "x", null]}`), "http://example.com/s.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestBooleanSchemaFalseNeverValidatesAndReportsOneError(t *testing.T) {
	var errs map[string]map[string]string
	valid, err := Validate(false, mustDecode(t, `42`), "http://example.com/s.json", nil, nil, nil, nil, &errs)
	require.NoError(t, err)
	assert.False(t, valid)
	total := 0
	for _, bySchema := range errs {
		total += len(bySchema)
	}
	assert.Equal(t, 1, total)
}

func TestEmptySchemaAlwaysValidates(t *testing.T) {
	schema := mustDecode(t, `{}`)
	for _, instanceJSON := range []string{`1`, `"x"`, `null`, `true`, `[1,2]`, `{"a":1}`} {
		valid, err := Validate(schema, mustDecode(t, instanceJSON), "http://example.com/s.json", nil, nil, nil, nil, nil)
		require.NoError(t, err)
		assert.True(t, valid, "instance %s should validate against {}", instanceJSON)
	}
}

func TestURINormalizeIdempotenceAndResolveIdentity(t *testing.T) {
	base, err := ParseURI("HTTP://Ex.com/a/./b/../c")
	require.NoError(t, err)
	normalized := base.Normalize()
	assert.Equal(t, "http://ex.com/a/c", normalized.String())
	assert.Equal(t, normalized.String(), normalized.Normalize().String())

	empty, err := ParseURI("")
	require.NoError(t, err)
	resolved := Resolve(normalized, empty)
	assert.Equal(t, "http://ex.com/a/c", resolved.String())
}

func TestDeterminismAcrossRepeatedRuns(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"properties": {"a": {"type": "string"}},
		"additionalProperties": {"type": "number"}
	}`)
	instance := mustDecode(t, `{"a": "x", "b": 5}`)

	var first, second map[string]map[string]map[string]any
	valid, err := Validate(schema, instance, "http://example.com/s.json", nil, nil, nil, &first, nil)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = Validate(schema, instance, "http://example.com/s.json", nil, nil, nil, &second, nil)
	require.NoError(t, err)
	assert.True(t, valid)

	assert.Equal(t, first, second)
}

func TestAnnotationPruningOnFailedSubtree(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"properties": {
			"a": {
				"allOf": [{"title": "nested"}, {"type": "integer"}]
			}
		}
	}`)

	var annotations map[string]map[string]map[string]any
	valid, err := Validate(schema, mustDecode(t, `{"a": "not an integer"}`), "http://example.com/s.json", nil, nil, nil, &annotations, nil)
	require.NoError(t, err)
	assert.False(t, valid)

	for _, byName := range annotations {
		for name, bySchema := range byName {
			for schemaLoc := range bySchema {
				assert.NotContains(t, schemaLoc, "/a/allOf/0", "title annotation under the failed allOf branch should have been pruned, got %s at %s", schemaLoc, name)
			}
		}
	}
}

func TestAnnotationsForFailedKeptWhenOptedIn(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"properties": {
			"a": {
				"allOf": [{"title": "nested"}, {"type": "integer"}]
			}
		}
	}`)

	var annotations map[string]map[string]map[string]any
	opts := NewOptions(WithCollectAnnotationsForFailed(true))
	valid, err := Validate(schema, mustDecode(t, `{"a": "not an integer"}`), "http://example.com/s.json", nil, nil, opts, &annotations, nil)
	require.NoError(t, err)
	assert.False(t, valid)

	found := false
	for _, byName := range annotations {
		for _, bySchema := range byName {
			for schemaLoc := range bySchema {
				if schemaLoc == "/properties/a/allOf/0" {
					found = true
				}
			}
		}
	}
	assert.True(t, found, "title annotation under the failed allOf branch should survive when CollectAnnotationsForFailed is set")
}

func TestLoopSafetyOnCyclicRef(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"$ref": "#"
	}`)
	var errs map[string]map[string]string
	_, err := Validate(schema, mustDecode(t, `1`), "http://example.com/s.json", nil, nil, nil, nil, &errs)
	require.Error(t, err)
}

// End-to-end scenario sweep.

func TestScenarioTypeAssertion(t *testing.T) {
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "type": "integer"}`
	assert.True(t, validateDraft07(t, schema, "3.0"))
	assert.False(t, validateDraft07(t, schema, "3.5"))
}

func TestScenarioPropertiesAdditionalProperties(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"properties": {"a": {"type": "string"}},
		"additionalProperties": false
	}`)
	var errs map[string]map[string]string
	valid, err := Validate(schema, mustDecode(t, `{"a": "x", "b": 1}`), "http://example.com/s.json", nil, nil, nil, nil, &errs)
	require.NoError(t, err)
	assert.False(t, valid)

	found := false
	for _, bySchema := range errs {
		for _, msg := range bySchema {
			if contains(msg, "Additional properties") && contains(msg, "b") {
				found = true
			}
		}
	}
	assert.True(t, found, "expected an error mentioning additional property b, got %#v", errs)
}

func TestScenarioAnyOf(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"anyOf": [{"type": "string"}, {"type": "number"}]
	}`)
	valid, err := Validate(schema, mustDecode(t, `true`), "http://example.com/s.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = Validate(schema, mustDecode(t, `"hi"`), "http://example.com/s.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestScenarioRefAcrossDocuments(t *testing.T) {
	schema := mustDecode(t, `{"$ref": "http://other/s#/definitions/x"}`)
	other := mustDecode(t, `{"definitions": {"x": {"type": "boolean"}}}`)
	knownURLs := map[string]Value{"http://other/s": other}

	valid, err := Validate(schema, mustDecode(t, `true`), "http://ex/schema", nil, knownURLs, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = Validate(schema, mustDecode(t, `1`), "http://ex/schema", nil, knownURLs, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestScenarioRecursiveRefDynamicAnchor(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$id": "http://example.com/tree.json",
		"$recursiveAnchor": true,
		"type": "object",
		"properties": {
			"value": {},
			"children": {"type": "array", "items": {"$recursiveRef": "#"}}
		}
	}`)
	overriding := mustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$id": "http://example.com/strtree.json",
		"$recursiveAnchor": true,
		"properties": {"value": {"type": "string"}},
		"allOf": [{"$ref": "http://example.com/tree.json"}]
	}`)
	knownURLs := map[string]Value{"http://example.com/tree.json": schema}

	valid, err := Validate(overriding, mustDecode(t, `{"value": "a", "children": [{"value": "b", "children": []}]}`), "http://example.com/strtree.json", nil, knownURLs, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = Validate(overriding, mustDecode(t, `{"value": "a", "children": [{"value": 5, "children": []}]}`), "http://example.com/strtree.json", nil, knownURLs, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestScenarioUnevaluatedProperties(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"allOf": [{"properties": {"a": {}}}],
		"unevaluatedProperties": false
	}`)
	var errs map[string]map[string]string
	valid, err := Validate(schema, mustDecode(t, `{"a": 1, "b": 2}`), "http://example.com/s.json", nil, nil, nil, nil, &errs)
	require.NoError(t, err)
	assert.False(t, valid)
	found := false
	for _, bySchema := range errs {
		for _, msg := range bySchema {
			if contains(msg, "b") {
				found = true
			}
		}
	}
	assert.True(t, found)

	valid, err = Validate(schema, mustDecode(t, `{"a": 1}`), "http://example.com/s.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestScenarioIDNHostname(t *testing.T) {
	assert.True(t, ParseIDNHostname("xn--fiqs8s"))
	assert.False(t, ParseIDNHostname("-bad.com"))
	assert.True(t, ParseIDNHostname("日本.jp"))
}

func TestScenarioURINormalize(t *testing.T) {
	u, err := ParseURI("HTTP://Ex.com/a/./b/../c")
	require.NoError(t, err)
	assert.Equal(t, "http://ex.com/a/c", u.Normalize().String())
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
