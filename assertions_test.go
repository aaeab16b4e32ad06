package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validateDraft07(t *testing.T, schemaJSON, instanceJSON string) bool {
	t.Helper()
	schema := mustDecode(t, schemaJSON)
	instance := mustDecode(t, instanceJSON)
	valid, err := Validate(schema, instance, "http://example.com/schema.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	return valid
}

func TestTypeIntegerAcceptsWholeNumberFloat(t *testing.T) {
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "type": "integer"}`
	assert.True(t, validateDraft07(t, schema, "3.0"))
	assert.False(t, validateDraft07(t, schema, "3.5"))
}

func TestTypeArrayAllowsAnyListedType(t *testing.T) {
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "type": ["string", "null"]}`
	assert.True(t, validateDraft07(t, schema, `"hi"`))
	assert.True(t, validateDraft07(t, schema, `null`))
	assert.False(t, validateDraft07(t, schema, `5`))
}

func TestConstAndEnum(t *testing.T) {
	constSchema := `{"$schema": "http://json-schema.org/draft-07/schema#", "const": 1.0}`
	assert.True(t, validateDraft07(t, constSchema, "1"))

	enumSchema := `{"$schema": "http://json-schema.org/draft-07/schema#", "enum": ["a", "b"]}`
	assert.True(t, validateDraft07(t, enumSchema, `"b"`))
	assert.False(t, validateDraft07(t, enumSchema, `"c"`))
}

func TestMultipleOfExactDecimal(t *testing.T) {
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "multipleOf": 0.1}`
	assert.True(t, validateDraft07(t, schema, "0.3"))
	assert.False(t, validateDraft07(t, schema, "0.31"))
}

func TestMinimumMaximumExclusive(t *testing.T) {
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "exclusiveMinimum": 0, "exclusiveMaximum": 10}`
	assert.True(t, validateDraft07(t, schema, "5"))
	assert.False(t, validateDraft07(t, schema, "0"))
	assert.False(t, validateDraft07(t, schema, "10"))
}

func TestStringLengthCountsCodepoints(t *testing.T) {
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "minLength": 2, "maxLength": 2}`
	assert.True(t, validateDraft07(t, schema, `"日本"`))
	assert.False(t, validateDraft07(t, schema, `"日"`))
}

func TestPatternMatchesECMA262Whitespace(t *testing.T) {
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "pattern": "^\\s+$"}`
	assert.True(t, validateDraft07(t, schema, `"   "`))
	assert.False(t, validateDraft07(t, schema, `"x"`))
}

func TestUniqueItems(t *testing.T) {
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "uniqueItems": true}`
	assert.True(t, validateDraft07(t, schema, `[1, 2, 3]`))
	assert.False(t, validateDraft07(t, schema, `[1, 1.0]`))
}

func TestRequiredProperties(t *testing.T) {
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "required": ["a", "b"]}`
	assert.True(t, validateDraft07(t, schema, `{"a": 1, "b": 2}`))
	assert.False(t, validateDraft07(t, schema, `{"a": 1}`))
}

func TestDependentRequired2019(t *testing.T) {
	schema := `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"dependentRequired": {"creditCard": ["billingAddress"]}
	}`
	valid, err := Validate(mustDecode(t, schema), mustDecode(t, `{"creditCard": "1234"}`), "http://example.com/s.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = Validate(mustDecode(t, schema), mustDecode(t, `{"creditCard": "1234", "billingAddress": "x"}`), "http://example.com/s.json", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)
}
