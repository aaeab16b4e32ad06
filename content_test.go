package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentEncodingAnnotationOnlyByDefault(t *testing.T) {
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "contentEncoding": "base64"}`
	assert.True(t, validateDraft07(t, schema, `"not valid base64!!"`))
}

func TestContentEncodingAssertionWhenEnabled(t *testing.T) {
	schema := mustDecode(t, `{"$schema": "http://json-schema.org/draft-07/schema#", "contentEncoding": "base64"}`)
	opts := NewOptions(WithContentAssertion(true))

	valid, err := Validate(schema, mustDecode(t, `"aGVsbG8="`), "http://example.com/s.json", nil, nil, opts, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = Validate(schema, mustDecode(t, `"not valid base64!!"`), "http://example.com/s.json", nil, nil, opts, nil, nil)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestContentMediaTypeAssertionWhenEnabled(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"contentMediaType": "application/json"
	}`)
	opts := NewOptions(WithContentAssertion(true))

	valid, err := Validate(schema, mustDecode(t, `"{\"a\": 1}"`), "http://example.com/s.json", nil, nil, opts, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = Validate(schema, mustDecode(t, `"not json"`), "http://example.com/s.json", nil, nil, opts, nil, nil)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestContentSchemaValidatesDecodedJSON(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"contentMediaType": "application/json",
		"contentSchema": {"type": "object", "required": ["a"]}
	}`)
	opts := NewOptions(WithContentAssertion(true))

	valid, err := Validate(schema, mustDecode(t, `"{\"a\": 1}"`), "http://example.com/s.json", nil, nil, opts, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = Validate(schema, mustDecode(t, `"{\"b\": 1}"`), "http://example.com/s.json", nil, nil, opts, nil, nil)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestContentEncodingAndSchemaTogether(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"contentEncoding": "base64",
		"contentMediaType": "application/json",
		"contentSchema": {"type": "object", "required": ["a"]}
	}`)
	opts := NewOptions(WithContentAssertion(true))

	instance := mustDecode(t, `"eyJhIjogMX0="`)
	valid, err := Validate(schema, instance, "http://example.com/s.json", nil, nil, opts, nil, nil)
	require.NoError(t, err)
	assert.True(t, valid)
}
