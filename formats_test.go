package jsonschema

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func formatValid(t *testing.T, format, instance string) bool {
	t.Helper()
	schema := `{"$schema": "http://json-schema.org/draft-07/schema#", "format": "` + format + `"}`
	return validateDraft07(t, schema, strconv.Quote(instance))
}

func TestFormatDateTime(t *testing.T) {
	assert.True(t, formatValid(t, "date-time", "1985-04-12T23:20:50.52Z"))
	assert.True(t, formatValid(t, "date-time", "1985-04-12T23:20:50+01:00"))
	assert.False(t, formatValid(t, "date-time", "1985-04-12"))
	assert.False(t, formatValid(t, "date-time", "not-a-date"))
}

func TestFormatDate(t *testing.T) {
	assert.True(t, formatValid(t, "date", "1985-04-12"))
	assert.False(t, formatValid(t, "date", "1985-13-12"))
}

func TestFormatDuration(t *testing.T) {
	assert.True(t, formatValid(t, "duration", "P3Y6M4DT12H30M5S"))
	assert.True(t, formatValid(t, "duration", "P1W"))
	assert.False(t, formatValid(t, "duration", "P"))
	assert.False(t, formatValid(t, "duration", "1Y"))
}

func TestFormatEmail(t *testing.T) {
	assert.True(t, formatValid(t, "email", "joe.bloggs@example.com"))
	assert.False(t, formatValid(t, "email", "2962"))
}

func TestFormatIDNEmail(t *testing.T) {
	assert.True(t, formatValid(t, "idn-email", "실례@실례.테스트"))
}

func TestFormatHostname(t *testing.T) {
	assert.True(t, formatValid(t, "hostname", "example.com"))
	assert.False(t, formatValid(t, "hostname", "-not-valid"))
}

func TestFormatIDNHostname(t *testing.T) {
	assert.True(t, formatValid(t, "idn-hostname", "실례.테스트"))
}

func TestFormatIPv4(t *testing.T) {
	assert.True(t, formatValid(t, "ipv4", "192.168.0.1"))
	assert.False(t, formatValid(t, "ipv4", "256.168.0.1"))
	assert.False(t, formatValid(t, "ipv4", "192.168.00.1"))
}

func TestFormatIPv6(t *testing.T) {
	assert.True(t, formatValid(t, "ipv6", "::1"))
	assert.False(t, formatValid(t, "ipv6", "12345::"))
}

func TestFormatURI(t *testing.T) {
	assert.True(t, formatValid(t, "uri", "http://example.com/path"))
	assert.False(t, formatValid(t, "uri", "/relative/path"))
}

func TestFormatURIReference(t *testing.T) {
	assert.True(t, formatValid(t, "uri-reference", "/relative/path"))
	assert.False(t, formatValid(t, "uri-reference", `\bad`))
}

func TestFormatUUID(t *testing.T) {
	assert.True(t, formatValid(t, "uuid", "2eb8aa08-aa98-11ea-b4aa-73b441d16380"))
	assert.False(t, formatValid(t, "uuid", "not-a-uuid"))
}

func TestFormatJSONPointer(t *testing.T) {
	assert.True(t, formatValid(t, "json-pointer", "/foo/bar~0baz~1qux"))
	assert.False(t, formatValid(t, "json-pointer", "foo/bar"))
	assert.False(t, formatValid(t, "json-pointer", "/foo~"))
}

func TestFormatRelativeJSONPointer(t *testing.T) {
	assert.True(t, formatValid(t, "relative-json-pointer", "1/foo"))
	assert.True(t, formatValid(t, "relative-json-pointer", "0#"))
	assert.False(t, formatValid(t, "relative-json-pointer", "/foo"))
}

func TestFormatRegex(t *testing.T) {
	assert.True(t, formatValid(t, "regex", `^\d+$`))
	assert.False(t, formatValid(t, "regex", "(unterminated"))
}

func TestFormatAssertionDisabledFor2019(t *testing.T) {
	schema := `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"format": "email"
	}`
	assert.True(t, draftValidate(t, schema, `"not-an-email"`))
}

func TestFormatAssertionCanBeEnabledExplicitly(t *testing.T) {
	schema := mustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"format": "email"
	}`)
	instance := mustDecode(t, `"not-an-email"`)
	opts := NewOptions(WithFormatAssertion(true))
	valid, err := Validate(schema, instance, "http://example.com/s.json", nil, nil, opts, nil, nil)
	assertNoErrorAndFalse(t, valid, err)
}

func assertNoErrorAndFalse(t *testing.T, valid bool, err error) {
	t.Helper()
	assert.NoError(t, err)
	assert.False(t, valid)
}
