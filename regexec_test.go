package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileECMA262WhitespaceClassExpandsUnicode(t *testing.T) {
	m, err := compileECMA262(`^\s+$`)
	require.NoError(t, err)
	assert.True(t, m.MatchString(" "))
	assert.False(t, m.MatchString("x"))
}

func TestCompileECMA262NegatedWhitespaceClass(t *testing.T) {
	m, err := compileECMA262(`^\S+$`)
	require.NoError(t, err)
	assert.True(t, m.MatchString("x"))
	assert.False(t, m.MatchString(" "))
}

func TestCompileECMA262ControlLetterEscape(t *testing.T) {
	m, err := compileECMA262(`^\cA$`)
	require.NoError(t, err)
	assert.True(t, m.MatchString("\x01"))
}

func TestCompileECMA262NullEscape(t *testing.T) {
	m, err := compileECMA262(`^\0$`)
	require.NoError(t, err)
	assert.True(t, m.MatchString("\x00"))
}

func TestCompileECMA262NullFollowedByDigitRejected(t *testing.T) {
	_, err := compileECMA262(`^\01$`)
	assert.Error(t, err)
}

func TestCompileECMA262UnicodeEscapeShortForm(t *testing.T) {
	m, err := compileECMA262("^\\u0041$")
	require.NoError(t, err)
	assert.True(t, m.MatchString("A"))
}

func TestCompileECMA262UnicodeEscapeBracedForm(t *testing.T) {
	m, err := compileECMA262(`^\u{1F600}$`)
	require.NoError(t, err)
	assert.True(t, m.MatchString("\U0001F600"))
}

func TestCompileECMA262UnknownIdentityEscapeRejected(t *testing.T) {
	_, err := compileECMA262(`^\q$`)
	assert.Error(t, err)
}

func TestCompileECMA262KnownClassEscapesPassThrough(t *testing.T) {
	m, err := compileECMA262(`^\d+$`)
	require.NoError(t, err)
	assert.True(t, m.MatchString("123"))
	assert.False(t, m.MatchString("abc"))
}
