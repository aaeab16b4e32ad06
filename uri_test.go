package jsonschema

import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestURINormalize(t *testing.T) {
	u, err := ParseURI("HTTP://Ex.com/a/./b/../c")
	require.NoError(t, err)
	assert.Equal(t, "http://ex.com/a/c", u.Normalize().String())
}

func TestURINormalizeIdempotent(t *testing.T) {
	u, err := ParseURI("HTTP://Ex.com/a/./b/../c?q=1#frag")
	require.NoError(t, err)
	once := u.Normalize().String()
	twice, err := ParseURI(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice.Normalize().String())
}

func TestResolveIdentity(t *testing.T) {
	base, err := ParseURI("http://example.com/a/b#frag")
	require.NoError(t, err)
	ref, err := ParseURI("")
	require.NoError(t, err)
	resolved := Resolve(base, ref)
	assert.Equal(t, "http://example.com/a/b", resolved.StripFragment().String())
}

func TestResolveRelative(t *testing.T) {
	base, err := ParseURI("http://example.com/a/b")
	require.NoError(t, err)
	ref, err := ParseURI("../c")
	require.NoError(t, err)
	resolved := Resolve(base, ref).Normalize()
	assert.Equal(t, "http://example.com/c", resolved.String())
}

func TestParseURIRejectsInvalidPercentEncoding(t *testing.T) {
	_, err := ParseURI("http://example.com/%zz")
	assert.Error(t, err)
}

func TestParseURIIPv6Literal(t *testing.T) {
	u, err := ParseURI("http://[::1]:8080/path")
	require.NoError(t, err)
	assert.Equal(t, "[::1]", u.Authority.Host)
	assert.Equal(t, "8080", u.Authority.Port)
}
