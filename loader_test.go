package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRawSchemaValidJSON(t *testing.T) {
	v, err := RegisterRawSchema([]byte(`{"type": "integer", "minimum": 0}`))
	require.NoError(t, err)
	obj, ok := asObject(v)
	require.True(t, ok)
	assert.Equal(t, "integer", obj["type"])
}

func TestRegisterRawSchemaRejectsInvalidJSON(t *testing.T) {
	_, err := RegisterRawSchema([]byte(`{not json`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceDecode)
}

func TestMapLoaderDecodesJSON(t *testing.T) {
	loader := MapLoader{"http://example.com/s.json": []byte(`{"type": "string"}`)}
	v, err := loader.Load("http://example.com/s.json")
	require.NoError(t, err)
	obj, ok := asObject(v)
	require.True(t, ok)
	assert.Equal(t, "string", obj["type"])
}

func TestMapLoaderFallsBackToYAML(t *testing.T) {
	loader := MapLoader{"http://example.com/s.yaml": []byte("type: string\nminLength: 1\n")}
	v, err := loader.Load("http://example.com/s.yaml")
	require.NoError(t, err)
	obj, ok := asObject(v)
	require.True(t, ok)
	assert.Equal(t, "string", obj["type"])
}

func TestMapLoaderUnknownURI(t *testing.T) {
	loader := MapLoader{}
	_, err := loader.Load("http://example.com/missing.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestChainLoaderPrefersKnownURLsOverLoader(t *testing.T) {
	known := mustDecode(t, `{"type": "boolean"}`)
	c := &chainLoader{
		knownURLs: map[string]Value{"http://example.com/s.json": known},
		cache:     newResourceCache(),
		loader: LoaderFunc(func(uri string) (Value, error) {
			t.Fatal("loader should not be consulted when knownURLs already has the URI")
			return nil, nil
		}),
	}
	v, err := c.resolve("http://example.com/s.json")
	require.NoError(t, err)
	assert.Equal(t, known, v)
}

func TestChainLoaderFallsBackToRegisteredLoader(t *testing.T) {
	calls := 0
	c := &chainLoader{
		cache: newResourceCache(),
		loader: LoaderFunc(func(uri string) (Value, error) {
			calls++
			return mustDecode(t, `{"type": "number"}`), nil
		}),
	}
	v, err := c.resolve("http://example.com/loaded.json")
	require.NoError(t, err)
	obj, ok := asObject(v)
	require.True(t, ok)
	assert.Equal(t, "number", obj["type"])

	_, err = c.resolve("http://example.com/loaded.json")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second resolve should be served from the cache")
}

func TestChainLoaderNoLoaderRegistered(t *testing.T) {
	c := &chainLoader{cache: newResourceCache()}
	_, err := c.resolve("http://example.com/missing.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoLoaderRegistered)
}
