package jsonschema

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds the pattern and known-URL caches; the engine
// treats the LRU mechanics themselves as a utility (§1 Out of scope) and
// leans on a well-tested off-the-shelf implementation rather than rolling
// its own eviction policy.
const defaultCacheSize = 256

// patternCache is a bounded cache of compiled regular expressions keyed by
// their original ECMA-262 pattern text, shared by every keyword that
// compiles `pattern`/`patternProperties` values (§4.8 patternCache()).
type patternCache struct {
	cache *lru.Cache[string, *compiledPattern]
}

type compiledPattern struct {
	re  *regexpMatcher
	err error
}

func newPatternCache() *patternCache {
	c, err := lru.New[string, *compiledPattern](defaultCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which defaultCacheSize never is.
		panic(err)
	}
	return &patternCache{cache: c}
}

// compile translates and compiles an ECMA-262 pattern once per distinct
// pattern text for the life of the cache, caching both success and
// failure. Each evaluation context builds its own cache, so every Validate
// call starts with an empty one.
func (c *patternCache) compile(pattern string) (*regexpMatcher, error) {
	if cached, ok := c.cache.Get(pattern); ok {
		return cached.re, cached.err
	}
	re, err := compileECMA262(pattern)
	c.cache.Add(pattern, &compiledPattern{re: re, err: err})
	return re, err
}

// resourceCache is a bounded cache of loaded external documents keyed by
// canonical URI, used by the reference resolver so repeated $ref targets
// within one Validate call don't re-fetch or re-decode the same resource.
// Validate builds a new one for every call.
type resourceCache struct {
	cache *lru.Cache[string, Value]
}

func newResourceCache() *resourceCache {
	c, err := lru.New[string, Value](defaultCacheSize)
	if err != nil {
		panic(err)
	}
	return &resourceCache{cache: c}
}

func (c *resourceCache) get(uri string) (Value, bool) {
	return c.cache.Get(uri)
}

func (c *resourceCache) put(uri string, v Value) {
	c.cache.Add(uri, v)
}
