package jsonschema

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/kaptinlin/jsonpointer"
)

// Value is the tagged-variant JSON value the engine evaluates: nil, bool,
// *Decimal (arbitrary-precision number), string, []any, or map[string]any.
// Object key order is not preserved on the Go map (Go maps have none); where
// deterministic iteration matters (annotation/error map output) the engine
// keeps insertion-ordered side structures instead of depending on map order.
type Value = any

// Decode parses raw JSON bytes into a Value tree, preserving each number's
// original textual form so the §4.3 Number model can distinguish 1 from 1.0.
func Decode(data []byte) (Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	return decodeValue(dec)
}

func decodeValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 'f':
		return false, nil
	case 't':
		return true, nil
	case '"':
		return tok.String(), nil
	case '0':
		d, err := NewDecimalFromString(tok.String())
		if err != nil {
			return nil, err
		}
		return d, nil
	case '[':
		arr := make([]any, 0)
		for dec.PeekKind() != ']' {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.ReadToken(); err != nil { // consume ']'
			return nil, err
		}
		return arr, nil
	case '{':
		obj := make(map[string]any)
		for dec.PeekKind() != '}' {
			keyTok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj[keyTok.String()] = v
		}
		if _, err := dec.ReadToken(); err != nil { // consume '}'
			return nil, err
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unexpected token kind %q", tok.Kind())
	}
}

// TypeName returns the JSON Schema type name ("null", "boolean", "object",
// "array", "string", "number", "integer") for a decoded Value. A *Decimal
// is "integer" when Decimal.IsInteger holds and "number" otherwise.
func TypeName(v Value) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case *Decimal:
		if t.IsInteger() {
			return "integer"
		}
		return "number"
	default:
		return "unknown"
	}
}

// DeepEqual implements the JSON-equality rule used by `const`, `enum`, and
// `uniqueItems`: strict structural equality with numbers compared by decimal
// value rather than by textual form (so 1 and 1.0 are the same instance).
func DeepEqual(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case *Decimal:
		bv, ok := b.(*Decimal)
		return ok && av.Cmp(bv) == 0
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !DeepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !DeepEqual(v, bvv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// PointerTokens is an ordered sequence of decoded JSON Pointer (RFC 6901)
// tokens, the representation the spec's Locator uses for both instance and
// schema locations.
type PointerTokens []string

// String renders the tokens as a JSON Pointer string ("" for the root),
// delegating escaping to github.com/kaptinlin/jsonpointer so `~` and `/`
// round-trip exactly as required by §8's pointer round-trip property.
func (p PointerTokens) String() string {
	if len(p) == 0 {
		return ""
	}
	return "/" + jsonpointer.Format(p...)
}

// Append returns a new token slice with tok appended; PointerTokens is
// treated as immutable so callers can share prefixes across apply() frames.
func (p PointerTokens) Append(tok string) PointerTokens {
	out := make(PointerTokens, len(p)+1)
	copy(out, p)
	out[len(p)] = tok
	return out
}

// HasPrefix reports whether p starts with the given prefix tokens; used by
// AnnotationMap.pruneUnder to find annotations recorded under a failed
// schema location.
func (p PointerTokens) HasPrefix(prefix PointerTokens) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// ParsePointerTokens decodes a JSON Pointer string ("/a/b~1c") into tokens.
func ParsePointerTokens(pointer string) PointerTokens {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return nil
	}
	return PointerTokens(jsonpointer.Parse(pointer))
}

// Lookup walks a Value tree following pointer tokens, the same step-wise
// traversal `followPointer` performs in §4.8, returning (nil, false) as soon
// as a step cannot be taken (missing property, out-of-range index, or a
// non-container value mid-path).
func Lookup(root Value, tokens PointerTokens) (Value, bool) {
	cur := root
	for _, tok := range tokens {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[tok]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil, false
			}
			cur = c[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// sortedKeys returns an object's keys sorted lexicographically, used
// wherever keyword implementations must iterate object properties in a
// deterministic order (schema object iteration order never carries
// semantics per §5, but output ordering should still be stable run to run).
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// asObject reports whether v is a JSON object along with its map form.
func asObject(v Value) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// asArray reports whether v is a JSON array along with its slice form.
func asArray(v Value) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

// asString reports whether v is a JSON string.
func asString(v Value) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
