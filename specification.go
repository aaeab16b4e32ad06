package jsonschema

import "strings"

// Specification identifies one of the supported JSON Schema dialects. The
// ordinal ordering (Draft06 < Draft07 < Draft2019_09) is used wherever a
// behavior differs "per dialect, newer supersedes" (§3 Specification).
type Specification int

const (
	UnknownSpec Specification = iota
	Draft06
	Draft07
	Draft2019_09
)

func (s Specification) String() string {
	switch s {
	case Draft06:
		return "draft-06"
	case Draft07:
		return "draft-07"
	case Draft2019_09:
		return "2019-09"
	default:
		return "unknown"
	}
}

// MetaSchemaURI returns the canonical meta-schema URI identifying s.
func (s Specification) MetaSchemaURI() string {
	switch s {
	case Draft06:
		return "http://json-schema.org/draft-06/schema#"
	case Draft07:
		return "http://json-schema.org/draft-07/schema#"
	case Draft2019_09:
		return "https://json-schema.org/draft/2019-09/schema"
	default:
		return ""
	}
}

// AtLeast reports whether s is the same dialect as or newer than other.
func (s Specification) AtLeast(other Specification) bool { return s >= other }

// specByURI maps every known meta-schema URI form (with and without the
// trailing fragment marker, and the historical http/https variants actually
// published for 2019-09) to its Specification, per §3's "global table".
var specByURI = map[string]Specification{
	"http://json-schema.org/draft-06/schema#":  Draft06,
	"http://json-schema.org/draft-06/schema":   Draft06,
	"https://json-schema.org/draft-06/schema#": Draft06,
	"https://json-schema.org/draft-06/schema":  Draft06,

	"http://json-schema.org/draft-07/schema#":  Draft07,
	"http://json-schema.org/draft-07/schema":   Draft07,
	"https://json-schema.org/draft-07/schema#": Draft07,
	"https://json-schema.org/draft-07/schema":  Draft07,

	"https://json-schema.org/draft/2019-09/schema":  Draft2019_09,
	"https://json-schema.org/draft/2019-09/schema#": Draft2019_09,
	"http://json-schema.org/draft/2019-09/schema":   Draft2019_09,
	"http://json-schema.org/draft/2019-09/schema#":  Draft2019_09,
}

// SpecificationByURI looks a $schema value up in the known-dialect table,
// tolerating a trailing slash variance some authored schemas carry.
func SpecificationByURI(uri string) (Specification, bool) {
	if s, ok := specByURI[uri]; ok {
		return s, true
	}
	trimmed := strings.TrimSuffix(uri, "#")
	trimmed = strings.TrimSuffix(trimmed, "/")
	for k, v := range specByURI {
		if strings.TrimSuffix(strings.TrimSuffix(k, "#"), "/") == trimmed {
			return v, true
		}
	}
	return UnknownSpec, false
}

// draft2019OnlyKeywords, draft07OnlyKeywords and preDraft2019Keywords drive the §6 detection
// heuristic step 3: presence of a keyword exclusive to a dialect tips
// detection toward it when $schema is absent or unrecognized.
var draft2019OnlyKeywords = []string{
	"$defs", "$recursiveRef", "$recursiveAnchor", "dependentRequired",
	"dependentSchemas", "unevaluatedProperties", "unevaluatedItems",
	"$vocabulary", "$anchor",
}

var draft07OnlyKeywords = []string{"if", "then", "else", "$comment"}

var preDraft2019Keywords = []string{"dependencies", "definitions"}

// detectSpecification implements §6 "Specification detection": a recognized
// $schema, then the Specification option, then keyword heuristics, then
// DefaultSpecification; an unrecognized $schema falls through to those
// steps. When none applies it returns UnsupportedSpecificationError if
// $schema was present, else UnknownSpecificationError.
func detectSpecification(schemaObj map[string]any, opts *Options) (Specification, error) {
	unrecognized := ""
	if schemaObj != nil {
		if raw, ok := schemaObj["$schema"]; ok {
			uriStr, ok := asString(raw)
			if !ok {
				return UnknownSpec, &MalformedSchemaError{
					Keyword: "$schema", Message: "$schema must be a string",
				}
			}
			if spec, known := SpecificationByURI(uriStr); known {
				return spec, nil
			}
			unrecognized = uriStr
		}
	}

	if opts != nil && opts.specification != UnknownSpec {
		return opts.specification, nil
	}

	if schemaObj != nil {
		for _, kw := range draft2019OnlyKeywords {
			if _, ok := schemaObj[kw]; ok {
				return Draft2019_09, nil
			}
		}
		for _, kw := range draft07OnlyKeywords {
			if _, ok := schemaObj[kw]; ok {
				return Draft07, nil
			}
		}
		hasPre2019 := false
		for _, kw := range preDraft2019Keywords {
			if _, ok := schemaObj[kw]; ok {
				hasPre2019 = true
				break
			}
		}
		if hasPre2019 {
			return Draft07, nil
		}
	}

	if opts != nil && opts.defaultSpecification != UnknownSpec {
		return opts.defaultSpecification, nil
	}

	if unrecognized != "" {
		return UnknownSpec, &UnsupportedSpecificationError{URI: unrecognized}
	}
	return UnknownSpec, &UnknownSpecificationError{Hint: "no $schema, no Specification option, no detectable heuristic, no DefaultSpecification"}
}
