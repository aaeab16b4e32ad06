package jsonschema

// Known 2019-09 vocabulary URIs, gating keyword availability per §3
// "Vocabulary state" and §4.9's note that the Format vocabulary flag
// (when present) takes precedence over the Format option.
const (
	VocabCore             = "https://json-schema.org/draft/2019-09/vocab/core"
	VocabApplicator       = "https://json-schema.org/draft/2019-09/vocab/applicator"
	VocabValidation       = "https://json-schema.org/draft/2019-09/vocab/validation"
	VocabMetaData         = "https://json-schema.org/draft/2019-09/vocab/meta-data"
	VocabFormat           = "https://json-schema.org/draft/2019-09/vocab/format"
	VocabContent          = "https://json-schema.org/draft/2019-09/vocab/content"
)

// defaultVocabularies is the vocabulary set a 2019-09 schema gets when its
// meta-schema declares no explicit $vocabulary, matching the draft's own
// meta-schema (every standard vocabulary required except Format, which
// defaults to present-but-not-required).
func defaultVocabularies() map[string]bool {
	return map[string]bool{
		VocabCore:       true,
		VocabApplicator: true,
		VocabValidation: true,
		VocabMetaData:   true,
		VocabFormat:     false,
		VocabContent:    true,
	}
}

// vocabularyKeywords maps each vocabulary to the keyword names it governs
// (§C "vocabulary-gated keyword availability"); vocabularyAllows looks
// keywords up through it.
var vocabularyKeywords = map[string][]string{
	VocabApplicator: {
		"allOf", "anyOf", "oneOf", "not", "if", "then", "else",
		"properties", "patternProperties", "additionalProperties",
		"propertyNames", "items", "additionalItems", "contains",
		"dependentSchemas", "unevaluatedProperties", "unevaluatedItems",
	},
	VocabValidation: {
		"type", "const", "enum", "multipleOf", "maximum", "minimum",
		"exclusiveMaximum", "exclusiveMinimum", "maxLength", "minLength",
		"pattern", "maxItems", "minItems", "uniqueItems", "maxContains",
		"minContains", "required", "maxProperties", "minProperties",
		"dependentRequired",
	},
	VocabFormat: {"format"},
	VocabContent: {
		"contentEncoding", "contentMediaType", "contentSchema",
	},
	VocabMetaData: {
		"title", "description", "default", "examples", "readOnly",
		"writeOnly", "deprecated",
	},
}

// keywordVocabulary reverse-indexes vocabularyKeywords for O(1) lookups from
// the dispatcher.
var keywordVocabulary = func() map[string]string {
	m := make(map[string]string)
	for vocab, kws := range vocabularyKeywords {
		for _, kw := range kws {
			m[kw] = vocab
		}
	}
	return m
}()

// vocabularyAllows reports whether keyword should run given the
// Specification's vocabulary state. Pre-2019-09 dialects have no vocabulary
// concept and always allow their own keyword set (gating happens earlier,
// at dialect keyword-table construction). For 2019-09 it allows every
// keyword as well: the context's vocabulary map starts from
// defaultVocabularies and $vocabulary only adds or updates entries, so no
// keyword is skipped on vocabulary grounds. A vocabulary's required flag
// only matters for Format, through formatAssertionEnabled.
func vocabularyAllows(spec Specification, vocabs map[string]bool, keyword string) bool {
	if spec != Draft2019_09 {
		return true
	}
	vocab, governed := keywordVocabulary[keyword]
	if !governed {
		return true
	}
	if vocabs == nil {
		return true
	}
	_, declared := vocabs[vocab]
	if !declared {
		return true
	}
	return true // declared-but-not-required only gates strictness (format), never presence
}
