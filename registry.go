package jsonschema

// keywordHandler evaluates one keyword of a schema object against an
// instance. schemaObj is the full parent object (handlers frequently need
// sibling keywords, e.g. additionalProperties reads properties/
// patternProperties) and keyword is schemaObj's own key, so one handler
// function can be registered under multiple aliases (dependentSchemas vs.
// the pre-2019-09 dependencies union).
type keywordHandler func(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error)

// refSiblingTolerated is the §9 Open-Question-3 list: keywords that still
// run beside $ref in Draft-07/06. dispatchObject skips every other keyword
// sharing a schema object with $ref in those dialects, matching real
// Draft-07 validator behavior where $ref suppresses sibling assertions.
var refSiblingTolerated = map[string]bool{
	"$ref": true, "$id": true, "$schema": true, "$comment": true,
	"definitions": true, "title": true, "description": true,
	"default": true, "examples": true,
}

// keywordOrder lists, per dialect, every keyword this engine evaluates in
// the fixed order §4.8/§5 require: properties family before
// unevaluatedProperties, items family before unevaluatedItems, contains
// before min/maxContains, if before then/else.
var keywordOrder = map[Specification][]string{
	Draft06: {
		"$id", "$schema", "$ref", "$comment", "definitions",
		"title", "description", "default", "examples",
		"type", "const", "enum",
		"multipleOf", "maximum", "exclusiveMaximum", "minimum", "exclusiveMinimum",
		"maxLength", "minLength", "pattern",
		"items", "additionalItems", "maxItems", "minItems", "uniqueItems", "contains",
		"maxProperties", "minProperties", "required",
		"properties", "patternProperties", "additionalProperties", "propertyNames",
		"dependencies",
		"allOf", "anyOf", "oneOf", "not",
		"format",
		"contentEncoding", "contentMediaType",
	},
	Draft07: {
		"$id", "$schema", "$ref", "$comment", "definitions",
		"title", "description", "default", "examples", "readOnly", "writeOnly",
		"type", "const", "enum",
		"multipleOf", "maximum", "exclusiveMaximum", "minimum", "exclusiveMinimum",
		"maxLength", "minLength", "pattern",
		"items", "additionalItems", "maxItems", "minItems", "uniqueItems", "contains",
		"maxProperties", "minProperties", "required",
		"properties", "patternProperties", "additionalProperties", "propertyNames",
		"dependencies",
		"if", "then", "else",
		"allOf", "anyOf", "oneOf", "not",
		"format",
		"contentEncoding", "contentMediaType", "contentSchema",
	},
	Draft2019_09: {
		"$id", "$schema", "$anchor", "$recursiveAnchor", "$recursiveRef", "$ref", "$comment",
		"$defs", "$vocabulary",
		"title", "description", "default", "examples", "readOnly", "writeOnly", "deprecated",
		"type", "const", "enum",
		"multipleOf", "maximum", "exclusiveMaximum", "minimum", "exclusiveMinimum",
		"maxLength", "minLength", "pattern",
		"propertyNames",
		"items", "additionalItems", "maxItems", "minItems", "uniqueItems",
		"contains", "maxContains", "minContains",
		"maxProperties", "minProperties", "required", "dependentRequired",
		"properties", "patternProperties", "additionalProperties", "dependentSchemas",
		"if", "then", "else",
		"allOf", "anyOf", "oneOf", "not",
		"unevaluatedItems", "unevaluatedProperties",
		"format",
		"contentEncoding", "contentMediaType", "contentSchema",
	},
}

// handlers maps each keyword name to its implementation, shared across
// dialects; dialect-specific availability is controlled entirely by
// keywordOrder (a keyword not listed for the active dialect is never
// dispatched, matching §4.9 "Keywords not in the current dialect return
// true without side effects").
var handlers = map[string]keywordHandler{
	"$id":         handleID,
	"$schema":     handleSchemaKeyword,
	"$comment":    handleNoop,
	"$vocabulary": handleVocabulary,
	"$anchor":     handleNoop,
	"definitions": handleDefinitions,
	"$defs":       handleDefinitions,

	"$ref":          handleRef,
	"$recursiveRef": handleRecursiveRef,

	"title":       handleAnnotationKeyword,
	"description": handleAnnotationKeyword,
	"default":     handleAnnotationKeyword,
	"examples":    handleAnnotationKeyword,
	"readOnly":    handleAnnotationKeyword,
	"writeOnly":   handleAnnotationKeyword,
	"deprecated":  handleAnnotationKeyword,

	"type":  handleType,
	"const": handleConst,
	"enum":  handleEnum,

	"multipleOf":       handleMultipleOf,
	"maximum":          handleMaximum,
	"exclusiveMaximum": handleExclusiveMaximum,
	"minimum":          handleMinimum,
	"exclusiveMinimum": handleExclusiveMinimum,

	"maxLength": handleMaxLength,
	"minLength": handleMinLength,
	"pattern":   handlePattern,

	"items":          handleItems,
	"additionalItems": handleAdditionalItems,
	"maxItems":       handleMaxItems,
	"minItems":       handleMinItems,
	"uniqueItems":    handleUniqueItems,
	"contains":       handleContains,
	"maxContains":    handleMaxContains,
	"minContains":    handleMinContains,
	"unevaluatedItems": handleUnevaluatedItems,

	"maxProperties":         handleMaxProperties,
	"minProperties":         handleMinProperties,
	"required":              handleRequired,
	"properties":            handleProperties,
	"patternProperties":     handlePatternProperties,
	"additionalProperties":  handleAdditionalProperties,
	"propertyNames":         handlePropertyNames,
	"dependencies":          handleDependencies,
	"dependentRequired":     handleDependentRequired,
	"dependentSchemas":      handleDependentSchemas,
	"unevaluatedProperties": handleUnevaluatedProperties,

	"if":   handleIf,
	"then": handleNoop, // applied from within handleIf
	"else": handleNoop, // applied from within handleIf

	"allOf": handleAllOf,
	"anyOf": handleAnyOf,
	"oneOf": handleOneOf,
	"not":   handleNot,

	"format": handleFormat,

	"contentEncoding":  handleContentEncoding,
	"contentMediaType": handleContentMediaType,
	"contentSchema":    handleContentSchema,
}

// dispatch applies a schema Value to instance (§4.8): a boolean schema is
// trivial, an object schema runs its registered keywords in dialect order.
func dispatch(ctx *EvaluationContext, schema Value, instance Value) (bool, error) {
	switch s := schema.(type) {
	case bool:
		if s {
			return true, nil
		}
		ctx.addError(false, "", "schema_false", "boolean schema false never validates")
		return false, nil
	case map[string]any:
		return dispatchObject(ctx, s, instance)
	default:
		return false, &MalformedSchemaError{Location: ctx.schemaLoc.String(), Message: "schema value is neither boolean nor object", Err: ErrNotASchema}
	}
}

func dispatchObject(ctx *EvaluationContext, schemaObj map[string]any, instance Value) (bool, error) {
	order := keywordOrder[ctx.spec]
	_, hasRef := schemaObj["$ref"]
	_, hasRecursiveRef := schemaObj["$recursiveRef"]
	refSuppresses := (hasRef || hasRecursiveRef) && ctx.spec != Draft2019_09

	valid := true
	for _, kw := range order {
		rawValue, present := schemaObj[kw]
		if !present {
			continue
		}
		if refSuppresses && !refSiblingTolerated[kw] {
			continue
		}
		if !vocabularyAllows(ctx.spec, ctx.vocabs, kw) {
			continue
		}
		handler, ok := handlers[kw]
		if !ok {
			continue
		}
		_ = rawValue
		ok2, err := handler(ctx, schemaObj, kw, instance)
		if err != nil {
			return false, err
		}
		if !ok2 {
			valid = false
			if ctx.failFast {
				return false, nil
			}
		}
	}
	return valid, nil
}

func handleNoop(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	return true, nil
}

func handleAnnotationKeyword(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	ctx.addAnnotation(keyword, schemaObj[keyword])
	return true, nil
}

func handleDefinitions(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	defs, ok := asObject(schemaObj[keyword])
	if !ok {
		return true, nil
	}
	for _, name := range sortedKeys(defs) {
		if err := ctx.checkValidSchema(defs[name]); err != nil {
			return false, err
		}
	}
	return true, nil
}
