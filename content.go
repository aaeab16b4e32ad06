package jsonschema

import (
	"encoding/base64"
	"encoding/json"
)

// handleContentEncoding implements §4.9 Content `contentEncoding`: only
// "base64" is recognized (the set this engine's supported drafts require);
// decoding failures are reported only when content assertion is enabled,
// since by default contentEncoding is annotation-only.
func handleContentEncoding(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	s, ok := asString(instance)
	if !ok {
		return true, nil
	}
	encoding, ok := asString(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("contentEncoding", "contentEncoding must be a string")
	}
	ctx.addAnnotation("contentEncoding", encoding)
	if !ctx.contentAssertionEnabled() {
		return true, nil
	}
	if encoding != "base64" {
		return true, nil
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		ctx.addError(false, "contentEncoding", "invalid_encoding", "Value is not valid {encoding}", map[string]any{"encoding": encoding})
		return false, nil
	}
	return true, nil
}

// handleContentMediaType implements §4.9 Content `contentMediaType`: decodes
// per any sibling contentEncoding, then parses the bytes as the named media
// type (only "application/json" is recognized); annotation-only unless
// content assertion is enabled.
func handleContentMediaType(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	s, ok := asString(instance)
	if !ok {
		return true, nil
	}
	mediaType, ok := asString(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("contentMediaType", "contentMediaType must be a string")
	}
	ctx.addAnnotation("contentMediaType", mediaType)
	if !ctx.contentAssertionEnabled() {
		return true, nil
	}
	content, ok := decodedContentBytes(ctx, schemaObj, s)
	if !ok {
		return true, nil
	}
	if mediaType != "application/json" {
		return true, nil
	}
	if !json.Valid(content) {
		ctx.addError(false, "contentMediaType", "invalid_media_type", "Value is not valid {mediaType}", map[string]any{"mediaType": mediaType})
		return false, nil
	}
	return true, nil
}

// handleContentSchema implements §4.9 Content `contentSchema`: only
// produces a result when the instance is a string and `contentMediaType`
// names application/json, per §4.9's "Content" note that contentSchema is
// meaningless without a media type that can be parsed into a Value.
func handleContentSchema(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	s, ok := asString(instance)
	if !ok {
		return true, nil
	}
	mediaType, _ := asString(schemaObj["contentMediaType"])
	if mediaType != "application/json" {
		return true, nil
	}
	if !ctx.contentAssertionEnabled() {
		return true, nil
	}
	content, ok := decodedContentBytes(ctx, schemaObj, s)
	if !ok {
		return true, nil
	}
	parsed, err := Decode(content)
	if err != nil {
		return true, nil
	}
	valid, err := ctx.apply(schemaObj[keyword], "contentSchema", nil, parsed, nil)
	if err != nil {
		return false, err
	}
	if !valid {
		ctx.addError(false, "contentSchema", "content_schema_mismatch", "Decoded content does not match the contentSchema")
	}
	return valid, nil
}

func decodedContentBytes(ctx *EvaluationContext, schemaObj map[string]any, s string) ([]byte, bool) {
	encoding, hasEncoding := asString(schemaObj["contentEncoding"])
	if !hasEncoding {
		return []byte(s), true
	}
	if encoding != "base64" {
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return decoded, true
}
