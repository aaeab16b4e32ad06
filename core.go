package jsonschema

import "fmt"

// handleID applies §4.9's "$id (sets base URI subtree-locally)": it
// resolves the $id value against the current base URI and installs the
// result as the base URI for the remainder of this dispatchObject call.
// The enclosing apply() frame (or the top-level Validate call) restores the
// prior base URI on exit, so the change never leaks past this subtree.
func handleID(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	idStr, ok := asString(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("$id", "$id must be a string")
	}
	idURI, err := ParseURI(idStr)
	if err != nil {
		return false, ctx.schemaError("$id", "invalid $id URI: "+err.Error())
	}
	resolved := Resolve(ctx.baseURI, idURI).Normalize().StripFragment()
	ctx.setBaseURI(resolved)
	return true, nil
}

// handleSchemaKeyword records the $schema annotation and, when the URI
// names a known dialect, switches the context to it, which lets a nested
// schema resource declare its own dialect. Dialect detection for the
// top-level document already ran in detectSpecification, and Validate
// checks that document against its meta-schema once (validateAgainstMetaSchema).
// This handler loads and validates nothing: a nested resource's $schema
// does not cause a meta-schema check, and no vocabularies are taken from it.
func handleSchemaKeyword(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	uriStr, ok := asString(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("$schema", "$schema must be a string")
	}
	if spec, known := SpecificationByURI(uriStr); known {
		ctx.setSpecification(spec)
	}
	ctx.addAnnotation("$schema", uriStr)
	return true, nil
}

// handleVocabulary applies §4.9's "$vocabulary (root of a meta-schema
// only)": it only has effect when evaluating a meta-schema resource
// (ctx.schemaLoc empty, i.e. this object is the current resource root);
// elsewhere it is a structural no-op, matching §3's "this is set from
// $vocabulary in a meta-schema and consulted by keyword gates".
func handleVocabulary(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	if len(ctx.schemaLoc) != 0 {
		return true, nil
	}
	vocabObj, ok := asObject(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("$vocabulary", "$vocabulary must be an object")
	}
	for _, uri := range sortedKeys(vocabObj) {
		required, _ := vocabObj[uri].(bool)
		ctx.setVocabulary(uri, required)
	}
	return true, nil
}

// handleRef implements §4.7 resolve($ref v, ctx):
//  1. parse+normalize v, resolve against ctx.baseURI.
//  2. a JSON-Pointer fragment: strip, load the stripped URI's document,
//     follow the pointer step-wise.
//  3. otherwise: look up the full URI (plain-name fragment or none) in the
//     ID table directly.
func handleRef(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	refStr, ok := asString(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("$ref", "$ref must be a string")
	}
	target, resolvedURI, err := ctx.resolveRef(refStr)
	if err != nil {
		return false, err
	}
	valid, err := ctx.apply(target, "$ref", resolvedURI, instance, nil)
	if err != nil {
		return false, err
	}
	if !valid {
		ctx.addError(false, "$ref", "ref_mismatch", "does not match the schema at {uri}", map[string]any{"uri": resolvedURI.String()})
	}
	return valid, nil
}

// resolveRef performs the pure resolution half of §4.7 step 1-3, shared by
// $ref and $recursiveRef's static-resolution step, returning the resolved
// subschema element and the absolute URI it was found at (for error
// messages and as the apply() overridingURI).
func (ctx *EvaluationContext) resolveRef(refStr string) (Value, *URI, error) {
	refURI, err := ParseURI(refStr)
	if err != nil {
		return nil, nil, ctx.schemaError("$ref", "invalid $ref URI: "+err.Error())
	}
	resolved := Resolve(ctx.baseURI, refURI).Normalize()

	if resolved.HasNonEmptyFragment() && looksLikeJSONPointer(resolved.Fragment) {
		stripped := resolved.StripFragment()
		element, root, err := ctx.findAndSetRoot(stripped.String())
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrUnresolvableReference, refStr, err)
		}
		tokens := ParsePointerTokens(resolved.Fragment)
		v, ok := ctx.followPointer(root, tokens)
		if !ok {
			v, ok = ctx.followPointer(element, tokens)
			if !ok {
				return nil, nil, &MalformedSchemaError{
					Keyword: "$ref", Location: ctx.schemaLoc.String(),
					Message: "json pointer segment not found: " + resolved.Fragment,
					Err:     ErrJSONPointerSegmentNotFound,
				}
			}
		}
		if err := ctx.checkValidSchema(v); err != nil {
			return nil, nil, err
		}
		return v, resolved, nil
	}

	canonical := resolved.String()
	if rec, ok := ctx.findID(canonical); ok {
		if err := ctx.checkValidSchema(rec.Element); err != nil {
			return nil, nil, err
		}
		return rec.Element, resolved, nil
	}
	element, _, err := ctx.findAndSetRoot(canonical)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrUnresolvableReference, refStr, err)
	}
	if err := ctx.checkValidSchema(element); err != nil {
		return nil, nil, err
	}
	return element, resolved, nil
}

// looksLikeJSONPointer distinguishes a JSON-Pointer fragment ("/a/b" or "")
// from a plain-name anchor fragment ("foo"), per §4.7 step 2 vs 3: a
// JSON-Pointer fragment is empty or begins with '/'.
func looksLikeJSONPointer(fragment string) bool {
	return fragment == "" || fragment[0] == '/'
}

// handleRecursiveRef implements §4.7's 2019-09 $recursiveRef: v must be "#"
// or an empty-fragment reference; it first resolves statically against
// ctx.baseURI, then, if the statically-resolved root carries
// $recursiveAnchor:true, re-resolves against ctx.recursiveBaseURI instead —
// dynamic-anchor-style re-rooting.
func handleRecursiveRef(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	refStr, ok := asString(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("$recursiveRef", "$recursiveRef must be a string")
	}
	refURI, err := ParseURI(refStr)
	if err != nil || refURI.HasNonEmptyFragment() {
		return false, ctx.schemaError("$recursiveRef", "$recursiveRef must be \"#\" or an empty-fragment reference")
	}

	staticTarget, staticURI, err := ctx.resolveRef(refStr)
	if err != nil {
		return false, err
	}

	target, targetURI := staticTarget, staticURI
	staticBase := staticURI.StripFragment().String()
	if ctx.recursiveAnchorSet(staticBase) {
		dynTarget, dynURI, derr := ctx.resolveAgainst(ctx.recursiveBaseURI, refStr)
		if derr == nil {
			target, targetURI = dynTarget, dynURI
		}
	}

	valid, err := ctx.apply(target, "$recursiveRef", targetURI, instance, nil)
	if err != nil {
		return false, err
	}
	if !valid {
		ctx.addError(false, "$recursiveRef", "recursive_ref_mismatch", "does not match the schema at {uri}", map[string]any{"uri": targetURI.String()})
	}
	return valid, nil
}

// recursiveAnchorSet reports whether the resource at base carries
// $recursiveAnchor: true, answered from the recursive-anchor set of the ID
// scan that the context holds.
func (ctx *EvaluationContext) recursiveAnchorSet(base string) bool {
	return ctx.recursiveAnchors[base]
}

// resolveAgainst re-resolves refStr against an explicit base URI, used by
// $recursiveRef's dynamic re-resolution step.
func (ctx *EvaluationContext) resolveAgainst(base *URI, refStr string) (Value, *URI, error) {
	saved := ctx.baseURI
	ctx.baseURI = base
	defer func() { ctx.baseURI = saved }()
	return ctx.resolveRef(refStr)
}
