package jsonschema

import (
	"fmt"
)

// stackFrame is one entry of the evaluation stack used for cycle detection
// (§4.7 Loop detection, §9 "a stack of (schema-index, instance-path-hash)
// entries checked on entry").
type stackFrame struct {
	schemaLoc   string
	instanceLoc string
}

// EvaluationContext is the per-call mutable state §4.8 describes: base URIs,
// current locations, annotation/error maps, the loop guard, and dialect
// state. One is created per top-level validate() call; apply() pushes and
// pops scoped state for every recursive descent, restoring on every exit
// path including schema errors (§5 "Resource acquisition").
type EvaluationContext struct {
	idTable          IDTable
	recursiveAnchors map[string]bool
	loader           *chainLoader

	root Value // the document the current baseURI's Id record was scanned from

	spec   Specification
	vocabs map[string]bool

	opts *Options

	baseURI          *URI
	recursiveBaseURI *URI

	instanceLoc PointerTokens
	schemaLoc   PointerTokens

	stack []stackFrame

	// collectAnnotations gates only whether addAnnotation/localAnnotation
	// record into the map at all; it is always true. Sibling and ancestor
	// keywords (additionalProperties reading properties, minContains reading
	// contains, unevaluatedProperties/unevaluatedItems reading the whole
	// tree) depend on this bookkeeping for correctness, independent of
	// whether the caller asked to see the annotations themselves — so this
	// is never wired to an Options field the way collectErrors is.
	collectAnnotations bool
	// exposeAnnotations is true when the caller passed a non-nil
	// annotationsOut, i.e. whether Validate copies the map out at the end.
	exposeAnnotations     bool
	collectErrors         bool
	collectSubAnnotations bool
	failFast              bool

	annotations *AnnotationMap
	errors      *ErrorMap

	patterns  *patternCache
	resources *resourceCache

	// validatedMetaSchemas guards against re-validating (and infinitely
	// recursing into) the same meta-schema URI twice within one top-level
	// validate() call, per §9's MetaSchemaCycleError precedent.
	validatedMetaSchemas map[string]bool
}

// newEvaluationContext wires up a fresh per-call context. scanned is the
// already-computed ID table/root for the schema under evaluation.
func newEvaluationContext(scanned *scanResult, baseURI *URI, spec Specification, vocabs map[string]bool, opts *Options, loader *chainLoader) *EvaluationContext {
	ctx := &EvaluationContext{
		idTable:               scanned.table,
		recursiveAnchors:      scanned.recursiveAnchors,
		root:                  scanned.root,
		loader:                loader,
		spec:                  spec,
		vocabs:                vocabs,
		opts:                  opts,
		baseURI:               baseURI,
		recursiveBaseURI:      baseURI,
		collectSubAnnotations: true,
		collectAnnotations:    true,
		annotations:           newAnnotationMap(),
		patterns:              newPatternCache(),
		resources:             newResourceCache(),
		validatedMetaSchemas:  make(map[string]bool),
	}
	if opts != nil {
		ctx.exposeAnnotations = opts.annotationsOut != nil
		ctx.collectErrors = opts.errorsOut != nil
		ctx.failFast = !ctx.exposeAnnotations && !ctx.collectErrors
	} else {
		ctx.failFast = true
	}
	if ctx.collectErrors {
		ctx.errors = newErrorMap()
	}
	return ctx
}

func (c *EvaluationContext) currentLocator() Locator {
	return Locator{InstanceLoc: c.instanceLoc, SchemaLoc: c.schemaLoc, SchemaURI: c.baseURI.String()}
}

// addAnnotation attaches name/value to the current locator, replacing any
// annotation of the same name previously recorded there — §4.8 addAnnotation.
func (c *EvaluationContext) addAnnotation(name string, value any) {
	if !c.collectAnnotations || !c.collectSubAnnotations {
		return
	}
	c.annotations.add(&Annotation{Name: name, Valid: true, Loc: c.currentLocator(), Value: value})
}

// addLocalAnnotation is identical to addAnnotation in this engine: both are
// keyed by the current (instance-loc, schema-loc) pair, which is already
// local to the calling keyword. It exists as a distinct operation per §4.8
// so future keywords can be explicit about "not propagated upward" intent
// even though propagation here is purely a matter of byName() querying
// ancestor schema-loc prefixes, not a separate storage tier.
func (c *EvaluationContext) addLocalAnnotation(name string, value any) {
	c.addAnnotation(name, value)
}

// localAnnotation fetches an annotation a sibling keyword produced at the
// current schema location, for the current instance location.
func (c *EvaluationContext) localAnnotation(name string) (any, bool) {
	if !c.collectAnnotations {
		return nil, false
	}
	il := c.instanceLoc.String()
	sl := c.schemaLoc.String()
	byName, ok := c.annotations.index[il]
	if !ok {
		return nil, false
	}
	bySchema, ok := byName[name]
	if !ok {
		return nil, false
	}
	ann, ok := bySchema[sl]
	if !ok {
		return nil, false
	}
	return ann.Value, true
}

// annotationsByName fetches every annotation anywhere in the tree with the
// given name, for unevaluatedProperties/unevaluatedItems ancestor scans.
func (c *EvaluationContext) annotationsByName(name string) []*Annotation {
	if !c.collectAnnotations {
		return nil
	}
	return c.annotations.byName(name)
}

// addError records a failing (or, for auxiliary aggregate keywords, a
// passing-but-noted) assertion at the current locator (§4.8 addError).
func (c *EvaluationContext) addError(valid bool, keyword, code, message string, params ...map[string]any) {
	if !c.collectErrors {
		return
	}
	e := NewEvaluationError(keyword, code, message, params...)
	e.Loc = c.currentLocator()
	c.errors.add(e)
}

// schemaError raises a MalformedSchemaError at the current (or an optional
// sub-path-relative) schema location, aborting the enclosing validate() call.
func (c *EvaluationContext) schemaError(keyword, message string, subPath ...string) error {
	loc := c.schemaLoc
	for _, s := range subPath {
		loc = loc.Append(s)
	}
	return &MalformedSchemaError{Keyword: keyword, Location: loc.String(), Message: message}
}

// checkValidSchema validates that v is a boolean or object, per §4.8.
func (c *EvaluationContext) checkValidSchema(v Value) error {
	switch v.(type) {
	case bool, map[string]any:
		return nil
	default:
		return &MalformedSchemaError{Keyword: "", Location: c.schemaLoc.String(), Message: "value is not a valid schema", Err: ErrNotASchema}
	}
}

func (c *EvaluationContext) setBaseURI(u *URI)          { c.baseURI = u }
func (c *EvaluationContext) setRecursiveBaseURI(u *URI) { c.recursiveBaseURI = u }
func (c *EvaluationContext) getBaseURI() *URI           { return c.baseURI }
func (c *EvaluationContext) getRecursiveBaseURI() *URI  { return c.recursiveBaseURI }

// findID resolves uri through the ID table, returning the matching record.
func (c *EvaluationContext) findID(uri string) (*IDRecord, bool) {
	rec, ok := c.idTable[uri]
	return rec, ok
}

// findAndSetRoot resolves uri, loading an external document through the
// loader chain if it is not already in the ID table, and returns the
// element plus the (possibly new) root document it should be looked up
// against for subsequent pointer traversal.
func (c *EvaluationContext) findAndSetRoot(uri string) (element Value, root Value, err error) {
	if rec, ok := c.idTable[uri]; ok {
		return rec.Element, rec.Root, nil
	}
	parsed, perr := ParseURI(uri)
	if perr != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidURI, uri, perr)
	}
	base := parsed.StripFragment().Normalize().String()
	doc, lerr := c.loader.resolve(base)
	if lerr != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrUnresolvableReference, uri, lerr)
	}
	scanned, serr := scanIDs(doc, parsed.StripFragment(), c.spec)
	if serr != nil {
		return nil, nil, serr
	}
	for k, v := range scanned.table {
		if _, exists := c.idTable[k]; !exists {
			c.idTable[k] = v
		}
	}
	if c.recursiveAnchors == nil {
		c.recursiveAnchors = make(map[string]bool)
	}
	for k, v := range scanned.recursiveAnchors {
		c.recursiveAnchors[k] = v
	}
	if rec, ok := c.idTable[uri]; ok {
		return rec.Element, rec.Root, nil
	}
	if rec, ok := c.idTable[base]; ok {
		return rec.Element, rec.Root, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnresolvableReference, uri)
}

// followPointer walks element (rooted at root's document) step-wise per a
// JSON Pointer, returning (nil, false) as soon as a segment fails to
// resolve — §4.8 followPointer.
func (c *EvaluationContext) followPointer(root Value, pointer PointerTokens) (Value, bool) {
	return Lookup(root, pointer)
}

func (c *EvaluationContext) isFailFast() bool               { return c.failFast }
func (c *EvaluationContext) isCollectAnnotations() bool      { return c.exposeAnnotations }
func (c *EvaluationContext) setCollectSubAnnotations(v bool) { c.collectSubAnnotations = v }

func (c *EvaluationContext) patternCache() *patternCache { return c.patterns }

// formatAssertionEnabled implements §4.4's three-tier precedence: an
// explicit 2019-09 Format vocabulary requirement wins outright; otherwise
// the caller's WithFormatAssertion option; otherwise the dialect default
// (on for Draft-06/07, off for 2019-09).
func (c *EvaluationContext) formatAssertionEnabled() bool {
	if c.spec == Draft2019_09 {
		if required, declared := c.vocabs[VocabFormat]; declared && required {
			return true
		}
	}
	if c.opts != nil && c.opts.formatAssertion != nil {
		return *c.opts.formatAssertion
	}
	return c.spec != Draft2019_09
}

// contentAssertionEnabled implements §4.9 Content: off by default in every
// dialect (content keywords are annotation-only unless explicitly opted in),
// matching the Content vocabulary's own "format-annotation" default.
func (c *EvaluationContext) contentAssertionEnabled() bool {
	if c.opts != nil && c.opts.contentAssertion != nil {
		return *c.opts.contentAssertion
	}
	return false
}

func (c *EvaluationContext) specification() Specification    { return c.spec }
func (c *EvaluationContext) setSpecification(s Specification) { c.spec = s }
func (c *EvaluationContext) vocabularies() map[string]bool    { return c.vocabs }
func (c *EvaluationContext) setVocabulary(uri string, required bool) {
	if c.vocabs == nil {
		c.vocabs = make(map[string]bool)
	}
	c.vocabs[uri] = required
}

// maxEvaluationDepth bounds the apply() recursion stack as the backstop
// §8's "Loop safety" invariant allows ("a bounded depth bail-out"): a $ref
// cycle's schema-loc grows by one "$ref" token per hop around the cycle, so
// it never repeats exactly and the frame-equality check below alone would
// never fire for it. Any realistic schema nests far shallower than this.
const maxEvaluationDepth = 1000

// pushFrame records entry onto the loop-detection stack, returning an error
// if the same (schema-loc, instance-loc) pair is already on it (§4.7 Loop
// detection) or the stack has grown past maxEvaluationDepth. Always active:
// a cyclic $ref must never be allowed to recurse unboundedly regardless of
// whether the caller asked for annotations or errors back.
func (c *EvaluationContext) pushFrame() (func(), error) {
	frame := stackFrame{schemaLoc: c.schemaLoc.String(), instanceLoc: c.instanceLoc.String()}
	if len(c.stack) >= maxEvaluationDepth {
		return func() {}, &MalformedSchemaError{Location: frame.schemaLoc, Message: "infinite loop detected", Err: ErrInfiniteLoop}
	}
	for _, f := range c.stack {
		if f == frame {
			return func() {}, &MalformedSchemaError{Location: frame.schemaLoc, Message: "infinite loop detected", Err: ErrInfiniteLoop}
		}
	}
	c.stack = append(c.stack, frame)
	return func() {
		c.stack = c.stack[:len(c.stack)-1]
	}, nil
}

// apply is the single entry point every applicator keyword uses to recurse
// (§4.8 apply): it pushes the instance/schema location tokens, snapshots the
// base-URI/recursive-base-URI/sub-annotation-collection state, evaluates sub
// against subInstance, and restores the snapshot on every exit path
// including a schema error, per §5's "Resource acquisition" guarantee.
func (c *EvaluationContext) apply(sub Value, schemaName string, overridingURI *URI, subInstance Value, instanceName *string) (bool, error) {
	savedBase, savedRecBase := c.baseURI, c.recursiveBaseURI
	savedCollect := c.collectSubAnnotations
	savedInstanceLoc, savedSchemaLoc := c.instanceLoc, c.schemaLoc

	if overridingURI != nil {
		c.baseURI = overridingURI
	}
	if schemaName != "" {
		c.schemaLoc = c.schemaLoc.Append(schemaName)
	}
	if instanceName != nil {
		c.instanceLoc = c.instanceLoc.Append(*instanceName)
	}

	pop, lerr := c.pushFrame()
	defer func() {
		pop()
		c.baseURI, c.recursiveBaseURI = savedBase, savedRecBase
		c.collectSubAnnotations = savedCollect
		c.instanceLoc, c.schemaLoc = savedInstanceLoc, savedSchemaLoc
	}()
	if lerr != nil {
		return false, lerr
	}

	valid, err := dispatch(c, sub, subInstance)
	if err == nil && !valid && (c.opts == nil || !c.opts.collectAnnotationsForFailed) {
		c.annotations.pruneUnder(c.schemaLoc)
	}
	return valid, err
}
