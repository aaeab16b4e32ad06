package jsonschema

import (
	"embed"
	"fmt"
)

//go:embed metaschemas/*.json
var bundledMetaSchemas embed.FS

// Options configures a Validate call (§6). It is built with functional
// options in the teacher's compiler.go style (WithEncoderJSON,
// WithDefaultBaseURI, ...) rather than exported fields, so new options can
// be added without breaking callers.
type Options struct {
	specification        Specification
	defaultSpecification Specification
	formatAssertion       *bool
	contentAssertion      *bool
	autoResolve                 bool
	collectAnnotationsForFailed bool
	annotationsOut *map[string]map[string]map[string]any
	errorsOut      *map[string]map[string]string
	loader         Loader
	knownURLs      map[string]Value
}

// Option mutates an Options being built by NewOptions.
type Option func(*Options)

// NewOptions assembles an Options from the given functional options.
func NewOptions(opts ...Option) *Options {
	o := &Options{knownURLs: make(map[string]Value), defaultSpecification: Draft2019_09}
	for _, apply := range opts {
		apply(o)
	}
	return o
}

// WithSpecification sets the dialect used when $schema is absent or
// unrecognized and no dialect-specific keyword heuristic applies.
func WithSpecification(spec Specification) Option {
	return func(o *Options) { o.specification = spec }
}

// WithDefaultSpecification sets the final dialect fallback, consulted only
// after $schema, WithSpecification, and the keyword heuristics all fail to
// determine a dialect. NewOptions starts it at Draft2019_09.
func WithDefaultSpecification(spec Specification) Option {
	return func(o *Options) { o.defaultSpecification = spec }
}

// WithFormatAssertion overrides the per-dialect default for whether `format`
// produces assertion failures (as opposed to annotations only). A 2019-09
// schema whose own root $vocabulary marks the Format vocabulary required
// always asserts, regardless of this option.
func WithFormatAssertion(assert bool) Option {
	return func(o *Options) { o.formatAssertion = &assert }
}

// WithContentAssertion enables contentEncoding/contentMediaType/
// contentSchema assertion failures; off by default in every dialect.
func WithContentAssertion(assert bool) Option {
	return func(o *Options) { o.contentAssertion = &assert }
}

// WithAutoResolve registers the root schema's base URI and its own $id as
// known URLs automatically, mirroring santhosh-tekuri/jsonschema's
// roots.addRoot.
func WithAutoResolve(enabled bool) Option {
	return func(o *Options) { o.autoResolve = enabled }
}

// WithCollectAnnotationsForFailed keeps annotations attached to schemas that
// ultimately failed validation, instead of the default pruning behavior
// (§3's annotation-pruning invariant).
func WithCollectAnnotationsForFailed(enabled bool) Option {
	return func(o *Options) { o.collectAnnotationsForFailed = enabled }
}

// WithLoader registers the Loader consulted for any $ref target not already
// present in knownIDs/knownURLs or the bundled meta-schemas.
func WithLoader(loader Loader) Option {
	return func(o *Options) { o.loader = loader }
}

// WithKnownURL pre-registers a document at a fixed URI, bypassing the
// Loader entirely for that URI.
func WithKnownURL(uri string, doc Value) Option {
	return func(o *Options) {
		if o.knownURLs == nil {
			o.knownURLs = make(map[string]Value)
		}
		o.knownURLs[uri] = doc
	}
}

// Validate implements §6's `validate(schema, instance, baseURI, knownIDs,
// knownURLs, options, annotationsMapOut?, errorsMapOut?) → bool`. knownIDs
// pre-populates the ID table (e.g. for pre-resolved $id anchors a caller
// already knows about); knownURLs supplements/overrides Options' own.
func Validate(schema Value, instance Value, baseURI string, knownIDs map[string]Value, knownURLs map[string]Value, opts *Options, annotationsOut *map[string]map[string]map[string]any, errorsOut *map[string]map[string]string) (bool, error) {
	if opts == nil {
		opts = NewOptions()
	}
	opts.annotationsOut = annotationsOut
	opts.errorsOut = errorsOut

	base, err := ParseURI(baseURI)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrInvalidURI, baseURI, err)
	}

	schemaObj, _ := asObject(schema)
	spec, err := detectSpecification(schemaObj, opts)
	if err != nil {
		return false, err
	}

	scanned, err := scanIDs(schema, base, spec)
	if err != nil {
		return false, err
	}
	for uri, v := range knownIDs {
		if _, exists := scanned.table[uri]; !exists {
			elementScan, serr := scanIDs(v, base, spec)
			if serr != nil {
				return false, serr
			}
			scanned.table[uri] = &IDRecord{Base: base, Element: v, Root: v}
			for k, rec := range elementScan.table {
				if _, exists := scanned.table[k]; !exists {
					scanned.table[k] = rec
				}
			}
		}
	}

	merged := make(map[string]Value, len(knownURLs)+len(opts.knownURLs))
	for k, v := range opts.knownURLs {
		merged[k] = v
	}
	for k, v := range knownURLs {
		merged[k] = v
	}
	if opts.autoResolve {
		merged[base.String()] = schema
		if schemaObj != nil {
			if idStr, ok := asString(schemaObj["$id"]); ok {
				if idURI, ierr := ParseURI(idStr); ierr == nil {
					merged[Resolve(base, idURI).Normalize().String()] = schema
				}
			}
		}
	}
	if err := addBundledMetaSchemas(merged); err != nil {
		return false, err
	}

	loader := &chainLoader{knownURLs: merged, cache: newResourceCache(), loader: opts.loader}
	vocabs := defaultVocabularies()

	ctx := newEvaluationContext(scanned, base, spec, vocabs, opts, loader)

	if err := validateAgainstMetaSchema(ctx, spec, schema); err != nil {
		return false, err
	}

	valid, err := dispatch(ctx, schema, instance)
	if err != nil {
		return false, err
	}

	if ctx.exposeAnnotations && annotationsOut != nil {
		*annotationsOut = ctx.annotations.ToMap()
	}
	if ctx.collectErrors && errorsOut != nil {
		*errorsOut = ctx.errors.ToMap()
	}
	return valid, nil
}

// validateAgainstMetaSchema implements §C's "$schema-triggered meta-schema
// validation": the first time this top-level call encounters a given
// dialect, it evaluates the schema document against that dialect's bundled
// meta-schema, raising a MalformedSchemaError on mismatch.
func validateAgainstMetaSchema(ctx *EvaluationContext, spec Specification, schema Value) error {
	uri := spec.MetaSchemaURI()
	if uri == "" || ctx.validatedMetaSchemas[uri] {
		return nil
	}
	ctx.validatedMetaSchemas[uri] = true

	meta, err := ctx.loader.resolve(uri)
	if err != nil {
		return nil // bundled meta-schema unavailable: skip, do not fail the caller's validate
	}
	metaScanned, err := scanIDs(meta, mustParseURI(uri), spec)
	if err != nil {
		return err
	}
	metaCtx := newEvaluationContext(metaScanned, mustParseURI(uri), spec, defaultVocabularies(), &Options{}, ctx.loader)
	valid, err := dispatch(metaCtx, meta, schema)
	if err != nil {
		return err
	}
	if !valid {
		return &MalformedSchemaError{Message: "schema does not conform to its " + spec.String() + " meta-schema"}
	}
	return nil
}

func mustParseURI(s string) *URI {
	u, err := ParseURI(s)
	if err != nil {
		panic(err)
	}
	return u
}

func addBundledMetaSchemas(dst map[string]Value) error {
	entries, err := bundledMetaSchemas.ReadDir("metaschemas")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResourceRead, err)
	}
	for _, e := range entries {
		body, rerr := bundledMetaSchemas.ReadFile("metaschemas/" + e.Name())
		if rerr != nil {
			return fmt.Errorf("%w: %s: %v", ErrResourceRead, e.Name(), rerr)
		}
		v, derr := Decode(body)
		if derr != nil {
			return fmt.Errorf("%w: %s: %v", ErrResourceDecode, e.Name(), derr)
		}
		obj, _ := asObject(v)
		if obj == nil {
			continue
		}
		if id, ok := asString(obj["$id"]); ok {
			if _, exists := dst[id]; !exists {
				dst[id] = v
			}
		}
	}
	return nil
}
