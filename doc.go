// Package jsonschema implements the core evaluation engine of a JSON Schema
// validator supporting the Draft-06, Draft-07, and 2019-09 dialects.
//
// The engine takes a schema document and an instance document (both parsed
// JSON values), a base URI, and an optional map of known external resources,
// and produces a boolean validity verdict together with structured
// annotation and error maps keyed by (instance location, schema location)
// pairs. It does not parse JSON itself (callers hand it an already-decoded
// value tree via Decode), does not provide a command-line entry point, and
// does not format "basic"/"detailed" output structures — those are left to
// callers of Validate.
package jsonschema
