package jsonschema

import "testing"

// BenchmarkValidateFlatObject benchmarks the evaluation hot path for a
// shallow object schema with no $ref/allOf indirection.
func BenchmarkValidateFlatObject(b *testing.B) {
	schema, err := Decode([]byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer"},
			"active": {"type": "boolean"},
			"score": {"type": "number"}
		},
		"required": ["name"]
	}`))
	if err != nil {
		b.Fatal(err)
	}
	instance, err := Decode([]byte(`{"name": "John Doe", "age": 30, "active": true, "score": 95.5}`))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		valid, err := Validate(schema, instance, "http://example.com/s.json", nil, nil, nil, nil, nil)
		if err != nil || !valid {
			b.Fatal("validation failed")
		}
	}
}

// BenchmarkValidateNestedAllOfUnevaluated benchmarks the annotation-heavy
// path: allOf plus unevaluatedProperties forces ancestor annotation scans
// on every call.
func BenchmarkValidateNestedAllOfUnevaluated(b *testing.B) {
	schema, err := Decode([]byte(`{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"allOf": [
			{"properties": {"user": {"type": "object", "properties": {"name": {"type": "string"}}}}}
		],
		"properties": {"metadata": {"type": "object"}},
		"unevaluatedProperties": false
	}`))
	if err != nil {
		b.Fatal(err)
	}
	instance, err := Decode([]byte(`{
		"user": {"name": "John Doe"},
		"metadata": {"created": 1699999999}
	}`))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		valid, err := Validate(schema, instance, "http://example.com/s.json", nil, nil, nil, nil, nil)
		if err != nil || !valid {
			b.Fatal("validation failed")
		}
	}
}

// BenchmarkValidateRefResolution benchmarks $ref indirection through a
// definitions block within the same document.
func BenchmarkValidateRefResolution(b *testing.B) {
	schema, err := Decode([]byte(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"definitions": {
			"positiveInt": {"type": "integer", "minimum": 0}
		},
		"properties": {
			"count": {"$ref": "#/definitions/positiveInt"},
			"total": {"$ref": "#/definitions/positiveInt"}
		}
	}`))
	if err != nil {
		b.Fatal(err)
	}
	instance, err := Decode([]byte(`{"count": 3, "total": 100}`))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		valid, err := Validate(schema, instance, "http://example.com/s.json", nil, nil, nil, nil, nil)
		if err != nil || !valid {
			b.Fatal("validation failed")
		}
	}
}
