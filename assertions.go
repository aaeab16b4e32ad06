package jsonschema

import (
	"strings"
	"unicode/utf8"
)

// handleType implements §4.9 `type` (single or array; "integer" passes for
// a number equal to its integer value).
func handleType(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	raw := schemaObj[keyword]
	var types []string
	switch t := raw.(type) {
	case string:
		types = []string{t}
	case []any:
		for _, v := range t {
			s, ok := asString(v)
			if !ok {
				return false, ctx.schemaError("type", "type array must contain only strings")
			}
			types = append(types, s)
		}
	default:
		return false, ctx.schemaError("type", "type must be a string or array of strings")
	}

	instanceType := TypeName(instance)
	for _, want := range types {
		if want == "number" && instanceType == "integer" {
			return true, nil
		}
		if want == instanceType {
			return true, nil
		}
	}
	ctx.addError(false, "type", "type_mismatch", "Value is {received} but should be {expected}", map[string]any{
		"expected": strings.Join(types, ", "),
		"received": instanceType,
	})
	return false, nil
}

// handleConst implements §4.9 `const`: JSON-equality (DeepEqual) against a
// single fixed value.
func handleConst(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	if !DeepEqual(instance, schemaObj[keyword]) {
		ctx.addError(false, "const", "const_mismatch", "Value does not match the constant value")
		return false, nil
	}
	return true, nil
}

// handleEnum implements §4.9 `enum`: JSON-equality against any element of
// the array.
func handleEnum(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	values, ok := asArray(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("enum", "enum must be an array")
	}
	for _, v := range values {
		if DeepEqual(instance, v) {
			return true, nil
		}
	}
	ctx.addError(false, "enum", "value_not_in_enum", "Value should match one of the values specified by the enum")
	return false, nil
}

func asDecimal(v Value) (*Decimal, bool) {
	d, ok := v.(*Decimal)
	return d, ok
}

func numericKeywordValue(schemaObj map[string]any, keyword string) (*Decimal, bool) {
	return asDecimal(schemaObj[keyword])
}

// handleMultipleOf implements §4.9 `multipleOf`, computed over arbitrary-
// precision decimals per §4.3 (no floating-point overflow or rounding).
func handleMultipleOf(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	divisor, ok := numericKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("multipleOf", "multipleOf must be a number")
	}
	if divisor.Sign() <= 0 {
		return false, ctx.schemaError("multipleOf", "multipleOf must be greater than 0")
	}
	value, ok := asDecimal(instance)
	if !ok {
		return true, nil
	}
	if !value.MultipleOf(divisor) {
		ctx.addError(false, "multipleOf", "not_multiple_of", "{value} should be a multiple of {divisor}", map[string]any{
			"divisor": divisor.String(), "value": value.String(),
		})
		return false, nil
	}
	return true, nil
}

func handleMaximum(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	max, ok := numericKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("maximum", "maximum must be a number")
	}
	value, ok := asDecimal(instance)
	if !ok {
		return true, nil
	}
	if value.Cmp(max) > 0 {
		ctx.addError(false, "maximum", "value_above_maximum", "{value} should be at most {maximum}", map[string]any{
			"value": value.String(), "maximum": max.String(),
		})
		return false, nil
	}
	return true, nil
}

// handleExclusiveMaximum handles the numeric `exclusiveMaximum` of Draft-06
// onward, matching §4.9's dialect scope. Draft-04's boolean-modifier form
// (a boolean beside `maximum`) predates all three supported drafts and is
// not handled.
func handleExclusiveMaximum(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	max, ok := numericKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("exclusiveMaximum", "exclusiveMaximum must be a number")
	}
	value, ok := asDecimal(instance)
	if !ok {
		return true, nil
	}
	if value.Cmp(max) >= 0 {
		ctx.addError(false, "exclusiveMaximum", "value_above_exclusive_maximum", "{value} should be less than {maximum}", map[string]any{
			"value": value.String(), "maximum": max.String(),
		})
		return false, nil
	}
	return true, nil
}

func handleMinimum(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	min, ok := numericKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("minimum", "minimum must be a number")
	}
	value, ok := asDecimal(instance)
	if !ok {
		return true, nil
	}
	if value.Cmp(min) < 0 {
		ctx.addError(false, "minimum", "value_below_minimum", "{value} should be at least {minimum}", map[string]any{
			"value": value.String(), "minimum": min.String(),
		})
		return false, nil
	}
	return true, nil
}

func handleExclusiveMinimum(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	min, ok := numericKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("exclusiveMinimum", "exclusiveMinimum must be a number")
	}
	value, ok := asDecimal(instance)
	if !ok {
		return true, nil
	}
	if value.Cmp(min) <= 0 {
		ctx.addError(false, "exclusiveMinimum", "value_below_exclusive_minimum", "{value} should be greater than {minimum}", map[string]any{
			"value": value.String(), "minimum": min.String(),
		})
		return false, nil
	}
	return true, nil
}

func intKeywordValue(schemaObj map[string]any, keyword string) (int, bool) {
	d, ok := asDecimal(schemaObj[keyword])
	if !ok {
		return 0, false
	}
	n, ok := d.Int()
	return int(n), ok
}

// handleMaxLength implements §4.9 `maxLength`, counting length in codepoints
// per §4.9 (utf8.RuneCountInString).
func handleMaxLength(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	limit, ok := intKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("maxLength", "maxLength must be a non-negative integer")
	}
	s, ok := asString(instance)
	if !ok {
		return true, nil
	}
	length := utf8.RuneCountInString(s)
	if length > limit {
		ctx.addError(false, "maxLength", "string_too_long", "Value should be at most {max_length} characters", map[string]any{
			"max_length": limit, "length": length,
		})
		return false, nil
	}
	return true, nil
}

func handleMinLength(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	limit, ok := intKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("minLength", "minLength must be a non-negative integer")
	}
	s, ok := asString(instance)
	if !ok {
		return true, nil
	}
	length := utf8.RuneCountInString(s)
	if length < limit {
		ctx.addError(false, "minLength", "string_too_short", "Value should be at least {min_length} characters", map[string]any{
			"min_length": limit, "length": length,
		})
		return false, nil
	}
	return true, nil
}

// handlePattern implements §4.9 `pattern` via the §4.5 ECMA-262 translator,
// using the context's patternCache so a pattern text is translated at most
// once per Validate call.
func handlePattern(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	pattern, ok := asString(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("pattern", "pattern must be a string")
	}
	s, ok := asString(instance)
	if !ok {
		return true, nil
	}
	re, err := ctx.patternCache().compile(pattern)
	if err != nil {
		return false, &RegexPatternError{Keyword: "pattern", Location: ctx.schemaLoc.String(), Pattern: pattern, Err: err}
	}
	if !re.MatchString(s) {
		ctx.addError(false, "pattern", "pattern_mismatch", "Value does not match the required pattern {pattern}", map[string]any{
			"pattern": pattern, "value": s,
		})
		return false, nil
	}
	return true, nil
}

func handleMaxItems(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	limit, ok := intKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("maxItems", "maxItems must be a non-negative integer")
	}
	arr, ok := asArray(instance)
	if !ok {
		return true, nil
	}
	if len(arr) > limit {
		ctx.addError(false, "maxItems", "too_many_items", "Array should have at most {max_items} items", map[string]any{"max_items": limit})
		return false, nil
	}
	return true, nil
}

func handleMinItems(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	limit, ok := intKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("minItems", "minItems must be a non-negative integer")
	}
	arr, ok := asArray(instance)
	if !ok {
		return true, nil
	}
	if len(arr) < limit {
		ctx.addError(false, "minItems", "too_few_items", "Array should have at least {min_items} items", map[string]any{"min_items": limit})
		return false, nil
	}
	return true, nil
}

// handleUniqueItems implements §4.9 `uniqueItems` with JSON equality
// (structural; numbers compared by decimal value, per DeepEqual).
func handleUniqueItems(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	want, _ := schemaObj[keyword].(bool)
	if !want {
		return true, nil
	}
	arr, ok := asArray(instance)
	if !ok {
		return true, nil
	}
	for i := 0; i < len(arr); i++ {
		for j := i + 1; j < len(arr); j++ {
			if DeepEqual(arr[i], arr[j]) {
				ctx.addError(false, "uniqueItems", "unique_items_mismatch", "Found duplicate items at indices {a} and {b}", map[string]any{"a": i, "b": j})
				return false, nil
			}
		}
	}
	return true, nil
}

func handleRequired(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	names, ok := asArray(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("required", "required must be an array of strings")
	}
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	var missing []string
	for _, n := range names {
		name, ok := asString(n)
		if !ok {
			return false, ctx.schemaError("required", "required array must contain only strings")
		}
		if _, present := obj[name]; !present {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		ctx.addError(false, "required", "missing_required_properties", "Required properties {properties} are missing", map[string]any{
			"properties": strings.Join(missing, ", "),
		})
		return false, nil
	}
	return true, nil
}

func handleMaxProperties(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	limit, ok := intKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("maxProperties", "maxProperties must be a non-negative integer")
	}
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	if len(obj) > limit {
		ctx.addError(false, "maxProperties", "too_many_properties", "Value should have at most {max_properties} properties", map[string]any{"max_properties": limit})
		return false, nil
	}
	return true, nil
}

func handleMinProperties(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	limit, ok := intKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("minProperties", "minProperties must be a non-negative integer")
	}
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	if len(obj) < limit {
		ctx.addError(false, "minProperties", "too_few_properties", "Value should have at least {min_properties} properties", map[string]any{"min_properties": limit})
		return false, nil
	}
	return true, nil
}

// handleDependentRequired implements §4.9 2019-09 `dependentRequired`: for
// each present property key, every name in its array must also be present.
func handleDependentRequired(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	spec, ok := asObject(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("dependentRequired", "dependentRequired must be an object")
	}
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	valid := true
	for _, trigger := range sortedKeys(spec) {
		if _, present := obj[trigger]; !present {
			continue
		}
		names, ok := asArray(spec[trigger])
		if !ok {
			return false, ctx.schemaError("dependentRequired", "dependentRequired values must be arrays of strings")
		}
		var missing []string
		for _, n := range names {
			name, _ := asString(n)
			if _, present := obj[name]; !present {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			ctx.addError(false, "dependentRequired", "dependent_required_missing", "Properties {properties} are required when {trigger} is present", map[string]any{
				"properties": strings.Join(missing, ", "), "trigger": trigger,
			})
			valid = false
			if ctx.failFast {
				return false, nil
			}
		}
	}
	return valid, nil
}
