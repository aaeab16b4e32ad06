package jsonschema

import "strings"

// handleAllOf implements §4.9 `allOf`: fails on first failure if fail-fast,
// else aggregates and reports every failing index.
func handleAllOf(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	subs, ok := asArray(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("allOf", "allOf must be an array of schemas")
	}
	var failedIdx []string
	for i, sub := range subs {
		name := itoa(i)
		valid, err := ctx.apply(sub, "allOf/"+name, nil, instance, nil)
		if err != nil {
			return false, err
		}
		if !valid {
			failedIdx = append(failedIdx, name)
			if ctx.failFast {
				break
			}
		}
	}
	if len(failedIdx) > 0 {
		ctx.addError(false, "allOf", "all_of_item_mismatch", "Value does not match the allOf schema at index {indexes}", map[string]any{
			"indexes": strings.Join(failedIdx, ", "),
		})
		return false, nil
	}
	return true, nil
}

// handleAnyOf implements §4.9 `anyOf`: evaluates every subschema (so
// annotations from every branch are collected), passes if at least one is
// valid.
func handleAnyOf(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	subs, ok := asArray(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("anyOf", "anyOf must be an array of schemas")
	}
	matched := false
	for i, sub := range subs {
		// Every branch is evaluated, even after the first match: a later
		// branch's annotations (on properties/items it covers) still feed
		// unevaluatedProperties/unevaluatedItems elsewhere in the schema, so
		// stopping at the first match would under-report what this anyOf
		// evaluated.
		valid, err := ctx.apply(sub, "anyOf/"+itoa(i), nil, instance, nil)
		if err != nil {
			return false, err
		}
		if valid {
			matched = true
		}
	}
	if !matched {
		ctx.addError(false, "anyOf", "any_of_item_mismatch", "Value does not match any of the anyOf schemas")
		return false, nil
	}
	return true, nil
}

// handleOneOf implements §4.9 `oneOf`: fails if more than one subschema
// validates (fail-fast after the second match when collection is off).
func handleOneOf(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	subs, ok := asArray(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("oneOf", "oneOf must be an array of schemas")
	}
	var matchedIdx []string
	for i, sub := range subs {
		valid, err := ctx.apply(sub, "oneOf/"+itoa(i), nil, instance, nil)
		if err != nil {
			return false, err
		}
		if valid {
			matchedIdx = append(matchedIdx, itoa(i))
			if len(matchedIdx) > 1 && ctx.failFast {
				break
			}
		}
	}
	switch len(matchedIdx) {
	case 1:
		return true, nil
	case 0:
		ctx.addError(false, "oneOf", "one_of_item_mismatch", "Value does not match any of the oneOf schemas")
		return false, nil
	default:
		ctx.addError(false, "oneOf", "one_of_multiple_matches", "Value should match exactly one schema but matches {matches}", map[string]any{
			"matches": strings.Join(matchedIdx, ", "),
		})
		return false, nil
	}
}

// handleNot implements §4.9 `not`.
func handleNot(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	savedCollect := ctx.collectSubAnnotations
	ctx.collectSubAnnotations = false
	valid, err := ctx.apply(schemaObj[keyword], "not", nil, instance, nil)
	ctx.collectSubAnnotations = savedCollect
	if err != nil {
		return false, err
	}
	if valid {
		ctx.addError(false, "not", "not_schema_mismatch", "Value should not match the not schema")
		return false, nil
	}
	return true, nil
}

// handleIf implements §4.9 `if`/`then`/`else` as one dispatch step (the
// keyword table registers "then"/"else" as no-ops, since they only ever run
// from here — §4.8's ordering rule "if before then/else" is automatically
// satisfied because there's exactly one entry point).
func handleIf(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	ifSchema, hasIf := schemaObj["if"]
	if !hasIf {
		return true, nil
	}
	savedCollect := ctx.collectSubAnnotations
	ifValid, err := ctx.apply(ifSchema, "if", nil, instance, nil)
	if err != nil {
		return false, err
	}

	if ifValid {
		thenSchema, hasThen := schemaObj["then"]
		if !hasThen {
			return true, nil
		}
		valid, err := ctx.apply(thenSchema, "then", nil, instance, nil)
		if err != nil {
			return false, err
		}
		if !valid {
			ctx.addError(false, "then", "if_then_mismatch", "Value meets the if condition but does not match the then schema")
		}
		return valid, nil
	}

	ctx.collectSubAnnotations = savedCollect
	elseSchema, hasElse := schemaObj["else"]
	if !hasElse {
		return true, nil
	}
	valid, err := ctx.apply(elseSchema, "else", nil, instance, nil)
	if err != nil {
		return false, err
	}
	if !valid {
		ctx.addError(false, "else", "if_else_mismatch", "Value fails the if condition and does not match the else schema")
	}
	return valid, nil
}
