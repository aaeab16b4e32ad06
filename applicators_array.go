package jsonschema

import "strings"

// handleItems implements §4.9 `items`: Draft-06/07's tuple form (an array of
// schemas, one per positional instance element, with `additionalItems`
// covering the rest) and the single-schema form (applied to every element),
// both of which 2019-09 keeps unchanged — 2020-12's split into
// `prefixItems`/list-form `items` is out of scope for the three dialects this
// engine supports.
func handleItems(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	arr, ok := asArray(instance)
	if !ok {
		return true, nil
	}
	items := schemaObj[keyword]
	if tuple, ok := asArray(items); ok {
		n := len(tuple)
		if n > len(arr) {
			n = len(arr)
		}
		var failedIdx []string
		for i := 0; i < n; i++ {
			valid, err := ctx.apply(tuple[i], "items/"+itoa(i), nil, arr[i], nil)
			if err != nil {
				return false, err
			}
			if !valid {
				failedIdx = append(failedIdx, itoa(i))
				if ctx.failFast {
					break
				}
			}
		}
		ctx.addLocalAnnotation("items", n)
		if len(failedIdx) > 0 {
			ctx.addError(false, "items", "items_mismatch", "Items at index {indexes} do not match their schema", map[string]any{
				"indexes": strings.Join(failedIdx, ", "),
			})
			return false, nil
		}
		return true, nil
	}

	var failedIdx []string
	for i, v := range arr {
		valid, err := ctx.apply(items, "items", nil, v, nil)
		if err != nil {
			return false, err
		}
		if !valid {
			failedIdx = append(failedIdx, itoa(i))
			if ctx.failFast {
				break
			}
		}
	}
	ctx.addLocalAnnotation("items", true)
	if len(failedIdx) > 0 {
		ctx.addError(false, "items", "items_mismatch", "Items at index {indexes} do not match their schema", map[string]any{
			"indexes": strings.Join(failedIdx, ", "),
		})
		return false, nil
	}
	return true, nil
}

// handleAdditionalItems implements §4.9 `additionalItems`, applying its
// subschema to every instance element beyond those consumed by a tuple-form
// `items`; it is a no-op unless `items` is present and in tuple form.
func handleAdditionalItems(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	arr, ok := asArray(instance)
	if !ok {
		return true, nil
	}
	if _, ok := asArray(schemaObj["items"]); !ok {
		return true, nil
	}
	n, _ := ctx.localAnnotation("items")
	start, _ := n.(int)
	if start >= len(arr) {
		return true, nil
	}
	var failedIdx []string
	for i := start; i < len(arr); i++ {
		valid, err := ctx.apply(schemaObj[keyword], "additionalItems", nil, arr[i], nil)
		if err != nil {
			return false, err
		}
		if !valid {
			failedIdx = append(failedIdx, itoa(i))
			if ctx.failFast {
				break
			}
		}
	}
	ctx.addLocalAnnotation("additionalItems", len(arr) > start)
	if len(failedIdx) > 0 {
		ctx.addError(false, "additionalItems", "additional_items_mismatch", "Additional items at index {indexes} do not match their schema", map[string]any{
			"indexes": strings.Join(failedIdx, ", "),
		})
		return false, nil
	}
	return true, nil
}

// handleContains implements §4.9 `contains`: at least one element must
// validate against the subschema; the matching indexes are recorded as a
// local annotation for min/maxContains and unevaluatedItems to consume.
func handleContains(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	arr, ok := asArray(instance)
	if !ok {
		return true, nil
	}
	var matchedIdx []int
	for i, v := range arr {
		valid, err := ctx.apply(schemaObj[keyword], "contains", nil, v, nil)
		if err != nil {
			return false, err
		}
		if valid {
			matchedIdx = append(matchedIdx, i)
		}
	}
	ctx.addLocalAnnotation("contains", matchedIdx)
	// Without a `minContains` sibling, `contains` demands at least one
	// match. With one (whatever its value) a zero-match result is not
	// reported here; minContains' own handler reads this annotation and
	// decides. A `maxContains` sibling alone does not change this.
	if len(matchedIdx) == 0 {
		if _, hasMin := schemaObj["minContains"]; !hasMin {
			ctx.addError(false, "contains", "contains_no_match", "No array item matches the contains schema")
			return false, nil
		}
	}
	return true, nil
}

// handleMinContains implements §4.9 `minContains`, including Open Question 1:
// minContains:0 always passes (and still emits the contains annotation
// unchanged), regardless of how many elements actually matched.
func handleMinContains(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	if _, ok := asArray(instance); !ok {
		return true, nil
	}
	min, ok := intKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("minContains", "minContains must be a non-negative integer")
	}
	if min == 0 {
		return true, nil
	}
	matched, _ := ctx.localAnnotation("contains")
	idx, _ := matched.([]int)
	if len(idx) < min {
		ctx.addError(false, "minContains", "min_contains_not_met", "Expected at least {min} matching items but found {found}", map[string]any{
			"min": itoa(min), "found": itoa(len(idx)),
		})
		return false, nil
	}
	return true, nil
}

// handleMaxContains implements §4.9 `maxContains`.
func handleMaxContains(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	if _, ok := asArray(instance); !ok {
		return true, nil
	}
	max, ok := intKeywordValue(schemaObj, keyword)
	if !ok {
		return false, ctx.schemaError("maxContains", "maxContains must be a non-negative integer")
	}
	matched, _ := ctx.localAnnotation("contains")
	idx, _ := matched.([]int)
	if len(idx) > max {
		ctx.addError(false, "maxContains", "max_contains_exceeded", "Expected at most {max} matching items but found {found}", map[string]any{
			"max": itoa(max), "found": itoa(len(idx)),
		})
		return false, nil
	}
	return true, nil
}

// handleUnevaluatedItems implements §4.9 2019-09 `unevaluatedItems`: reads
// the highest index already covered by items/additionalItems/contains/a
// previous unevaluatedItems at this same instance location, then applies its
// subschema to every later element.
func handleUnevaluatedItems(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	arr, ok := asArray(instance)
	if !ok {
		return true, nil
	}
	covered := ancestorEvaluatedIndexes(ctx, len(arr))
	var failedIdx []string
	anyEvaluated := false
	for i, v := range arr {
		if covered[i] {
			continue
		}
		anyEvaluated = true
		valid, err := ctx.apply(schemaObj[keyword], "unevaluatedItems", nil, v, nil)
		if err != nil {
			return false, err
		}
		if !valid {
			failedIdx = append(failedIdx, itoa(i))
			if ctx.failFast {
				break
			}
		}
	}
	ctx.addAnnotation("unevaluatedItems", anyEvaluated)
	if len(failedIdx) > 0 {
		ctx.addError(false, "unevaluatedItems", "unevaluated_items_not_allowed", "Unevaluated items at index {indexes} are not allowed", map[string]any{
			"indexes": strings.Join(failedIdx, ", "),
		})
		return false, nil
	}
	return true, nil
}

func ancestorEvaluatedIndexes(ctx *EvaluationContext, length int) map[int]bool {
	covered := make(map[int]bool)
	currentInstanceLoc := ctx.instanceLoc.String()
	matchAt := func(ann *Annotation) bool { return ann.Loc.InstanceLoc.String() == currentInstanceLoc }

	for _, ann := range ctx.annotationsByName("items") {
		if !matchAt(ann) {
			continue
		}
		if n, ok := ann.Value.(int); ok {
			for i := 0; i < n; i++ {
				covered[i] = true
			}
		}
		if all, ok := ann.Value.(bool); ok && all {
			for i := 0; i < length; i++ {
				covered[i] = true
			}
		}
	}
	for _, ann := range ctx.annotationsByName("additionalItems") {
		if !matchAt(ann) {
			continue
		}
		if all, ok := ann.Value.(bool); ok && all {
			for i := 0; i < length; i++ {
				covered[i] = true
			}
		}
	}
	for _, ann := range ctx.annotationsByName("contains") {
		if !matchAt(ann) {
			continue
		}
		if idx, ok := ann.Value.([]int); ok {
			for _, i := range idx {
				covered[i] = true
			}
		}
	}
	for _, ann := range ctx.annotationsByName("unevaluatedItems") {
		if !matchAt(ann) {
			continue
		}
		if all, ok := ann.Value.(bool); ok && all {
			for i := 0; i < length; i++ {
				covered[i] = true
			}
		}
	}
	return covered
}
