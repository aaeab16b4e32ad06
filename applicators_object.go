package jsonschema

import "strings"

// handleProperties implements §4.9 `properties`: applies each named
// subschema to the matching instance property, when present, and records
// the set of matched names as a local annotation so
// additionalProperties/unevaluatedProperties can read it (§4.8 ordering
// rule: properties before additionalProperties before unevaluatedProperties).
func handleProperties(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	propSchemas, ok := asObject(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("properties", "properties must be an object")
	}
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	var matched, failed []string
	for _, name := range sortedKeys(propSchemas) {
		v, present := obj[name]
		if !present {
			continue
		}
		name := name
		valid, err := ctx.apply(propSchemas[name], "properties/"+name, nil, v, &name)
		if err != nil {
			return false, err
		}
		if valid {
			matched = append(matched, name)
		} else {
			failed = append(failed, name)
			if ctx.failFast {
				break
			}
		}
	}
	ctx.addLocalAnnotation("properties", matched)
	if len(failed) > 0 {
		ctx.addError(false, "properties", "property_mismatch", "Properties {properties} do not match their schema", map[string]any{
			"properties": strings.Join(failed, ", "),
		})
		return false, nil
	}
	return true, nil
}

// handlePatternProperties implements §4.9 `patternProperties`: every
// instance property whose name matches a pattern key is validated against
// that pattern's subschema; a property may match (and be validated by)
// multiple patterns.
func handlePatternProperties(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	patterns, ok := asObject(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("patternProperties", "patternProperties must be an object")
	}
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	var matched, failed []string
	for _, name := range sortedKeys(obj) {
		for _, pattern := range sortedKeys(patterns) {
			re, err := ctx.patternCache().compile(pattern)
			if err != nil {
				return false, &RegexPatternError{Keyword: "patternProperties", Location: ctx.schemaLoc.String(), Pattern: pattern, Err: err}
			}
			if !re.MatchString(name) {
				continue
			}
			name := name
			valid, err := ctx.apply(patterns[pattern], "patternProperties/"+pattern, nil, obj[name], &name)
			if err != nil {
				return false, err
			}
			if valid {
				matched = append(matched, name)
			} else {
				failed = append(failed, name)
				if ctx.failFast {
					ctx.addLocalAnnotation("patternProperties", matched)
					ctx.addError(false, "patternProperties", "pattern_property_mismatch", "Properties {properties} do not match their pattern schema", map[string]any{"properties": strings.Join(failed, ", ")})
					return false, nil
				}
			}
		}
	}
	ctx.addLocalAnnotation("patternProperties", matched)
	if len(failed) > 0 {
		ctx.addError(false, "patternProperties", "pattern_property_mismatch", "Properties {properties} do not match their pattern schema", map[string]any{
			"properties": strings.Join(failed, ", "),
		})
		return false, nil
	}
	return true, nil
}

// handleAdditionalProperties implements §4.9 `additionalProperties`: applies
// its subschema to every instance property not already matched by
// properties or patternProperties at the same schema location.
func handleAdditionalProperties(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	covered := coveredNames(ctx)
	var evaluated, failed []string
	for _, name := range sortedKeys(obj) {
		if covered[name] {
			continue
		}
		name := name
		valid, err := ctx.apply(schemaObj[keyword], "additionalProperties", nil, obj[name], &name)
		if err != nil {
			return false, err
		}
		evaluated = append(evaluated, name)
		if !valid {
			failed = append(failed, name)
			if ctx.failFast {
				break
			}
		}
	}
	ctx.addLocalAnnotation("additionalProperties", evaluated)
	if len(failed) > 0 {
		ctx.addError(false, "additionalProperties", "additional_properties_not_allowed", "Additional properties {properties} are not allowed", map[string]any{
			"properties": strings.Join(failed, ", "),
		})
		return false, nil
	}
	return true, nil
}

func coveredNames(ctx *EvaluationContext) map[string]bool {
	covered := make(map[string]bool)
	if v, ok := ctx.localAnnotation("properties"); ok {
		for _, n := range toStringSlice(v) {
			covered[n] = true
		}
	}
	if v, ok := ctx.localAnnotation("patternProperties"); ok {
		for _, n := range toStringSlice(v) {
			covered[n] = true
		}
	}
	return covered
}

func toStringSlice(v any) []string {
	ss, _ := v.([]string)
	return ss
}

// handlePropertyNames implements §4.9 `propertyNames`: validates every
// instance property's name (as a string instance) against the subschema.
func handlePropertyNames(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	var failed []string
	for _, name := range sortedKeys(obj) {
		valid, err := ctx.apply(schemaObj[keyword], "propertyNames", nil, name, nil)
		if err != nil {
			return false, err
		}
		if !valid {
			failed = append(failed, name)
			if ctx.failFast {
				break
			}
		}
	}
	if len(failed) > 0 {
		ctx.addError(false, "propertyNames", "property_name_mismatch", "Property names {names} do not match the propertyNames schema", map[string]any{
			"names": strings.Join(failed, ", "),
		})
		return false, nil
	}
	return true, nil
}

// handleDependentSchemas implements §4.9 2019-09 `dependentSchemas`: when a
// trigger property is present, the whole instance (not just that property)
// is validated against the associated subschema.
func handleDependentSchemas(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	deps, ok := asObject(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("dependentSchemas", "dependentSchemas must be an object")
	}
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	var failed []string
	for _, trigger := range sortedKeys(deps) {
		if _, present := obj[trigger]; !present {
			continue
		}
		valid, err := ctx.apply(deps[trigger], "dependentSchemas/"+trigger, nil, instance, nil)
		if err != nil {
			return false, err
		}
		if !valid {
			failed = append(failed, trigger)
			if ctx.failFast {
				break
			}
		}
	}
	if len(failed) > 0 {
		ctx.addError(false, "dependentSchemas", "dependent_schema_mismatch", "Instance does not match the schema required by {triggers}", map[string]any{
			"triggers": strings.Join(failed, ", "),
		})
		return false, nil
	}
	return true, nil
}

// handleDependencies implements §4.9 pre-2019-09 `dependencies`: a per-key
// union of the dependentSchemas form (object value) and the
// dependentRequired form (array of required property names).
func handleDependencies(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	deps, ok := asObject(schemaObj[keyword])
	if !ok {
		return false, ctx.schemaError("dependencies", "dependencies must be an object")
	}
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	var failed []string
	for _, trigger := range sortedKeys(deps) {
		if _, present := obj[trigger]; !present {
			continue
		}
		switch dep := deps[trigger].(type) {
		case []any:
			var missing []string
			for _, n := range dep {
				name, _ := asString(n)
				if _, present := obj[name]; !present {
					missing = append(missing, name)
				}
			}
			if len(missing) > 0 {
				failed = append(failed, trigger+" (missing "+strings.Join(missing, ", ")+")")
			}
		default:
			valid, err := ctx.apply(dep, "dependencies/"+trigger, nil, instance, nil)
			if err != nil {
				return false, err
			}
			if !valid {
				failed = append(failed, trigger)
			}
		}
		if len(failed) > 0 && ctx.failFast {
			break
		}
	}
	if len(failed) > 0 {
		ctx.addError(false, "dependencies", "dependency_mismatch", "Dependency constraints not satisfied for {triggers}", map[string]any{
			"triggers": strings.Join(failed, ", "),
		})
		return false, nil
	}
	return true, nil
}

// handleUnevaluatedProperties implements §4.9 2019-09
// `unevaluatedProperties`: reads properties/patternProperties/
// additionalProperties/previously-applied unevaluatedProperties annotations
// from ancestor schema locations at the same instance location (the
// in-progress validate tree may have reached this instance object through
// allOf/$ref/if branches whose own schema locations differ from this one),
// then applies its subschema to every property not in that union.
func handleUnevaluatedProperties(ctx *EvaluationContext, schemaObj map[string]any, keyword string, instance Value) (bool, error) {
	obj, ok := asObject(instance)
	if !ok {
		return true, nil
	}
	covered := ancestorEvaluatedNames(ctx)
	var evaluated, failed []string
	for _, name := range sortedKeys(obj) {
		if covered[name] {
			continue
		}
		name := name
		valid, err := ctx.apply(schemaObj[keyword], "unevaluatedProperties", nil, obj[name], &name)
		if err != nil {
			return false, err
		}
		evaluated = append(evaluated, name)
		if !valid {
			failed = append(failed, name)
			if ctx.failFast {
				break
			}
		}
	}
	ctx.addAnnotation("unevaluatedProperties", evaluated)
	if len(failed) > 0 {
		ctx.addError(false, "unevaluatedProperties", "unevaluated_properties_not_allowed", "Unevaluated properties {properties} are not allowed", map[string]any{
			"properties": strings.Join(failed, ", "),
		})
		return false, nil
	}
	return true, nil
}

func ancestorEvaluatedNames(ctx *EvaluationContext) map[string]bool {
	covered := make(map[string]bool)
	currentInstanceLoc := ctx.instanceLoc.String()
	for _, name := range []string{"properties", "patternProperties", "additionalProperties", "unevaluatedProperties"} {
		for _, ann := range ctx.annotationsByName(name) {
			if ann.Loc.InstanceLoc.String() != currentInstanceLoc {
				continue
			}
			for _, n := range toStringSlice(ann.Value) {
				covered[n] = true
			}
		}
	}
	return covered
}
