package jsonschema

import (
	"fmt"

	i18n "github.com/kaptinlin/go-i18n"
)

// Locator is the §3 "Locator": a pair of JSON Pointers plus the absolute
// schema URI the schema-location pointer resolves against. It is the key
// space for every annotation and error the engine records.
type Locator struct {
	InstanceLoc PointerTokens
	SchemaLoc   PointerTokens
	SchemaURI   string
}

// Annotation is a non-error observation a keyword attaches to a Locator
// (§3 Annotation<T>). Value carries whatever shape the keyword produces:
// a bool for readOnly/writeOnly, a []string for the evaluated-properties
// union, an []int of the indexes contains matched, etc.
type Annotation struct {
	Name  string
	Valid bool
	Loc   Locator
	Value any
}

// EvaluationError is the structured form of §3's "Error": an Annotation
// specialized to a ValidationResult. It mirrors the teacher's
// EvaluationError/go-i18n pairing so callers can localize messages exactly
// the way result.go's Localize does.
type EvaluationError struct {
	Keyword string
	Code    string
	Message string
	Params  map[string]any
	Loc     Locator
}

// NewEvaluationError builds an EvaluationError the way the teacher's
// NewEvaluationError does, with an optional params map for templated text.
func NewEvaluationError(keyword, code, message string, params ...map[string]any) *EvaluationError {
	e := &EvaluationError{Keyword: keyword, Code: code, Message: message}
	if len(params) > 0 {
		e.Params = params[0]
	}
	return e
}

func (e *EvaluationError) Error() string {
	return i18nReplace(e.Message, e.Params)
}

// Localize renders the error through an i18n.Localizer keyed by Code,
// falling back to the raw English template when localizer is nil — the
// same contract as the teacher's EvaluationError.Localize.
func (e *EvaluationError) Localize(localizer *i18n.Localizer) string {
	if localizer != nil {
		return localizer.Get(e.Code, i18n.Vars(e.Params))
	}
	return e.Error()
}

// i18nReplace performs the same `{name}` substitution the teacher's utils.go
// `replace` helper does, without needing a localizer for the default locale.
func i18nReplace(template string, params map[string]any) string {
	if len(params) == 0 {
		return template
	}
	out := []byte(template)
	for k, v := range params {
		placeholder := "{" + k + "}"
		out = []byte(replaceAll(string(out), placeholder, fmt.Sprint(v)))
	}
	return string(out)
}

func replaceAll(s, old, new string) string {
	if old == "" {
		return s
	}
	var b []byte
	for {
		idx := indexOf(s, old)
		if idx < 0 {
			b = append(b, s...)
			break
		}
		b = append(b, s[:idx]...)
		b = append(b, new...)
		s = s[idx+len(old):]
	}
	return string(b)
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 || m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// annotationEntry/errorEntry preserve insertion order alongside the nested
// maps below, satisfying §8's "Determinism" property (a fixed input always
// produces the same ordered entry set) without relying on Go map iteration.
type annotationEntry struct {
	instanceLoc string
	name        string
	schemaLoc   string
	ann         *Annotation
}

type errorEntry struct {
	instanceLoc string
	schemaLoc   string
	err         *EvaluationError
}

// AnnotationMap implements §3's conceptual `instance-loc -> name ->
// schema-loc -> Annotation`, backed by an ordered entry list so callers get
// stable iteration without sorting map keys by hand every time.
type AnnotationMap struct {
	entries []annotationEntry
	index   map[string]map[string]map[string]*Annotation
}

func newAnnotationMap() *AnnotationMap {
	return &AnnotationMap{index: make(map[string]map[string]map[string]*Annotation)}
}

func (m *AnnotationMap) add(a *Annotation) {
	il, sl := a.Loc.InstanceLoc.String(), a.Loc.SchemaLoc.String()
	byName, ok := m.index[il]
	if !ok {
		byName = make(map[string]map[string]*Annotation)
		m.index[il] = byName
	}
	bySchema, ok := byName[a.Name]
	if !ok {
		bySchema = make(map[string]*Annotation)
		byName[a.Name] = bySchema
	}
	bySchema[sl] = a
	m.entries = append(m.entries, annotationEntry{instanceLoc: il, name: a.Name, schemaLoc: sl, ann: a})
}

// byName returns every annotation recorded anywhere in the tree under the
// given name, in insertion order — the contract behind context's
// annotations(name) operation (§4.8).
func (m *AnnotationMap) byName(name string) []*Annotation {
	var out []*Annotation
	for _, e := range m.entries {
		if e.name == name {
			out = append(out, e.ann)
		}
	}
	return out
}

// pruneUnder removes every annotation entry whose instance/schema locator
// pair was produced strictly inside the given schema-location subtree,
// implementing §3's "on schema failure ... annotations ... are pruned"
// invariant. Pruned entries are never re-added even if another keyword at
// an ancestor location later re-queries byName.
func (m *AnnotationMap) pruneUnder(schemaLocPrefix PointerTokens) {
	kept := m.entries[:0:0]
	for _, e := range m.entries {
		tokens := ParsePointerTokens(e.schemaLoc)
		if tokens.HasPrefix(schemaLocPrefix) && len(tokens) > len(schemaLocPrefix) {
			delete(m.index[e.instanceLoc][e.name], e.schemaLoc)
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
}

// ErrorMap implements §3's `instance-loc -> schema-loc -> Annotation`
// specialized to errors.
type ErrorMap struct {
	entries []errorEntry
}

func newErrorMap() *ErrorMap { return &ErrorMap{} }

func (m *ErrorMap) add(e *EvaluationError) {
	m.entries = append(m.entries, errorEntry{
		instanceLoc: e.Loc.InstanceLoc.String(),
		schemaLoc:   e.Loc.SchemaLoc.String(),
		err:         e,
	})
}

// ToMap renders the ordered entries into the plain nested map shape §6
// hands back through errorsMapOut: instance-location string keys to
// schema-location string keys to message text.
func (m *ErrorMap) ToMap() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, e := range m.entries {
		bySchema, ok := out[e.instanceLoc]
		if !ok {
			bySchema = make(map[string]string)
			out[e.instanceLoc] = bySchema
		}
		bySchema[e.schemaLoc] = e.err.Error()
	}
	return out
}

// ToMap renders the annotation map the same way, collapsing each
// (name, schema-loc) pair's recorded value.
func (m *AnnotationMap) ToMap() map[string]map[string]map[string]any {
	out := make(map[string]map[string]map[string]any)
	for _, e := range m.entries {
		byName, ok := out[e.instanceLoc]
		if !ok {
			byName = make(map[string]map[string]any)
			out[e.instanceLoc] = byName
		}
		bySchema, ok := byName[e.name]
		if !ok {
			bySchema = make(map[string]any)
			byName[e.name] = bySchema
		}
		bySchema[e.schemaLoc] = e.ann.Value
	}
	return out
}
