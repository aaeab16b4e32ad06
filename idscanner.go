package jsonschema

import (
	"regexp"
)

// anchorNamePattern is the plain-name grammar §4.6 cites for $anchor /
// $recursiveAnchor fragments: [A-Za-z_][A-Za-z0-9_.-]*
var anchorNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// IDRecord is one entry of the §3 "Id record": a schema resource (new $id)
// or an anchor, addressable by its canonical absolute URI.
type IDRecord struct {
	Base       *URI           // the resource's own base URI
	Path       PointerTokens  // pointer from Root to Element
	Element    Value          // the schema value at Path
	Parent     Value          // the schema value one step above Element, or nil at the root
	Root       Value          // the root document Element was found under
	Unresolved string         // the original (possibly relative) $id/$anchor text, for error messages
}

// IDTable maps canonical absolute URI strings to their IDRecord.
type IDTable map[string]*IDRecord

// scanResult is everything idscanner produces for a single root document.
type scanResult struct {
	table             IDTable
	root              Value
	recursiveAnchors  map[string]bool // canonical URI -> carries $recursiveAnchor:true
}

// scanIDs walks root (§4.6 ID scanner) starting at baseURI, registering every
// $id-introduced resource and every $anchor/$recursiveAnchor. It returns a
// MalformedSchemaError (never a plain sentinel) on any structural violation,
// since a broken ID table can never be evaluated against safely.
func scanIDs(root Value, baseURI *URI, spec Specification) (*scanResult, error) {
	res := &scanResult{
		table:            make(IDTable),
		root:             root,
		recursiveAnchors: make(map[string]bool),
	}
	if err := scanNode(res, root, root, baseURI, nil, nil, spec); err != nil {
		return nil, err
	}
	// The root resource is always addressable by the caller-supplied base
	// URI: unless scanNode already registered that canonical URI (a root $id
	// resolving to it), the entry is filled in here, whether or not root
	// carries an $id.
	rootCanonical := baseURI.Normalize().String()
	if _, ok := res.table[rootCanonical]; !ok {
		res.table[rootCanonical] = &IDRecord{
			Base: baseURI, Path: nil, Element: root, Parent: nil, Root: root,
		}
	}
	return res, nil
}

func scanNode(res *scanResult, root, node Value, base *URI, path PointerTokens, parent Value, spec Specification) error {
	obj, ok := asObject(node)
	if !ok {
		arr, isArr := asArray(node)
		if !isArr {
			return nil // booleans and scalars carry no $id/$anchor
		}
		for i, child := range arr {
			if err := scanNode(res, root, child, base, path.Append(itoa(i)), node, spec); err != nil {
				return err
			}
		}
		return nil
	}

	currentBase := base

	if rawID, present := obj["$id"]; present {
		idStr, ok := asString(rawID)
		if !ok {
			return &MalformedSchemaError{Keyword: "$id", Location: path.String(), Message: "$id must be a string", Err: ErrInvalidID}
		}
		idURI, err := ParseURI(idStr)
		if err != nil {
			return &MalformedSchemaError{Keyword: "$id", Location: path.String(), Message: "$id is not a valid URI", Err: err}
		}
		if spec == Draft2019_09 && idURI.HasNonEmptyFragment() {
			return &MalformedSchemaError{Keyword: "$id", Location: path.String(), Message: "$id must not carry a non-empty fragment in 2019-09", Err: ErrInvalidID}
		}
		resolved := Resolve(base, idURI).Normalize()
		canonical := resolved.StripFragment().String()

		if _, dup := res.table[canonical]; dup {
			return &MalformedSchemaError{Keyword: "$id", Location: path.String(), Message: "duplicate $id " + canonical, Err: ErrDuplicateID}
		}
		res.table[canonical] = &IDRecord{
			Base: resolved.StripFragment(), Path: path, Element: node, Parent: parent, Root: root, Unresolved: idStr,
		}
		currentBase = resolved.StripFragment()
	}

	if rawAnchor, present := obj["$anchor"]; present {
		anchorStr, ok := asString(rawAnchor)
		if !ok || !anchorNamePattern.MatchString(anchorStr) {
			return &MalformedSchemaError{Keyword: "$anchor", Location: path.String(), Message: "invalid anchor name", Err: ErrInvalidAnchor}
		}
		canonical := currentBase.String() + "#" + anchorStr
		if _, dup := res.table[canonical]; dup {
			return &MalformedSchemaError{Keyword: "$anchor", Location: path.String(), Message: "duplicate anchor " + canonical, Err: ErrDuplicateID}
		}
		res.table[canonical] = &IDRecord{Base: currentBase, Path: path, Element: node, Parent: parent, Root: root, Unresolved: anchorStr}
	}

	if rawRecAnchor, present := obj["$recursiveAnchor"]; present {
		isTrue, _ := rawRecAnchor.(bool)
		if isTrue {
			res.recursiveAnchors[currentBase.String()] = true
		}
	}

	for _, key := range sortedKeys(obj) {
		if key == "$id" || key == "$anchor" || key == "$comment" {
			continue
		}
		if key == "enum" || key == "const" || key == "default" || key == "examples" {
			// Instance data, not subschemas (§4.8): a $anchor/$id that
			// happens to appear inside one of these is just a property name
			// in someone's example payload, not a real schema resource.
			continue
		}
		if err := scanNode(res, root, obj[key], currentBase, path.Append(key), node, spec); err != nil {
			return err
		}
	}
	return nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
