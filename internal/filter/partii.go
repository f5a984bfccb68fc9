package filter

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// PartIIRedactor removes configured member names anywhere within a
// decoded Part-II subtree, regardless of nesting depth or whether the
// value is scalar, array, or object. Deletions are structural: the
// parent object loses the key entirely; arrays are left intact, since
// named members live only in objects.
type PartIIRedactor struct {
	names map[string]bool
}

// NewPartIIRedactor returns a redactor configured to strip the given
// member names.
func NewPartIIRedactor(names []string) PartIIRedactor {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return PartIIRedactor{names: set}
}

// Empty reports whether this redactor has no configured member names, in
// which case Redact is a no-op.
func (r PartIIRedactor) Empty() bool {
	return len(r.names) == 0
}

// Redact walks subtree in place, deleting every occurrence of a
// configured member name at any depth. The walk is total: it does not
// stop at the first match, since every instance must be removed.
// Redacting twice with the same name set is idempotent: the second pass
// finds nothing left to remove.
func (r PartIIRedactor) Redact(subtree any) any {
	return redactValue(subtree, r.names)
}

func redactValue(v any, names map[string]bool) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if names[k] {
				delete(t, k)
				continue
			}
			t[k] = redactValue(child, names)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = redactValue(child, names)
		}
		return t
	default:
		return v
	}
}

// RedactJSON applies the same any-depth member removal directly to raw
// JSON bytes via gjson/sjson, rather than round-tripping through
// encoding/json's map[string]any. Untouched fields keep their original
// byte representation (number text, key order), matching the rest of
// the handler's raw-passthrough design instead of normalizing the whole
// subtree through a generic Go value.
func (r PartIIRedactor) RedactJSON(raw []byte) ([]byte, error) {
	if r.Empty() {
		return raw, nil
	}

	out := raw
	for {
		path, found := firstMatchingPath(gjson.ParseBytes(out), "", r.names)
		if !found {
			return out, nil
		}
		next, err := sjson.DeleteBytes(out, path)
		if err != nil {
			return nil, err
		}
		out = next
	}
}

// firstMatchingPath walks result depth-first looking for the first key
// matching a configured name, returning its sjson path. Deletions are
// applied one at a time and the walk restarted on the new bytes, since
// each deletion rewrites the document the previous walk read.
func firstMatchingPath(result gjson.Result, prefix string, names map[string]bool) (string, bool) {
	isArray := result.IsArray()
	var path string
	var found bool
	result.ForEach(func(key, value gjson.Result) bool {
		childPath := key.String()
		if prefix != "" {
			childPath = prefix + "." + childPath
		}
		if !isArray && names[key.String()] {
			path, found = childPath, true
			return false
		}
		if value.IsObject() || value.IsArray() {
			if p, ok := firstMatchingPath(value, childPath, names); ok {
				path, found = p, true
				return false
			}
		}
		return true
	})
	return path, found
}

// IsMemberPresent reports whether name occurs anywhere in subtree,
// short-circuiting on the first occurrence. It tells whether redaction
// would act without modifying subtree; this package's tests call it.
func IsMemberPresent(subtree any, name string) bool {
	switch t := subtree.(type) {
	case map[string]any:
		if _, ok := t[name]; ok {
			return true
		}
		for _, child := range t {
			if IsMemberPresent(child, name) {
				return true
			}
		}
		return false
	case []any:
		for _, child := range t {
			if IsMemberPresent(child, name) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
