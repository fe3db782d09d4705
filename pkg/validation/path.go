package validation

import (
	"sort"
	"strconv"
	"strings"
)

// Wildcard matches every element of an array or every key of an object
const Wildcard = "*"

// pathKey is one resolved step of a concrete field path
type pathKey struct {
	name    string
	index   int
	isIndex bool
}

// instance is a concrete field reached by expanding a declared path
type instance struct {
	keys   []pathKey
	value  interface{}
	exists bool
}

func (i instance) path() string {
	return formatPath(i.keys)
}

func (i instance) present() bool {
	return i.exists && i.value != nil
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// JoinPath joins path segments with dots, skipping empty ones
func JoinPath(segments ...string) string {
	var parts []string
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

func formatPath(keys []pathKey) string {
	var b strings.Builder
	for i, k := range keys {
		if k.isIndex {
			b.WriteString("[")
			b.WriteString(strconv.Itoa(k.index))
			b.WriteString("]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(k.name)
	}
	return b.String()
}

// expand resolves a declared path against root. Wildcards fan out over
// arrays and objects; a missing segment yields a single non-existing
// instance unless a wildcard follows it.
func expand(root map[string]interface{}, path string) []instance {
	var out []instance
	expandInto(&out, root, splitPath(path), nil, true)
	return out
}

func expandInto(out *[]instance, cur interface{}, segments []string, keys []pathKey, exists bool) {
	if len(segments) == 0 {
		*out = append(*out, instance{keys: keys, value: cur, exists: exists})
		return
	}

	seg := segments[0]
	rest := segments[1:]

	if seg == Wildcard {
		switch v := cur.(type) {
		case []interface{}:
			for i, elem := range v {
				expandInto(out, elem, rest, appendKey(keys, pathKey{index: i, isIndex: true}), true)
			}
		case map[string]interface{}:
			names := make([]string, 0, len(v))
			for name := range v {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				expandInto(out, v[name], rest, appendKey(keys, pathKey{name: name}), true)
			}
		}
		return
	}

	switch v := cur.(type) {
	case map[string]interface{}:
		if elem, ok := v[seg]; ok {
			expandInto(out, elem, rest, appendKey(keys, pathKey{name: seg}), true)
			return
		}
	case []interface{}:
		if i, err := strconv.Atoi(seg); err == nil && i >= 0 && i < len(v) {
			expandInto(out, v[i], rest, appendKey(keys, pathKey{index: i, isIndex: true}), true)
			return
		}
	}

	// missing: a single absent instance, unless the remainder needs fan-out
	for _, s := range rest {
		if s == Wildcard {
			return
		}
	}
	missing := appendKey(keys, pathKey{name: seg})
	for _, s := range rest {
		missing = append(missing, pathKey{name: s})
	}
	*out = append(*out, instance{keys: missing, exists: false})
}

func appendKey(keys []pathKey, k pathKey) []pathKey {
	out := make([]pathKey, len(keys), len(keys)+1)
	copy(out, keys)
	return append(out, k)
}

// assign stores value at keys inside container, creating intermediate
// objects and arrays, and returns the possibly reallocated container.
func assign(container interface{}, keys []pathKey, value interface{}) interface{} {
	if len(keys) == 0 {
		return value
	}
	k := keys[0]
	if k.isIndex {
		s, _ := container.([]interface{})
		for len(s) <= k.index {
			s = append(s, nil)
		}
		s[k.index] = assign(s[k.index], keys[1:], value)
		return s
	}
	m, ok := container.(map[string]interface{})
	if !ok || m == nil {
		m = make(map[string]interface{})
	}
	m[k.name] = assign(m[k.name], keys[1:], value)
	return m
}

// deepCopy clones the JSON-like containers of v
func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, elem := range t {
			out[k] = deepCopy(elem)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, elem := range t {
			out[i] = deepCopy(elem)
		}
		return out
	default:
		return v
	}
}
