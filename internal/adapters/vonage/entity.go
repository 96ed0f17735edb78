package vonage

import "strings"

// Entity is a decoded JSON object from the API. No schema is applied; callers
// read fields by name or by dot path.
type Entity map[string]any

// Lookup walks a dot path ("_links.next.href") through nested objects.
func (e Entity) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	cur := any(map[string]any(e))
	for _, part := range strings.Split(path, ".") {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		v, ok := obj[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// String returns the string at path or "".
func (e Entity) String(path string) string {
	if v, ok := e.Lookup(path); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Int returns the number at path truncated to int, or 0.
func (e Entity) Int(path string) int {
	if v, ok := e.Lookup(path); ok {
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return 0
}

func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case Entity:
		return o, true
	}
	return nil, false
}
