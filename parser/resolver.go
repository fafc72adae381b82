package parser

// source names one candidate location for a field: a key on the root
// record ("" group) or on one of the extracted sub-records.
type source struct {
	group string
	key   string
}

// groupSet holds the sub-records extracted from a raw record. Absent or
// malformed groups are stored as empty maps so lookups never panic.
type groupSet map[string]map[string]any

// resolve walks the candidate sources in order and returns the first value
// that is present and non-empty. The ordering encodes source-version
// precedence: newest known shape first, legacy shapes as fallback.
func resolve(root map[string]any, groups groupSet, sources []source, fallback any) any {
	for _, src := range sources {
		rec := root
		if src.group != "" {
			rec = groups[src.group]
		}
		if rec == nil {
			continue
		}
		if value, ok := rec[src.key]; ok && !isEmpty(value) {
			return value
		}
	}
	return fallback
}

// isEmpty reports whether a decoded JSON value counts as absent for
// precedence purposes: nil, "", 0, false, and empty containers all do.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// asMap narrows a value to a string-keyed map, treating anything else as
// an absent group.
func asMap(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// extractGroup resolves a sub-record among alias keys, first present
// map-shaped value wins.
func extractGroup(root map[string]any, aliases ...string) map[string]any {
	for _, alias := range aliases {
		if value, ok := root[alias]; ok {
			if m, ok := value.(map[string]any); ok && len(m) > 0 {
				return m
			}
		}
	}
	return map[string]any{}
}
