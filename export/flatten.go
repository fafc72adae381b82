package export

import "sort"

// Flatten collapses a nested record into a single-level map with
// dot-joined key paths. Scalars, including nil and booleans, are assigned
// directly; only string-keyed maps recurse. Flattening an already-flat map
// returns an equal map.
func Flatten(record map[string]any) map[string]any {
	flat := make(map[string]any, len(record))
	flattenInto(flat, "", record)
	return flat
}

func flattenInto(flat map[string]any, prefix string, record map[string]any) {
	for key, value := range record {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(flat, path, nested)
			continue
		}
		flat[path] = value
	}
}

// collectKeys returns the sorted union of flattened key sets across all
// records. The union forms the header for tabular formats.
func collectKeys(records []map[string]any) []string {
	seen := make(map[string]struct{})
	for _, record := range records {
		for key := range Flatten(record) {
			seen[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
