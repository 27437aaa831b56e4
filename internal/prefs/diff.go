package prefs

import (
	"reflect"
	"sort"
)

// Diff reports the keys whose values differ between two setting snapshots,
// sorted. Values are compared after canonicalization, so an int 100 and a
// float 100.0 (or the same dictionary re-serialized with different formatting)
// are not reported as a change. A key present on only one side always counts
// as changed.
func Diff(old, new map[string]any) []string {
	changed := make(map[string]struct{})

	for key, newVal := range new {
		oldVal, ok := old[key]
		if !ok || !reflect.DeepEqual(Canonical(oldVal), Canonical(newVal)) {
			changed[key] = struct{}{}
		}
	}
	for key := range old {
		if _, ok := new[key]; !ok {
			changed[key] = struct{}{}
		}
	}

	if len(changed) == 0 {
		return nil
	}
	keys := make([]string, 0, len(changed))
	for key := range changed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Canonical normalizes a setting value for comparison: all numeric types
// collapse to float64, slices and maps are normalized element-wise, and
// everything else passes through.
func Canonical(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Canonical(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			out[key] = Canonical(item)
		}
		return out
	default:
		return v
	}
}
