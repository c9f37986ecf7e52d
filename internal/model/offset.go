package model

// ResolveOffset implements the three-tier precedence from spec §4.E / §8
// invariant 9, grounded on device_resolve_offset in the original C source:
//
//  1. a top-level integer in protocol configData keyed by the property name
//  2. an integer inside a nested "configData" object in protocol configData
//  3. fallback: 1 + the property's index in the instance's property list
func ResolveOffset(configData map[string]any, propertyName string, propertyIndex int) int {
	if v, ok := asInt(configData[propertyName]); ok {
		return v
	}
	if nested, ok := configData["configData"].(map[string]any); ok {
		if v, ok := asInt(nested[propertyName]); ok {
			return v
		}
	}
	return 1 + propertyIndex
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
