package domain

// CloneJSONMap deep-copies a decoded JSON object so callers cannot mutate a
// registration after it is built.
func CloneJSONMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = CloneJSONValue(v)
	}
	return out
}

// CloneJSONValue deep-copies maps and slices; other values are returned as is.
func CloneJSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneJSONMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneJSONValue(item)
		}
		return out
	default:
		return v
	}
}
