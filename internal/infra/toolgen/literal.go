package toolgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Literal renders v as Go composite literal source. Maps become
// map[string]any with sorted keys, sequences become []any, and each nesting
// level is indented by one tab relative to depth. Values other than the JSON
// shapes are normalized through encoding/json first.
func Literal(v any, depth int) (string, error) {
	normalized, err := normalizeValue(v)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := writeLiteral(&b, normalized, max(depth, 0)); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeLiteral(b *strings.Builder, v any, depth int) error {
	switch val := v.(type) {
	case nil:
		b.WriteString("nil")
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case string:
		b.WriteString(strconv.Quote(val))
	case json.Number:
		b.WriteString(val.String())
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("unsupported number %v", val)
		}
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case map[string]any:
		b.WriteString("map[string]any{")
		if len(val) == 0 {
			b.WriteString("}")
			return nil
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			writeLineStart(b, depth+1)
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			if err := writeLiteral(b, val[k], depth+1); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			b.WriteString(",")
		}
		writeLineStart(b, depth)
		b.WriteString("}")
	case []any:
		b.WriteString("[]any{")
		if len(val) == 0 {
			b.WriteString("}")
			return nil
		}
		for i, item := range val {
			writeLineStart(b, depth+1)
			if err := writeLiteral(b, item, depth+1); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
			b.WriteString(",")
		}
		writeLineStart(b, depth)
		b.WriteString("}")
	default:
		return fmt.Errorf("unsupported value of type %T", v)
	}
	return nil
}

func writeLineStart(b *strings.Builder, depth int) {
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("\t", depth))
}

// normalizeValue maps v onto nil, bool, string, float64, int64, json.Number,
// map[string]any and []any.
func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, float64, json.Number:
		return val, nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case float32:
		return float64(val), nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			n, err := normalizeValue(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			n, err := normalizeValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("unsupported value of type %T: %w", v, err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var decoded any
		if err := dec.Decode(&decoded); err != nil {
			return nil, fmt.Errorf("decode %T: %w", v, err)
		}
		return normalizeValue(decoded)
	}
}
