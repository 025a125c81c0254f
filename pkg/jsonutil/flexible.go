package jsonutil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// IsNull reports whether a raw record value counts as absent: nil, an
// empty or whitespace-only string, a JSON null, or a NaN float.
func IsNull(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return math.IsNaN(val)
	case json.RawMessage:
		return len(val) == 0 || string(val) == "null"
	default:
		return false
	}
}

// CoerceFloat converts a raw record value to a float64, handling the
// types encoding/json and the file parsers actually produce: numbers,
// numeric strings, json.Number, booleans, and integer types. Returns
// false when the value is present but not numeric. Null-ness must be
// checked separately with IsNull; CoerceFloat on a null value also
// returns false.
func CoerceFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) {
			return 0, false
		}
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
