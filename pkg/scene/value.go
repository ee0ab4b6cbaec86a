package scene

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Unwrap strips single-element list wrappers, as hosts report a color as
// [[r, g, b]] and a scalar plug as [x].
func Unwrap(v any) any {
	for {
		switch x := v.(type) {
		case []any:
			if len(x) != 1 {
				return v
			}
			v = x[0]
		case []float64:
			if len(x) != 1 {
				return v
			}
			return x[0]
		default:
			return v
		}
	}
}

// AsFloat converts a numeric or boolean value to float64.
func AsFloat(v any) (float64, bool) {
	switch x := Unwrap(v).(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AsInt converts a value to int. Floats must be integral.
func AsInt(v any) (int, bool) {
	f, ok := AsFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// AsString returns v if it is a string.
func AsString(v any) (string, bool) {
	s, ok := Unwrap(v).(string)
	return s, ok
}

// AsTuple converts a list of numbers to a float slice. A scalar becomes a
// one-element tuple.
func AsTuple(v any) ([]float64, bool) {
	switch x := Unwrap(v).(type) {
	case []float64:
		return x, true
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, ok := AsFloat(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		f, ok := AsFloat(x)
		if !ok {
			return nil, false
		}
		return []float64{f}, true
	}
}

// IsZero reports whether v is numerically zero. Non-numeric values are
// never zero.
func IsZero(v any) bool {
	switch Unwrap(v).(type) {
	case []any, []float64, string, nil:
		return false
	}
	f, ok := AsFloat(v)
	return ok && f == 0
}

// Equal compares two attribute values, treating numbers of different
// encodings as equal when they differ by less than 1e-3.
func Equal(a, b any) bool {
	ta, oka := AsTuple(a)
	tb, okb := AsTuple(b)
	if oka && okb {
		if len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if math.Abs(ta[i]-tb[i]) >= 1e-3 {
				return false
			}
		}
		return true
	}
	return fmt.Sprint(Unwrap(a)) == fmt.Sprint(Unwrap(b))
}

var indexedKey = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\[(\d+)\](?:\.(.+))?$`)

// ParseIndexed splits "name[i].field" into its parts. Field is empty for
// "name[i]".
func ParseIndexed(key string) (name string, index int, field string, ok bool) {
	m := indexedKey.FindStringSubmatch(key)
	if m == nil {
		return "", 0, "", false
	}
	i, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, "", false
	}
	return m[1], i, m[3], true
}

// Indexed builds the key ParseIndexed reverses.
func Indexed(name string, index int, field string) string {
	if field == "" {
		return fmt.Sprintf("%s[%d]", name, index)
	}
	return fmt.Sprintf("%s[%d].%s", name, index, field)
}
