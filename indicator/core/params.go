package core

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Params carries the parameter set of one indicator request. Values usually
// come from Go literals or a decoded YAML document, so numbers may arrive as
// any integer or float type.
type Params map[string]any

// Check rejects keys outside allowed.
func (p Params) Check(allowed ...string) error {
	for key := range p {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			return InvalidParam(key, "is not a recognised parameter")
		}
	}
	return nil
}

// Int returns an integer parameter, or def when absent. Floats are accepted
// only when integral.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float32:
		return floatToInt(key, float64(n))
	case float64:
		return floatToInt(key, n)
	default:
		return 0, InvalidParam(key, "must be an integer, got %T", v)
	}
}

func floatToInt(key string, f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, InvalidParam(key, "must be an integer, got %v", f)
	}
	return int(f), nil
}

// Float returns a numeric parameter, or def when absent.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, InvalidParam(key, "must be a number, got %T", v)
	}
}

// String returns a string parameter, or def when absent.
func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", InvalidParam(key, "must be a string, got %T", v)
	}
	return s, nil
}

// Source returns the input column selected by the "source" parameter, or
// def when absent.
func (p Params) Source(def Field) (Field, error) {
	name, err := p.String("source", string(def))
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", InvalidParam("source", "must name an input column")
	}
	return Field(name), nil
}

// Canonical renders the parameters as sorted key=value pairs.
func (p Params) Canonical() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + FormatValue(p[k])
	}
	return strings.Join(parts, ",")
}

// FormatValue renders a parameter value in its shortest exact form.
func FormatValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32)
	case int:
		return strconv.Itoa(n)
	case string:
		return n
	default:
		return fmt.Sprint(v)
	}
}
