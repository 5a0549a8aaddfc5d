package graph

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type valueKind int

const (
	kindNil valueKind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindMap
	kindList
)

// classify reports the kind of an attribute value, resolving json.Number into an
// integer or a float.
func classify(v any) valueKind {
	switch x := v.(type) {
	case nil:
		return kindNil
	case bool:
		return kindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kindInt
	case float32, float64:
		return kindFloat
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return kindInt
		}
		if _, err := x.Float64(); err == nil {
			return kindFloat
		}
		return kindString
	case string:
		return kindString
	case map[string]any, Attrs:
		return kindMap
	case []any, []string:
		return kindList
	}
	return kindString
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case json.Number:
		n, _ := x.Int64()
		return n
	case bool:
		if x {
			return 1
		}
		return 0
	}
	return 0
}

func toFloat64(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	case json.Number:
		f, _ := x.Float64()
		return f
	}
	return float64(toInt64(v))
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case nil:
		return ""
	}
	switch classify(v) {
	case kindInt:
		return strconv.FormatInt(toInt64(v), 10)
	case kindFloat:
		return formatFloat(toFloat64(v))
	case kindBool:
		return strconv.FormatBool(v.(bool))
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func toList(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	}
	return nil
}

func toMap(v any) map[string]any {
	switch x := v.(type) {
	case map[string]any:
		return x
	case Attrs:
		return x
	}
	return nil
}

// formatFloat renders a float the way most graph tools print doubles: the
// shortest round-tripping digits, always with a decimal point in fixed notation,
// switching to exponent notation below 1e-4 and from 1e16.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	// Shortest digits in exponent form, e.g. "1.2345e+02".
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expStr, _ := strings.Cut(s, "e")
	exp, _ := strconv.Atoi(expStr)

	neg := strings.HasPrefix(mant, "-")
	mant = strings.TrimPrefix(mant, "-")
	digits := strings.Replace(mant, ".", "", 1)

	var out string
	if exp < -4 || exp >= 16 {
		out = digits[:1]
		if len(digits) > 1 {
			out += "." + digits[1:]
		}
		sign := "+"
		if exp < 0 {
			sign = "-"
			exp = -exp
		}
		out += "e" + sign + padExp(exp)
	} else if exp < 0 {
		out = "0." + strings.Repeat("0", -exp-1) + digits
	} else {
		intLen := exp + 1
		if len(digits) <= intLen {
			out = digits + strings.Repeat("0", intLen-len(digits)) + ".0"
		} else {
			out = digits[:intLen] + "." + digits[intLen:]
		}
	}

	if neg {
		return "-" + out
	}
	return out
}

func padExp(exp int) string {
	s := strconv.Itoa(exp)
	if len(s) < 2 {
		s = "0" + s
	}
	return s
}
