package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// The functions in this file are the only place where loosely-typed source
// values are turned into typed product fields. Each reports ok=false instead of
// failing so the normalizer can fall back to the documented default.

// asString coerces identifiers and text. Numbers are formatted without a
// trailing ".0" so numeric ids from JSON become "1", not "1.000000".
func asString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return asString(float64(t))
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case decimal.Decimal:
		return t.String(), true
	case fmt.Stringer:
		s := strings.TrimSpace(t.String())
		return s, s != ""
	default:
		return "", false
	}
}

// asDecimal coerces prices. Strings are parsed as decimals after trimming;
// anything unparsable reports ok=false.
func asDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return t, true
	case *decimal.Decimal:
		if t == nil {
			return decimal.Zero, false
		}
		return *t, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(t), true
	case float32:
		return asDecimal(float64(t))
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	default:
		return decimal.Zero, false
	}
}

// asFloat coerces non-monetary numbers such as ratings.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		d, ok := asDecimal(v)
		if !ok {
			return 0, false
		}
		return d.InexactFloat64(), true
	}
}

// asBool applies the storefront truth table: literal false and the strings
// "false" / "FALSE" are false, every other present value is true.
func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(t)
		return s != "false" && s != "FALSE"
	default:
		return true
	}
}

// asStringList accepts arrays and comma-joined strings, trimming entries and
// dropping empty ones.
func asStringList(v any) []string {
	var parts []string
	switch t := v.(type) {
	case []string:
		parts = t
	case []any:
		for _, item := range t {
			if s, ok := asString(item); ok {
				parts = append(parts, s)
			}
		}
	case string:
		parts = strings.Split(t, ",")
	default:
		return nil
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
