package restructure

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mcncl/jsonshaper/internal/models"
)

// NullKey is the partition key for records whose group path is null or missing.
const NullKey = "null"

// GroupKey returns the partition key for a grouped value. Strings are used
// as they are, booleans become "true"/"false", numbers use their shortest
// decimal form and null, missing or absent values become NullKey.
func GroupKey(value models.JSONValue) string {
	switch v := value.(type) {
	case nil:
		return NullKey
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return numberKey(v)
	case float64:
		return formatNumber(v)
	case int:
		return strconv.Itoa(v)
	default:
		if models.IsAbsent(v) {
			return NullKey
		}
		return fmt.Sprint(v)
	}
}

// numberKey normalizes a number so that 1, 1.0 and 1e0 share a partition.
func numberKey(n json.Number) string {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || math.IsInf(f, 0) {
		return string(n)
	}
	return formatNumber(f)
}

// formatNumber writes f in plain decimal notation from 1e-6 up to 1e21 and
// in exponent notation outside that range ("1e+21", "1.5e-7").
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
