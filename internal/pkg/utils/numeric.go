package utils

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// numberLike matches json.Number as produced by decoders running with UseNumber.
type numberLike interface {
	Float64() (float64, error)
	String() string
}

// SafeFloat converts an upstream JSON value to float64.
// nil, missing, non-numeric, NaN and infinite values resolve to def. It never panics.
func SafeFloat(v any, def float64) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return def
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case string:
		parsed, err := parseFloatString(t)
		if err != nil {
			return def
		}
		f = parsed
	case numberLike:
		parsed, err := t.Float64()
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func parseFloatString(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// SafeInt converts v through SafeFloat and truncates toward zero.
// Values outside the int64 range resolve to def.
func SafeInt(v any, def int64) int64 {
	f := SafeFloat(v, float64(def))
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return def
	}
	return int64(f)
}

// SafeDecimal converts v to an exact decimal. It is used for integer amounts in
// the smallest native unit, which do not survive a float64 round trip.
func SafeDecimal(v any, def decimal.Decimal) decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return def
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return d
	case numberLike:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return def
		}
		return d
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(t), 0)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return def
		}
		return decimal.NewFromFloat(t)
	default:
		return def
	}
}

// SafeBool reads a classification flag. Anything other than a bool or a
// parseable boolean string is false.
func SafeBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	default:
		return false
	}
}

// SafeString returns v when it is a non-empty string.
func SafeString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
