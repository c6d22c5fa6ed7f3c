// Package value implements the JSON encoding of the four primitive wire
// kinds (spec.md §3, §6, §8): all inter-component value transport is as
// JSON-encoded text; the engine never inspects value contents, but
// bricks and the CLI need a canonical, lenient codec.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EncodeString returns the canonical JSON encoding of a string value.
func EncodeString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// EncodeBoolean returns the canonical JSON encoding of a boolean value.
// Boolean strings are "true"/"false" per spec.md §6.
func EncodeBoolean(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// EncodeNumber returns the canonical JSON encoding of a float64. Special
// values (±Inf, NaN) are not representable in JSON; per spec.md §8 they
// must not crash the engine, so they are encoded as quoted sentinel
// strings a lenient decoder recognizes.
func EncodeNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return `"NaN"`
	case math.IsInf(f, 1):
		return `"Infinity"`
	case math.IsInf(f, -1):
		return `"-Infinity"`
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// EncodeEnum returns the canonical JSON encoding of an enum value
// (compared as a plain string per spec.md §6).
func EncodeEnum(s string) string {
	return EncodeString(s)
}

// DecodeString accepts both a raw scalar and a quoted JSON string, per
// spec.md §6's leniency requirement.
func DecodeString(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) >= 2 && trimmed[0] == '"' {
		var out string
		if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
			return "", fmt.Errorf("value: invalid string literal %q: %w", s, err)
		}
		return out, nil
	}
	return trimmed, nil
}

// DecodeBoolean accepts "true"/"false", optionally quoted.
func DecodeBoolean(s string) (bool, error) {
	str, err := DecodeString(s)
	if err != nil {
		return false, err
	}
	switch str {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("value: invalid boolean literal %q", s)
	}
}

// DecodeNumber accepts a raw JSON number, a quoted number, or one of the
// special sentinel strings produced by EncodeNumber.
func DecodeNumber(s string) (float64, error) {
	str, err := DecodeString(s)
	if err != nil {
		return 0, err
	}
	switch str {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("value: invalid number literal %q: %w", s, err)
	}
	return f, nil
}

// DecodeEnum is an alias for DecodeString — enum values are compared as
// strings (spec.md §6).
func DecodeEnum(s string) (string, error) { return DecodeString(s) }

// Divide implements the numeric semantics of spec.md §6/§8: division by
// zero yields ±∞ (sign by dividend) or NaN for 0/0. It never panics.
func Divide(dividend, divisor float64) float64 {
	return dividend / divisor
}

// TruncToInt truncates f toward zero, for integer-typed bricks
// (spec.md §6).
func TruncToInt(f float64) int64 {
	return int64(math.Trunc(f))
}

// Modulo mirrors Go's floating point Mod but stays defined (NaN) for a
// zero divisor instead of panicking, matching spec.md §8's requirement
// that modulo-by-zero "must not crash the engine".
func Modulo(dividend, divisor float64) float64 {
	return math.Mod(dividend, divisor)
}
