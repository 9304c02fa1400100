package rpc

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// The five built-in methods. Each operates on a JSON array of positional
// arguments and answers any shape mismatch with the uniform "Invalid params"
// error. All are pure: no state, no side effects, always terminate.

// RegisterHandlers registers the built-in method handlers.
func RegisterHandlers(registry *MethodRegistry) {
	registry.Register("floor", handleFloor)
	registry.Register("nroot", handleNRoot)
	registry.Register("reverse", handleReverse)
	registry.Register("valid_anagram", handleValidAnagram)
	registry.Register("sort", handleSort)
}

// NewDefaultRegistry returns a registry with all built-in methods registered.
func NewDefaultRegistry() *MethodRegistry {
	registry := NewMethodRegistry()
	RegisterHandlers(registry)
	return registry
}

// decodeArgs unmarshals params into a positional argument list.
func decodeArgs(params json.RawMessage) ([]any, bool) {
	var args []any
	if err := json.Unmarshal(params, &args); err != nil || args == nil {
		return nil, false
	}
	return args, true
}

func asNumber(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// formatFloat renders a double in its shortest decimal form without an
// exponent, so floor(3.7) travels as "3" rather than "3e+00".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// handleFloor rounds a number down to the nearest integer. The result keeps
// the textual form of the floored double; only the type tag says "int".
func handleFloor(params json.RawMessage) (string, string, *Error) {
	args, ok := decodeArgs(params)
	if !ok || len(args) < 1 {
		return "", "", ErrInvalidParams()
	}
	n, ok := asNumber(args[0])
	if !ok {
		return "", "", ErrInvalidParams()
	}
	return formatFloat(math.Floor(n)), TypeInt, nil
}

// handleNRoot computes x^(1/n) in floating point. n=0 yields Inf or NaN per
// IEEE 754 and is passed through stringified, not trapped.
func handleNRoot(params json.RawMessage) (string, string, *Error) {
	args, ok := decodeArgs(params)
	if !ok || len(args) < 2 {
		return "", "", ErrInvalidParams()
	}
	n, okN := asNumber(args[0])
	x, okX := asNumber(args[1])
	if !okN || !okX {
		return "", "", ErrInvalidParams()
	}
	return formatFloat(math.Pow(x, 1/n)), TypeDouble, nil
}

// handleReverse reverses a string by code points.
func handleReverse(params json.RawMessage) (string, string, *Error) {
	args, ok := decodeArgs(params)
	if !ok || len(args) < 1 {
		return "", "", ErrInvalidParams()
	}
	s, ok := asString(args[0])
	if !ok {
		return "", "", ErrInvalidParams()
	}
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes), TypeString, nil
}

// handleValidAnagram reports whether two strings contain the same multiset of
// code points.
func handleValidAnagram(params json.RawMessage) (string, string, *Error) {
	args, ok := decodeArgs(params)
	if !ok || len(args) < 2 {
		return "", "", ErrInvalidParams()
	}
	s1, ok1 := asString(args[0])
	s2, ok2 := asString(args[1])
	if !ok1 || !ok2 {
		return "", "", ErrInvalidParams()
	}
	return strconv.FormatBool(sortedRunes(s1) == sortedRunes(s2)), TypeBool, nil
}

func sortedRunes(s string) string {
	runes := []rune(s)
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes)
}

// handleSort sorts an array of strings in ascending lexicographic order. The
// result is the sorted array re-encoded as JSON text; that text is itself the
// result string.
func handleSort(params json.RawMessage) (string, string, *Error) {
	args, ok := decodeArgs(params)
	if !ok || len(args) < 1 {
		return "", "", ErrInvalidParams()
	}
	items, ok := args[0].([]any)
	if !ok {
		return "", "", ErrInvalidParams()
	}
	strs := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := asString(item)
		if !ok {
			return "", "", ErrInvalidParams()
		}
		strs = append(strs, s)
	}
	sort.Strings(strs)
	encoded, _ := json.Marshal(strs) // marshaling []string cannot fail
	return string(encoded), TypeString, nil
}
