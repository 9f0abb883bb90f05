package test

import (
	"strconv"
	"strings"
)

// Field traverses a decoded JSON value using dot notation with array indexes
// (e.g. "items[0].name"). Returns (nil, false) when any segment is missing.
func Field(obj any, path string) (any, bool) {
	if obj == nil || path == "" {
		return nil, false
	}
	current := obj
	for _, segment := range strings.Split(strings.ReplaceAll(path, "[", ".["), ".") {
		if segment == "" {
			continue
		}
		if strings.HasPrefix(segment, "[") && strings.HasSuffix(segment, "]") {
			index, err := strconv.Atoi(segment[1 : len(segment)-1])
			slice, ok := current.([]any)
			if err != nil || !ok || index < 0 || index >= len(slice) {
				return nil, false
			}
			current = slice[index]
			continue
		}
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[segment]; !ok {
			return nil, false
		}
	}
	return current, true
}

// FieldString returns the string at path, or an empty string.
func FieldString(obj any, path string) string {
	value, _ := Field(obj, path)
	str, _ := value.(string)
	return str
}

// FieldNumber returns the JSON number at path, or 0.
func FieldNumber(obj any, path string) float64 {
	value, _ := Field(obj, path)
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// FieldLen returns the length of the array at path, or -1 when there is no array.
func FieldLen(obj any, path string) int {
	value, _ := Field(obj, path)
	slice, ok := value.([]any)
	if !ok {
		return -1
	}
	return len(slice)
}

// FieldExists reports whether path resolves to a value, possibly null.
func FieldExists(obj any, path string) bool {
	_, ok := Field(obj, path)
	return ok
}

// FieldValue returns the raw value at path, or nil.
func FieldValue(obj any, path string) any {
	value, _ := Field(obj, path)
	return value
}
