// Package template resolves dotted paths against JSON value trees and
// substitutes {{path}} placeholders in strings.
package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Lookup evaluates a dot-separated path of object keys and array indices
// against tree. Missing keys and out of range indices report false.
func Lookup(tree any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return tree, true
	}

	current := tree

	for _, segment := range strings.Split(path, ".") {
		switch value := current.(type) {
		case map[string]any:
			next, ok := value[segment]
			if !ok {
				return nil, false
			}

			current = next
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(value) {
				return nil, false
			}

			current = value[index]
		default:
			return nil, false
		}
	}

	return current, true
}

// Resolve looks path up in tree. When tree is an object that does not hold
// the first segment of path, the lookup is retried inside each of its values
// in key order, so a placeholder can reach into upstream node outputs that
// are keyed by node id.
func Resolve(tree any, path string) any {
	if value, ok := Lookup(tree, path); ok {
		return value
	}

	object, ok := tree.(map[string]any)
	if !ok {
		return nil
	}

	head, _, _ := strings.Cut(strings.TrimSpace(path), ".")
	if _, exists := object[head]; exists {
		return nil
	}

	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		if value, ok := Lookup(object[key], path); ok {
			return value
		}
	}

	return nil
}

// Render replaces every {{path}} in text with the value resolved from tree.
// Null becomes the empty string, strings are inserted as is and every other
// value is inserted as canonical JSON.
func Render(text string, tree any) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := placeholder.FindStringSubmatch(match)[1]

		return Stringify(Resolve(tree, path))
	})
}

// RenderAll applies Render to every string in values, leaving other values untouched.
func RenderAll(values map[string]any, tree any) map[string]any {
	rendered := make(map[string]any, len(values))

	for key, value := range values {
		if text, ok := value.(string); ok {
			rendered[key] = Render(text, tree)

			continue
		}

		rendered[key] = value
	}

	return rendered
}

// Stringify converts a JSON value to its substitution form.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Sprint(value)
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// Normalize maps Go numeric types onto float64 throughout a value tree so
// values built in code compare equal to values decoded from JSON.
func Normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		normalized := make(map[string]any, len(v))
		for key, item := range v {
			normalized[key] = Normalize(item)
		}

		return normalized
	case []any:
		normalized := make([]any, len(v))
		for i, item := range v {
			normalized[i] = Normalize(item)
		}

		return normalized
	}

	if number, ok := ToFloat(value); ok {
		return number
	}

	return value
}

// ToFloat reports the numeric value of v when v is a Go number.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}
