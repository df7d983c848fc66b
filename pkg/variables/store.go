// Package variables implements the per-session key/value store and the
// {{name}} string interpolation used throughout node configs and action
// payloads.
package variables

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Store holds one session's variables. It is single-writer within a turn and
// never shared across sessions.
type Store struct {
	values map[string]any
}

// New creates a store seeded with the given values. The seed map is copied.
func New(seed map[string]any) *Store {
	s := &Store{values: make(map[string]any, len(seed))}
	for k, v := range seed {
		s.values[k] = v
	}
	return s
}

// Get returns the current value for name.
func (s *Store) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Set stores a value under name, replacing any previous value.
func (s *Store) Set(name string, value any) {
	s.values[name] = value
}

// Snapshot returns a copy of the full variable mapping.
func (s *Store) Snapshot() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Interpolate replaces every {{name}} occurrence in template with the
// stringified current value of name. Missing variables interpolate to the
// empty string. Templates without placeholders pass through unchanged, which
// makes the operation idempotent on plain text.
func (s *Store) Interpolate(template string) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		v, ok := s.values[name]
		if !ok {
			return ""
		}
		return Stringify(v)
	})
}

// InterpolateMap returns a copy of data with every string value interpolated.
// Nested maps and string slices are handled; other values pass through.
func (s *Store) InterpolateMap(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = s.interpolateValue(v)
	}
	return out
}

func (s *Store) interpolateValue(v any) any {
	switch tv := v.(type) {
	case string:
		return s.Interpolate(tv)
	case map[string]any:
		return s.InterpolateMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = s.interpolateValue(item)
		}
		return out
	case []string:
		out := make([]string, len(tv))
		for i, item := range tv {
			out[i] = s.Interpolate(item)
		}
		return out
	default:
		return v
	}
}

// Stringify renders a variable value the way it should appear inside message
// text: numbers without a trailing ".0", composites as compact JSON.
func Stringify(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case bool:
		return strconv.FormatBool(tv)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(tv), 'f', -1, 32)
	case int:
		return strconv.Itoa(tv)
	case int64:
		return strconv.FormatInt(tv, 10)
	case json.Number:
		return tv.String()
	case map[string]any, []any:
		b, err := json.Marshal(tv)
		if err != nil {
			return fmt.Sprintf("%v", tv)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", tv)
	}
}
