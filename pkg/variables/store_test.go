package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_Interpolate(t *testing.T) {
	tests := []struct {
		name     string
		seed     map[string]any
		template string
		want     string
	}{
		{
			name:     "Simple substitution",
			seed:     map[string]any{"name": "Ada"},
			template: "Hello {{name}}!",
			want:     "Hello Ada!",
		},
		{
			name:     "Whitespace inside braces",
			seed:     map[string]any{"name": "Ada"},
			template: "Hello {{ name }}!",
			want:     "Hello Ada!",
		},
		{
			name:     "Missing variable becomes empty",
			seed:     nil,
			template: "Hello {{name}}!",
			want:     "Hello !",
		},
		{
			name:     "Numeric value without trailing decimal",
			seed:     map[string]any{"x": float64(5)},
			template: "x is {{x}}",
			want:     "x is 5",
		},
		{
			name:     "Fractional value keeps fraction",
			seed:     map[string]any{"x": 5.5},
			template: "x is {{x}}",
			want:     "x is 5.5",
		},
		{
			name:     "Multiple placeholders",
			seed:     map[string]any{"a": "1", "b": "2"},
			template: "{{a}} and {{b}} and {{c}}",
			want:     "1 and 2 and ",
		},
		{
			name:     "No placeholders passes through",
			seed:     map[string]any{"name": "Ada"},
			template: "plain text",
			want:     "plain text",
		},
		{
			name:     "Dotted name",
			seed:     map[string]any{"contact.email": "ada@example.com"},
			template: "mail to {{contact.email}}",
			want:     "mail to ada@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.seed)
			assert.Equal(t, tt.want, s.Interpolate(tt.template))
		})
	}
}

func TestStore_SetThenInterpolate(t *testing.T) {
	s := New(nil)
	s.Set("x", 5)
	assert.Equal(t, "x is 5", s.Interpolate("x is {{x}}"))

	s.Set("x", "ten")
	assert.Equal(t, "x is ten", s.Interpolate("x is {{x}}"))
}

func TestStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"a": "1"}
	s := New(seed)
	s.Set("a", "2")
	assert.Equal(t, "1", seed["a"])
}

func TestStore_InterpolateMap(t *testing.T) {
	s := New(map[string]any{"name": "Ada", "city": "London"})

	out := s.InterpolateMap(map[string]any{
		"greeting": "Hi {{name}}",
		"nested": map[string]any{
			"line": "from {{city}}",
		},
		"list":   []any{"{{name}}", 7},
		"number": 42,
	})

	assert.Equal(t, "Hi Ada", out["greeting"])
	assert.Equal(t, "from London", out["nested"].(map[string]any)["line"])
	assert.Equal(t, "Ada", out["list"].([]any)[0])
	assert.Equal(t, 7, out["list"].([]any)[1])
	assert.Equal(t, 42, out["number"])
}

func TestStore_InterpolateMapDoesNotMutateInput(t *testing.T) {
	s := New(map[string]any{"name": "Ada"})
	in := map[string]any{"greeting": "Hi {{name}}"}
	_ = s.InterpolateMap(in)
	assert.Equal(t, "Hi {{name}}", in["greeting"])
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"Nil", nil, ""},
		{"String", "x", "x"},
		{"Bool", true, "true"},
		{"WholeFloat", float64(7), "7"},
		{"FractionalFloat", 7.25, "7.25"},
		{"Int", 3, "3"},
		{"Map", map[string]any{"a": 1}, `{"a":1}`},
		{"Slice", []any{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}

func TestStore_Snapshot(t *testing.T) {
	s := New(map[string]any{"a": "1"})
	snap := s.Snapshot()
	snap["a"] = "mutated"

	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}
