package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/variables"
)

func TestBranch_PrimaryComparison(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]any
		cfg  domain.ConditionConfig
		want string
	}{
		{
			name: "EqualsMatch",
			vars: map[string]any{"tier": "Gold"},
			cfg:  domain.ConditionConfig{Field: "tier", Operator: OpEquals, Value: "gold"},
			want: domain.BranchTrue,
		},
		{
			name: "EqualsMismatch",
			vars: map[string]any{"tier": "silver"},
			cfg:  domain.ConditionConfig{Field: "tier", Operator: OpEquals, Value: "gold"},
			want: domain.BranchFalse,
		},
		{
			name: "GreaterNumeric",
			vars: map[string]any{"age": "25"},
			cfg:  domain.ConditionConfig{Field: "age", Operator: OpGreater, Value: "18"},
			want: domain.BranchTrue,
		},
		{
			name: "GreaterNotGreater",
			vars: map[string]any{"age": 12},
			cfg:  domain.ConditionConfig{Field: "age", Operator: OpGreater, Value: "18"},
			want: domain.BranchFalse,
		},
		{
			name: "GreaterNonNumericIsFalse",
			vars: map[string]any{"age": "unknown"},
			cfg:  domain.ConditionConfig{Field: "age", Operator: OpGreater, Value: "18"},
			want: domain.BranchFalse,
		},
		{
			name: "LessNumeric",
			vars: map[string]any{"score": 3.5},
			cfg:  domain.ConditionConfig{Field: "score", Operator: OpLess, Value: "4"},
			want: domain.BranchTrue,
		},
		{
			name: "Contains",
			vars: map[string]any{"message": "I want a DEMO please"},
			cfg:  domain.ConditionConfig{Field: "message", Operator: OpContains, Value: "demo"},
			want: domain.BranchTrue,
		},
		{
			name: "MissingFieldRoutesDefault",
			vars: nil,
			cfg:  domain.ConditionConfig{Field: "age", Operator: OpGreater, Value: "18"},
			want: domain.BranchDefault,
		},
		{
			name: "UnknownOperatorRoutesDefault",
			vars: map[string]any{"age": "25"},
			cfg:  domain.ConditionConfig{Field: "age", Operator: "matches_regex", Value: ".*"},
			want: domain.BranchDefault,
		},
		{
			name: "EmptyConfigRoutesDefault",
			vars: map[string]any{"age": "25"},
			cfg:  domain.ConditionConfig{},
			want: domain.BranchDefault,
		},
		{
			name: "InterpolatedValueOperand",
			vars: map[string]any{"city": "Lisbon", "home": "Lisbon"},
			cfg:  domain.ConditionConfig{Field: "city", Operator: OpEquals, Value: "{{home}}"},
			want: domain.BranchTrue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Branch(tt.cfg, variables.New(tt.vars))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBranch_EmptyOperators(t *testing.T) {
	vars := variables.New(map[string]any{"name": "Ada", "blank": ""})

	assert.Equal(t, domain.BranchTrue,
		Branch(domain.ConditionConfig{Field: "missing", Operator: OpEmpty}, vars))
	assert.Equal(t, domain.BranchTrue,
		Branch(domain.ConditionConfig{Field: "blank", Operator: OpEmpty}, vars))
	assert.Equal(t, domain.BranchFalse,
		Branch(domain.ConditionConfig{Field: "name", Operator: OpEmpty}, vars))
	assert.Equal(t, domain.BranchTrue,
		Branch(domain.ConditionConfig{Field: "name", Operator: OpNotEmpty}, vars))
	assert.Equal(t, domain.BranchFalse,
		Branch(domain.ConditionConfig{Field: "missing", Operator: OpNotEmpty}, vars))
}

func TestBranch_Tags(t *testing.T) {
	tests := []struct {
		name string
		tags any
		want string
	}{
		{"StringSlice", []string{"vip", "newsletter"}, domain.BranchTrue},
		{"AnySlice", []any{"VIP"}, domain.BranchTrue},
		{"CommaString", "lead, vip ,trial", domain.BranchTrue},
		{"Absent", []string{"lead"}, domain.BranchFalse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := variables.New(map[string]any{"tags": tt.tags})
			got := Branch(domain.ConditionConfig{Operator: OpHasTag, Value: "vip"}, vars)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("DoesNotHaveTag", func(t *testing.T) {
		vars := variables.New(map[string]any{"tags": []string{"lead"}})
		got := Branch(domain.ConditionConfig{Operator: OpDoesNotHaveTag, Value: "vip"}, vars)
		assert.Equal(t, domain.BranchTrue, got)
	})

	t.Run("NoTagsVariable", func(t *testing.T) {
		got := Branch(domain.ConditionConfig{Operator: OpHasTag, Value: "vip"}, variables.New(nil))
		assert.Equal(t, domain.BranchFalse, got)
	})
}

func TestBranch_CustomConditionsFirst(t *testing.T) {
	vars := variables.New(map[string]any{"tier": "gold", "age": "25"})

	cfg := domain.ConditionConfig{
		Field:    "age",
		Operator: OpGreater,
		Value:    "18",
		Custom: []domain.CustomCondition{
			{Label: "vip", Field: "tier", Operator: OpEquals, Value: "gold"},
		},
	}
	// The custom condition matches, so its label wins over the primary true.
	assert.Equal(t, "vip", Branch(cfg, vars))

	// First matching custom wins, in declaration order.
	cfg.Custom = []domain.CustomCondition{
		{Label: "adult", Field: "age", Operator: OpGreater, Value: "18"},
		{Label: "vip", Field: "tier", Operator: OpEquals, Value: "gold"},
	}
	assert.Equal(t, "adult", Branch(cfg, vars))

	// Non-matching customs fall through to the primary comparison.
	cfg.Custom = []domain.CustomCondition{
		{Label: "vip", Field: "tier", Operator: OpEquals, Value: "platinum"},
	}
	assert.Equal(t, domain.BranchTrue, Branch(cfg, vars))
}
