// Package eval decides which outgoing branch a condition or milestone node
// follows: deterministic field comparisons for condition nodes, and goal
// verdict to edge mapping for milestone nodes.
package eval

import (
	"strconv"
	"strings"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/variables"
)

// Comparison operators supported by condition nodes.
const (
	OpEquals         = "equals"
	OpContains       = "contains"
	OpGreater        = "greater"
	OpLess           = "less"
	OpHasTag         = "has_tag"
	OpDoesNotHaveTag = "does_not_have_tag"
	OpEmpty          = "empty"
	OpNotEmpty       = "not_empty"
)

// tagsVariable is the session variable holding the contact's tag list.
const tagsVariable = "tags"

// Branch evaluates a condition node's configuration against the variable
// store and returns the matched branch id: a custom condition label, "true",
// "false", or "default" when nothing resolves. Missing fields are a non-match
// routed to the default branch, never an error, so evaluation is deterministic
// and referentially transparent.
func Branch(cfg domain.ConditionConfig, vars *variables.Store) string {
	for _, custom := range cfg.Custom {
		if matched, resolved := compare(vars, custom.Field, custom.Operator, custom.Value); resolved && matched {
			return custom.Label
		}
	}

	if cfg.Field == "" && cfg.Operator == "" {
		return domain.BranchDefault
	}

	matched, resolved := compare(vars, cfg.Field, cfg.Operator, cfg.Value)
	if !resolved {
		return domain.BranchDefault
	}
	if matched {
		return domain.BranchTrue
	}
	return domain.BranchFalse
}

// compare evaluates one field/operator/value comparison. Both operands pass
// through interpolation first. The second return value reports whether the
// comparison could be resolved at all; an unresolvable comparison (missing
// field, unknown operator) routes to the default branch.
func compare(vars *variables.Store, field, operator, literal string) (matched, resolved bool) {
	fieldName := strings.TrimSpace(vars.Interpolate(field))
	want := vars.Interpolate(literal)

	switch operator {
	case OpEmpty:
		raw, ok := vars.Get(fieldName)
		return !ok || variables.Stringify(raw) == "", true
	case OpNotEmpty:
		raw, ok := vars.Get(fieldName)
		return ok && variables.Stringify(raw) != "", true
	case OpHasTag:
		return hasTag(vars, want), true
	case OpDoesNotHaveTag:
		return !hasTag(vars, want), true
	}

	raw, ok := vars.Get(fieldName)
	if !ok {
		return false, false
	}
	got := variables.Stringify(raw)

	switch operator {
	case OpEquals:
		return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want)), true
	case OpContains:
		return strings.Contains(strings.ToLower(got), strings.ToLower(want)), true
	case OpGreater:
		a, b, numeric := parseNumbers(got, want)
		return numeric && a > b, true
	case OpLess:
		a, b, numeric := parseNumbers(got, want)
		return numeric && a < b, true
	default:
		return false, false
	}
}

func parseNumbers(a, b string) (float64, float64, bool) {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	return fa, fb, errA == nil && errB == nil
}

// hasTag checks membership of tag in the session's tag list. The tags
// variable may be a string slice, an any slice, or a comma-separated string.
func hasTag(vars *variables.Store, tag string) bool {
	raw, ok := vars.Get(tagsVariable)
	if !ok {
		return false
	}
	tag = strings.ToLower(strings.TrimSpace(tag))

	switch tv := raw.(type) {
	case []string:
		for _, t := range tv {
			if strings.ToLower(strings.TrimSpace(t)) == tag {
				return true
			}
		}
	case []any:
		for _, t := range tv {
			if strings.ToLower(strings.TrimSpace(variables.Stringify(t))) == tag {
				return true
			}
		}
	case string:
		for _, t := range strings.Split(tv, ",") {
			if strings.ToLower(strings.TrimSpace(t)) == tag {
				return true
			}
		}
	}
	return false
}
