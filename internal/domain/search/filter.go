package search

import "fmt"

// MaxConditions is the maximum number of conditions in a filter.
const MaxConditions = 32

// Op is a filter predicate operator. Equality is the only supported
// predicate; anything else is rejected at filter construction, never
// silently ignored.
type Op string

// OpEq matches entries whose field equals the condition value exactly.
const OpEq Op = "eq"

// Condition is a single metadata predicate.
type Condition struct {
	key   string
	op    Op
	value string
}

// NewCondition creates a raw condition. Predicate support is checked by
// NewFilter so that unsupported operators surface as one validation error.
func NewCondition(key string, op Op, value string) Condition {
	return Condition{key: key, op: op, value: value}
}

// Eq is shorthand for an equality condition.
func Eq(key, value string) Condition {
	return NewCondition(key, OpEq, value)
}

// Key returns the metadata field name.
func (c Condition) Key() string { return c.key }

// Op returns the predicate operator.
func (c Condition) Op() Op { return c.op }

// Value returns the comparison value.
func (c Condition) Value() string { return c.value }

// Filter narrows the candidate set before ranking. All conditions must
// match (AND semantics).
type Filter struct {
	conditions []Condition
}

// NewFilter validates and creates a Filter.
func NewFilter(conditions ...Condition) (Filter, error) {
	if len(conditions) > MaxConditions {
		return Filter{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	for _, c := range conditions {
		if c.key == "" {
			return Filter{}, fmt.Errorf("filter key is required")
		}
		if c.op != OpEq {
			return Filter{}, fmt.Errorf("unsupported filter predicate %q for key %q", c.op, c.key)
		}
	}
	return Filter{conditions: conditions}, nil
}

// Conditions returns the filter conditions.
func (f Filter) Conditions() []Condition { return f.conditions }

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool { return len(f.conditions) == 0 }

// Matches reports whether an entry's fields satisfy every condition.
func (f Filter) Matches(fields map[string]string) bool {
	for _, c := range f.conditions {
		v, ok := fields[c.key]
		if !ok || v != c.value {
			return false
		}
	}
	return true
}
