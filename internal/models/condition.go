// internal/models/condition.go
package models

// Operation is how a condition modifies one baseline entry.
type Operation string

const (
	OpReplace  Operation = "replace"
	OpAddFixed Operation = "add_fixed"
	OpRestrict Operation = "restrict"
	OpNote     Operation = "note"
)

// Population limits which patients a condition is meant for.
type Population string

const (
	PopulationAny       Population = "any"
	PopulationAdult     Population = "adult"
	PopulationPediatric Population = "pediatric"
)

// Override is a single (category, nutrient, operation) entry of a condition.
// Plan is nil for restrict, and for a replace that withholds the nutrient.
// Flag is only meaningful for restrict: non-zero restricts, zero cautions.
type Override struct {
	Category string        `json:"category"`
	Nutrient string        `json:"nutrient"`
	Op       Operation     `json:"op"`
	Plan     *NutrientPlan `json:"plan,omitempty"`
	Flag     float64       `json:"flag,omitempty"`
}

// Condition is an immutable clinical rule template. Parents lists the ids of
// the conditions this one refines; a refinement always wins over its parents.
type Condition struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Population  Population `json:"population"`
	Parents     []string   `json:"parents,omitempty"`
	Overrides   []Override `json:"overrides,omitempty"`
	Guidelines  []string   `json:"guidelines,omitempty"`
}

// Targets reports whether c has a range-changing override on (category, nutrient).
func (c *Condition) Targets(category, nutrient string) bool {
	for _, o := range c.Overrides {
		if o.Category == category && o.Nutrient == nutrient && (o.Op == OpReplace || o.Op == OpAddFixed) {
			return true
		}
	}
	return false
}
