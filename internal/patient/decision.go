// internal/patient/decision.go
package patient

import (
	"fmt"
	"math"

	"mcp-tpn-planner/internal/models"
)

// Predicate is a named test over a profile. The name is the comparator as
// written in the guideline, e.g. "age <= 6".
type Predicate struct {
	Name string
	Test func(Profile) bool
}

// Always matches every profile.
var Always = Predicate{Name: "always", Test: func(Profile) bool { return true }}

func AgeAtMost(v float64) Predicate {
	return Predicate{Name: fmt.Sprintf("age <= %g", v), Test: func(p Profile) bool { return p.Age <= v }}
}

func AgeBelow(v float64) Predicate {
	return Predicate{Name: fmt.Sprintf("age < %g", v), Test: func(p Profile) bool { return p.Age < v }}
}

func AgeAbove(v float64) Predicate {
	return Predicate{Name: fmt.Sprintf("age > %g", v), Test: func(p Profile) bool { return p.Age > v }}
}

func AgeAtLeast(v float64) Predicate {
	return Predicate{Name: fmt.Sprintf("age >= %g", v), Test: func(p Profile) bool { return p.Age >= v }}
}

func WeightAtMost(v float64) Predicate {
	return Predicate{Name: fmt.Sprintf("weight <= %g", v), Test: func(p Profile) bool { return p.WeightKG <= v }}
}

func WeightBelow(v float64) Predicate {
	return Predicate{Name: fmt.Sprintf("weight < %g", v), Test: func(p Profile) bool { return p.WeightKG < v }}
}

func WeightAbove(v float64) Predicate {
	return Predicate{Name: fmt.Sprintf("weight > %g", v), Test: func(p Profile) bool { return p.WeightKG > v }}
}

// WeightBetween is lo <= weight <= hi, used for middle weight bands.
func WeightBetween(lo, hi float64) Predicate {
	return Predicate{
		Name: fmt.Sprintf("%g <= weight <= %g", lo, hi),
		Test: func(p Profile) bool { return p.WeightKG >= lo && p.WeightKG <= hi },
	}
}

// Rule pairs a predicate with the plan selected when it matches. Derive,
// when set, adjusts the selected plan from the profile (e.g. a ramp length
// that depends on age).
type Rule struct {
	When   Predicate
	Plan   models.NutrientPlan
	Derive func(Profile, models.NutrientPlan) models.NutrientPlan
}

// NutrientRules is the ordered rule list for one nutrient; the first
// matching rule wins.
type NutrientRules struct {
	Category string
	Nutrient string
	Rules    []Rule
}

// Select returns the first matching rule's plan.
func (n NutrientRules) Select(p Profile) (models.NutrientPlan, Predicate, bool) {
	for _, r := range n.Rules {
		if !r.When.Test(p) {
			continue
		}
		plan := r.Plan.Clone()
		if r.Derive != nil {
			plan = r.Derive(p, plan)
		}
		return plan, r.When, true
	}
	return models.NutrientPlan{}, Predicate{}, false
}

// DecisionTable is a variant's complete baseline rule set. Covers bounds
// the ages and weights the table was written for.
type DecisionTable struct {
	Variant Variant
	Covers  Predicate
	Entries []NutrientRules
}

// Evaluate builds the baseline plan table for p. Any entry without a
// matching rule fails the whole evaluation with ErrMissingVariantRule.
func (d DecisionTable) Evaluate(p Profile) (*models.PlanTable, error) {
	if math.IsNaN(p.Age) || math.IsNaN(p.WeightKG) || !d.Covers.Test(p) {
		return nil, fmt.Errorf("%w: %s table covers %s, got age=%g %s weight=%g kg",
			models.ErrMissingVariantRule, d.Variant, d.Covers.Name, p.Age, d.Variant.AgeUnit(), p.WeightKG)
	}

	table := models.NewPlanTable()
	for _, entry := range d.Entries {
		plan, _, ok := entry.Select(p)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s/%s at age=%g weight=%g",
				models.ErrMissingVariantRule, d.Variant, entry.Category, entry.Nutrient, p.Age, p.WeightKG)
		}
		if err := plan.Validate(); err != nil {
			return nil, fmt.Errorf("%s %s/%s: %w", d.Variant, entry.Category, entry.Nutrient, err)
		}
		table.Set(entry.Category, entry.Nutrient, plan)
	}
	return table, nil
}

// Branches lists every (nutrient, predicate) pair in the table, for audits.
func (d DecisionTable) Branches() []string {
	var out []string
	for _, e := range d.Entries {
		for _, r := range e.Rules {
			out = append(out, e.Category+"/"+e.Nutrient+": "+r.When.Name)
		}
	}
	return out
}

var tables = map[Variant]DecisionTable{
	Adult:         adultTable,
	Child:         childTable,
	TermInfant:    termInfantTable,
	PretermInfant: pretermInfantTable,
}

// TableFor returns the decision table of a variant.
func TableFor(v Variant) (DecisionTable, error) {
	t, ok := tables[v]
	if !ok {
		return DecisionTable{}, fmt.Errorf("%w: %q", models.ErrUnknownVariant, v)
	}
	return t, nil
}

// Baseline returns a fresh baseline plan table for the profile's variant.
func Baseline(p Profile) (*models.PlanTable, error) {
	t, err := TableFor(p.Variant)
	if err != nil {
		return nil, err
	}
	return t.Evaluate(p)
}

// helpers for writing the guideline tables

func fixed(category, nutrient string, plan models.NutrientPlan) NutrientRules {
	return NutrientRules{Category: category, Nutrient: nutrient, Rules: []Rule{{When: Always, Plan: plan}}}
}

func banded(category, nutrient string, rules ...Rule) NutrientRules {
	return NutrientRules{Category: category, Nutrient: nutrient, Rules: rules}
}

func when(pred Predicate, plan models.NutrientPlan) Rule {
	return Rule{When: pred, Plan: plan}
}

// ramp builds a plan moving from initial to goal over days.
func ramp(unit, ref string, initial, goal models.Range, days int, guidelines ...string) models.NutrientPlan {
	return models.NutrientPlan{
		Unit:          unit,
		ReferenceUnit: ref,
		InitialRange:  initial,
		GoalRange:     goal,
		DaysToGoal:    days,
		Guidelines:    guidelines,
	}
}

// steady builds a plan that is at its range from day one.
func steady(unit, ref string, r models.Range, guidelines ...string) models.NutrientPlan {
	return ramp(unit, ref, r, r.Clone(), 0, guidelines...)
}

// daily builds a plan from an explicit per-day schedule.
func daily(unit, ref string, days []models.Range, guidelines ...string) models.NutrientPlan {
	return models.NutrientPlan{
		Unit:             unit,
		ReferenceUnit:    ref,
		DailyIntakeRange: days,
		Guidelines:       guidelines,
	}
}

func noteOnly(unit, ref, note string, guidelines ...string) models.NutrientPlan {
	return models.NutrientPlan{
		Unit:          unit,
		ReferenceUnit: ref,
		Guidelines:    guidelines,
		Notes:         []string{note},
	}
}

func withNote(plan models.NutrientPlan, note string) models.NutrientPlan {
	plan.Notes = append(plan.Notes, note)
	return plan
}

func rng(bounds ...float64) models.Range {
	return models.Range(bounds)
}

// covering bounds a table to minAge <= age < maxAge with a non-negative weight.
func covering(v Variant, minAge, maxAge float64) Predicate {
	name := fmt.Sprintf("%g <= age < %g %s, weight >= 0", minAge, maxAge, v.AgeUnit())
	if math.IsInf(maxAge, 1) {
		name = fmt.Sprintf("age >= %g %s, weight >= 0", minAge, v.AgeUnit())
	}
	return Predicate{
		Name: name,
		Test: func(p Profile) bool { return p.Age >= minAge && p.Age < maxAge && p.WeightKG >= 0 },
	}
}
