// internal/models/nutrient.go
package models

import (
	"fmt"
	"math"
)

// Range is an ordered dosing range. A nil Range means "no target".
// A single-element Range is a point value.
type Range []float64

// Clone returns an independent copy of r.
func (r Range) Clone() Range {
	if r == nil {
		return nil
	}
	out := make(Range, len(r))
	copy(out, r)
	return out
}

// Validate rejects ranges whose lower bound exceeds the upper bound.
func (r Range) Validate() error {
	if len(r) > 2 {
		return fmt.Errorf("%w: %v has %d bounds", ErrInvalidRange, []float64(r), len(r))
	}
	for _, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v is not finite", ErrInvalidRange, []float64(r))
		}
	}
	if len(r) == 2 && r[0] > r[1] {
		return fmt.Errorf("%w: lower %g > upper %g", ErrInvalidRange, r[0], r[1])
	}
	return nil
}

// Midpoint returns the representative value of r: the single value for a
// point range, otherwise the mean rounded to 3 decimals. ok is false when r
// has no bounds.
func Midpoint(r Range) (value float64, ok bool) {
	switch len(r) {
	case 0:
		return 0, false
	case 1:
		return r[0], true
	}
	var sum float64
	for _, v := range r {
		if math.IsNaN(v) {
			return 0, false
		}
		sum += v
	}
	return Round3(sum / float64(len(r))), true
}

// Round3 rounds v to 3 decimal places, half away from zero.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// NutrientPlan is the dosing specification for one nutrient.
type NutrientPlan struct {
	Unit             string   `json:"unit" yaml:"unit"`
	ReferenceUnit    string   `json:"reference_unit" yaml:"reference_unit"`
	InitialRange     Range    `json:"initial_range,omitempty" yaml:"initial_range,omitempty"`
	GoalRange        Range    `json:"goal_range,omitempty" yaml:"goal_range,omitempty"`
	DaysToGoal       int      `json:"days_to_goal" yaml:"days_to_goal"`
	DailyIntakeRange []Range  `json:"daily_intake_range,omitempty" yaml:"daily_intake_range,omitempty"`
	Guidelines       []string `json:"guidelines,omitempty" yaml:"guidelines,omitempty"`
	Notes            []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// DoseUnit joins the measurement and reference units, e.g. "g/kg" or
// "mEq/day". A plan without a reference unit reports the bare unit.
func (p NutrientPlan) DoseUnit() string {
	if p.ReferenceUnit == "" {
		return p.Unit
	}
	return p.Unit + "/" + p.ReferenceUnit
}

// EffectiveGoal returns GoalRange, falling back to InitialRange.
func (p NutrientPlan) EffectiveGoal() Range {
	if len(p.GoalRange) > 0 {
		return p.GoalRange
	}
	return p.InitialRange
}

// IsNoteOnly reports whether the plan carries no numeric target at all.
func (p NutrientPlan) IsNoteOnly() bool {
	return len(p.InitialRange) == 0 && len(p.GoalRange) == 0 && len(p.DailyIntakeRange) == 0
}

// Validate checks every range of the plan.
func (p NutrientPlan) Validate() error {
	if p.DaysToGoal < 0 {
		return fmt.Errorf("%w: days to goal %d is negative", ErrInvalidRange, p.DaysToGoal)
	}
	if err := p.InitialRange.Validate(); err != nil {
		return fmt.Errorf("initial range: %w", err)
	}
	if err := p.GoalRange.Validate(); err != nil {
		return fmt.Errorf("goal range: %w", err)
	}
	for i, r := range p.DailyIntakeRange {
		if len(r) == 0 {
			return fmt.Errorf("%w: daily intake day %d is empty", ErrInvalidRange, i+1)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("daily intake day %d: %w", i+1, err)
		}
	}
	return nil
}

// Clone returns a deep copy of p.
func (p NutrientPlan) Clone() NutrientPlan {
	out := p
	out.InitialRange = p.InitialRange.Clone()
	out.GoalRange = p.GoalRange.Clone()
	if p.DailyIntakeRange != nil {
		out.DailyIntakeRange = make([]Range, len(p.DailyIntakeRange))
		for i, r := range p.DailyIntakeRange {
			out.DailyIntakeRange[i] = r.Clone()
		}
	}
	if p.Guidelines != nil {
		out.Guidelines = append([]string(nil), p.Guidelines...)
	}
	if p.Notes != nil {
		out.Notes = append([]string(nil), p.Notes...)
	}
	return out
}

// AddRange adds two ranges bound-wise. A point range is widened to [v, v]
// when the other side has two bounds. Either side may be nil.
func AddRange(a, b Range) Range {
	if len(a) == 0 {
		return b.Clone()
	}
	if len(b) == 0 {
		return a.Clone()
	}
	if len(a) == 1 && len(b) == 1 {
		return Range{Round3(a[0] + b[0])}
	}
	a, b = widen(a), widen(b)
	return Range{Round3(a[0] + b[0]), Round3(a[1] + b[1])}
}

func widen(r Range) Range {
	if len(r) == 1 {
		return Range{r[0], r[0]}
	}
	return r
}
