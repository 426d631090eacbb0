// internal/planner/interpolate.go
package planner

import "mcp-tpn-planner/internal/models"

// Interpolate linearly moves from start to end over days points, rounding
// each point to 3 decimals on its own. A missing endpoint holds the other
// one constant; both missing yields days nil values. For days <= 1 the
// single value is end.
func Interpolate(start, end *float64, days int) []*float64 {
	if start == nil && end == nil {
		if days < 0 {
			days = 0
		}
		return make([]*float64, days)
	}
	if days <= 1 {
		if end == nil {
			return []*float64{nil}
		}
		return []*float64{round3p(*end)}
	}
	if start == nil {
		return constant(*end, days)
	}
	if end == nil {
		return constant(*start, days)
	}
	out := make([]*float64, days)
	step := (*end - *start) / float64(days-1)
	for i := range out {
		out[i] = round3p(*start + float64(i)*step)
	}
	return out
}

func constant(v float64, days int) []*float64 {
	out := make([]*float64, days)
	for i := range out {
		out[i] = round3p(v)
	}
	return out
}

func round3p(v float64) *float64 {
	r := models.Round3(v)
	return &r
}

func midpointPtr(r models.Range) *float64 {
	v, ok := models.Midpoint(r)
	if !ok {
		return nil
	}
	return &v
}

// DailyValues expands a plan into totalDays unscaled values.
//
// An explicit daily intake schedule wins: each day takes the midpoint of its
// own range and the last defined day repeats. Otherwise the plan ramps from
// the initial to the goal midpoint over DaysToGoal+1 days and then holds the
// goal; DaysToGoal of 0 is at goal from day one.
func DailyValues(plan models.NutrientPlan, totalDays int) []*float64 {
	out := make([]*float64, totalDays)
	if n := len(plan.DailyIntakeRange); n > 0 {
		for i := range out {
			idx := i
			if idx >= n {
				idx = n - 1
			}
			out[i] = midpointPtr(plan.DailyIntakeRange[idx])
		}
		return out
	}

	start := midpointPtr(plan.InitialRange)
	end := midpointPtr(plan.EffectiveGoal())
	ramp := Interpolate(start, end, plan.DaysToGoal+1)
	if len(ramp) == 0 {
		return out
	}
	for i := range out {
		if i < len(ramp) {
			out[i] = ramp[i]
		} else {
			out[i] = ramp[len(ramp)-1]
		}
	}
	return out
}
