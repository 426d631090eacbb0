// internal/planner/merge.go
package planner

import (
	"fmt"
	"strings"

	"mcp-tpn-planner/internal/conditions"
	"mcp-tpn-planner/internal/models"
)

// MergeResult is the final plan: baseline plus every active condition.
type MergeResult struct {
	Plan     *models.PlanTable
	Notes    []string
	Warnings []models.Warning
	// Annotations holds restriction flags keyed by "category/nutrient".
	Annotations map[string][]string
	// Applied lists condition ids in the order they were applied.
	Applied []string

	// notes added by note operations, keyed like Annotations; a later
	// replace of the entry keeps them
	noted map[string][]string
}

func entryKey(category, nutrient string) string {
	return category + "/" + nutrient
}

// OrderByPrecedence returns active conditions in application order. The
// caller's order is kept except that every active ancestor of a condition
// is moved in front of it, so a refinement is always applied after (and
// wins over) the conditions it refines. Duplicate ids are dropped.
func OrderByPrecedence(active []*models.Condition, cat *conditions.Catalog) []*models.Condition {
	var unique []*models.Condition
	seen := make(map[string]bool, len(active))
	for _, c := range active {
		if c == nil || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		unique = append(unique, c)
	}

	out := make([]*models.Condition, 0, len(unique))
	emitted := make(map[string]bool, len(unique))
	var visit func(c *models.Condition)
	visit = func(c *models.Condition) {
		if emitted[c.ID] {
			return
		}
		emitted[c.ID] = true
		for _, other := range unique {
			if other.ID != c.ID && cat.IsRefinementOf(c.ID, other.ID) {
				visit(other)
			}
		}
		out = append(out, c)
	}
	for _, c := range unique {
		visit(c)
	}
	return out
}

// ApplyConditions merges the active conditions into a copy of baseline.
// The baseline is never modified. Conditions are applied in
// OrderByPrecedence order; among unrelated conditions overriding the same
// nutrient the last one applied wins, and a warning names them.
func ApplyConditions(baseline *models.PlanTable, active []*models.Condition, cat *conditions.Catalog) (*MergeResult, error) {
	ordered := OrderByPrecedence(active, cat)
	res := &MergeResult{
		Plan:        baseline.Clone(),
		Annotations: make(map[string][]string),
		noted:       make(map[string][]string),
		Warnings:    ambiguityWarnings(ordered, cat),
	}

	for _, cond := range ordered {
		res.Applied = append(res.Applied, cond.ID)
		for _, o := range cond.Overrides {
			if err := res.apply(cond, o); err != nil {
				return nil, fmt.Errorf("condition %s: %s/%s %s: %w", cond.ID, o.Category, o.Nutrient, o.Op, err)
			}
		}
	}

	if err := res.Plan.Validate(); err != nil {
		return nil, err
	}
	res.Notes = CollectNotes(res.Plan)
	return res, nil
}

func (m *MergeResult) apply(cond *models.Condition, o models.Override) error {
	existing, found := m.Plan.Get(o.Category, o.Nutrient)
	key := entryKey(o.Category, o.Nutrient)

	switch o.Op {
	case models.OpReplace:
		var next models.NutrientPlan
		if o.Plan == nil {
			next = models.NutrientPlan{
				Unit:          existing.Unit,
				ReferenceUnit: existing.ReferenceUnit,
				Notes:         []string{"Withheld: " + cond.Name},
			}
		} else {
			next = o.Plan.Clone()
		}
		next.Notes = append(next.Notes, m.noted[key]...)
		m.Plan.Set(o.Category, o.Nutrient, next)

	case models.OpAddFixed:
		if o.Plan == nil {
			return nil
		}
		if !found {
			m.Plan.Set(o.Category, o.Nutrient, o.Plan.Clone())
			return nil
		}
		merged, err := addFixed(existing, *o.Plan)
		if err != nil {
			return err
		}
		m.Plan.Set(o.Category, o.Nutrient, merged)

	case models.OpRestrict:
		if !found {
			m.Plan.Set(o.Category, o.Nutrient, models.NutrientPlan{})
		}
		label := "caution"
		if o.Flag != 0 {
			label = "restrict"
		}
		m.Annotations[key] = append(m.Annotations[key], fmt.Sprintf("%s (%s)", label, cond.Name))

	case models.OpNote:
		if o.Plan == nil || len(o.Plan.Notes) == 0 {
			return nil
		}
		if !found {
			existing = models.NutrientPlan{Unit: o.Plan.Unit, ReferenceUnit: o.Plan.ReferenceUnit}
		} else {
			existing = existing.Clone()
		}
		existing.Notes = append(existing.Notes, o.Plan.Notes...)
		m.noted[key] = append(m.noted[key], o.Plan.Notes...)
		m.Plan.Set(o.Category, o.Nutrient, existing)

	default:
		return fmt.Errorf("unsupported operation %q", o.Op)
	}
	return nil
}

// addFixed adds a supplement's ranges bound-wise on top of base.
func addFixed(base, add models.NutrientPlan) (models.NutrientPlan, error) {
	if !base.IsNoteOnly() && !add.IsNoteOnly() && !strings.EqualFold(base.DoseUnit(), add.DoseUnit()) {
		return models.NutrientPlan{}, fmt.Errorf("%w: cannot add %s to %s", models.ErrUnitMismatch, add.DoseUnit(), base.DoseUnit())
	}

	out := base.Clone()
	if base.IsNoteOnly() {
		out.Unit, out.ReferenceUnit = add.Unit, add.ReferenceUnit
	}
	supplement := add.EffectiveGoal()
	if len(base.DailyIntakeRange) > 0 {
		for i, day := range out.DailyIntakeRange {
			out.DailyIntakeRange[i] = models.AddRange(day, supplement)
		}
	} else {
		out.InitialRange = models.AddRange(base.InitialRange, add.InitialRange)
		if len(add.InitialRange) == 0 {
			out.InitialRange = models.AddRange(base.InitialRange, supplement)
		}
		out.GoalRange = models.AddRange(base.EffectiveGoal(), supplement)
	}
	if add.DaysToGoal > out.DaysToGoal {
		out.DaysToGoal = add.DaysToGoal
	}
	out.Guidelines = appendUnique(out.Guidelines, add.Guidelines...)
	out.Notes = append(out.Notes, add.Notes...)
	return out, out.Validate()
}

// ambiguityWarnings flags nutrients that two unrelated conditions both
// change, where at least one of them replaces it outright.
func ambiguityWarnings(ordered []*models.Condition, cat *conditions.Catalog) []models.Warning {
	type target struct{ category, nutrient string }
	var keys []target
	byKey := make(map[target][]*models.Condition)
	replaces := make(map[target]map[string]bool)

	for _, c := range ordered {
		for _, o := range c.Overrides {
			if o.Op != models.OpReplace && o.Op != models.OpAddFixed {
				continue
			}
			k := target{o.Category, o.Nutrient}
			if _, ok := byKey[k]; !ok {
				keys = append(keys, k)
				replaces[k] = make(map[string]bool)
			}
			list := byKey[k]
			if len(list) == 0 || list[len(list)-1].ID != c.ID {
				byKey[k] = append(list, c)
			}
			if o.Op == models.OpReplace {
				replaces[k][c.ID] = true
			}
		}
	}

	var warnings []models.Warning
	for _, k := range keys {
		list := byKey[k]
		var involved []string
		inv := make(map[string]bool)
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				a, b := list[i], list[j]
				if cat.Related(a.ID, b.ID) {
					continue
				}
				if !replaces[k][a.ID] && !replaces[k][b.ID] {
					continue
				}
				for _, id := range []string{a.ID, b.ID} {
					if !inv[id] {
						inv[id] = true
						involved = append(involved, id)
					}
				}
			}
		}
		if len(involved) == 0 {
			continue
		}
		// report in application order
		var ids []string
		for _, c := range list {
			if inv[c.ID] {
				ids = append(ids, c.ID)
			}
		}
		warnings = append(warnings, models.Warning{
			Code:       models.WarnAmbiguousPrecedence,
			Category:   k.category,
			Nutrient:   k.nutrient,
			Conditions: ids,
			Message: fmt.Sprintf("unrelated conditions %s all override %s/%s; %s was applied last and wins",
				strings.Join(ids, ", "), k.category, k.nutrient, ids[len(ids)-1]),
		})
	}
	return warnings
}

// CollectNotes flattens every plan note into "category - nutrient: note"
// lines in table order.
func CollectNotes(t *models.PlanTable) []string {
	var notes []string
	t.Each(func(category, nutrient string, plan models.NutrientPlan) {
		for _, n := range plan.Notes {
			notes = append(notes, fmt.Sprintf("%s - %s: %s", category, nutrient, n))
		}
	})
	return notes
}

func appendUnique(dst []string, src ...string) []string {
	for _, s := range src {
		dup := false
		for _, d := range dst {
			if d == s {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, s)
		}
	}
	return dst
}
