// internal/planner/resolver.go
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mcp-tpn-planner/internal/conditions"
	"mcp-tpn-planner/internal/models"
	"mcp-tpn-planner/internal/patient"
)

// Resolver turns patient profiles into day-by-day dosing schedules. It holds
// no per-call state and is safe for concurrent use.
type Resolver struct {
	catalog *conditions.Catalog
	logger  zerolog.Logger
	now     func() time.Time
}

type Option func(*Resolver)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithClock overrides the clock used for Schedule.CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func NewResolver(cat *conditions.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: cat,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Catalog() *conditions.Catalog {
	return r.catalog
}

// Resolve runs baseline generation, condition merge and interpolation for
// one patient. Any failure aborts the whole schedule.
func (r *Resolver) Resolve(ctx context.Context, p patient.Profile, totalDays int) (*models.Schedule, error) {
	if totalDays < 1 {
		return nil, fmt.Errorf("%w: got %d", models.ErrInvalidDayCount, totalDays)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// the condition list is captured here; later edits by the caller are not seen
	p = p.Clone()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidProfile, err)
	}
	p.Variant, _ = patient.ParseVariant(string(p.Variant))

	log := r.logger.With().Str("patient", p.Name).Str("variant", string(p.Variant)).Logger()

	active := make([]*models.Condition, 0, len(p.Conditions))
	var warnings []models.Warning
	for _, id := range p.ActiveConditions() {
		cond, err := r.catalog.Lookup(id)
		if err != nil {
			return nil, err
		}
		if cond.Population != "" && cond.Population != models.PopulationAny && cond.Population != p.Variant.Population() {
			warnings = append(warnings, models.Warning{
				Code:       models.WarnPopulationMismatch,
				Conditions: []string{cond.ID},
				Message:    fmt.Sprintf("%s is written for %s patients, profile is %s", cond.Name, cond.Population, p.Variant),
			})
		}
		active = append(active, cond)
	}

	baseline, err := patient.Baseline(p)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("entries", baseline.Len()).Msg("baseline built")

	merged, err := ApplyConditions(baseline, active, r.catalog)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, merged.Warnings...)
	log.Debug().Strs("applied", merged.Applied).Int("entries", merged.Plan.Len()).Msg("conditions merged")

	ref := ReferenceValue(p)
	sched := &models.Schedule{
		Patient:   summarize(p, ref, merged.Applied),
		TotalDays: totalDays,
		Notes:     merged.Notes,
		Warnings:  warnings,
		CreatedAt: r.now().UTC(),
	}
	merged.Plan.Each(func(category, nutrient string, plan models.NutrientPlan) {
		sched.Rows = append(sched.Rows, buildRow(category, nutrient, plan, totalDays, ref,
			merged.Annotations[entryKey(category, nutrient)]))
	})

	for _, w := range warnings {
		log.Warn().Str("code", string(w.Code)).Strs("conditions", w.Conditions).
			Str("category", w.Category).Str("nutrient", w.Nutrient).Msg(w.Message)
	}
	log.Debug().Int("rows", len(sched.Rows)).Int("days", totalDays).Float64("reference_value", ref).Msg("schedule resolved")
	return sched, nil
}

func buildRow(category, nutrient string, plan models.NutrientPlan, totalDays int, ref float64, annotations []string) models.Row {
	doseUnit := plan.DoseUnit()
	perKg := IsPerKilogram(doseUnit)
	unit := doseUnit
	if perKg {
		unit = ScaledUnit(doseUnit)
	}

	row := models.Row{
		Category:    category,
		Nutrient:    nutrient,
		Unit:        unit,
		DoseUnit:    doseUnit,
		Cells:       make([]models.Cell, totalDays),
		Guidelines:  appendUnique(nil, plan.Guidelines...),
		Annotations: annotations,
	}
	for i, v := range DailyValues(plan, totalDays) {
		if v != nil && perKg {
			v = round3p(*v * ref)
		}
		row.Cells[i] = models.Cell{Day: i + 1, Value: v, Unit: unit}
	}
	return row
}

func summarize(p patient.Profile, ref float64, applied []string) models.PatientSummary {
	return models.PatientSummary{
		Name:                   p.Name,
		Variant:                string(p.Variant),
		Age:                    p.Age,
		AgeUnit:                p.Variant.AgeUnit(),
		HeightCM:               p.HeightCM,
		WeightKG:               p.WeightKG,
		Sex:                    string(p.Sex),
		IdealBodyWeight:        models.Round3(p.IdealBodyWeight()),
		BodyMassIndex:          models.Round3(p.BodyMassIndex()),
		PercentIdealBodyWeight: models.Round3(p.PercentIdealBodyWeight()),
		ReferenceValue:         models.Round3(ref),
		Conditions:             applied,
	}
}
