package planner

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"mcp-tpn-planner/internal/conditions"
	"mcp-tpn-planner/internal/models"
	"mcp-tpn-planner/internal/patient"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return NewResolver(defaultCatalog(t), WithClock(func() time.Time { return fixed }))
}

func adultProfile(conds ...string) patient.Profile {
	return patient.NewProfile("Test Adult", patient.Adult, 45, 170, 70, patient.Male, conds...)
}

func mustRow(t *testing.T, s *models.Schedule, category, nutrient string) *models.Row {
	t.Helper()
	row, ok := s.Row(category, nutrient)
	if !ok {
		t.Fatalf("no row %s/%s", category, nutrient)
	}
	return row
}

func TestResolve_AdultBaseline(t *testing.T) {
	r := newResolver(t)
	p := adultProfile()
	sched, err := r.Resolve(context.Background(), p, 7)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	ref := ReferenceValue(p)
	want := models.Round3(1.15 * ref)
	row := mustRow(t, sched, "macro", "protein_amino_acids")
	if row.Unit != "g" || row.DoseUnit != "g/kg" {
		t.Errorf("units = %q / %q, want g / g/kg", row.Unit, row.DoseUnit)
	}
	if len(row.Cells) != 7 {
		t.Fatalf("got %d cells, want 7", len(row.Cells))
	}
	for _, c := range row.Cells {
		if c.Value == nil || *c.Value != want {
			t.Errorf("day %d = %v, want %v", c.Day, c.Value, want)
		}
		if c.Unit != "g" {
			t.Errorf("day %d unit = %q", c.Day, c.Unit)
		}
	}

	if sched.TotalDays != 7 || !sched.CreatedAt.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected header: %+v", sched)
	}
	if sched.Patient.ReferenceValue != models.Round3(ref) || sched.Patient.AgeUnit != "years" {
		t.Errorf("unexpected summary: %+v", sched.Patient)
	}
	if len(sched.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", sched.Warnings)
	}
}

func TestResolve_NoteOnlyRowKept(t *testing.T) {
	sched, err := newResolver(t).Resolve(context.Background(), adultProfile(), 3)
	if err != nil {
		t.Fatal(err)
	}
	row := mustRow(t, sched, "electrolyte", "acetate")
	for _, c := range row.Cells {
		if c.Value != nil {
			t.Errorf("acetate day %d = %v, want nil", c.Day, *c.Value)
		}
	}
}

func TestResolve_AbsoluteUnitNotScaled(t *testing.T) {
	sched, err := newResolver(t).Resolve(context.Background(), adultProfile(), 2)
	if err != nil {
		t.Fatal(err)
	}
	row := mustRow(t, sched, "trace_elements", "zinc")
	if row.Unit != "mg/day" {
		t.Errorf("zinc unit = %q", row.Unit)
	}
	for _, c := range row.Cells {
		if c.Value == nil || *c.Value != 4 {
			t.Errorf("zinc day %d = %v, want 4", c.Day, c.Value)
		}
	}
}

func TestResolve_OpenAbdomenAddsToBaseline(t *testing.T) {
	p := adultProfile(conditions.OpenAbdomen)
	sched, err := newResolver(t).Resolve(context.Background(), p, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := models.Round3(1.45 * ReferenceValue(p))
	row := mustRow(t, sched, "macro", "protein_amino_acids")
	for _, c := range row.Cells {
		if c.Value == nil || *c.Value != want {
			t.Errorf("day %d = %v, want %v", c.Day, c.Value, want)
		}
	}
	if len(sched.Patient.Conditions) != 1 || sched.Patient.Conditions[0] != conditions.OpenAbdomen {
		t.Errorf("applied = %v", sched.Patient.Conditions)
	}
}

func TestResolve_HeartFailureAnnotations(t *testing.T) {
	sched, err := newResolver(t).Resolve(context.Background(), adultProfile(conditions.HeartFailure), 2)
	if err != nil {
		t.Fatal(err)
	}
	sodium := mustRow(t, sched, "electrolyte", "sodium")
	if len(sodium.Annotations) != 1 || sodium.Annotations[0] != "caution (Heart Failure)" {
		t.Errorf("sodium annotations = %v", sodium.Annotations)
	}
	potassium := mustRow(t, sched, "electrolyte", "potassium")
	if potassium.Cells[0].Value != nil {
		t.Errorf("potassium should be withheld, got %v", *potassium.Cells[0].Value)
	}
}

func TestResolve_DeactivatedConditionIgnored(t *testing.T) {
	p := adultProfile(conditions.TraumaticBrainInjury)
	p.Conditions = append(p.Conditions, patient.ConditionToggle{ID: conditions.TraumaticBrainInjury, Active: false})
	sched, err := newResolver(t).Resolve(context.Background(), p, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sched.Patient.Conditions) != 0 {
		t.Errorf("applied = %v, want none", sched.Patient.Conditions)
	}
}

func TestResolve_PopulationMismatchWarning(t *testing.T) {
	p := patient.NewProfile("Child", patient.Child, 8, 128, 26, patient.Female, conditions.Burns)
	sched, err := newResolver(t).Resolve(context.Background(), p, 2)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, w := range sched.Warnings {
		if w.Code == models.WarnPopulationMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("expected population mismatch warning, got %+v", sched.Warnings)
	}
}

func TestResolve_ChildCriticallyIllScalesPerMinute(t *testing.T) {
	p := patient.NewProfile("Child", patient.Child, 8, 0, 25, patient.Male, conditions.ChildrenCriticallyIll)
	sched, err := newResolver(t).Resolve(context.Background(), p, 1)
	if err != nil {
		t.Fatal(err)
	}
	row := mustRow(t, sched, "macro", "glucose")
	if row.DoseUnit != "mg/kg/min" || row.Unit != "mg/min" {
		t.Errorf("units = %q -> %q", row.DoseUnit, row.Unit)
	}
	if v := row.Cells[0].Value; v == nil || *v != 62.5 {
		t.Errorf("glucose = %v, want 62.5", v)
	}
}

func TestResolve_Errors(t *testing.T) {
	r := newResolver(t)
	tests := []struct {
		name string
		p    patient.Profile
		days int
		want error
	}{
		{"zero days", adultProfile(), 0, models.ErrInvalidDayCount},
		{"unknown condition", adultProfile("scurvy"), 3, models.ErrUnknownCondition},
		{"adult table does not cover children", patient.NewProfile("x", patient.Adult, 10, 140, 30, patient.Male), 3, models.ErrMissingVariantRule},
		{"nan weight", patient.NewProfile("x", patient.Adult, 40, 170, math.NaN(), patient.Male), 3, models.ErrMissingVariantRule},
		{"unknown variant", patient.NewProfile("x", patient.Variant("martian"), 40, 170, 70, patient.Male), 3, models.ErrUnknownVariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, err := r.Resolve(context.Background(), tt.p, tt.days)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if sched != nil {
				t.Error("partial schedule returned")
			}
		})
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newResolver(t).Resolve(ctx, adultProfile(), 3); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestResolveBatch_PreservesOrder(t *testing.T) {
	r := newResolver(t)
	reqs := []Request{
		{Profile: adultProfile(), TotalDays: 2},
		{Profile: patient.NewProfile("Baby", patient.PretermInfant, 2, 0, 1.2, patient.Female), TotalDays: 4},
		{Profile: patient.NewProfile("Kid", patient.Child, 12, 150, 40, patient.Male), TotalDays: 3},
	}
	out, err := r.ResolveBatch(context.Background(), reqs)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(reqs) {
		t.Fatalf("got %d schedules", len(out))
	}
	for i, s := range out {
		if s.Patient.Name != reqs[i].Profile.Name || s.TotalDays != reqs[i].TotalDays {
			t.Errorf("schedule %d = %s/%d", i, s.Patient.Name, s.TotalDays)
		}
	}
}

func TestResolveBatch_FailsAsAWhole(t *testing.T) {
	reqs := []Request{
		{Profile: adultProfile(), TotalDays: 2},
		{Profile: adultProfile("scurvy"), TotalDays: 2},
	}
	out, err := newResolver(t).ResolveBatch(context.Background(), reqs)
	if !errors.Is(err, models.ErrUnknownCondition) {
		t.Errorf("err = %v", err)
	}
	if out != nil {
		t.Error("expected no results on failure")
	}
}
