package conditions

import (
	"errors"
	"testing"

	"mcp-tpn-planner/internal/models"
)

func TestDefault_Builds(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(cat.List()) != len(Builtin()) {
		t.Errorf("List has %d conditions, want %d", len(cat.List()), len(Builtin()))
	}
	again, _ := Default()
	if again != cat {
		t.Error("Default should return the shared catalog")
	}
}

func TestCatalog_Refinement(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		child, parent string
		want          bool
	}{
		{AKICRRT, AcuteKidneyInjury, true},
		{AKICRRT, RenalDisease, true},
		{AcuteKidneyInjury, AKICRRT, false},
		{ChronicKidneyFailureHD, ChronicKidneyFailure, true},
		{Burns, CriticallyIllAdult, true},
		{Burns, OpenAbdomen, false},
		{AKINoRRT, AKICRRT, false},
	}
	for _, tt := range tests {
		if got := cat.IsRefinementOf(tt.child, tt.parent); got != tt.want {
			t.Errorf("IsRefinementOf(%s, %s) = %v, want %v", tt.child, tt.parent, got, tt.want)
		}
	}
	if !cat.Related(AcuteKidneyInjury, AKICRRT) {
		t.Error("AKI and AKI-CRRT should be related")
	}
	if got := cat.Ancestors(AKICRRT); len(got) != 2 {
		t.Errorf("Ancestors(aki_crrt) = %v", got)
	}
}

func TestCatalog_Lookup(t *testing.T) {
	cat, _ := Default()
	cond, err := cat.Lookup(OpenAbdomen)
	if err != nil {
		t.Fatal(err)
	}
	if cond.Name != "Open Abdomen" || len(cond.Overrides) != 1 || cond.Overrides[0].Op != models.OpAddFixed {
		t.Errorf("unexpected open abdomen template: %+v", cond)
	}
	if _, err := cat.Lookup("scurvy"); !errors.Is(err, models.ErrUnknownCondition) {
		t.Errorf("expected ErrUnknownCondition, got %v", err)
	}
}

func TestCatalog_ListFor(t *testing.T) {
	cat, _ := Default()
	peds := cat.ListFor(models.PopulationPediatric)
	if len(peds) != 1 || peds[0].ID != ChildrenCriticallyIll {
		t.Errorf("pediatric conditions = %v", peds)
	}
	for _, c := range cat.ListFor(models.PopulationAdult) {
		if c.Population != models.PopulationAdult {
			t.Errorf("adult list contains %s (%s)", c.ID, c.Population)
		}
	}
}

func TestNewCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		conds []models.Condition
	}{
		{"missing id", []models.Condition{{Name: "x"}}},
		{"duplicate", []models.Condition{{ID: "a"}, {ID: "a"}}},
		{"unknown parent", []models.Condition{{ID: "a", Parents: []string{"ghost"}}}},
		{"cycle", []models.Condition{{ID: "a", Parents: []string{"b"}}, {ID: "b", Parents: []string{"a"}}}},
		{"invalid range", []models.Condition{{ID: "a", Overrides: []models.Override{
			replace("macro", "energy", goal("kcal", "kg", models.Range{30, 20})),
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.conds); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuiltin_ReturnsFreshCopies(t *testing.T) {
	a := Builtin()
	a[5].Overrides[0].Plan.GoalRange[0] = 99
	b := Builtin()
	if b[5].Overrides[0].Plan.GoalRange[0] == 99 {
		t.Error("Builtin shares storage between calls")
	}
}
