package models

import (
	"errors"
	"testing"
)

func TestPlanTable_PreservesInsertionOrder(t *testing.T) {
	tbl := NewPlanTable()
	tbl.Set("macro", "energy", NutrientPlan{Unit: "kcal"})
	tbl.Set("electrolyte", "sodium", NutrientPlan{Unit: "mEq"})
	tbl.Set("macro", "fluid", NutrientPlan{Unit: "mL"})
	tbl.Set("macro", "energy", NutrientPlan{Unit: "kcal", ReferenceUnit: "kg"})

	cats := tbl.Categories()
	if len(cats) != 2 || cats[0] != "macro" || cats[1] != "electrolyte" {
		t.Fatalf("categories = %v", cats)
	}
	nutrients := tbl.Nutrients("macro")
	if len(nutrients) != 2 || nutrients[0] != "energy" || nutrients[1] != "fluid" {
		t.Fatalf("macro nutrients = %v", nutrients)
	}
	if tbl.Len() != 3 {
		t.Errorf("Len = %d, want 3", tbl.Len())
	}
	got, ok := tbl.Get("macro", "energy")
	if !ok || got.ReferenceUnit != "kg" {
		t.Errorf("overwritten entry not returned: %+v", got)
	}
	if _, ok := tbl.Get("vitamins", "biotin"); ok {
		t.Error("expected missing entry")
	}
}

func TestPlanTable_CloneIsIndependent(t *testing.T) {
	tbl := NewPlanTable()
	tbl.Set("macro", "energy", NutrientPlan{Unit: "kcal", InitialRange: Range{20, 30}})

	cp := tbl.Clone()
	plan, _ := cp.Get("macro", "energy")
	plan.InitialRange[0] = 1
	cp.Set("macro", "energy", plan)
	cp.Set("macro", "fluid", NutrientPlan{Unit: "mL"})

	orig, _ := tbl.Get("macro", "energy")
	if orig.InitialRange[0] != 20 {
		t.Error("clone mutation leaked into original")
	}
	if tbl.Len() != 1 {
		t.Errorf("original Len = %d, want 1", tbl.Len())
	}
}

func TestPlanTable_Validate(t *testing.T) {
	tbl := NewPlanTable()
	tbl.Set("macro", "energy", NutrientPlan{Unit: "kcal", InitialRange: Range{30, 20}})

	err := tbl.Validate()
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	var entryErr *EntryError
	if !errors.As(err, &entryErr) || entryErr.Nutrient != "energy" {
		t.Errorf("expected EntryError for energy, got %v", err)
	}
}
