package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"mcp-tpn-planner/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "tpn.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptrFloat(v float64) *float64 { return &v }

func sampleSchedule(name string, created time.Time) *models.Schedule {
	return &models.Schedule{
		Patient: models.PatientSummary{
			Name: name, Variant: "adult", Age: 45, AgeUnit: "years",
			HeightCM: 170, WeightKG: 70, Sex: "male",
			IdealBodyWeight: 65.937, BodyMassIndex: 24.221, PercentIdealBodyWeight: 106.162,
			ReferenceValue: 65.937, Conditions: []string{"open_abdomen"},
		},
		TotalDays: 2,
		Rows: []models.Row{
			{
				Category: "macro", Nutrient: "protein_amino_acids", Unit: "g", DoseUnit: "g/kg",
				Guidelines: []string{"ASPEN 2020"},
				Cells: []models.Cell{
					{Day: 1, Value: ptrFloat(95.609), Unit: "g"},
					{Day: 2, Value: ptrFloat(95.609), Unit: "g"},
				},
			},
			{
				Category: "electrolyte", Nutrient: "acetate", Unit: "mEq/day", DoseUnit: "mEq/day",
				Annotations: []string{"caution (Heart Failure)"},
				Cells: []models.Cell{
					{Day: 1, Unit: "mEq/day"},
					{Day: 2, Unit: "mEq/day"},
				},
			},
		},
		Notes: []string{"macro - protein_amino_acids: Additional 15-30 g/L exudate"},
		Warnings: []models.Warning{{
			Code: models.WarnAmbiguousPrecedence, Category: "macro", Nutrient: "protein_amino_acids",
			Conditions: []string{"burns", "sepsis"}, Message: "sepsis wins",
		}},
		CreatedAt: created,
	}
}

func TestSaveAndGetSchedule(t *testing.T) {
	s := newTestStorage(t)
	in := sampleSchedule("Ada", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC))

	if err := s.SaveSchedule(in); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}
	if in.ID == "" {
		t.Fatal("SaveSchedule should assign an id")
	}

	got, err := s.GetSchedule(in.ID)
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, in.CreatedAt)
	}
	got.CreatedAt = in.CreatedAt
	if !reflect.DeepEqual(got, in) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, in)
	}
	if got.Rows[1].Cells[0].Value != nil {
		t.Error("null cell should stay nil")
	}
}

func TestGetSchedule_NotFound(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.GetSchedule("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListSchedules(t *testing.T) {
	s := newTestStorage(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Ada", "Bob", "Ada"} {
		if err := s.SaveSchedule(sampleSchedule(name, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListSchedules("", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d schedules, want 3", len(all))
	}
	if !all[0].CreatedAt.After(all[1].CreatedAt) {
		t.Error("schedules should be newest first")
	}
	if len(all[0].Rows) != 2 || len(all[0].Rows[0].Cells) != 2 {
		t.Errorf("rows not loaded: %+v", all[0].Rows)
	}

	ada, err := s.ListSchedules("Ada", "adult", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ada) != 2 {
		t.Errorf("got %d schedules for Ada, want 2", len(ada))
	}

	limited, err := s.ListSchedules("", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: got %d", len(limited))
	}

	none, err := s.ListSchedules("", "preterm_infant", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("got %d preterm schedules", len(none))
	}
}

func TestListSchedules_OrdersWithinOneSecond(t *testing.T) {
	s := newTestStorage(t)
	earlier := time.Date(2024, 3, 1, 8, 0, 0, 500000000, time.UTC)
	later := earlier.Add(10 * time.Microsecond)

	first := sampleSchedule("Early", earlier)
	second := sampleSchedule("Late", later)
	for _, sched := range []*models.Schedule{first, second} {
		if err := s.SaveSchedule(sched); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListSchedules("", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, sched := range got {
		names = append(names, sched.Patient.Name)
	}
	if !reflect.DeepEqual(names, []string{"Late", "Early"}) {
		t.Fatalf("want [Late Early], got %v", names)
	}
	if !got[0].CreatedAt.Equal(later) {
		t.Errorf("created_at = %v, want %v", got[0].CreatedAt, later)
	}
}
