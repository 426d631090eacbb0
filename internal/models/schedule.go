// internal/models/schedule.go
package models

import "time"

// Schedule is the day-indexed dosing table produced for one patient.
type Schedule struct {
	ID        string         `json:"id,omitempty"`
	Patient   PatientSummary `json:"patient"`
	TotalDays int            `json:"total_days"`
	Rows      []Row          `json:"rows"`
	Notes     []string       `json:"notes,omitempty"`
	Warnings  []Warning      `json:"warnings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// PatientSummary records the patient metrics a schedule was computed from.
type PatientSummary struct {
	Name                   string   `json:"name"`
	Variant                string   `json:"variant"`
	Age                    float64  `json:"age"`
	AgeUnit                string   `json:"age_unit"`
	HeightCM               float64  `json:"height_cm"`
	WeightKG               float64  `json:"weight_kg"`
	Sex                    string   `json:"sex"`
	IdealBodyWeight        float64  `json:"ideal_body_weight"`
	BodyMassIndex          float64  `json:"body_mass_index"`
	PercentIdealBodyWeight float64  `json:"percent_ideal_body_weight"`
	ReferenceValue         float64  `json:"reference_value"`
	Conditions             []string `json:"conditions,omitempty"`
}

// Row is one (category, nutrient) line of a schedule.
type Row struct {
	Category    string   `json:"category"`
	Nutrient    string   `json:"nutrient"`
	Unit        string   `json:"unit"`
	DoseUnit    string   `json:"dose_unit"`
	Cells       []Cell   `json:"cells"`
	Guidelines  []string `json:"guidelines,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
}

// Cell is a single day's dose. Value is nil when the nutrient has no
// numeric target.
type Cell struct {
	Day   int      `json:"day"`
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

// Row returns the row for (category, nutrient).
func (s *Schedule) Row(category, nutrient string) (*Row, bool) {
	for i := range s.Rows {
		if s.Rows[i].Category == category && s.Rows[i].Nutrient == nutrient {
			return &s.Rows[i], true
		}
	}
	return nil, false
}

// Values returns the row's per-day values in day order.
func (r *Row) Values() []*float64 {
	out := make([]*float64, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Value
	}
	return out
}
