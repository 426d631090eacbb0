package patient

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"mcp-tpn-planner/internal/models"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestProfile_DerivedMetrics(t *testing.T) {
	male := NewProfile("A", Adult, 45, 170, 70, Male)
	// 170 cm = 66.929 in
	wantIBW := 50 + 2.3*(170/2.54-60)
	if !approx(male.IdealBodyWeight(), wantIBW) {
		t.Errorf("male IBW = %v, want %v", male.IdealBodyWeight(), wantIBW)
	}
	if !approx(male.BodyMassIndex(), 70/(1.7*1.7)) {
		t.Errorf("BMI = %v", male.BodyMassIndex())
	}
	if !approx(male.PercentIdealBodyWeight(), 70/wantIBW*100) {
		t.Errorf("%%IBW = %v", male.PercentIdealBodyWeight())
	}

	female := NewProfile("B", Adult, 45, 170, 70, Female)
	if !approx(male.IdealBodyWeight()-female.IdealBodyWeight(), 4.5) {
		t.Errorf("female IBW should be 4.5 kg lower, got %v", female.IdealBodyWeight())
	}
}

func TestProfile_MetricsWithoutHeight(t *testing.T) {
	p := NewProfile("infant", PretermInfant, 2, 0, 1.2, Female)
	if p.IdealBodyWeight() != 0 || p.BodyMassIndex() != 0 || p.PercentIdealBodyWeight() != 0 {
		t.Errorf("expected zero metrics without height, got ibw=%v bmi=%v pct=%v",
			p.IdealBodyWeight(), p.BodyMassIndex(), p.PercentIdealBodyWeight())
	}
}

func TestProfile_ActiveConditions(t *testing.T) {
	p := Profile{Conditions: []ConditionToggle{
		{ID: "burns", Active: true},
		{ID: "sepsis", Active: true},
		{ID: "obese", Active: false},
		{ID: "burns", Active: true},
		{ID: "sepsis", Active: false},
		{ID: " ", Active: true},
	}}
	got := p.ActiveConditions()
	if len(got) != 1 || got[0] != "burns" {
		t.Errorf("ActiveConditions = %v, want [burns]", got)
	}

	p = NewProfile("x", Adult, 40, 170, 70, Male, "acute_kidney_injury", "open_abdomen")
	got = p.ActiveConditions()
	if len(got) != 2 || got[0] != "acute_kidney_injury" || got[1] != "open_abdomen" {
		t.Errorf("declared order not kept: %v", got)
	}
}

func TestConditionToggle_UnmarshalJSON(t *testing.T) {
	var p Profile
	body := `{"variant":"adult","conditions":["burns",{"id":"sepsis","active":false},{"id":"obese"}]}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(p.Conditions) != 3 {
		t.Fatalf("conditions = %+v", p.Conditions)
	}
	if !p.Conditions[0].Active || p.Conditions[0].ID != "burns" {
		t.Errorf("bare id should be active: %+v", p.Conditions[0])
	}
	if p.Conditions[1].Active {
		t.Errorf("explicit inactive toggle lost: %+v", p.Conditions[1])
	}
	if !p.Conditions[2].Active || p.Conditions[2].ID != "obese" {
		t.Errorf("object without active key should be active: %+v", p.Conditions[2])
	}
}

func TestParseVariant(t *testing.T) {
	tests := map[string]Variant{
		"adult":          Adult,
		"Child":          Child,
		"pediatric":      Child,
		"term-infant":    TermInfant,
		"preterm":        PretermInfant,
		"preterm_infant": PretermInfant,
	}
	for in, want := range tests {
		got, err := ParseVariant(in)
		if err != nil || got != want {
			t.Errorf("ParseVariant(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseVariant("geriatric"); !errors.Is(err, models.ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestProfile_Validate(t *testing.T) {
	if err := NewProfile("ok", Adult, 40, 170, 70, Male).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := NewProfile("neg", Adult, 40, 170, -1, Male).Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
	if err := NewProfile("sex", Adult, 40, 170, 70, Sex("x")).Validate(); err == nil {
		t.Error("expected error for unknown sex")
	}
}

func TestProfile_Clone(t *testing.T) {
	p := NewProfile("x", Adult, 40, 170, 70, Male, "burns")
	cp := p.Clone()
	cp.Conditions[0].Active = false
	if !p.Conditions[0].Active {
		t.Error("clone shares condition storage")
	}
}
