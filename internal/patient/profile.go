// internal/patient/profile.go
package patient

import (
	"encoding/json"
	"fmt"
	"strings"

	"mcp-tpn-planner/internal/models"
)

// Variant selects the baseline guideline table for a patient.
type Variant string

const (
	Adult         Variant = "adult"
	Child         Variant = "child"
	TermInfant    Variant = "term_infant"
	PretermInfant Variant = "preterm_infant"
)

// Variants lists every supported variant in a stable order.
func Variants() []Variant {
	return []Variant{Adult, Child, TermInfant, PretermInfant}
}

// ParseVariant accepts the canonical names plus a few spellings used on forms.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "adult":
		return Adult, nil
	case "child", "children", "pediatric", "paediatric":
		return Child, nil
	case "term_infant", "term", "neonate":
		return TermInfant, nil
	case "preterm_infant", "preterm":
		return PretermInfant, nil
	}
	return "", fmt.Errorf("%w: %q", models.ErrUnknownVariant, s)
}

// AgeUnit is the unit Age is expressed in for this variant: days for
// infants, years for children and adults.
func (v Variant) AgeUnit() string {
	switch v {
	case TermInfant, PretermInfant:
		return "days"
	default:
		return "years"
	}
}

// Population maps the variant onto the condition population it belongs to.
func (v Variant) Population() models.Population {
	if v == Adult {
		return models.PopulationAdult
	}
	return models.PopulationPediatric
}

type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	}
	return "", fmt.Errorf("unknown sex %q", s)
}

// ConditionToggle marks one catalog condition as active or inactive.
type ConditionToggle struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// UnmarshalJSON accepts either {"id": "...", "active": bool} or a bare id
// string. A missing "active" key means active.
func (c *ConditionToggle) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*c = ConditionToggle{ID: id, Active: true}
		return nil
	}
	var raw struct {
		ID     string `json:"id"`
		Active *bool  `json:"active"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("condition toggle: %w", err)
	}
	*c = ConditionToggle{ID: raw.ID, Active: raw.Active == nil || *raw.Active}
	return nil
}

// Profile describes one patient. Age is in the variant's AgeUnit, height in
// centimetres, weight in kilograms.
type Profile struct {
	Name       string            `json:"name"`
	Variant    Variant           `json:"variant"`
	Age        float64           `json:"age"`
	HeightCM   float64           `json:"height_cm"`
	WeightKG   float64           `json:"weight_kg"`
	Sex        Sex               `json:"sex"`
	Conditions []ConditionToggle `json:"conditions,omitempty"`
}

// NewProfile builds a profile with the given conditions switched on, in order.
func NewProfile(name string, variant Variant, age, heightCM, weightKG float64, sex Sex, conditionIDs ...string) Profile {
	p := Profile{
		Name:     name,
		Variant:  variant,
		Age:      age,
		HeightCM: heightCM,
		WeightKG: weightKG,
		Sex:      sex,
	}
	for _, id := range conditionIDs {
		p.Conditions = append(p.Conditions, ConditionToggle{ID: id, Active: true})
	}
	return p
}

// IdealBodyWeight is the Devine estimate in kg. It returns 0 when height is
// unknown.
func (p Profile) IdealBodyWeight() float64 {
	if p.HeightCM <= 0 {
		return 0
	}
	inches := p.HeightCM / 2.54
	base := 50.0
	if p.Sex == Female {
		base = 45.5
	}
	return base + 2.3*(inches-60)
}

// BodyMassIndex is weight / height² in kg/m².
func (p Profile) BodyMassIndex() float64 {
	if p.HeightCM <= 0 {
		return 0
	}
	m := p.HeightCM / 100
	return p.WeightKG / (m * m)
}

// PercentIdealBodyWeight is actual weight as a percentage of IBW, or 0 when
// IBW is not positive.
func (p Profile) PercentIdealBodyWeight() float64 {
	ibw := p.IdealBodyWeight()
	if ibw <= 0 {
		return 0
	}
	return p.WeightKG / ibw * 100
}

// ActiveConditions returns the ids of active conditions in the order the
// caller switched them on. Re-activating an id moves it to the end;
// deactivating removes it.
func (p Profile) ActiveConditions() []string {
	var order []string
	for _, t := range p.Conditions {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			continue
		}
		for i, existing := range order {
			if existing == id {
				order = append(order[:i], order[i+1:]...)
				break
			}
		}
		if t.Active {
			order = append(order, id)
		}
	}
	return order
}

// Clone copies the profile including its condition toggles.
func (p Profile) Clone() Profile {
	out := p
	if p.Conditions != nil {
		out.Conditions = append([]ConditionToggle(nil), p.Conditions...)
	}
	return out
}

// Validate performs cheap input checks before any table lookup.
func (p Profile) Validate() error {
	if _, err := ParseVariant(string(p.Variant)); err != nil {
		return err
	}
	if p.HeightCM < 0 {
		return fmt.Errorf("height must not be negative, got %g", p.HeightCM)
	}
	if p.WeightKG < 0 {
		return fmt.Errorf("weight must not be negative, got %g", p.WeightKG)
	}
	if p.Sex != "" && p.Sex != Male && p.Sex != Female {
		return fmt.Errorf("unknown sex %q", p.Sex)
	}
	return nil
}
