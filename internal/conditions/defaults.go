// internal/conditions/defaults.go
package conditions

import (
	"sync"

	"mcp-tpn-planner/internal/models"
)

const (
	CriticallyIllAdult     = "critically_ill_adult"
	ObeseAdult             = "obese_adult"
	RenalDisease           = "renal_disease"
	HepaticDisease         = "hepatic_disease"
	CardiacDisease         = "cardiac_disease"
	TraumaticBrainInjury   = "traumatic_brain_injury"
	Burns                  = "burns"
	Sepsis                 = "sepsis"
	OpenAbdomen            = "open_abdomen"
	Obese                  = "obese"
	AcuteKidneyInjury      = "acute_kidney_injury"
	AKINoRRT               = "aki_no_rrt"
	AKIIntermittentRRT     = "aki_intermittent_rrt"
	AKICRRT                = "aki_crrt"
	ChronicKidneyFailure   = "chronic_kidney_failure"
	ChronicKidneyFailureHD = "ckf_maintenance_hd"
	LiverFailure           = "liver_failure"
	HeartFailure           = "heart_failure"
	ChildrenCriticallyIll  = "children_critically_ill"
)

const (
	adultProtein = "protein_amino_acids"
	adultLipid   = "lipid_emulsion"

	aspen2020                  = "ASPEN 2020"
	espen2021                  = "ESPEN 2021"
	espenPediatric             = "ESPEN Pediatric Nutrition"
	espenPediatricCriticalCare = "ESPEN 2020 Pediatric Critical Care"
)

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the built-in guideline catalog. It is built once and
// shared read-only between callers.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = NewCatalog(Builtin())
	})
	return defaultCatalog, defaultErr
}

func goal(unit, ref string, r models.Range, guidelines ...string) *models.NutrientPlan {
	return &models.NutrientPlan{Unit: unit, ReferenceUnit: ref, GoalRange: r, Guidelines: guidelines}
}

func noted(p *models.NutrientPlan, note string) *models.NutrientPlan {
	p.Notes = append(p.Notes, note)
	return p
}

func replace(category, nutrient string, p *models.NutrientPlan) models.Override {
	return models.Override{Category: category, Nutrient: nutrient, Op: models.OpReplace, Plan: p}
}

func restrict(category, nutrient string, flag float64) models.Override {
	return models.Override{Category: category, Nutrient: nutrient, Op: models.OpRestrict, Flag: flag}
}

// Builtin returns fresh copies of the built-in condition templates.
func Builtin() []models.Condition {
	return []models.Condition{
		{ID: CriticallyIllAdult, Name: "Critically Ill Adult", Population: models.PopulationAdult,
			Description: "General conditions related to critically ill adult patients."},
		{ID: ObeseAdult, Name: "Obese Adult", Population: models.PopulationAdult,
			Description: "Nutritional management for obese adult patients."},
		{ID: RenalDisease, Name: "Renal Disease", Population: models.PopulationAdult,
			Description: "Conditions related to acute or chronic kidney diseases."},
		{ID: HepaticDisease, Name: "Hepatic Disease", Population: models.PopulationAdult,
			Description: "Conditions related to liver dysfunction or hepatic failure."},
		{ID: CardiacDisease, Name: "Cardiac Disease", Population: models.PopulationAdult,
			Description: "Conditions related to cardiac disease and associated metabolic effects."},

		{
			ID: TraumaticBrainInjury, Name: "Traumatic Brain Injury", Population: models.PopulationAdult,
			Description: "Increased amino acid requirement due to hypermetabolism and catabolism.",
			Parents:     []string{CriticallyIllAdult},
			Overrides: []models.Override{
				replace("macro", adultProtein, goal("g", "kg", models.Range{1.2, 2.5}, aspen2020)),
			},
		},
		{
			ID: Burns, Name: "Burns", Population: models.PopulationAdult,
			Description: "Higher protein need for wound healing and tissue repair.",
			Parents:     []string{CriticallyIllAdult},
			Overrides: []models.Override{
				replace("macro", "energy", goal("kcal", "kg", models.Range{22, 25}, aspen2020)),
				replace("macro", adultProtein, goal("g", "kg", models.Range{1.5, 2.0}, aspen2020)),
				restrict("macro", adultLipid, 1),
			},
		},
		{
			ID: Sepsis, Name: "Sepsis", Population: models.PopulationAdult,
			Description: "Critical care protein target during the septic phase.",
			Parents:     []string{CriticallyIllAdult},
			Overrides: []models.Override{
				replace("macro", adultProtein, goal("g", "kg", models.Range{1.2, 2.0}, "ASPEN 2016")),
			},
		},
		{
			ID: OpenAbdomen, Name: "Open Abdomen", Population: models.PopulationAdult,
			Description: "Additional amino acids due to exudate losses.",
			Parents:     []string{CriticallyIllAdult},
			Overrides: []models.Override{{
				Category: "macro",
				Nutrient: adultProtein,
				Op:       models.OpAddFixed,
				Plan: noted(&models.NutrientPlan{
					Unit:          "g",
					ReferenceUnit: "kg",
					InitialRange:  models.Range{0.2, 0.4},
					Guidelines:    []string{aspen2020},
				}, "Additional 15-30 g/L exudate"),
			}},
		},
		{
			ID: Obese, Name: "Obese", Population: models.PopulationAdult,
			Description: "Adjusted macronutrient requirements based on ideal body weight.",
			Parents:     []string{ObeseAdult},
			Overrides:   []models.Override{restrict("macro", adultLipid, 1)},
		},

		{
			ID: AcuteKidneyInjury, Name: "Acute Kidney Injury", Population: models.PopulationAdult,
			Description: "Adjust amino acid dose based on kidney function.",
			Parents:     []string{RenalDisease},
			Overrides: []models.Override{
				replace("macro", adultProtein, goal("g", "kg", models.Range{0.8, 2.0})),
			},
		},
		{
			ID: AKINoRRT, Name: "Acute Kidney Injury (No RRT)", Population: models.PopulationAdult,
			Description: "For AKI patients not receiving renal replacement therapy.",
			Parents:     []string{AcuteKidneyInjury},
			Overrides: []models.Override{
				replace("macro", adultProtein, goal("g", "kg", models.Range{1.0, 1.3}, espen2021)),
			},
		},
		{
			ID: AKIIntermittentRRT, Name: "Acute Kidney Injury (Intermittent RRT)", Population: models.PopulationAdult,
			Description: "For AKI patients on intermittent renal replacement therapy.",
			Parents:     []string{AcuteKidneyInjury},
			Overrides: []models.Override{
				replace("macro", adultProtein, goal("g", "kg", models.Range{1.3, 1.5}, espen2021)),
			},
		},
		{
			ID: AKICRRT, Name: "Acute Kidney Injury (CRRT)", Population: models.PopulationAdult,
			Description: "For AKI patients receiving continuous renal replacement therapy.",
			Parents:     []string{AcuteKidneyInjury},
			Overrides: []models.Override{
				replace("macro", adultProtein, goal("g", "kg", models.Range{1.5, 1.7}, espen2021)),
			},
		},
		{
			ID: ChronicKidneyFailure, Name: "Chronic Kidney Failure", Population: models.PopulationAdult,
			Description: "Protein adjustment for dialysis patients.",
			Parents:     []string{RenalDisease},
			Overrides: []models.Override{
				replace("macro", adultProtein, goal("g", "kg", models.Range{1.2, 1.2})),
			},
		},
		{
			ID: ChronicKidneyFailureHD, Name: "Chronic Kidney Failure (Maintenance Hemodialysis)", Population: models.PopulationAdult,
			Description: "Protein adjustment for chronic kidney disease with maintenance hemodialysis.",
			Parents:     []string{ChronicKidneyFailure},
			Overrides: []models.Override{
				replace("macro", adultProtein, goal("g", "kg", models.Range{1.2, 1.2}, aspen2020)),
			},
		},

		{
			ID: LiverFailure, Name: "Liver Failure", Population: models.PopulationAdult,
			Description: "Adjust amino acid intake based on dry weight and tolerance.",
			Parents:     []string{HepaticDisease},
			Overrides: []models.Override{
				replace("macro", "energy", goal("kcal", "kg", models.Range{30, 35}, "EASL")),
				replace("macro", adultProtein, goal("g", "kg", models.Range{1.2, 2.0})),
			},
		},
		{
			ID: HeartFailure, Name: "Heart Failure", Population: models.PopulationAdult,
			Description: "Nutrition plan for patients with cardiac disease.",
			Parents:     []string{CardiacDisease},
			Overrides: []models.Override{
				replace("macro", "energy", goal("kcal", "kg", models.Range{20, 25})),
				replace("macro", adultProtein, goal("g", "kg", models.Range{1.0, 1.5})),
				restrict("macro", adultLipid, 1),
				restrict("electrolyte", "sodium", 0),
				replace("electrolyte", "potassium", nil),
				replace("trace_elements", "zinc", goal("mg", "day", models.Range{2.5, 5})),
				replace("trace_elements", "copper", goal("µg", "day", models.Range{300, 500})),
				replace("trace_elements", "selenium", goal("µg", "day", models.Range{60, 100})),
			},
		},

		{
			ID: ChildrenCriticallyIll, Name: "Children (Critically Ill)", Population: models.PopulationPediatric,
			Description: "Nutrition management for critically ill children: gradual PN initiation, " +
				"individualized energy target, protein progression, glucose limit, and lipid tolerance.",
			Overrides: []models.Override{
				{
					Category: "macro", Nutrient: "energy", Op: models.OpNote,
					Plan: noted(&models.NutrientPlan{Unit: "kcal", ReferenceUnit: "kg",
						Guidelines: []string{"ESPEN/ASPEN Pediatric Critical Care"}},
						"Not full PN for first 2 days; increase over 3-7 days. "+
							"Individualize based on REE (about 1.3x REE in stable phase). "+
							"If refeeding, stop PN for 2 days."),
				},
				replace("macro", "amino_acids", noted(goal("g", "kg", models.Range{1.3, 1.3}, espenPediatricCriticalCare),
					"Deliver progressively up to 1.3 g/kg protein equivalents per day during critical illness.")),
				replace("macro", "glucose", noted(goal("mg", "kg/min", models.Range{0, 5}, espenPediatric),
					"Do not exceed 5 mg/kg/min glucose infusion rate.")),
				replace("macro", "lipids", noted(goal("g", "kg", models.Range{0, 1.5}, espenPediatric),
					"Max 1.5 g lipids/kg/day; adapt to individual tolerance. "+
						"EPA+DHA (fish oil) 0.1-0.2 g/kg/day may be provided.")),
			},
		},
	}
}
