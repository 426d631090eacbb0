// internal/patient/adult.go
package patient

import (
	"math"

	"mcp-tpn-planner/internal/models"
)

const aspen2020 = "ASPEN 2020"

// Adult baseline: one row per nutrient, no age or weight bands.
var adultTable = DecisionTable{
	Variant: Adult,
	Covers:  covering(Adult, 18, math.Inf(1)),
	Entries: []NutrientRules{
		fixed("macro", "protein_amino_acids", steady("g", "kg", rng(0.8, 1.5), aspen2020)),
		fixed("macro", "energy", steady("kcal", "kg", rng(20, 30), aspen2020)),
		fixed("macro", "dextrose", steady("mg", "kg/min", rng(4, 5), aspen2020)),
		fixed("macro", "lipid_emulsion", steady("g", "kg", rng(1, 1), aspen2020)),
		fixed("macro", "fluid", steady("mL", "kg", rng(30, 40), aspen2020)),

		fixed("electrolyte", "calcium", steady("mEq", "day", rng(10, 15), aspen2020)),
		fixed("electrolyte", "magnesium", steady("mEq", "day", rng(8, 20), aspen2020)),
		fixed("electrolyte", "phosphorus", steady("mmol", "day", rng(20, 40), aspen2020)),
		fixed("electrolyte", "sodium", steady("mEq", "kg", rng(1, 2), aspen2020)),
		fixed("electrolyte", "potassium", steady("mEq", "kg", rng(1, 2), aspen2020)),
		fixed("electrolyte", "acetate", models.NutrientPlan{Unit: "mEq", ReferenceUnit: "kg", Guidelines: []string{aspen2020}}),
		fixed("electrolyte", "chloride", models.NutrientPlan{Unit: "mEq", ReferenceUnit: "kg", Guidelines: []string{aspen2020}}),

		fixed("vitamins", "thiamine_B1", steady("mg", "day", rng(6, 6), aspen2020)),
		fixed("vitamins", "riboflavin_B2", steady("mg", "day", rng(3.6, 3.6), aspen2020)),
		fixed("vitamins", "niacin_B3", steady("mg", "day", rng(40, 40), aspen2020)),
		fixed("vitamins", "folic_acid", steady("µg", "day", rng(600, 600), aspen2020)),
		fixed("vitamins", "pantothenic_acid", steady("mg", "day", rng(15, 15), aspen2020)),
		fixed("vitamins", "pyridoxine_B6", steady("mg", "day", rng(6, 6), aspen2020)),
		fixed("vitamins", "cyanocobalamin_B12", steady("µg", "day", rng(5, 5), aspen2020)),
		fixed("vitamins", "biotin", steady("µg", "day", rng(60, 60), aspen2020)),
		fixed("vitamins", "ascorbic_acid_C", steady("mg", "day", rng(200, 200), aspen2020)),
		fixed("vitamins", "vitamin_A", steady("µg", "day", rng(990, 990), aspen2020)),
		fixed("vitamins", "vitamin_D", steady("µg", "day", rng(5, 5), aspen2020)),
		fixed("vitamins", "vitamin_E", steady("mg", "day", rng(10, 10), aspen2020)),
		fixed("vitamins", "vitamin_K", steady("µg", "day", rng(150, 150), aspen2020)),

		fixed("trace_elements", "chromium", steady("µg", "day", rng(0, 10), aspen2020)),
		fixed("trace_elements", "copper", steady("mg", "day", rng(0.3, 0.5), aspen2020)),
		fixed("trace_elements", "manganese", steady("µg", "day", rng(55, 55), aspen2020)),
		fixed("trace_elements", "selenium", steady("µg", "day", rng(60, 100), aspen2020)),
		fixed("trace_elements", "zinc", steady("mg", "day", rng(3, 5), aspen2020)),
	},
}
