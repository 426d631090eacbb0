// internal/patient/infant.go
package patient

import (
	"math"

	"mcp-tpn-planner/internal/models"
)

const nice2020 = "NICE 2020"

const energyRatioNote = "Non-protein energy 35-45 kcal/kg (D1), 65 target; non-nitrogen ratio 20-30 kcal/g amino acid"

// Term infant baseline. Age is day of life.
var termInfantTable = DecisionTable{
	Variant: TermInfant,
	Covers:  covering(TermInfant, 0, math.Inf(1)),
	Entries: []NutrientRules{
		fixed("macro", "energy", withNote(ramp("kcal", "kg", rng(45, 60), rng(80, 90), 4, nice2020), energyRatioNote)),
		fixed("macro", "amino_acids", steady("g", "kg", rng(2.5, 3), aspen2020)),
		fixed("macro", "glucose", ramp("g", "kg", rng(6, 8), rng(10, 14), 4, aspen2020)),
		fixed("macro", "lipids", ramp("g", "kg", rng(0.5, 1), rng(2.5, 3), 4, aspen2020)),
		fixed("macro", "ratio", noteOnly("kcal", "g",
			"Provide 60-75% carbohydrate, 25-40% lipid; maintain non-nitrogen ratio 20-30 kcal/g amino acid (23-34 kcal total)",
			nice2020)),
		fixed("macro", "fluid", daily("mL", "kg",
			[]models.Range{rng(40, 60), rng(50, 70), rng(60, 80), rng(60, 100), rng(100, 140)}, espen2018)),

		fixed("electrolyte", "sodium", daily("mmol", "kg",
			[]models.Range{rng(0, 2), rng(0, 2), rng(0, 2), rng(1, 3), rng(1, 3)}, espen2018)),
		fixed("electrolyte", "potassium", daily("mmol", "kg",
			[]models.Range{rng(0, 2), rng(0, 2), rng(0, 2), rng(1, 3), rng(1, 3)}, espen2018)),
		fixed("electrolyte", "calcium", steady("mmol", "kg", rng(0.5, 4), aspen2020)),
		banded("electrolyte", "magnesium",
			when(AgeAtMost(6), steady("mmol", "kg", rng(0.1, 0.2), espen2018)),
			when(AgeAbove(6), steady("mmol", "kg", rng(0.15, 0.15), espen2018)),
		),
		banded("electrolyte", "phosphorus",
			when(AgeAtMost(6), steady("mmol", "kg", rng(0.7, 1.3), espen2018)),
			when(AgeAbove(6), steady("mmol", "kg", rng(0.5, 0.5), espen2018)),
		),
		fixed("electrolyte", "chloride", daily("mmol", "kg",
			[]models.Range{rng(0, 3), rng(0, 3), rng(0, 3), rng(2, 3), rng(2, 3), rng(2, 3), rng(2, 3)}, espen2018)),
		fixed("electrolyte", "acetate", noteOnly("mmol", "kg", "Use as needed to maintain acid-base balance", aspen2020)),

		banded("trace_elements", "zinc",
			when(AgeAtMost(3), steady("µg", "kg", rng(250, 250), espen2018)),
			when(AgeAbove(3), steady("µg", "kg", rng(100, 100), espen2018)),
		),
		fixed("trace_elements", "copper", steady("µg", "kg", rng(20, 20), espen2018)),
		fixed("trace_elements", "manganese", steady("µg", "kg", rng(1, 1), aspen2020)),
		fixed("trace_elements", "selenium", steady("µg", "kg", rng(2, 3), espen2018)),
		fixed("trace_elements", "chromium", steady("µg", "day", rng(0.2, 0.2), aspen2020)),
		fixed("trace_elements", "iodine", steady("µg", "kg", rng(1, 1), espen2018)),
		fixed("trace_elements", "molybdenum", steady("µg", "kg", rng(0.25, 0.25), espen2018)),
		banded("trace_elements", "iron",
			when(AgeBelow(28), steady("mg", "kg", rng(0, 0), espen2018, nice2020)),
			when(AgeAtLeast(28), steady("mg", "kg", rng(0.5, 4), espen2018, nice2020)),
		),

		fixed("vitamins", "vitamin_A", steady("IU", "kg", rng(150, 300), espen2018)),
		fixed("vitamins", "vitamin_D", steady("IU", "kg", rng(40, 150), espen2018)),
		fixed("vitamins", "vitamin_E", steady("mg", "kg", rng(2.8, 3.5), espen2018)),
		fixed("vitamins", "vitamin_K", steady("µg", "kg", rng(10, 10), espen2018)),
		fixed("vitamins", "vitamin_C", steady("mg", "kg", rng(15, 25), espen2018)),
		fixed("vitamins", "vitamin_B1", steady("mg", "kg", rng(0.35, 0.5), espen2018)),
		fixed("vitamins", "vitamin_B2", steady("mg", "kg", rng(0.15, 0.2), espen2018)),
		fixed("vitamins", "vitamin_B6", steady("mg", "kg", rng(0.15, 0.2), espen2018)),
		fixed("vitamins", "vitamin_B3", steady("mg", "kg", rng(4, 6.8), espen2018)),
		fixed("vitamins", "vitamin_B12", steady("µg", "kg", rng(0.3, 0.3), espen2018)),
		fixed("vitamins", "vitamin_B5", steady("mg", "kg", rng(2.5, 2.5), espen2018)),
		fixed("vitamins", "biotin", steady("µg", "kg", rng(5, 8), espen2018)),
		fixed("vitamins", "folic_acid", steady("µg", "kg", rng(56, 56), espen2018)),
	},
}

// Preterm infant baseline. Age is day of life; fluid and sodium schedules
// depend on birth weight band (<1.0 kg, 1.0-1.5 kg, >1.5 kg).
var pretermInfantTable = DecisionTable{
	Variant: PretermInfant,
	Covers:  covering(PretermInfant, 0, math.Inf(1)),
	Entries: []NutrientRules{
		fixed("macro", "energy", withNote(ramp("kcal", "kg", rng(45, 60), rng(80, 90), 4, nice2020), energyRatioNote)),
		banded("macro", "amino_acids",
			when(AgeAtMost(4), ramp("g", "kg", rng(1.5, 2), rng(3, 4), 4, nice2020)),
			when(AgeAbove(4), steady("g", "kg", rng(3, 4), nice2020)),
		),
		banded("macro", "glucose",
			when(AgeAtMost(4), ramp("g", "kg", rng(6, 9), rng(9, 16), 4, nice2020)),
			when(AgeAbove(4), steady("g", "kg", rng(9, 16), nice2020)),
		),
		banded("macro", "lipids",
			when(AgeAtMost(4), ramp("g", "kg", rng(1, 2), rng(3, 4), 4, nice2020)),
			when(AgeAbove(4), steady("g", "kg", rng(3, 4), nice2020)),
		),
		banded("macro", "fluid",
			when(WeightAbove(1.5), daily("mL", "kg",
				[]models.Range{rng(60, 80), rng(80, 100), rng(100, 120), rng(120, 140), rng(140, 160)}, espen2018)),
			when(WeightBelow(1.0), daily("mL", "kg",
				[]models.Range{rng(80, 100), rng(100, 120), rng(120, 140), rng(140, 160), rng(160, 180)}, espen2018)),
			when(WeightBetween(1.0, 1.5), daily("mL", "kg",
				[]models.Range{rng(70, 90), rng(90, 110), rng(110, 130), rng(130, 150), rng(160, 180)}, espen2018)),
		),

		banded("electrolyte", "sodium",
			when(WeightAbove(1.5), daily("mmol", "kg",
				[]models.Range{rng(0, 3), rng(0, 3), rng(0, 3), rng(2, 5)}, espen2018)),
			when(WeightBelow(1.0), daily("mmol", "kg",
				[]models.Range{rng(0, 3), rng(0, 3), rng(0, 5), rng(2, 7)}, espen2018)),
			when(WeightBetween(1.0, 1.5), daily("mmol", "kg",
				[]models.Range{rng(0, 3), rng(0, 3), rng(0, 5), rng(2, 7)}, espen2018)),
		),
		fixed("electrolyte", "potassium", daily("mmol", "kg", []models.Range{rng(0, 3), rng(2, 3)}, espen2018)),
		fixed("electrolyte", "calcium", ramp("mmol", "kg", rng(0.8, 1), rng(1.5, 2), 2, nice2020)),
		fixed("electrolyte", "phosphorus", ramp("mmol", "kg", rng(1, 1), rng(2, 2), 2, nice2020)),
		fixed("electrolyte", "chloride", ramp("mmol", "kg", rng(0, 3), rng(2, 3), 4, espen2018)),
		fixed("electrolyte", "acetate", noteOnly("mmol", "kg", "Use as needed to maintain acid-base balance", aspen2020)),

		fixed("trace_elements", "zinc", ramp("µg", "kg", rng(400, 400), rng(500, 500), 0, espen2018)),
		fixed("trace_elements", "copper", steady("µg", "kg", rng(40, 40), espen2018)),
		fixed("trace_elements", "manganese", steady("µg", "kg", rng(1, 1), aspen2020)),
		fixed("trace_elements", "selenium", steady("µg", "kg", rng(2, 2), aspen2020)),
		fixed("trace_elements", "chromium", steady("µg", "day", rng(0.05, 0.3), aspen2020)),
		fixed("trace_elements", "iodine", steady("µg", "kg", rng(1, 1), espen2018)),
		{
			Category: "trace_elements",
			Nutrient: "iron",
			Rules: []Rule{{
				When:   Always,
				Plan:   ramp("µg", "kg", rng(0, 0), rng(225, 250), 0, espen2018, nice2020),
				Derive: rampUntilDay(28),
			}},
		},
	},
}

// rampUntilDay stretches a plan's ramp so the goal is reached on the given
// day of life; patients already past it start at goal.
func rampUntilDay(day float64) func(Profile, models.NutrientPlan) models.NutrientPlan {
	return func(p Profile, plan models.NutrientPlan) models.NutrientPlan {
		if p.Age < day {
			plan.DaysToGoal = int(day - p.Age)
		} else {
			plan.DaysToGoal = 0
		}
		return plan
	}
}
