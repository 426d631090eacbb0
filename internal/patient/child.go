// internal/patient/child.go
package patient

const espen2018 = "ESPEN 2018"

// Child baseline. Age is in years (fractional for infants under one);
// trace element bands switch at 40 kg.
var childTable = DecisionTable{
	Variant: Child,
	Covers:  covering(Child, 0, 18),
	Entries: []NutrientRules{
		fixed("macro", "energy", steady("kcal", "kg", rng(90, 120), espen2018)),
		banded("macro", "amino_acids",
			when(AgeAtMost(10), steady("g", "kg", rng(1.5, 2.5), aspen2020)),
			when(AgeAbove(10), steady("g", "kg", rng(0.8, 2), aspen2020)),
		),
		banded("macro", "glucose",
			when(AgeAtMost(10), ramp("g", "kg", rng(1.5, 2.5), rng(8, 10), 4, aspen2020)),
			when(AgeAbove(10), ramp("g", "kg", rng(2.5, 3), rng(5, 6), 4, aspen2020)),
		),
		banded("macro", "lipids",
			when(AgeAtMost(10), ramp("g", "kg", rng(1, 2), rng(2, 2.5), 4, aspen2020)),
			when(AgeAbove(10), ramp("g", "kg", rng(1, 1), rng(1, 2), 4, aspen2020)),
		),
		banded("macro", "fluid",
			when(AgeBelow(1), steady("mL", "kg", rng(120, 150), espen2018)),
			when(AgeAtMost(2), steady("mL", "kg", rng(80, 120), espen2018)),
			when(AgeAtMost(5), steady("mL", "kg", rng(80, 100), espen2018)),
			when(AgeAtMost(12), steady("mL", "kg", rng(60, 80), espen2018)),
			when(AgeAbove(12), steady("mL", "kg", rng(50, 70), espen2018)),
		),

		banded("electrolyte", "sodium",
			when(AgeBelow(1), steady("mmol", "kg", rng(2, 3), espen2018)),
			when(AgeAtLeast(1), steady("mmol", "kg", rng(1, 3), espen2018)),
		),
		fixed("electrolyte", "potassium", steady("mmol", "kg", rng(1, 3), espen2018)),
		banded("electrolyte", "calcium",
			when(AgeBelow(1), steady("mmol", "kg", rng(0.5, 0.5), espen2018)),
			when(AgeAtLeast(1), steady("mmol", "kg", rng(0.25, 0.4), espen2018)),
		),
		banded("electrolyte", "magnesium",
			when(AgeBelow(1), steady("mmol", "kg", rng(0.15, 0.15), espen2018)),
			when(AgeAtLeast(1), steady("mmol", "kg", rng(0.1, 0.1), espen2018)),
		),
		fixed("electrolyte", "phosphorus", steady("µg", "kg", rng(50, 100), espen2018)),
		fixed("electrolyte", "chloride", steady("µg", "kg", rng(50, 100), espen2018)),
		fixed("electrolyte", "acetate", noteOnly("mmol", "kg", "Use as needed to maintain acid-base balance", aspen2020)),

		banded("trace_elements", "zinc",
			when(AgeAtMost(0.25), steady("µg", "kg", rng(250, 250), espen2018)),
			when(AgeBelow(1), steady("µg", "kg", rng(100, 100), espen2018)),
			when(AgeAtLeast(1), steady("µg", "kg", rng(50, 50), espen2018)),
		),
		banded("trace_elements", "copper",
			when(WeightAtMost(40), steady("µg", "kg", rng(20, 20), aspen2020)),
			when(WeightAbove(40), steady("µg", "day", rng(200, 500), aspen2020)),
		),
		banded("trace_elements", "manganese",
			when(WeightAtMost(40), steady("µg", "kg", rng(1, 1), aspen2020)),
			when(WeightAbove(40), steady("µg", "day", rng(40, 100), aspen2020)),
		),
		banded("trace_elements", "selenium",
			when(WeightAtMost(40), steady("µg", "kg", rng(2, 2), aspen2020)),
			when(WeightAbove(40), steady("µg", "day", rng(40, 60), aspen2020)),
		),
		banded("trace_elements", "chromium",
			when(WeightAtMost(40), steady("µg", "day", rng(0.2, 0.2), aspen2020)),
			when(WeightAbove(40), steady("µg", "day", rng(5, 15), aspen2020)),
		),
		fixed("trace_elements", "iodine", steady("µg", "kg", rng(1, 1), espen2018)),
		fixed("trace_elements", "molybdenum", steady("µg", "kg", rng(0.25, 0.25), espen2018)),
		fixed("trace_elements", "iron", steady("µg", "kg", rng(50, 100), espen2018)),

		fixed("vitamins", "vitamin_A", steady("µg", "day", rng(150, 150), espen2018)),
		fixed("vitamins", "vitamin_D", steady("IU", "day", rng(400, 600), espen2018)),
		fixed("vitamins", "vitamin_E", steady("mg", "kg", rng(11, 11), espen2018)),
		fixed("vitamins", "vitamin_K", steady("µg", "kg", rng(200, 200), espen2018)),
		fixed("vitamins", "vitamin_C", steady("mg", "kg", rng(80, 80), espen2018)),
		fixed("vitamins", "vitamin_B1", steady("mg", "kg", rng(1.2, 1.2), espen2018)),
		fixed("vitamins", "vitamin_B2", steady("mg", "kg", rng(1.4, 1.4), espen2018)),
		fixed("vitamins", "vitamin_B6", steady("mg", "kg", rng(1.0, 1.0), espen2018)),
		fixed("vitamins", "vitamin_B3", steady("mg", "kg", rng(17, 17), espen2018)),
		fixed("vitamins", "vitamin_B12", steady("µg", "kg", rng(1, 1), espen2018)),
		fixed("vitamins", "vitamin_B5", steady("mg", "kg", rng(5, 5), espen2018)),
		fixed("vitamins", "biotin", steady("µg", "kg", rng(20, 20), espen2018)),
		fixed("vitamins", "folic_acid", steady("µg", "kg", rng(140, 140), espen2018)),
	},
}
