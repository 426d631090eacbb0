// internal/models/table.go
package models

// PlanTable is an insertion-ordered category -> nutrient -> NutrientPlan
// table. Order is preserved so schedules and notes come out deterministic.
type PlanTable struct {
	categories []*tableCategory
}

type tableCategory struct {
	name      string
	nutrients []string
	plans     map[string]NutrientPlan
}

func NewPlanTable() *PlanTable {
	return &PlanTable{}
}

func (t *PlanTable) category(name string) *tableCategory {
	for _, c := range t.categories {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Set stores plan under (category, nutrient). New categories and nutrients
// are appended after the existing ones.
func (t *PlanTable) Set(category, nutrient string, plan NutrientPlan) {
	c := t.category(category)
	if c == nil {
		c = &tableCategory{name: category, plans: make(map[string]NutrientPlan)}
		t.categories = append(t.categories, c)
	}
	if _, exists := c.plans[nutrient]; !exists {
		c.nutrients = append(c.nutrients, nutrient)
	}
	c.plans[nutrient] = plan
}

func (t *PlanTable) Get(category, nutrient string) (NutrientPlan, bool) {
	c := t.category(category)
	if c == nil {
		return NutrientPlan{}, false
	}
	plan, ok := c.plans[nutrient]
	return plan, ok
}

func (t *PlanTable) Categories() []string {
	out := make([]string, 0, len(t.categories))
	for _, c := range t.categories {
		out = append(out, c.name)
	}
	return out
}

func (t *PlanTable) Nutrients(category string) []string {
	c := t.category(category)
	if c == nil {
		return nil
	}
	return append([]string(nil), c.nutrients...)
}

// Len returns the number of nutrient entries across all categories.
func (t *PlanTable) Len() int {
	n := 0
	for _, c := range t.categories {
		n += len(c.nutrients)
	}
	return n
}

// Each visits every entry in table order.
func (t *PlanTable) Each(fn func(category, nutrient string, plan NutrientPlan)) {
	for _, c := range t.categories {
		for _, name := range c.nutrients {
			fn(c.name, name, c.plans[name])
		}
	}
}

// Clone returns a deep copy; mutating the copy never touches t.
func (t *PlanTable) Clone() *PlanTable {
	out := &PlanTable{categories: make([]*tableCategory, 0, len(t.categories))}
	for _, c := range t.categories {
		cc := &tableCategory{
			name:      c.name,
			nutrients: append([]string(nil), c.nutrients...),
			plans:     make(map[string]NutrientPlan, len(c.plans)),
		}
		for name, plan := range c.plans {
			cc.plans[name] = plan.Clone()
		}
		out.categories = append(out.categories, cc)
	}
	return out
}

// Validate checks every plan in the table.
func (t *PlanTable) Validate() error {
	var err error
	t.Each(func(category, nutrient string, plan NutrientPlan) {
		if err != nil {
			return
		}
		if verr := plan.Validate(); verr != nil {
			err = &EntryError{Category: category, Nutrient: nutrient, Err: verr}
		}
	})
	return err
}

// EntryError ties a plan error to its table position.
type EntryError struct {
	Category string
	Nutrient string
	Err      error
}

func (e *EntryError) Error() string {
	return e.Category + "/" + e.Nutrient + ": " + e.Err.Error()
}

func (e *EntryError) Unwrap() error { return e.Err }
