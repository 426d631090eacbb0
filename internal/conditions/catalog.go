// internal/conditions/catalog.go
package conditions

import (
	"fmt"
	"sort"

	"mcp-tpn-planner/internal/models"
)

// Catalog is a read-only set of condition templates indexed by id, with
// the refinement DAG resolved at construction.
type Catalog struct {
	byID      map[string]*models.Condition
	order     []string
	ancestors map[string]map[string]bool
}

// NewCatalog validates the conditions and builds the ancestor index. It
// rejects duplicate ids, unknown parents, cycles and invalid plans.
func NewCatalog(conds []models.Condition) (*Catalog, error) {
	c := &Catalog{
		byID:      make(map[string]*models.Condition, len(conds)),
		ancestors: make(map[string]map[string]bool, len(conds)),
	}
	for i := range conds {
		cond := conds[i]
		if cond.ID == "" {
			return nil, fmt.Errorf("condition %q has no id", cond.Name)
		}
		if _, dup := c.byID[cond.ID]; dup {
			return nil, fmt.Errorf("duplicate condition id %q", cond.ID)
		}
		for _, o := range cond.Overrides {
			if o.Plan == nil {
				continue
			}
			if err := o.Plan.Validate(); err != nil {
				return nil, fmt.Errorf("condition %s %s/%s: %w", cond.ID, o.Category, o.Nutrient, err)
			}
		}
		c.byID[cond.ID] = &cond
		c.order = append(c.order, cond.ID)
	}
	for _, id := range c.order {
		for _, parent := range c.byID[id].Parents {
			if _, ok := c.byID[parent]; !ok {
				return nil, fmt.Errorf("condition %s: %w: parent %q", id, models.ErrUnknownCondition, parent)
			}
		}
	}
	for _, id := range c.order {
		anc := make(map[string]bool)
		if err := c.collectAncestors(id, id, anc, map[string]bool{}); err != nil {
			return nil, err
		}
		c.ancestors[id] = anc
	}
	return c, nil
}

func (c *Catalog) collectAncestors(root, id string, acc, visiting map[string]bool) error {
	if visiting[id] {
		return fmt.Errorf("condition %s: refinement cycle through %s", root, id)
	}
	visiting[id] = true
	defer delete(visiting, id)
	for _, parent := range c.byID[id].Parents {
		if parent == root {
			return fmt.Errorf("condition %s: refinement cycle", root)
		}
		acc[parent] = true
		if err := c.collectAncestors(root, parent, acc, visiting); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the condition template for id. Callers must not mutate it.
func (c *Catalog) Lookup(id string) (*models.Condition, error) {
	cond, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownCondition, id)
	}
	return cond, nil
}

// List returns every condition in declaration order.
func (c *Catalog) List() []*models.Condition {
	out := make([]*models.Condition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// ListFor returns the conditions that apply to the given population.
func (c *Catalog) ListFor(pop models.Population) []*models.Condition {
	var out []*models.Condition
	for _, cond := range c.List() {
		if cond.Population == models.PopulationAny || cond.Population == pop {
			out = append(out, cond)
		}
	}
	return out
}

// IsRefinementOf reports whether child transitively refines parent.
func (c *Catalog) IsRefinementOf(child, parent string) bool {
	return c.ancestors[child][parent]
}

// Related reports whether one condition refines the other.
func (c *Catalog) Related(a, b string) bool {
	return c.IsRefinementOf(a, b) || c.IsRefinementOf(b, a)
}

// Ancestors returns the sorted ids child refines.
func (c *Catalog) Ancestors(id string) []string {
	out := make([]string, 0, len(c.ancestors[id]))
	for a := range c.ancestors[id] {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
