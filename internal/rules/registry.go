package rules

import (
	"fmt"
)

// Registry holds an ordered rule catalog. It is an explicit instance rather
// than a module-level singleton so independent page contexts and test
// harnesses can hold independent catalogs.
type Registry struct {
	rules []Rule
	index map[string]int
}

// NewRegistry returns a registry preloaded with the built-in catalog.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	for _, rule := range builtinRules() {
		r.Register(rule)
	}
	return r
}

// NewEmptyRegistry returns a registry with no rules, for tests and custom
// catalogs.
func NewEmptyRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a custom rule. Registering an ID that already exists
// replaces the previous rule in place, keeping its registration order.
func (r *Registry) Register(rule Rule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule ID must not be empty")
	}
	if rule.Weight <= 0 {
		return fmt.Errorf("rule %s: weight must be positive, got %f", rule.ID, rule.Weight)
	}
	if rule.Check == nil {
		return fmt.Errorf("rule %s: check function is required", rule.ID)
	}
	switch rule.Category {
	case CategoryTechnical, CategoryContent, CategoryPerformance:
	default:
		return fmt.Errorf("rule %s: unknown category %q", rule.ID, rule.Category)
	}

	if i, ok := r.index[rule.ID]; ok {
		r.rules[i] = rule
		return nil
	}
	r.index[rule.ID] = len(r.rules)
	r.rules = append(r.rules, rule)
	return nil
}

// MustRegister registers a rule and panics on invalid definitions. Used for
// the built-in catalog, which is validated by tests.
func (r *Registry) MustRegister(rule Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// ByCategory returns the rules of one category in registration order.
func (r *Registry) ByCategory(cat Category) []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if rule.Category == cat {
			out = append(out, rule)
		}
	}
	return out
}

// All returns every rule in registration order.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Get returns the rule with the given ID.
func (r *Registry) Get(id string) (Rule, bool) {
	i, ok := r.index[id]
	if !ok {
		return Rule{}, false
	}
	return r.rules[i], true
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// TotalWeight returns the sum of rule weights in a category.
func (r *Registry) TotalWeight(cat Category) float64 {
	total := 0.0
	for _, rule := range r.rules {
		if rule.Category == cat {
			total += rule.Weight
		}
	}
	return total
}
