package registry

import (
	"fmt"
	"slices"
)

// DuplicateIDError reports an attempt to register an id that already exists.
type DuplicateIDError struct {
	Kind string // "rule" or "constraint"
	ID   string
}

// Error implements the error interface.
func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s id: %s", e.Kind, e.ID)
}

// Registry maps rule and constraint ids to their descriptors.
//
// Not safe for concurrent registration; register everything at bootstrap,
// then share read-only.
type Registry[C any] struct {
	rules       map[string]*RuleDescriptor[C]
	constraints map[string]*ConstraintDescriptor[C]

	// Insertion order; drives default evaluation order in the engine.
	ruleOrder       []string
	constraintOrder []string
}

// New creates an empty registry.
func New[C any]() *Registry[C] {
	return &Registry[C]{
		rules:       make(map[string]*RuleDescriptor[C]),
		constraints: make(map[string]*ConstraintDescriptor[C]),
	}
}

// RegisterRule stores a rule descriptor.
// Fails with a DuplicateIDError if the id already exists. O(1).
func (r *Registry[C]) RegisterRule(d RuleDescriptor[C]) error {
	if d.ID == "" {
		return fmt.Errorf("rule id must not be empty")
	}
	if _, exists := r.rules[d.ID]; exists {
		return &DuplicateIDError{Kind: "rule", ID: d.ID}
	}
	r.rules[d.ID] = &d
	r.ruleOrder = append(r.ruleOrder, d.ID)
	return nil
}

// RegisterConstraint stores a constraint descriptor.
// Fails with a DuplicateIDError if the id already exists. O(1).
func (r *Registry[C]) RegisterConstraint(d ConstraintDescriptor[C]) error {
	if d.ID == "" {
		return fmt.Errorf("constraint id must not be empty")
	}
	if _, exists := r.constraints[d.ID]; exists {
		return &DuplicateIDError{Kind: "constraint", ID: d.ID}
	}
	r.constraints[d.ID] = &d
	r.constraintOrder = append(r.constraintOrder, d.ID)
	return nil
}

// RegisterModule registers a module's rules and constraints by delegating
// to the single-item register calls.
//
// KNOWN LIMITATION: a duplicate id partway through the batch fails at the
// offending id and leaves prior entries of the batch registered. There is
// no rollback; this matches the fail-fast, partial-success contract.
func (r *Registry[C]) RegisterModule(m Module[C]) error {
	for _, rule := range m.Rules {
		if err := r.RegisterRule(rule); err != nil {
			return fmt.Errorf("module %s: %w", m.Name, err)
		}
	}
	for _, constraint := range m.Constraints {
		if err := r.RegisterConstraint(constraint); err != nil {
			return fmt.Errorf("module %s: %w", m.Name, err)
		}
	}
	return nil
}

// Rule returns the descriptor for id, or nil when absent. Never errors.
func (r *Registry[C]) Rule(id string) *RuleDescriptor[C] {
	return r.rules[id]
}

// Constraint returns the descriptor for id, or nil when absent. Never errors.
func (r *Registry[C]) Constraint(id string) *ConstraintDescriptor[C] {
	return r.constraints[id]
}

// RuleIDs returns all rule ids in insertion order. The slice is a copy.
func (r *Registry[C]) RuleIDs() []string {
	return slices.Clone(r.ruleOrder)
}

// ConstraintIDs returns all constraint ids in insertion order.
// The slice is a copy.
func (r *Registry[C]) ConstraintIDs() []string {
	return slices.Clone(r.constraintOrder)
}

// Rules returns all rule descriptors in insertion order.
func (r *Registry[C]) Rules() []RuleDescriptor[C] {
	out := make([]RuleDescriptor[C], 0, len(r.ruleOrder))
	for _, id := range r.ruleOrder {
		out = append(out, *r.rules[id])
	}
	return out
}

// Constraints returns all constraint descriptors in insertion order.
func (r *Registry[C]) Constraints() []ConstraintDescriptor[C] {
	out := make([]ConstraintDescriptor[C], 0, len(r.constraintOrder))
	for _, id := range r.constraintOrder {
		out = append(out, *r.constraints[id])
	}
	return out
}

// RuleCount returns the number of registered rules.
func (r *Registry[C]) RuleCount() int {
	return len(r.rules)
}

// ConstraintCount returns the number of registered constraints.
func (r *Registry[C]) ConstraintCount() int {
	return len(r.constraints)
}
