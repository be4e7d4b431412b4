package registry

import "slices"

// Snapshot is a non-generic, read-only view of a registry's descriptors,
// suitable for introspection and graph export without knowledge of the
// context type parameter.
type Snapshot struct {
	Rules       []RuleInfo       `json:"rules"`
	Constraints []ConstraintInfo `json:"constraints"`
}

// RuleInfo describes one registered rule.
type RuleInfo struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Consumes    []string `json:"consumes,omitempty"`
	Emits       []string `json:"emits,omitempty"`
}

// ConstraintInfo describes one registered constraint.
type ConstraintInfo struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Checks      []string `json:"checks,omitempty"`
}

// Snapshot captures the registry's descriptors in insertion order.
func (r *Registry[C]) Snapshot() Snapshot {
	snap := Snapshot{
		Rules:       make([]RuleInfo, 0, len(r.ruleOrder)),
		Constraints: make([]ConstraintInfo, 0, len(r.constraintOrder)),
	}
	for _, id := range r.ruleOrder {
		d := r.rules[id]
		snap.Rules = append(snap.Rules, RuleInfo{
			ID:          d.ID,
			Description: d.Description,
			Consumes:    slices.Clone(d.Consumes),
			Emits:       slices.Clone(d.Emits),
		})
	}
	for _, id := range r.constraintOrder {
		d := r.constraints[id]
		snap.Constraints = append(snap.Constraints, ConstraintInfo{
			ID:          d.ID,
			Description: d.Description,
			Checks:      slices.Clone(d.Checks),
		})
	}
	return snap
}
