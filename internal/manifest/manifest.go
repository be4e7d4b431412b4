package manifest

import "github.com/axiomkit/axiom/internal/registry"

// Spec is a compiled module manifest.
type Spec struct {
	Module      string           `json:"module"`
	Description string           `json:"description,omitempty"`
	Rules       []RuleSpec       `json:"rules,omitempty"`
	Constraints []ConstraintSpec `json:"constraints,omitempty"`
}

// RuleSpec declares one rule's identity and tag contract.
type RuleSpec struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Consumes    []string `json:"consumes,omitempty"`
	Emits       []string `json:"emits,omitempty"`
}

// ConstraintSpec declares one constraint's identity and tag contract.
type ConstraintSpec struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Checks      []string `json:"checks,omitempty"`
}

// Snapshot converts the manifest to a registry snapshot for introspection
// and graph export. This lets the CLI export a module's tag-flow graph
// from the manifest alone, without binding implementations.
func (s *Spec) Snapshot() registry.Snapshot {
	snap := registry.Snapshot{
		Rules:       make([]registry.RuleInfo, 0, len(s.Rules)),
		Constraints: make([]registry.ConstraintInfo, 0, len(s.Constraints)),
	}
	for _, r := range s.Rules {
		snap.Rules = append(snap.Rules, registry.RuleInfo{
			ID:          r.ID,
			Description: r.Description,
			Consumes:    r.Consumes,
			Emits:       r.Emits,
		})
	}
	for _, c := range s.Constraints {
		snap.Constraints = append(snap.Constraints, registry.ConstraintInfo{
			ID:          c.ID,
			Description: c.Description,
			Checks:      c.Checks,
		})
	}
	return snap
}
