package manifest

import (
	"fmt"

	"github.com/axiomkit/axiom/internal/registry"
)

// Catalog maps manifest ids to Go implementations.
type Catalog[C any] struct {
	Rules       map[string]registry.RuleFunc[C]
	Constraints map[string]registry.ConstraintFunc[C]
}

// Bind joins a compiled manifest with a catalog of implementations and
// produces a registry module.
//
// Every rule and constraint declared in the manifest must have an
// implementation in the catalog; a missing implementation is a bind error.
// Catalog entries not referenced by the manifest are ignored - the manifest
// is the authority on what the module contains.
func Bind[C any](spec *Spec, catalog Catalog[C]) (registry.Module[C], error) {
	mod := registry.Module[C]{Name: spec.Module}

	for _, r := range spec.Rules {
		impl, ok := catalog.Rules[r.ID]
		if !ok {
			return registry.Module[C]{}, fmt.Errorf("bind %s: no implementation for rule %q", spec.Module, r.ID)
		}
		mod.Rules = append(mod.Rules, registry.RuleDescriptor[C]{
			ID:          r.ID,
			Description: r.Description,
			Impl:        impl,
			Consumes:    r.Consumes,
			Emits:       r.Emits,
		})
	}

	for _, c := range spec.Constraints {
		impl, ok := catalog.Constraints[c.ID]
		if !ok {
			return registry.Module[C]{}, fmt.Errorf("bind %s: no implementation for constraint %q", spec.Module, c.ID)
		}
		mod.Constraints = append(mod.Constraints, registry.ConstraintDescriptor[C]{
			ID:          c.ID,
			Description: c.Description,
			Impl:        impl,
			Checks:      c.Checks,
		})
	}

	return mod, nil
}
