package manifest

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports a structural problem in a manifest.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	return &CompileError{
		Field:   "cue",
		Message: first.Error(),
		Pos:     first.Position(),
	}
}

// CompileFile reads and compiles a manifest from disk.
func CompileFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Compile(data, path)
}

// Compile parses CUE source into a validated Spec.
//
// Validation covers structure only: required fields, non-empty ids, and
// manifest-local id uniqueness. Cross-manifest uniqueness is enforced by
// the registry at registration time.
func Compile(data []byte, filename string) (*Spec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &Spec{}

	moduleVal := v.LookupPath(cue.ParsePath("module"))
	if !moduleVal.Exists() {
		return nil, &CompileError{
			Field:   "module",
			Message: "module is required",
			Pos:     v.Pos(),
		}
	}
	module, err := moduleVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if module == "" {
		return nil, &CompileError{
			Field:   "module",
			Message: "module must not be empty",
			Pos:     moduleVal.Pos(),
		}
	}
	spec.Module = module

	if descVal := v.LookupPath(cue.ParsePath("description")); descVal.Exists() {
		desc, err := descVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Description = desc
	}

	spec.Rules, err = parseRules(v)
	if err != nil {
		return nil, err
	}

	spec.Constraints, err = parseConstraints(v)
	if err != nil {
		return nil, err
	}

	if err := checkUniqueIDs(spec); err != nil {
		return nil, err
	}

	return spec, nil
}

// parseRules extracts the rules list (optional, may be empty).
func parseRules(v cue.Value) ([]RuleSpec, error) {
	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil, nil
	}

	iter, err := rulesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var rules []RuleSpec
	for iter.Next() {
		entry := iter.Value()

		id, err := requiredString(entry, "id")
		if err != nil {
			return nil, err
		}
		desc, err := optionalString(entry, "description")
		if err != nil {
			return nil, err
		}
		consumes, err := stringList(entry, "consumes")
		if err != nil {
			return nil, err
		}
		emits, err := stringList(entry, "emits")
		if err != nil {
			return nil, err
		}

		rules = append(rules, RuleSpec{
			ID:          id,
			Description: desc,
			Consumes:    consumes,
			Emits:       emits,
		})
	}
	return rules, nil
}

// parseConstraints extracts the constraints list (optional, may be empty).
func parseConstraints(v cue.Value) ([]ConstraintSpec, error) {
	constraintsVal := v.LookupPath(cue.ParsePath("constraints"))
	if !constraintsVal.Exists() {
		return nil, nil
	}

	iter, err := constraintsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var constraints []ConstraintSpec
	for iter.Next() {
		entry := iter.Value()

		id, err := requiredString(entry, "id")
		if err != nil {
			return nil, err
		}
		desc, err := optionalString(entry, "description")
		if err != nil {
			return nil, err
		}
		checks, err := stringList(entry, "checks")
		if err != nil {
			return nil, err
		}

		constraints = append(constraints, ConstraintSpec{
			ID:          id,
			Description: desc,
			Checks:      checks,
		})
	}
	return constraints, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if s == "" {
		return "", &CompileError{
			Field:   field,
			Message: field + " must not be empty",
			Pos:     fieldVal.Pos(),
		}
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", nil
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return nil, nil
	}

	iter, err := fieldVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// checkUniqueIDs rejects duplicate ids within one manifest. Registering a
// manifest with internal duplicates would otherwise trip the registry's
// partial-registration behavior at bind time; catching it here keeps the
// failure at compile time where it is cheapest.
func checkUniqueIDs(spec *Spec) error {
	seenRules := make(map[string]bool, len(spec.Rules))
	for _, r := range spec.Rules {
		if seenRules[r.ID] {
			return &CompileError{
				Field:   "rules",
				Message: fmt.Sprintf("duplicate rule id %q", r.ID),
			}
		}
		seenRules[r.ID] = true
	}

	seenConstraints := make(map[string]bool, len(spec.Constraints))
	for _, c := range spec.Constraints {
		if seenConstraints[c.ID] {
			return &CompileError{
				Field:   "constraints",
				Message: fmt.Sprintf("duplicate constraint id %q", c.ID),
			}
		}
		seenConstraints[c.ID] = true
	}
	return nil
}
