package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/axiomkit/axiom/internal/manifest"
)

// ValidationResult holds validation results for a manifest.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Module      string   `json:"module,omitempty"`
	Rules       []string `json:"rules,omitempty"`
	Constraints []string `json:"constraints,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest.cue>",
		Short: "Validate a module manifest",
		Long: `Validate a CUE module manifest without binding implementations.

Checks manifest structure: required fields, non-empty rule and constraint
ids, and id uniqueness. Faster than a full bind for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	spec, err := manifest.CompileFile(path)
	if err != nil {
		var compileErr *manifest.CompileError
		if errors.As(err, &compileErr) {
			if jsonErr := formatter.Error(ErrCodeManifest, compileErr.Error(), nil); jsonErr != nil {
				return jsonErr
			}
			return NewExitError(ExitFailure, "manifest validation failed")
		}
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "failed to load manifest", err)
	}

	formatter.VerboseLog("Compiled manifest for module %q", spec.Module)

	result := ValidationResult{
		Valid:  true,
		Module: spec.Module,
	}
	for _, r := range spec.Rules {
		result.Rules = append(result.Rules, r.ID)
	}
	for _, c := range spec.Constraints {
		result.Constraints = append(result.Constraints, c.ID)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "Manifest OK: module %q\n", spec.Module)
	fmt.Fprintf(&buf, "  rules: %d (%s)\n", len(result.Rules), strings.Join(result.Rules, ", "))
	fmt.Fprintf(&buf, "  constraints: %d (%s)", len(result.Constraints), strings.Join(result.Constraints, ", "))
	return formatter.Success(buf.String())
}
