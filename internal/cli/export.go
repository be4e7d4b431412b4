package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axiomkit/axiom/internal/export"
	"github.com/axiomkit/axiom/internal/manifest"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Graph string // "dot" | "mermaid"
}

// ValidGraphFormats defines the allowed graph output formats.
var ValidGraphFormats = []string{"dot", "mermaid"}

// ExportResult holds the export output for JSON mode.
type ExportResult struct {
	Module string       `json:"module"`
	Graph  string       `json:"graph"`
	Stats  export.Stats `json:"stats"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <manifest.cue>",
		Short: "Export a module's tag-flow graph",
		Long: `Export the tag-flow graph declared by a module manifest.

The graph shows which tags each rule consumes and emits, and which tags
each constraint checks. Output formats:
  dot      Graphviz digraph (render with: dot -Tsvg)
  mermaid  Mermaid flowchart (paste into docs)

Examples:
  axiom export ./checkout.cue --graph dot
  axiom export ./checkout.cue --graph mermaid --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Graph, "graph", "dot", "graph format (dot|mermaid)")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if !isValidGraphFormat(opts.Graph) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid graph format %q: must be one of %v", opts.Graph, ValidGraphFormats))
	}

	spec, err := manifest.CompileFile(path)
	if err != nil {
		if outErr := formatter.Error(ErrCodeManifest, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "failed to compile manifest", err)
	}

	snap := spec.Snapshot()
	stats := export.Collect(snap)
	formatter.VerboseLog("Module %q: %d rules, %d constraints, %d tags",
		spec.Module, stats.RuleCount, stats.ConstraintCount, stats.TagCount)

	var graph string
	switch opts.Graph {
	case "dot":
		graph = export.DOT(snap)
	case "mermaid":
		graph = export.Mermaid(snap)
	}

	if opts.Format == "json" {
		return formatter.Success(ExportResult{
			Module: spec.Module,
			Graph:  graph,
			Stats:  stats,
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), graph)
	return nil
}

// isValidGraphFormat checks if the graph format is one of the allowed values.
func isValidGraphFormat(format string) bool {
	for _, f := range ValidGraphFormats {
		if f == format {
			return true
		}
	}
	return false
}
