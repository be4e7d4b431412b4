package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/axiomkit/axiom/internal/journal"
	"github.com/axiomkit/axiom/internal/protocol"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	Seq     int64 // optional - show a single step in full
}

// TraceEntry is one journaled step in the trace timeline.
type TraceEntry struct {
	Seq         int64                 `json:"seq"`
	StepToken   string                `json:"step_token"`
	Events      []protocol.Event      `json:"events"`
	Diagnostics []protocol.Diagnostic `json:"diagnostics"`
	StateHash   string                `json:"state_hash"`
	ChainHash   string                `json:"chain_hash"`
	FactCount   int                   `json:"fact_count"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Timeline []TraceEntry `json:"timeline"`
	Steps    int          `json:"steps"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the step timeline of a journal",
		Long: `Show the journaled step timeline: events dispatched, diagnostics
surfaced, and the state and chain hashes of every step.

Examples:
  axiom trace --journal ./axiom.db
  axiom trace --journal ./axiom.db --seq 3
  axiom trace --journal ./axiom.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().Int64Var(&opts.Seq, "seq", 0, "show only the step with this sequence number")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	var records []journal.StepRecord
	if opts.Seq > 0 {
		rec, err := j.ReadStep(ctx, opts.Seq)
		if err != nil {
			return WrapExitError(ExitCommandError,
				fmt.Sprintf("failed to read step %d", opts.Seq), err)
		}
		records = []journal.StepRecord{rec}
	} else {
		records, err = j.ReadSteps(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read steps", err)
		}
	}

	result := TraceResult{Timeline: make([]TraceEntry, 0, len(records))}
	for _, rec := range records {
		entry, err := traceEntry(rec)
		if err != nil {
			return WrapExitError(ExitCommandError,
				fmt.Sprintf("failed to parse step %d", rec.Seq), err)
		}
		result.Timeline = append(result.Timeline, entry)
	}
	result.Steps = len(result.Timeline)

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	if result.Steps == 0 {
		return formatter.Success("journal is empty")
	}

	var buf strings.Builder
	for i, entry := range result.Timeline {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "seq %d  token %s\n", entry.Seq, entry.StepToken)
		for _, ev := range entry.Events {
			fmt.Fprintf(&buf, "  event %s\n", ev.Tag)
		}
		for _, diag := range entry.Diagnostics {
			fmt.Fprintf(&buf, "  diagnostic [%s] %s\n", diag.Kind, diag.Message)
		}
		fmt.Fprintf(&buf, "  facts %d  state %s  chain %s",
			entry.FactCount, shortHash(entry.StateHash), shortHash(entry.ChainHash))
		if i < len(result.Timeline)-1 {
			buf.WriteByte('\n')
		}
	}
	return formatter.Success(buf.String())
}

// traceEntry parses a raw journal record into a timeline entry.
func traceEntry(rec journal.StepRecord) (TraceEntry, error) {
	var events []protocol.Event
	if err := json.Unmarshal([]byte(rec.Events), &events); err != nil {
		return TraceEntry{}, fmt.Errorf("parse events: %w", err)
	}

	var diagnostics []protocol.Diagnostic
	if err := json.Unmarshal([]byte(rec.Diagnostics), &diagnostics); err != nil {
		return TraceEntry{}, fmt.Errorf("parse diagnostics: %w", err)
	}

	var state protocol.State
	if err := json.Unmarshal([]byte(rec.State), &state); err != nil {
		return TraceEntry{}, fmt.Errorf("parse state: %w", err)
	}

	return TraceEntry{
		Seq:         rec.Seq,
		StepToken:   rec.StepToken,
		Events:      events,
		Diagnostics: diagnostics,
		StateHash:   rec.StateHash,
		ChainHash:   rec.ChainHash,
		FactCount:   len(state.Facts),
	}, nil
}

// shortHash abbreviates a hex hash for text output.
func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
