package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axiomkit/axiom/internal/journal"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Journal string
}

// VerifyOutput holds the verification result for JSON mode.
type VerifyOutput struct {
	Valid    bool   `json:"valid"`
	Steps    int64  `json:"steps"`
	LastSeq  int64  `json:"last_seq,omitempty"`
	LastHash string `json:"last_hash,omitempty"`
	Failure  string `json:"failure,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a journal's hash chain",
		Long: `Recompute the hash chain over every journaled step and compare it
against the stored hashes. Detects tampering, truncation in the middle
of the log, and out-of-order records.

Exit codes:
  0  chain verified
  1  chain verification failed
  2  journal could not be opened or read

Examples:
  axiom verify --journal ./axiom.db
  axiom verify --journal ./axiom.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
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

	result, err := j.Verify(ctx)
	if err != nil {
		var verr *journal.VerifyError
		if errors.As(err, &verr) {
			if outErr := outputVerifyFailure(formatter, opts.Format, verr); outErr != nil {
				return outErr
			}
			return NewExitError(ExitFailure, "journal verification failed")
		}
		return WrapExitError(ExitCommandError, "failed to verify journal", err)
	}

	output := VerifyOutput{
		Valid:    true,
		Steps:    result.Steps,
		LastSeq:  result.LastSeq,
		LastHash: result.LastHash,
	}

	if opts.Format == "json" {
		return formatter.Success(output)
	}
	return formatter.Success(fmt.Sprintf("chain OK: %d steps, last seq %d", result.Steps, result.LastSeq))
}

func outputVerifyFailure(formatter *OutputFormatter, format string, verr *journal.VerifyError) error {
	if format == "json" {
		return formatter.Error(ErrCodeChain, verr.Error(), VerifyOutput{
			Valid:   false,
			Failure: verr.Field,
			LastSeq: verr.Seq,
		})
	}
	return formatter.Error(ErrCodeChain, verr.Error(), nil)
}
