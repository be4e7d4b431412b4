package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/axiomkit/axiom/internal/protocol"
)

// VerifyError reports a hash-chain mismatch at a specific step.
type VerifyError struct {
	Seq      int64
	Field    string // "state_hash" or "chain_hash"
	Expected string
	Actual   string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("journal verification failed at seq %d: %s mismatch (expected %s, got %s)",
		e.Seq, e.Field, e.Expected, e.Actual)
}

// VerifyResult summarizes a journal verification run.
type VerifyResult struct {
	Steps    int64
	LastSeq  int64
	LastHash string
}

// Verify recomputes the hash chain over every journaled step and compares
// it against the stored hashes. The chain starts from the empty string, so
// a journal copied whole verifies without external input.
//
// Returns a *VerifyError on the first mismatch.
func (j *Journal) Verify(ctx context.Context) (VerifyResult, error) {
	records, err := j.ReadSteps(ctx)
	if err != nil {
		return VerifyResult{}, err
	}

	var result VerifyResult
	prevHash := ""
	for _, rec := range records {
		var state protocol.State
		if err := json.Unmarshal([]byte(rec.State), &state); err != nil {
			return result, fmt.Errorf("parse state at seq %d: %w", rec.Seq, err)
		}

		var events []protocol.Event
		if err := json.Unmarshal([]byte(rec.Events), &events); err != nil {
			return result, fmt.Errorf("parse events at seq %d: %w", rec.Seq, err)
		}

		stateHash, err := protocol.StateHash(state)
		if err != nil {
			return result, fmt.Errorf("hash state at seq %d: %w", rec.Seq, err)
		}
		if stateHash != rec.StateHash {
			return result, &VerifyError{
				Seq:      rec.Seq,
				Field:    "state_hash",
				Expected: rec.StateHash,
				Actual:   stateHash,
			}
		}

		chainHash, err := protocol.StepHash(prevHash, rec.Seq, events, stateHash)
		if err != nil {
			return result, fmt.Errorf("hash step at seq %d: %w", rec.Seq, err)
		}
		if chainHash != rec.ChainHash {
			return result, &VerifyError{
				Seq:      rec.Seq,
				Field:    "chain_hash",
				Expected: rec.ChainHash,
				Actual:   chainHash,
			}
		}

		prevHash = chainHash
		result.Steps++
		result.LastSeq = rec.Seq
		result.LastHash = chainHash
	}

	return result, nil
}
