package journal

import (
	"context"
	"fmt"
)

// StepRecord is one journaled engine step. Events, State, and Diagnostics
// hold canonical JSON produced by internal/protocol; the hashes are
// content-addressed and recomputable from the record itself plus the
// predecessor's chain hash.
type StepRecord struct {
	Seq         int64  `json:"seq"`
	StepToken   string `json:"step_token"`
	Events      string `json:"events"`
	State       string `json:"state"`
	StateHash   string `json:"state_hash"`
	ChainHash   string `json:"chain_hash"`
	Diagnostics string `json:"diagnostics"`
}

// AppendStep inserts a step record.
// Uses ON CONFLICT(seq) DO NOTHING for idempotency: replaying an already
// journaled step is silently skipped and inserted reports false. Other
// constraint violations still return errors.
func (j *Journal) AppendStep(ctx context.Context, rec StepRecord) (inserted bool, err error) {
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO steps
		(seq, step_token, events, state, state_hash, chain_hash, diagnostics)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`,
		rec.Seq,
		rec.StepToken,
		rec.Events,
		rec.State,
		rec.StateHash,
		rec.ChainHash,
		rec.Diagnostics,
	)
	if err != nil {
		return false, fmt.Errorf("append step %d: %w", rec.Seq, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append step %d: %w", rec.Seq, err)
	}
	return n > 0, nil
}
