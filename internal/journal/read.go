package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadStep retrieves a single step record by sequence number.
// Returns sql.ErrNoRows if not found.
func (j *Journal) ReadStep(ctx context.Context, seq int64) (StepRecord, error) {
	var rec StepRecord
	err := j.db.QueryRowContext(ctx, `
		SELECT seq, step_token, events, state, state_hash, chain_hash, diagnostics
		FROM steps
		WHERE seq = ?
	`, seq).Scan(
		&rec.Seq, &rec.StepToken, &rec.Events, &rec.State,
		&rec.StateHash, &rec.ChainHash, &rec.Diagnostics,
	)
	if err != nil {
		return StepRecord{}, err
	}
	return rec, nil
}

// ReadSteps returns all step records ordered by seq ASC.
// Replaying them against the same registry reproduces the journaled run.
//
// Returns an empty slice (not nil) if the journal holds no steps.
func (j *Journal) ReadSteps(ctx context.Context) ([]StepRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, step_token, events, state, state_hash, chain_hash, diagnostics
		FROM steps
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var records []StepRecord
	for rows.Next() {
		var rec StepRecord
		if err := rows.Scan(
			&rec.Seq, &rec.StepToken, &rec.Events, &rec.State,
			&rec.StateHash, &rec.ChainHash, &rec.Diagnostics,
		); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}

	if records == nil {
		records = []StepRecord{}
	}

	return records, nil
}

// LastSeq returns the highest journaled sequence number, or 0 if the
// journal is empty.
func (j *Journal) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := j.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM steps`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return seq.Int64, nil
}

// StepCount returns the number of journaled steps.
func (j *Journal) StepCount(ctx context.Context) (int64, error) {
	var count int64
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM steps`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count steps: %w", err)
	}
	return count, nil
}
