package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/axiomkit/axiom/internal/engine"
	"github.com/axiomkit/axiom/internal/journal"
	"github.com/axiomkit/axiom/internal/protocol"
)

// Session drives an engine and journals every step.
//
// Thread-safety: Step holds an internal mutex for the full
// run-then-append sequence, preserving the single-writer invariant even
// if callers share a session across goroutines.
type Session[C any] struct {
	engine  *engine.Engine[C]
	journal *journal.Journal
	clock   *Clock
	tokens  TokenGenerator

	mu       sync.Mutex
	lastHash string
}

// Option configures a session.
type Option[C any] func(*Session[C])

// WithTokenGenerator overrides the default UUIDv7 step token generator.
// Tests use this with a FixedGenerator for reproducible journals.
func WithTokenGenerator[C any](gen TokenGenerator) Option[C] {
	return func(s *Session[C]) {
		s.tokens = gen
	}
}

// Open creates a session over an engine and a journal.
//
// If the journal already holds steps, the clock and hash chain resume
// from the last journaled step. The engine state is NOT rebuilt
// automatically; call Replay to re-derive it from the journal.
func Open[C any](ctx context.Context, eng *engine.Engine[C], j *journal.Journal, opts ...Option[C]) (*Session[C], error) {
	s := &Session[C]{
		engine:  eng,
		journal: j,
		tokens:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	lastSeq, err := j.LastSeq(ctx)
	if err != nil {
		return nil, err
	}
	s.clock = NewClockAt(lastSeq)

	if lastSeq > 0 {
		rec, err := j.ReadStep(ctx, lastSeq)
		if err != nil {
			return nil, fmt.Errorf("resume session: %w", err)
		}
		s.lastHash = rec.ChainHash
	}

	return s, nil
}

// Engine returns the underlying engine.
func (s *Session[C]) Engine() *engine.Engine[C] {
	return s.engine
}

// Seq returns the sequence number of the last journaled step, or 0 if
// none have been taken.
func (s *Session[C]) Seq() int64 {
	return s.clock.Current()
}

// LastHash returns the chain hash of the last journaled step.
func (s *Session[C]) LastHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHash
}

// Step runs one engine step and appends the result to the journal.
//
// The journal append is idempotent on seq, but under normal operation
// the clock guarantees a fresh seq per call; a skipped insert indicates
// a concurrent writer on the same journal and is logged.
func (s *Session[C]) Step(ctx context.Context, events []protocol.Event, opts ...engine.StepOption) (engine.StepResult, journal.StepRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.engine.Step(events, opts...)
	seq := s.clock.Next()

	rec, err := s.buildRecord(seq, events, result)
	if err != nil {
		return result, journal.StepRecord{}, err
	}

	inserted, err := s.journal.AppendStep(ctx, rec)
	if err != nil {
		return result, journal.StepRecord{}, err
	}
	if !inserted {
		slog.Warn("step already journaled", "seq", seq)
	}

	s.lastHash = rec.ChainHash
	return result, rec, nil
}

// buildRecord serializes a step result into a journal record, chaining
// its hash from the previous record. Caller holds s.mu.
func (s *Session[C]) buildRecord(seq int64, events []protocol.Event, result engine.StepResult) (journal.StepRecord, error) {
	stateJSON, err := protocol.MarshalCanonicalState(result.State)
	if err != nil {
		return journal.StepRecord{}, fmt.Errorf("serialize state: %w", err)
	}
	eventsJSON, err := protocol.MarshalCanonicalEvents(events)
	if err != nil {
		return journal.StepRecord{}, fmt.Errorf("serialize events: %w", err)
	}
	diagsJSON, err := protocol.MarshalCanonicalDiagnostics(result.Diagnostics)
	if err != nil {
		return journal.StepRecord{}, fmt.Errorf("serialize diagnostics: %w", err)
	}

	stateHash, err := protocol.StateHash(result.State)
	if err != nil {
		return journal.StepRecord{}, err
	}
	chainHash, err := protocol.StepHash(s.lastHash, seq, events, stateHash)
	if err != nil {
		return journal.StepRecord{}, err
	}

	return journal.StepRecord{
		Seq:         seq,
		StepToken:   s.tokens.Generate(),
		Events:      string(eventsJSON),
		State:       string(stateJSON),
		StateHash:   stateHash,
		ChainHash:   chainHash,
		Diagnostics: string(diagsJSON),
	}, nil
}

// ReplayError reports a divergence between a journaled step and the
// state the engine produced when re-running it.
type ReplayError struct {
	Seq      int64
	Expected string
	Actual   string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay diverged at seq %d: expected state hash %s, got %s",
		e.Seq, e.Expected, e.Actual)
}

// Replay re-runs every journaled step through the engine in seq order
// and checks that each step reproduces the journaled state hash.
//
// The engine must be at the same initial state the journal was recorded
// from. Returns a *ReplayError on the first divergence.
func (s *Session[C]) Replay(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.journal.ReadSteps(ctx)
	if err != nil {
		return 0, err
	}

	var replayed int64
	for _, rec := range records {
		events, err := parseEvents(rec.Events)
		if err != nil {
			return replayed, fmt.Errorf("parse events at seq %d: %w", rec.Seq, err)
		}

		result := s.engine.Step(events)
		stateHash, err := protocol.StateHash(result.State)
		if err != nil {
			return replayed, err
		}
		if stateHash != rec.StateHash {
			return replayed, &ReplayError{
				Seq:      rec.Seq,
				Expected: rec.StateHash,
				Actual:   stateHash,
			}
		}
		replayed++
	}

	return replayed, nil
}

func parseEvents(data string) ([]protocol.Event, error) {
	var events []protocol.Event
	if err := json.Unmarshal([]byte(data), &events); err != nil {
		return nil, err
	}
	return events, nil
}
