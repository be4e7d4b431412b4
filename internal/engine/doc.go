// Package engine implements the axiom deterministic logic engine.
//
// The engine is the heart of axiom - it consumes event batches, runs rules
// to derive facts, accumulates them into an immutable State, and checks
// constraints over the result.
//
// ARCHITECTURE:
//
// Synchronous Run-To-Completion Steps:
// Each Step call executes synchronously and atomically with respect to the
// caller. There is exactly one meaningful engine state (Ready) and one
// transition (Step); no multi-step protocol handshake exists.
//
// Step Processing Flow:
//  1. Resolve the rule and constraint id lists (default: full registry,
//     insertion order; callers may pass an explicit ordered subset)
//  2. Rules execute against the OLD fact set, in order; derived facts
//     accumulate in evaluation order
//  3. The next State is built by immutable append of the new facts
//  4. Constraints execute against the NEW fact set - they validate the
//     result of rule execution, not the pre-state
//  5. The engine swaps in the new State and returns it with diagnostics
//
// FAILURE SEMANTICS:
// Nothing inside Step escapes to the caller. Every failure mode - missing
// rule id, rule error or panic, missing constraint id, constraint error or
// panic, constraint violation - degrades to a Diagnostic entry and the step
// continues. One misbehaving rule can never take down the evaluation pass.
// The only fail-fast points are registry registration (duplicate id) and
// engine construction (non-serializable context).
//
// CONCURRENCY:
// Single-threaded, run-to-completion. The engine holds mutable state with
// no internal locking; concurrent Step calls against one instance are
// undefined behavior and must be serialized by the embedding application
// (one engine per logical session, or an external mutex/mailbox). The
// registry is read-only after bootstrap and may be shared across engines.
// No operation inside Step may block on I/O; a rule that needs I/O emits a
// fact describing the need and an external actor feeds results back as
// events on a later step.
package engine
