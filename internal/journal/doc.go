// Package journal provides SQLite-backed durable storage for engine step
// records.
//
// The journal is an append-only log with one row per engine step: the seq
// number, a step token, the canonical JSON of the event batch, the
// canonical JSON and content hash of the resulting state, a chain hash
// linking the record to its predecessor, and the step's diagnostics.
//
// Invariants:
//   - All ordering uses seq INTEGER (logical clock), never timestamps;
//     this makes replay deterministic regardless of wall time
//   - Writes are idempotent via ON CONFLICT(seq) DO NOTHING, so replaying
//     the same step sequence against an existing journal is a no-op
//   - All reads ORDER BY seq ASC for deterministic results
//   - Chain hashes are recomputable from the records alone; Verify detects
//     tampering, gaps, and out-of-order replay
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// All content hashes are computed in internal/protocol using canonical
// JSON and SHA-256 with domain separation.
package journal
