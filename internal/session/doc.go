// Package session ties an engine to a journal.
//
// A Session owns the single-writer loop: it stamps each step with a
// monotonic sequence number and a step token, runs the engine, and appends
// the resulting record to the journal before returning. Opening a session
// over an existing journal resumes the clock and hash chain from the last
// journaled step.
package session
