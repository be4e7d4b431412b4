package protocol

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainState = "axiom/state/v1"
	DomainStep  = "axiom/step/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash computes the content-addressed hash of a state. The hash is
// stable across processes and replays given structurally equal states.
func StateHash(s State) (string, error) {
	canonical, err := MarshalCanonicalState(s)
	if err != nil {
		return "", fmt.Errorf("StateHash: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// StepHash computes the chain hash for one journaled step. Linking each
// record to its predecessor makes journal tampering and out-of-order
// replay detectable.
func StepHash(prevHash string, seq int64, events []Event, stateHash string) (string, error) {
	eventsJSON, err := MarshalCanonicalEvents(events)
	if err != nil {
		return "", fmt.Errorf("StepHash: %w", err)
	}

	obj := Object{
		"prev":      String(prevHash),
		"seq":       Int(seq),
		"events":    String(eventsJSON),
		"stateHash": String(stateHash),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("StepHash: %w", err)
	}
	return hashWithDomain(DomainStep, canonical), nil
}

// MustStateHash is like StateHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustStateHash(s State) string {
	h, err := StateHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
