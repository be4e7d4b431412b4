// Package protocol provides the portable value types for the axiom logic
// engine: Facts, Events, State, and Diagnostics.
//
// This package contains type definitions and serialization only. All other
// internal packages import protocol; protocol imports nothing internal. This
// ensures the protocol remains the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - All types are JSON-serializable value types; the State envelope is the
//     wire format shared across processes and language ports
//   - Wire JSON tags are camelCase (tag, payload, context, protocolVersion);
//     the envelope version key is "$version"
//   - Canonical marshaling (sorted keys, NFC strings, no HTML escaping) is
//     the ONLY serialization used for content hashing
//   - ProtocolVersion is stamped on every State the engine produces and is
//     never negotiated by the engine itself
package protocol
