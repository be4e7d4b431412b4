package protocol

// Version constants for the protocol envelope and engine.
const (
	// ProtocolVersion is the semantic version of the State wire contract.
	// The engine stamps its compiled version on every State it produces and
	// never inspects an externally supplied value; compatibility checking
	// is the concern of schema/storage consumers.
	ProtocolVersion = "1.0.0"

	// EnvelopeVersion is the "$version" value for persisted envelopes.
	EnvelopeVersion = "1"

	// EngineVersion is the axiom engine version.
	EngineVersion = "0.1.0"
)
