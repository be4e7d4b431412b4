// Package export provides read-only reporting over a registry snapshot:
// summary statistics and DOT/Mermaid graph rendering of the tag flow
// between rules and constraints.
//
// The exported graph connects three node kinds: tags (events/facts), rules,
// and constraints. Edges follow the declared tag contract: tag -> rule for
// consumed tags, rule -> tag for emitted tags, tag -> constraint for
// checked tags. Descriptors without a declared contract render as isolated
// nodes.
package export
