// Package registry owns the mapping from id to rule and constraint
// descriptors consumed by the engine.
//
// A Registry is constructed once at application bootstrap and is effectively
// immutable thereafter: there is no unregister primitive, and registering a
// duplicate id fails fast with a DuplicateIDError so behavior can never be
// silently shadowed. After bootstrap the registry is read-mostly and may be
// shared read-only across multiple engine instances.
//
// Iteration order everywhere is insertion order. The engine relies on this
// for deterministic rule and constraint evaluation.
package registry
