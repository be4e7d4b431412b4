// Package manifest compiles declarative module manifests written in CUE.
//
// A manifest declares a module's rule and constraint identities and their
// tag contracts; implementations stay in Go and are joined to the manifest
// through a Catalog at bind time. This keeps the declarative surface (ids,
// descriptions, tag flow) reviewable and exportable without executing any
// rule code.
//
// Manifest format:
//
//	module: "checkout"
//	description: "order checkout rules"
//	rules: [
//		{
//			id: "reserve-stock"
//			description: "reserves stock for placed orders"
//			consumes: ["order-placed"]
//			emits: ["stock-reserved"]
//		},
//	]
//	constraints: [
//		{
//			id: "stock-non-negative"
//			description: "reserved stock never goes negative"
//			checks: ["stock-reserved"]
//		},
//	]
//
// Compilation uses the CUE SDK's Go API directly (not a CLI subprocess).
package manifest
