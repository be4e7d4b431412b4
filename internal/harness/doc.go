// Package harness provides a scenario-driven conformance framework for
// the engine.
//
// Scenarios are YAML files that describe a sequence of event batches to
// dispatch and the expectations to hold afterwards. Each scenario runs
// against a fresh engine, so runs are independent and reproducible:
//
//	name: checkout-happy-path
//	description: items reserve stock and the order completes
//	steps:
//	  - events:
//	      - tag: item-added
//	        payload: {sku: "A-1", qty: 2}
//	    expect:
//	      facts_added: 1
//	      diagnostics: 0
//	assertions:
//	  - type: fact_present
//	    tag: stock-reserved
//	    payload: {sku: "A-1"}
//
// Golden snapshots of the full run trace use canonical JSON, so a byte
// diff against the stored fixture is a meaningful determinism check.
package harness
