// Package harness runs ledger conformance scenarios.
//
// A scenario is a YAML file describing a sequence of steps against a fresh
// ledger (append an operation, tamper with the persisted log, reopen) and a
// list of assertions over the final chain and its audit report. Runs use a
// deterministic clock, so the resulting chain is byte-identical across runs
// and can be compared against golden files.
//
// Example scenario:
//
//	name: tampered_proof
//	description: "Editing a persisted proof is detected on reopen"
//	steps:
//	  - append: create
//	  - tamper: {index: 2, field: proof, value: "7"}
//	  - reopen: true
//	assertions:
//	  - type: valid
//	    want: false
//	  - type: violation
//	    index: 2
//	    kind: INVALID_PROOF
package harness
