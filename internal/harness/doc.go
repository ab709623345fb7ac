// Package harness provides conformance testing for the sync coordinator.
//
// The harness executes YAML-defined scenarios against a real coordinator
// backed by a fresh in-memory database, then compares the resulting trace
// against golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	admin: ops
//	steps:
//	  - op: register
//	    user: alice
//	    name: Phone
//	    class: mobile
//	  - op: start
//	    user: alice
//	    device: device_1
//	  - op: submit
//	    session: session_1
//	    device: device_1
//	    type: settings
//	    payload: '{"theme":"dark"}'
//	  - op: complete
//	    session: session_1
//	  - op: start
//	    user: alice
//	    device: device_99
//	    expect: NOT_FOUND
//
// Entity identities are sequential per kind (device_1, session_1, entry_1,
// conflict_1), so scenarios reference them literally and traces stay
// hand-checkable.
//
// # Deterministic Testing
//
// Every scenario runs with a stepping clock, sequential audit event
// identities, and an isolated in-memory SQLite database, so repeated runs
// produce identical traces for golden comparison.
package harness
