// Package harness runs scenario files against reducer models.
//
// A scenario names a model, dispatches a list of actions through the
// model's reducer, and checks the states it returns. Every dispatch is
// recorded in a journal so a run can be listed, inspected and replayed.
//
// # Scenario Format
//
//	name: counter_basics
//	description: "Counter handles increment and add, ignores the rest"
//	model: counter
//	catalog: ../catalogs/counter.cue   # optional, relative to this file
//	run_id: run-counter                # optional, UUIDv7 when absent
//	steps:
//	  - dispatch: increment
//	  - dispatch: add
//	    payload: 2
//	    expect: { count: 3 }
//	  - dispatch: noop
//	    expect_unchanged: true
//	assertions:
//	  - type: final_state
//	    state: { count: 3 }
//	  - type: trace_count
//	    tag: increment
//	    count: 1
//	  - type: trace_order
//	    tags: [increment, add]
//	  - type: unchanged
//	    tag: noop
//
// Payloads are converted to JSON and decoded through the model's registry,
// so handlers receive typed values. Tags the registry does not know are
// dispatched untyped; the reducer is expected to return the state unchanged.
//
// expect and final_state use subset matching: only the listed fields are
// compared, recursively. Lists must match in length.
//
// # Determinism
//
// Step seq values come from a testutil.DeterministicClock and dispatch IDs
// are "<run_id>/<seq>". With a pinned run_id, the same scenario produces a
// byte-identical trace, which AssertGolden compares against
// testdata/golden/<name>.golden.
package harness
