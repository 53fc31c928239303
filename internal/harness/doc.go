// Package harness runs expectation scenarios against the subject catalog.
//
// A scenario pins one campaign (subject, combo, seed, budget, shrink mode)
// and states what the sweep must record for it. Scenarios guard the
// harness itself: a change to generation, the runner or triage that moves a
// recorded outcome shows up here before it silently invalidates a store.
//
// # Scenario Format
//
//	name: insertionsort_skip_last_seed7
//	description: "Dropping the last element is caught and blamed alone"
//	subject: insertionsort
//	seed: 7
//	budget: 500
//	shrink: false
//	combo: [SKIP_LAST_ELEMENT]
//	expect:
//	  type: fail
//	  triage: [[SKIP_LAST_ELEMENT]]
//
// Expectations are a subset match: attempts and failing_repr are checked
// only when present. Triage sets compare as sets.
//
// # Golden Snapshots
//
// RunWithGolden stores the canonical JSON encoding of the evaluated
// RunResult under testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
