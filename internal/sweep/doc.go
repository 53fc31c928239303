// Package sweep runs combinatorial mutation sweeps.
//
// For each seed the scheduler enumerates every size-k combination of the
// subject's defects, deals them round-robin to a fixed number of workers,
// and waits for one fragment from each. Each worker loads its own subject
// instance and shares nothing with the others. The merged record is written
// only after every combination has a result, so an interrupted seed leaves
// the store untouched and is redone in full on the next run.
//
// Seeds already present in the store are skipped unless Override is set.
package sweep
