// Package mutant provides defect injection for subject programs.
//
// A subject declares its defects once through a Builder and binds each
// decision point it wants to mutate to a Point. Building validates the
// declarations: duplicate IDs must carry identical metadata and every Point
// must reference a declared ID. The resulting Registry is immutable.
//
// At execution time the active defects live in a Context, which is passed
// explicitly into every property evaluation:
//
//	limit := mutant.Choose(mc, noSortPairs,
//	    func() int { return 1 },
//	    func() int { return 2 },
//	)
//
// Both branches are deferred; only the selected one runs.
//
// Contexts are never shared between concurrent executions. A nil *Context
// is valid and selects the baseline everywhere.
package mutant
