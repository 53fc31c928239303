package sweep

import (
	"context"
	"fmt"

	"github.com/roach88/mutsweep/internal/store"
)

// AuditReport totals an audit.
type AuditReport struct {
	// Seeds counts seeds present in both namespaces.
	Seeds int
	// Compared counts combos present in both records of a seed.
	Compared int
	// Unpaired counts seeds stored in only one namespace.
	Unpaired int
}

// Audit compares the unshrunk and shrunk records of one subject and combo
// size. Both runs of a combo and seed must agree on the outcome, and fail
// results must agree on attempts. The first disagreement is returned as a
// consistency error and the audit stops there.
func Audit(ctx context.Context, unshrunk, shrunk store.Records) (AuditReport, error) {
	if unshrunk.Namespace().WithShrink(true) != shrunk.Namespace() || unshrunk.Namespace().Shrink {
		return AuditReport{}, fmt.Errorf("audit: %s and %s are not an unshrunk/shrunk pair",
			unshrunk.Namespace(), shrunk.Namespace())
	}

	left, err := unshrunk.Seeds(ctx)
	if err != nil {
		return AuditReport{}, err
	}
	right, err := shrunk.Seeds(ctx)
	if err != nil {
		return AuditReport{}, err
	}
	inRight := make(map[int64]bool, len(right))
	for _, seed := range right {
		inRight[seed] = true
	}

	var rep AuditReport
	for _, seed := range left {
		if !inRight[seed] {
			rep.Unpaired++
			continue
		}
		delete(inRight, seed)
		rep.Seeds++

		a, _, err := unshrunk.Get(ctx, seed)
		if err != nil {
			return rep, err
		}
		b, _, err := shrunk.Get(ctx, seed)
		if err != nil {
			return rep, err
		}
		for _, key := range a.Keys() {
			other, ok := b[key]
			if !ok {
				continue
			}
			rep.Compared++
			mine := a[key]
			if mine.Type != other.Type || (mine.Failed() && mine.Attempts != other.Attempts) {
				return rep, NewConsistencyError(seed, key, mine, other)
			}
		}
	}
	rep.Unpaired += len(inRight)
	return rep, nil
}
