// internal/engine/tally/tally.go
package tally

import (
	"assessment-engine/internal/engine/answer"
)

// Tally holds the accumulated per-bucket counts for one scored submission.
// It is transient: discarded after classification, never persisted.
type Tally struct {
	TestType *TestType
	Counts   map[string]int
}

// Accumulate folds normalized selections into per-bucket counters for the
// given test type. Every question contributes at most one increment.
// Out-of-range indices are ignored, with one exception: a bare-numeric
// answer on a ranked test falls back to a modulo bucket assignment, since
// the record carried no structural hint to place it.
func Accumulate(tt *TestType, selections map[int]answer.Selection) *Tally {
	t := &Tally{
		TestType: tt,
		Counts:   make(map[string]int, len(tt.Buckets)+2*len(tt.Pairs)),
	}

	for _, b := range tt.Buckets {
		t.Counts[b] = 0
	}
	for _, p := range tt.Pairs {
		t.Counts[p.First] = 0
		t.Counts[p.Second] = 0
	}

	for idx, sel := range selections {
		switch sel.Kind {
		case answer.KindNone:
			continue

		case answer.KindDimension:
			// Explicit dimension+weight bypasses index mapping entirely.
			if _, known := t.Counts[sel.Dimension]; known {
				t.Counts[sel.Dimension] += sel.Weight
			}
			continue
		}

		r, inRange := tt.rangeFor(idx)
		if !inRange {
			if sel.Kind == answer.KindNumeric && tt.Mode == ModeRanked && len(tt.Buckets) > 0 {
				if sel.Branch == answer.BranchPrimary && idx >= 0 {
					t.Counts[tt.Buckets[idx%len(tt.Buckets)]]++
				}
			}
			continue
		}

		switch sel.Branch {
		case answer.BranchPrimary:
			t.Counts[r.First]++
		case answer.BranchSecondary:
			if r.Second != "" {
				t.Counts[r.Second]++
			}
		}
	}

	return t
}

// Count returns the accumulated count for a bucket.
func (t *Tally) Count(bucket string) int {
	return t.Counts[bucket]
}
