package split

import (
	"fmt"
	"math"

	"github.com/soundprediction/kgcurate/pkg/types"
)

// Result holds the three partitions of a dataset.
type Result struct {
	Train []types.Triplet
	Valid []types.Triplet
	Test  []types.Triplet
	// Quota is the per-split cap used for both validation and test.
	Quota int
}

// Get returns the partition named by s.
func (r *Result) Get(s types.Split) []types.Triplet {
	switch s {
	case types.SplitTrain:
		return r.Train
	case types.SplitValid:
		return r.Valid
	case types.SplitTest:
		return r.Test
	}
	return nil
}

// ValidateFraction rejects fractions outside [0, 1).
func ValidateFraction(fraction float64) error {
	if math.IsNaN(fraction) || fraction < 0 || fraction >= 1 {
		return fmt.Errorf("split fraction must be in [0, 1), got %v", fraction)
	}
	return nil
}

type pairGroup struct {
	pair      types.Pair
	relations []string
}

// Split partitions ts into train, validation and test without leaking a (head, tail) pair
// across partitions.
//
// Triplets are grouped by (head, tail) pair, pairs taken in order of first occurrence.
// quota = floor(fraction * len(ts)) caps test and, separately, validation. A pair with a
// single occurrence goes to test while its quota is open, then to validation, then to
// train. A pair with several occurrences, whatever their relations, goes entirely to train.
// Quotas are hard caps and may be under-filled.
func Split(ts []types.Triplet, fraction float64) (*Result, error) {
	if err := ValidateFraction(fraction); err != nil {
		return nil, err
	}

	index := make(map[types.Pair]int)
	var groups []pairGroup
	for _, t := range ts {
		p := t.Pair()
		i, ok := index[p]
		if !ok {
			i = len(groups)
			index[p] = i
			groups = append(groups, pairGroup{pair: p})
		}
		groups[i].relations = append(groups[i].relations, t.Relation)
	}

	quota := int(math.Floor(fraction * float64(len(ts))))
	res := &Result{Quota: quota, Train: make([]types.Triplet, 0, max(0, len(ts)-2*quota))}
	for _, g := range groups {
		if len(g.relations) == 1 {
			t := types.Triplet{Head: g.pair.Head, Relation: g.relations[0], Tail: g.pair.Tail}
			switch {
			case len(res.Test) < quota:
				res.Test = append(res.Test, t)
				continue
			case len(res.Valid) < quota:
				res.Valid = append(res.Valid, t)
				continue
			}
		}
		for _, rel := range g.relations {
			res.Train = append(res.Train, types.Triplet{Head: g.pair.Head, Relation: rel, Tail: g.pair.Tail})
		}
	}
	return res, nil
}
