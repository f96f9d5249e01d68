package split

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/soundprediction/kgcurate/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, lines ...string) []types.Triplet {
	t.Helper()
	var ts []types.Triplet
	for _, l := range lines {
		tr, err := types.ParseLine(l)
		require.NoError(t, err)
		ts = append(ts, tr)
	}
	return ts
}

func TestSplitScenario(t *testing.T) {
	ts := parse(t, "A likes B", "A likes C", "B likes C", "C dislikes A")

	res, err := Split(ts, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Quota)
	assert.Empty(t, res.Train)
	assert.Equal(t, ts[:2], res.Test, "test fills first, in first-occurrence order")
	assert.Equal(t, ts[2:], res.Valid)
}

func TestSplitLeakage(t *testing.T) {
	ts := parse(t,
		"A bornIn B",
		"A livesIn B",
		"C knows D",
		"E knows F",
		"C worksWith D",
		"G knows H",
		"G knows H",
		"I knows J",
	)

	res, err := Split(ts, 0.25)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Quota)

	for _, tr := range append(res.Valid, res.Test...) {
		assert.NotContains(t, []string{"A", "C", "G"}, tr.Head, "multi-occurrence pair leaked: %v", tr)
	}
	assert.Equal(t, parse(t, "E knows F", "I knows J"), res.Test)
	assert.Empty(t, res.Valid)
	assert.Equal(t, parse(t, "A bornIn B", "A livesIn B", "C knows D", "C worksWith D", "G knows H", "G knows H"), res.Train)
}

func TestSplitExclusivity(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	var ts []types.Triplet
	for i := 0; i < 2000; i++ {
		ts = append(ts, types.Triplet{
			Head:     fmt.Sprintf("e%d", rng.IntN(60)),
			Relation: fmt.Sprintf("r%d", rng.IntN(4)),
			Tail:     fmt.Sprintf("e%d", rng.IntN(60)),
		})
	}

	for _, fraction := range []float64{0, 0.01, 0.1, 0.3} {
		t.Run(fmt.Sprintf("fraction=%v", fraction), func(t *testing.T) {
			res, err := Split(ts, fraction)
			require.NoError(t, err)

			assert.LessOrEqual(t, len(res.Test), res.Quota)
			assert.LessOrEqual(t, len(res.Valid), res.Quota)

			union := append(append(append([]types.Triplet{}, res.Train...), res.Valid...), res.Test...)
			assert.ElementsMatch(t, ts, union, "partitions must cover the input multiset exactly")

			pairs := make(map[types.Pair]int)
			for _, tr := range ts {
				pairs[tr.Pair()]++
			}
			seen := make(map[types.Pair]bool)
			for _, tr := range append(append([]types.Triplet{}, res.Valid...), res.Test...) {
				assert.Equal(t, 1, pairs[tr.Pair()], "evaluation pair must be single-occurrence")
				assert.False(t, seen[tr.Pair()], "pair in both valid and test")
				seen[tr.Pair()] = true
			}
		})
	}
}

func TestSplitQuotaUnderfilled(t *testing.T) {
	ts := parse(t, "A r B", "A s B", "C r D", "C s D")
	res, err := Split(ts, 0.5)
	require.NoError(t, err)
	assert.Empty(t, res.Valid)
	assert.Empty(t, res.Test)
	assert.Len(t, res.Train, 4)
}

func TestSplitFraction(t *testing.T) {
	for _, f := range []float64{-0.1, 1, 1.5} {
		_, err := Split(nil, f)
		assert.Error(t, err, "fraction %v", f)
	}
	res, err := Split(nil, 0.01)
	require.NoError(t, err)
	assert.Empty(t, res.Train)
}

func TestResultGet(t *testing.T) {
	res := &Result{
		Train: parse(t, "A r B"),
		Valid: parse(t, "B r C"),
		Test:  parse(t, "C r D"),
	}
	var heads []string
	for _, s := range types.AllSplits {
		heads = append(heads, res.Get(s)[0].Head)
	}
	sort.Strings(heads)
	assert.Equal(t, []string{"A", "B", "C"}, heads)
}
