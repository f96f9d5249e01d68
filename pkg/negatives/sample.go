package negatives

import (
	"errors"
	"math/rand/v2"
	"slices"
)

// ErrEmptyPopulation is returned when sampling k > 0 items from an empty population.
var ErrEmptyPopulation = errors.New("cannot sample from an empty population")

// SampleSafe draws k items from population: without replacement while the population
// lasts, then with replacement for the remainder. The population is not modified.
func SampleSafe[T any](rng *rand.Rand, population []T, k int) ([]T, error) {
	if k <= 0 {
		return []T{}, nil
	}
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}

	if k >= len(population) {
		out := slices.Clone(population)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		for len(out) < k {
			out = append(out, population[rng.IntN(len(population))])
		}
		return out, nil
	}

	// few draws from a large pool: rejection on indices avoids copying the pool
	if k*4 <= len(population) {
		picked := make([]int, 0, k)
		for len(picked) < k {
			i := rng.IntN(len(population))
			if !slices.Contains(picked, i) {
				picked = append(picked, i)
			}
		}
		out := make([]T, k)
		for j, i := range picked {
			out[j] = population[i]
		}
		return out, nil
	}

	// partial Fisher-Yates
	pool := slices.Clone(population)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k], nil
}
