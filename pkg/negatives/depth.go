package negatives

import "math"

const (
	// depthRatio is the growth factor of walk attempts between consecutive depths.
	depthRatio = 3
	// minAttempts is the floor on walk attempts at any depth.
	minAttempts = 5
)

// DepthCount is the number of random walk attempts to run at one walk depth.
type DepthCount struct {
	Depth    int
	Attempts int
}

// DepthAmount spreads a budget of n walk attempts over depths 2..maxDepth as a geometric
// series of ratio 3, so each depth gets three times the attempts of the previous one.
// Every depth gets at least 5 attempts. It returns nil when maxDepth < 2.
//
// For maxDepth 4 and n 1000 the schedule is 77, 231 and 692 attempts.
func DepthAmount(maxDepth, n int) []DepthCount {
	if maxDepth < 2 {
		return nil
	}
	u := (1 - depthRatio) / (1 - math.Pow(depthRatio, float64(maxDepth-1)))
	out := make([]DepthCount, 0, maxDepth-1)
	for d := 2; d <= maxDepth; d++ {
		out = append(out, DepthCount{
			Depth:    d,
			Attempts: max(int(math.Round(u*float64(n))), minAttempts),
		})
		u *= depthRatio
	}
	return out
}

// TotalAttempts sums the attempts of a schedule.
func TotalAttempts(schedule []DepthCount) int {
	total := 0
	for _, dc := range schedule {
		total += dc.Attempts
	}
	return total
}
