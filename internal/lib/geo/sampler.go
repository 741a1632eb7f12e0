package geo

import "sort"

// SampleWaypoints resamples a decoded path into count points spaced evenly
// by cumulative traveled distance. Sample i sits at distance
// total*(i+1)/count from the start, so the final sample always coincides
// with the path's endpoint and count==1 returns exactly the destination.
//
// An empty path yields an empty result. A path with no extent (single
// vertex, or all vertices coincident) yields that single point once,
// regardless of count. Zero-length segments contribute no arc length.
func SampleWaypoints(path []Point, count int) []Point {
	if len(path) == 0 {
		return nil
	}
	if count < 1 {
		count = 1
	}
	if len(path) == 1 {
		return []Point{path[0]}
	}

	cum := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		cum[i] = cum[i-1] + Distance(path[i-1], path[i])
	}
	total := cum[len(cum)-1]
	if total == 0 {
		return []Point{path[0]}
	}

	samples := make([]Point, 0, count)
	for i := 0; i < count; i++ {
		target := total * float64(i+1) / float64(count)

		// First vertex at or beyond the target distance; its predecessor
		// starts the bracketing segment.
		j := sort.SearchFloat64s(cum, target)
		if j == 0 {
			j = 1
		}
		if j >= len(cum) {
			j = len(cum) - 1
		}

		segLen := cum[j] - cum[j-1]
		t := 0.0
		if segLen > 0 {
			t = (target - cum[j-1]) / segLen
		}
		samples = append(samples, Interpolate(path[j-1], path[j], t))
	}

	return samples
}
