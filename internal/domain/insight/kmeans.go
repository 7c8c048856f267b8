package insight

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const (
	kmeansRestarts = 10
	kmeansMaxIter  = 300
)

// kmeans clusters points with k-means++ seeding and Lloyd iterations,
// keeping the restart with the lowest inertia.
type kmeans struct {
	k    int
	seed int64
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func nearest(centroids [][]float64, p []float64) (int, float64) {
	best, bestD := 0, math.Inf(1)
	for c, ctr := range centroids {
		if d := sqDist(ctr, p); d < bestD {
			best, bestD = c, d
		}
	}
	return best, bestD
}

func (km kmeans) fit(ctx context.Context, points [][]float64) ([][]float64, []int, error) {
	var (
		bestCentroids [][]float64
		bestAssign    []int
		bestInertia   = math.Inf(1)
	)
	for run := 0; run < kmeansRestarts; run++ {
		rng := rand.New(rand.NewSource(km.seed + int64(run))) //nolint:gosec // reproducible seeding
		centroids := km.seedPlusPlus(rng, points)
		assign, inertia, err := lloyd(ctx, points, centroids)
		if err != nil {
			return nil, nil, err
		}
		if inertia < bestInertia {
			bestCentroids, bestAssign, bestInertia = centroids, assign, inertia
		}
	}
	return bestCentroids, bestAssign, nil
}

func (km kmeans) seedPlusPlus(rng *rand.Rand, points [][]float64) [][]float64 {
	n := len(points)
	first := rng.Intn(n)
	centroids := [][]float64{append([]float64(nil), points[first]...)}
	chosen := map[int]bool{first: true}
	d2 := make([]float64, n)

	for len(centroids) < km.k {
		for i, p := range points {
			_, d2[i] = nearest(centroids, p)
		}
		next := -1
		if total := floats.Sum(d2); total > 0 {
			target := rng.Float64() * total
			for i, d := range d2 {
				target -= d
				if target <= 0 && d > 0 {
					next = i
					break
				}
			}
		}
		if next < 0 {
			for i := range points {
				if !chosen[i] {
					next = i
					break
				}
			}
		}
		chosen[next] = true
		centroids = append(centroids, append([]float64(nil), points[next]...))
	}
	return centroids
}

// lloyd refines centroids in place and returns the assignment and inertia.
// Empty clusters keep their previous centroid.
func lloyd(ctx context.Context, points, centroids [][]float64) ([]int, float64, error) {
	assign := make([]int, len(points))
	dim := len(points[0])
	for iter := 0; iter < kmeansMaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		changed := iter == 0
		for i, p := range points {
			c, _ := nearest(centroids, p)
			if c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
		sums := make([][]float64, len(centroids))
		counts := make([]int, len(centroids))
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			floats.Add(sums[assign[i]], p)
			counts[assign[i]]++
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			centroids[c] = sums[c]
		}
	}
	var inertia float64
	for i, p := range points {
		inertia += sqDist(centroids[assign[i]], p)
	}
	return assign, inertia, nil
}
