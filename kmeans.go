package cog

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Clusterer partitions feature rows into k groups. It returns one cluster id
// in [0, k) per row and must look at features only.
type Clusterer interface {
	FitPredict(features [][]float64, k int) ([]int, error)
}

// KMeans is a k-means++ clusterer with Lloyd iterations. Several restarts
// are run and the one with the lowest inertia is kept. Results depend only
// on the data and Seed, not on Workers.
type KMeans struct {
	// NInit is the number of restarts. Default: 10.
	NInit int

	// MaxIter bounds the Lloyd iterations per restart. Default: 300.
	MaxIter int

	// Tol is the convergence threshold on the total squared centroid shift,
	// relative to the mean feature variance. Default: 1e-4.
	Tol float64

	// Seed drives initialization. Restart seeds are derived from it.
	Seed int64

	// Workers bounds concurrent restarts and the assignment fan-out.
	// 0 means runtime.NumCPU().
	Workers int
}

// KMeansResult is the outcome of a k-means fit.
type KMeansResult struct {
	Labels     []int
	Centroids  [][]float64
	Inertia    float64
	Iterations int
}

// NewKMeans returns a KMeans with default settings and the given seed.
func NewKMeans(seed int64) *KMeans {
	return &KMeans{NInit: 10, MaxIter: 300, Tol: 1e-4, Seed: seed}
}

// FitPredict implements Clusterer.
func (km KMeans) FitPredict(features [][]float64, k int) ([]int, error) {
	res, err := km.Fit(features, k)
	if err != nil {
		return nil, err
	}
	return res.Labels, nil
}

// Fit clusters features into k groups.
func (km KMeans) Fit(features [][]float64, k int) (*KMeansResult, error) {
	n := len(features)
	if n == 0 {
		return nil, errors.New("cog: kmeans: no rows to cluster")
	}
	if k < 1 {
		return nil, fmt.Errorf("cog: kmeans: k must be >= 1, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("cog: kmeans: k = %d exceeds %d rows", k, n)
	}
	if km.NInit < 1 {
		km.NInit = 10
	}
	if km.MaxIter < 1 {
		km.MaxIter = 300
	}
	if km.Tol <= 0 {
		km.Tol = 1e-4
	}
	workers := workerCount(km.Workers)
	tol := km.Tol * meanVariance(features)

	// Draw every restart seed before any restart runs so the set of runs
	// does not depend on scheduling.
	rng := rand.New(rand.NewSource(km.Seed))
	seeds := make([]int64, km.NInit)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	type run struct {
		index int
		res   *KMeansResult
	}
	// Concurrent restarts keep their assignment step serial.
	assignWorkers := 1
	if km.NInit == 1 {
		assignWorkers = workers
	}
	p := pool.NewWithResults[run]().WithMaxGoroutines(workers)
	for i, seed := range seeds {
		i, seed := i, seed
		p.Go(func() run {
			return run{index: i, res: km.lloyd(features, k, seed, tol, assignWorkers)}
		})
	}
	runs := p.Wait()

	var best run
	for _, r := range runs {
		if best.res == nil || r.res.Inertia < best.res.Inertia ||
			(r.res.Inertia == best.res.Inertia && r.index < best.index) {
			best = r
		}
	}
	return best.res, nil
}

// lloyd runs one k-means++ initialization followed by Lloyd iterations.
func (km KMeans) lloyd(features [][]float64, k int, seed int64, tol float64, workers int) *KMeansResult {
	rng := rand.New(rand.NewSource(seed))
	centroids := initPlusPlus(features, k, rng)
	labels := make([]int, len(features))
	dims := len(features[0])

	iter := 0
	for iter < km.MaxIter {
		iter++
		assignNearest(features, centroids, labels, workers)

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dims)
		}
		for i, c := range labels {
			floats.Add(next[c], features[i])
			counts[c]++
		}

		var shift float64
		for c := range next {
			if counts[c] == 0 {
				// Empty cluster keeps its previous centroid.
				copy(next[c], centroids[c])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
			shift += euclideanSumOfSquares(next[c], centroids[c])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}

	inertia := assignNearest(features, centroids, labels, workers)
	return &KMeansResult{Labels: labels, Centroids: centroids, Inertia: inertia, Iterations: iter}
}

// initPlusPlus picks k initial centroids: the first uniformly at random, each
// following one with probability proportional to its squared distance from
// the nearest centroid chosen so far.
func initPlusPlus(features [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(features)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), features[rng.Intn(n)]...))

	closest := make([]float64, n)
	for i, x := range features {
		closest[i] = euclideanSumOfSquares(x, centroids[0])
	}

	for len(centroids) < k {
		total := floats.Sum(closest)
		pick := 0
		if total > 0 {
			r := rng.Float64() * total
			for pick = 0; pick < n-1; pick++ {
				r -= closest[pick]
				if r < 0 {
					break
				}
			}
		} else {
			// All rows coincide with a centroid already.
			pick = rng.Intn(n)
		}
		c := append([]float64(nil), features[pick]...)
		centroids = append(centroids, c)
		for i, x := range features {
			if d := euclideanSumOfSquares(x, c); d < closest[i] {
				closest[i] = d
			}
		}
	}
	return centroids
}

// assignNearest writes the nearest centroid of every row into labels (ties
// go to the lower centroid id) and returns the inertia.
func assignNearest(features, centroids [][]float64, labels []int, workers int) float64 {
	dist := make([]float64, len(features))
	parallelRows(len(features), workers, func(start, end int) {
		for i := start; i < end; i++ {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := euclideanSumOfSquares(features[i], centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			labels[i] = best
			dist[i] = bestDist
		}
	})
	return floats.Sum(dist)
}

// meanVariance averages the per-column variance of features.
func meanVariance(features [][]float64) float64 {
	dims := len(features[0])
	if dims == 0 || len(features) < 2 {
		return 0
	}
	col := make([]float64, len(features))
	var sum float64
	for j := 0; j < dims; j++ {
		for i, row := range features {
			col[i] = row[j]
		}
		sum += stat.Variance(col, nil)
	}
	return sum / float64(dims)
}
