package cog

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Generator produces synthetic minority rows. Resample returns the input rows
// first, in their original order, followed by the synthetic rows. ratio is the
// desired minority/majority ratio after resampling. An error wrapping
// ErrInfeasible means the request cannot be met and nothing was generated.
type Generator interface {
	Resample(features [][]float64, labels []int, ratio float64) ([][]float64, []int, error)
}

// ErrInfeasible is returned by a Generator when the requested ratio or the
// neighbor constraints cannot be satisfied.
var ErrInfeasible = errors.New("cog: resampling infeasible")

// SMOTE synthesizes minority rows by interpolating between a minority row
// and one of its nearest minority neighbors. It keeps a seeded random source
// across calls, so repeated requests on the same rows draw fresh samples while
// a fresh SMOTE with the same Seed replays the same sequence.
type SMOTE struct {
	// Neighbors is the number of nearest minority neighbors considered.
	// Default: 5.
	Neighbors int

	// Metric measures neighbor distance. Default: EuclideanMetric.
	Metric DistanceMetric

	// LeafSize of the neighbor KD-tree. Default: 40.
	LeafSize int

	rng *rand.Rand
}

// NewSMOTE returns a SMOTE with default settings seeded with seed.
func NewSMOTE(seed int64) *SMOTE {
	return &SMOTE{
		Neighbors: 5,
		Metric:    EuclideanMetric{},
		LeafSize:  40,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// SyntheticCount returns how many rows must be generated to raise
// minority/majority to ratio, truncated toward zero. It is negative when the
// minority class already exceeds the ratio.
func SyntheticCount(nMinority, nMajority int, ratio float64) int {
	return int(float64(nMajority)*ratio - float64(nMinority))
}

// Resample implements Generator. The labels must hold exactly two classes;
// the less frequent one is oversampled.
func (s *SMOTE) Resample(features [][]float64, labels []int, ratio float64) ([][]float64, []int, error) {
	if len(features) != len(labels) {
		return nil, nil, fmt.Errorf("cog: smote: %d feature rows but %d labels", len(features), len(labels))
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(0))
	}
	k := s.Neighbors
	if k < 1 {
		k = 5
	}
	metric := s.Metric
	if metric == nil {
		metric = EuclideanMetric{}
	}
	if !KDTreeValidMetric(metric) {
		return nil, nil, fmt.Errorf("cog: smote: metric %T is not supported by the KD-tree", metric)
	}
	leafSize := s.LeafSize
	if leafSize < 1 {
		leafSize = 40
	}

	counts := CountLabels(labels)
	if len(counts) != 2 {
		return nil, nil, fmt.Errorf("%w: ratio resampling needs exactly 2 classes, got %d", ErrInfeasible, len(counts))
	}
	classes := counts.Classes()
	minority, majority := classes[0], classes[1]
	if counts[minority] > counts[majority] {
		minority, majority = majority, minority
	}
	nMin, nMaj := counts[minority], counts[majority]

	n := SyntheticCount(nMin, nMaj, ratio)
	if n < 0 {
		return nil, nil, fmt.Errorf("%w: ratio %g would remove minority rows (%d minority, %d majority)", ErrInfeasible, ratio, nMin, nMaj)
	}
	if nMin <= k {
		return nil, nil, fmt.Errorf("%w: %d minority rows, need more than %d neighbors", ErrInfeasible, nMin, k)
	}

	outX := make([][]float64, len(features), len(features)+n)
	outY := make([]int, len(labels), len(labels)+n)
	for i := range features {
		outX[i] = append([]float64(nil), features[i]...)
	}
	copy(outY, labels)
	if n == 0 {
		return outX, outY, nil
	}

	var minRows [][]float64
	for i, l := range labels {
		if l == minority {
			minRows = append(minRows, features[i])
		}
	}
	tree := NewKDTree(minRows, metric, leafSize)
	neighbors := make([][]int, len(minRows))
	for i, row := range minRows {
		idx, _ := tree.Query(row, k+1)
		neighbors[i] = dropSelf(idx, i, k)
	}

	for j := 0; j < n; j++ {
		pick := s.rng.Intn(nMin * k)
		base := minRows[pick/k]
		nn := minRows[neighbors[pick/k][pick%k]]
		gap := s.rng.Float64()

		// base + gap*(nn - base)
		row := make([]float64, len(base))
		floats.SubTo(row, nn, base)
		floats.AddScaledTo(row, base, gap, row)
		outX = append(outX, row)
		outY = append(outY, minority)
	}
	return outX, outY, nil
}

// dropSelf removes self from a k+1 neighbor list. Duplicate points can push
// self out of the first slot, or out of the list entirely; then the farthest
// neighbor is dropped instead.
func dropSelf(idx []int, self, k int) []int {
	out := make([]int, 0, k)
	for _, j := range idx {
		if j == self {
			continue
		}
		out = append(out, j)
	}
	return out[:k]
}
