package cog

import (
	"errors"
	"math"
)

// maxSamplingRatio caps a single oversampling step.
const maxSamplingRatio = 0.5

// Oversampled is the result of oversampling one cluster. Features and Labels
// start with the cluster's own rows; Added synthetic rows follow.
type Oversampled struct {
	Features [][]float64
	Labels   []int
	Added    int
}

// SamplingRatio interpolates the requested minority/majority ratio between
// the current and target imbalance ratios, capped at 0.5. For
// 0 <= current < target < 1 the result is in [0, 0.5].
func SamplingRatio(currentIR, targetIR float64) float64 {
	return math.Min((targetIR-currentIR)/(1-currentIR), maxSamplingRatio)
}

// OversampleCluster asks gen for synthetic minority rows for one cluster.
//
// The cluster is returned unchanged with Added == 0 when it has fewer than
// two minority rows, has no majority rows, or its imbalance ratio (computed
// from the rows or given as currentIR) already meets targetIR. A generator
// error wrapping ErrInfeasible is also treated as "nothing added"; any other
// generator error is returned.
func OversampleCluster(gen Generator, features [][]float64, labels []int, currentIR, targetIR float64, minority int) (Oversampled, error) {
	unchanged := Oversampled{Features: features, Labels: labels}

	counts := CountLabels(labels)
	if counts[minority] < 2 {
		return unchanged, nil
	}
	ir, ok := counts.IR(minority)
	if !ok || ir >= targetIR || currentIR >= targetIR {
		return unchanged, nil
	}

	x, y, err := gen.Resample(features, labels, SamplingRatio(currentIR, targetIR))
	if errors.Is(err, ErrInfeasible) {
		return unchanged, nil
	}
	if err != nil {
		return Oversampled{}, err
	}
	return Oversampled{Features: x, Labels: y, Added: len(y) - len(labels)}, nil
}
