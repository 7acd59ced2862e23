package cog

import (
	"fmt"
	"math"
)

// ConfusionMatrix holds binary confusion counts with respect to a positive
// label. Any label other than the positive one counts as negative.
type ConfusionMatrix struct {
	TP, FN, TN, FP int
}

// Confusion tallies yTrue against yPred. Panics if the lengths differ.
func Confusion(yTrue, yPred []int, positive int) ConfusionMatrix {
	if len(yTrue) != len(yPred) {
		panic(fmt.Sprintf("cog: label length mismatch: %d true, %d predicted", len(yTrue), len(yPred)))
	}
	var cm ConfusionMatrix
	for i := range yTrue {
		actual := yTrue[i] == positive
		predicted := yPred[i] == positive
		switch {
		case actual && predicted:
			cm.TP++
		case actual:
			cm.FN++
		case predicted:
			cm.FP++
		default:
			cm.TN++
		}
	}
	return cm
}

// Sensitivity is TP / (TP + FN), or 0 when there are no positives.
func (cm ConfusionMatrix) Sensitivity() float64 {
	return rate(cm.TP, cm.TP+cm.FN)
}

// Specificity is TN / (TN + FP), or 0 when there are no negatives.
func (cm ConfusionMatrix) Specificity() float64 {
	return rate(cm.TN, cm.TN+cm.FP)
}

// GMean returns sqrt(sensitivity * specificity).
func (cm ConfusionMatrix) GMean() float64 {
	return math.Sqrt(cm.Sensitivity() * cm.Specificity())
}

func rate(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// GMean scores predictions by the geometric mean of sensitivity and
// specificity, treating positive as the minority label. The result is in
// [0, 1] and is 0 whenever either class is never predicted correctly.
func GMean(yTrue, yPred []int, positive int) float64 {
	return Confusion(yTrue, yPred, positive).GMean()
}
