package cog

import "errors"

// Classifier is a trainable binary or multiclass model. Clone returns a fresh
// untrained instance with the same settings; the search never refits a
// shared instance.
type Classifier interface {
	Fit(features [][]float64, labels []int) error
	Predict(features [][]float64) ([]int, error)
	Clone() Classifier
}

// ErrNotFitted is returned by Predict before a successful Fit.
var ErrNotFitted = errors.New("cog: classifier is not fitted")

// fitAndScore trains a clone of base on the training rows and returns the
// G-mean of its predictions on the evaluation rows.
func fitAndScore(base Classifier, trainX [][]float64, trainY []int, evalX [][]float64, evalY []int, positive int) (float64, error) {
	clf := base.Clone()
	if err := clf.Fit(trainX, trainY); err != nil {
		return 0, err
	}
	pred, err := clf.Predict(evalX)
	if err != nil {
		return 0, err
	}
	return GMean(evalY, pred, positive), nil
}
