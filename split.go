package cog

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const (
	// holdoutFraction of the rows leaves training; half of it becomes the
	// validation partition and half the test partition (70/15/15).
	holdoutFraction = 0.3
	testShare       = 0.5
)

// Partitions are the train/validation/test subsets of a dataset.
type Partitions struct {
	Train, Validation, Test *Dataset
}

// StratifiedSplit shuffles each label's rows with a seeded generator and moves
// round(fraction * count) of them into the second subset, so both subsets keep
// the label proportions. Row order within each subset follows the original
// dataset.
func StratifiedSplit(ds *Dataset, fraction float64, seed int64) (keep, split *Dataset, err error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, fmt.Errorf("cog: split fraction must be in (0, 1), got %f", fraction)
	}
	if ds.Len() == 0 {
		return nil, nil, ErrEmptyDataset
	}

	byLabel := map[int][]int{}
	for i, l := range ds.Labels {
		byLabel[l] = append(byLabel[l], i)
	}

	rng := rand.New(rand.NewSource(seed))
	var keepRows, splitRows []int
	for _, l := range CountLabels(ds.Labels).Classes() {
		rows := byLabel[l]
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		n := int(math.Round(fraction * float64(len(rows))))
		splitRows = append(splitRows, rows[:n]...)
		keepRows = append(keepRows, rows[n:]...)
	}
	sort.Ints(keepRows)
	sort.Ints(splitRows)
	return ds.Subset(keepRows), ds.Subset(splitRows), nil
}

// SplitTrainValTest performs the 70/15/15 stratified split: 30% is held out
// first, then the holdout is split evenly into validation and test.
func SplitTrainValTest(ds *Dataset, seed int64) (*Partitions, error) {
	for l, n := range CountLabels(ds.Labels) {
		if n < 2 {
			return nil, fmt.Errorf("%w: label %d has only %d row, need at least 2 for a stratified split", ErrUnknownLabel, l, n)
		}
	}
	train, holdout, err := StratifiedSplit(ds, holdoutFraction, seed)
	if err != nil {
		return nil, err
	}
	val, test, err := StratifiedSplit(holdout, testShare, seed)
	if err != nil {
		return nil, err
	}
	return &Partitions{Train: train, Validation: val, Test: test}, nil
}
