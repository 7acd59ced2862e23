package cog

import (
	"errors"
	"sort"
)

// TargetColumn is the name of the label column in loaded datasets.
const TargetColumn = "Target"

// Unassigned marks a row that carries no cluster id.
const Unassigned = -1

var (
	// ErrEmptyDataset is returned when a dataset has no rows.
	ErrEmptyDataset = errors.New("cog: empty dataset")

	// ErrMissingTarget is returned when no numeric Target column survives loading.
	ErrMissingTarget = errors.New("cog: missing " + TargetColumn + " column")

	// ErrMissingValue is returned when a numeric column has an empty cell.
	ErrMissingValue = errors.New("cog: missing value")

	// ErrUnknownLabel is returned when the minority label is absent or the
	// labels are not binary.
	ErrUnknownLabel = errors.New("cog: unsupported label")
)

// Dataset is a numeric feature table with one integer label per row.
// Features[i] and Labels[i] describe row i; every row has len(Columns) features.
type Dataset struct {
	Columns  []string
	Features [][]float64
	Labels   []int
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Labels) }

// Subset returns a dataset holding the given rows in the given order.
// Feature rows are shared with d, not copied.
func (d *Dataset) Subset(rows []int) *Dataset {
	sub := &Dataset{
		Columns:  d.Columns,
		Features: make([][]float64, len(rows)),
		Labels:   make([]int, len(rows)),
	}
	for i, r := range rows {
		sub.Features[i] = d.Features[r]
		sub.Labels[i] = d.Labels[r]
	}
	return sub
}

// LabelCounts counts rows per label.
type LabelCounts map[int]int

// CountLabels tallies labels.
func CountLabels(labels []int) LabelCounts {
	counts := LabelCounts{}
	for _, l := range labels {
		counts[l]++
	}
	return counts
}

// Classes returns the distinct labels in ascending order.
func (c LabelCounts) Classes() []int {
	classes := make([]int, 0, len(c))
	for l := range c {
		classes = append(classes, l)
	}
	sort.Ints(classes)
	return classes
}

// Majority returns the most frequent label other than minority and its count.
// Ties go to the smaller label. ok is false when no other label is present.
func (c LabelCounts) Majority(minority int) (label, count int, ok bool) {
	for _, l := range c.Classes() {
		if l == minority {
			continue
		}
		if n := c[l]; !ok || n > count {
			label, count, ok = l, n, true
		}
	}
	return label, count, ok
}

// ImbalanceRatio returns minority / majority, or 0 and false when either
// count is not positive.
func ImbalanceRatio(minority, majority int) (float64, bool) {
	if minority <= 0 || majority <= 0 {
		return 0, false
	}
	return float64(minority) / float64(majority), true
}

// IR returns the imbalance ratio of minority against the largest other class.
func (c LabelCounts) IR(minority int) (float64, bool) {
	_, maj, ok := c.Majority(minority)
	if !ok {
		return 0, false
	}
	return ImbalanceRatio(c[minority], maj)
}
